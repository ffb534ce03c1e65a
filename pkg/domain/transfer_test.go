package domain_test

import (
	"testing"

	"github.com/remitflow/remitflow/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestParsePaymentMethod(t *testing.T) {
	cases := []struct {
		in   string
		want domain.PaymentMethod
		ok   bool
	}{
		{"wallet", domain.MethodWallet, true},
		{" WALLET ", domain.MethodWallet, true},
		{"Mastercard", domain.MethodMastercard, true},
		{"card", domain.MethodMastercard, true},
		{"cash", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := domain.ParsePaymentMethod(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, domain.StatusPaid, domain.NormalizeStatus(" paid "))
	assert.Equal(t, domain.TransferStatus("ON_HOLD"), domain.NormalizeStatus("on_hold"))
}

func TestIsTerminal(t *testing.T) {
	terminal := []domain.TransferStatus{
		domain.StatusCompleted, domain.StatusFailed, domain.StatusCancelled,
	}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), string(s))
	}
	open := []domain.TransferStatus{
		domain.StatusPending, domain.StatusPaid, domain.StatusProcessing,
		domain.TransferStatus("ON_HOLD"),
	}
	for _, s := range open {
		assert.False(t, s.IsTerminal(), string(s))
	}
}
