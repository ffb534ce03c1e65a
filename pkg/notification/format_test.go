package notification_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/remitflow/remitflow/pkg/domain"
	"github.com/remitflow/remitflow/pkg/notification"
)

func TestStatusChangeTemplates(t *testing.T) {
	statuses := []domain.TransferStatus{
		domain.StatusPaid,
		domain.StatusProcessing,
		domain.StatusCompleted,
		domain.StatusFailed,
		domain.StatusCancelled,
	}
	seen := map[string]bool{}
	for _, s := range statuses {
		msg := notification.StatusChange("tx-1", s, nil)
		assert.Contains(t, msg, "tx-1")
		assert.False(t, seen[msg], "each status needs a distinct template: %s", s)
		seen[msg] = true
	}
}

func TestStatusChangeCaseInsensitive(t *testing.T) {
	upper := notification.StatusChange("tx-1", "COMPLETED", nil)
	lower := notification.StatusChange("tx-1", "completed", nil)
	assert.Equal(t, upper, lower)
}

func TestStatusChangeUnknownStatus(t *testing.T) {
	msg := notification.StatusChange("tx-1", "ON_HOLD", nil)
	assert.Contains(t, msg, "ON_HOLD")
}

func TestCompletedEnrichment(t *testing.T) {
	details := &domain.TransferDetails{
		RecipientName:   "Budi",
		RecipientBank:   "BCA",
		RecipientAmount: 1550000,
		Currency:        "IDR",
		Rate:            15500,
		Fee:             1.5,
		SenderCurrency:  "USDT",
		BlockchainTx:    "0xabc",
	}
	msg := notification.StatusChange("tx-1", domain.StatusCompleted, details)
	assert.Contains(t, msg, "Budi")
	assert.Contains(t, msg, "BCA")
	assert.Contains(t, msg, "IDR")
	assert.Contains(t, msg, "0xabc")

	plain := notification.StatusChange("tx-1", domain.StatusCompleted, nil)
	assert.NotEqual(t, msg, plain)
	assert.Contains(t, plain, "completed")
}

func TestTimeoutAndErrorAreDistinct(t *testing.T) {
	assert.NotEqual(t, notification.Timeout("tx-1"), notification.PollingError("tx-1"))
	assert.NotEqual(t, notification.Timeout("tx-1"),
		notification.StatusChange("tx-1", domain.StatusFailed, nil))
}
