package tokenrates_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remitflow/remitflow/infra/provider/tokenrates"
	"github.com/remitflow/remitflow/pkg/config"
	"github.com/remitflow/remitflow/pkg/domain"
)

func TestGetRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/usdtidr", r.URL.Path)
		fmt.Fprint(w, `{"ticker":{"last":"15512.5"}}`)
	}))
	defer srv.Close()

	p := tokenrates.New(config.TokenRates{ApiUrl: srv.URL, HTTPTimeout: 2 * time.Second}, nil)
	q, err := p.GetRate(context.Background(), "USDT", "IDR")
	require.NoError(t, err)
	assert.Equal(t, 15512.5, q.Rate)
	assert.Equal(t, "USDT", q.From)
	assert.Equal(t, "IDR", q.To)
}

func TestGetRateUnknownMarket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"ticker":{"last":""},"error":"invalid pair"}`)
	}))
	defer srv.Close()

	p := tokenrates.New(config.TokenRates{ApiUrl: srv.URL, HTTPTimeout: 2 * time.Second}, nil)
	_, err := p.GetRate(context.Background(), "DOGE", "IDR")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pair")
	assert.ErrorIs(t, err, domain.ErrExchangeRateUnavailable)
}

func TestGetRateBadPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"ticker":{"last":"n/a"}}`)
	}))
	defer srv.Close()

	p := tokenrates.New(config.TokenRates{ApiUrl: srv.URL, HTTPTimeout: 2 * time.Second}, nil)
	_, err := p.GetRate(context.Background(), "USDT", "IDR")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExchangeRateUnavailable)
}
