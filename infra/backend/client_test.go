package backend_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remitflow/remitflow/infra/backend"
	"github.com/remitflow/remitflow/pkg/config"
	"github.com/remitflow/remitflow/pkg/domain"
	"github.com/remitflow/remitflow/pkg/provider"
)

func signToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

type fakeBackend struct {
	t        *testing.T
	logins   int
	tokenTTL time.Duration
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.logins++
		_ = json.NewEncoder(w).Encode(map[string]any{
			"accessToken":  signToken(f.t, f.tokenTTL),
			"refreshToken": "refresh",
			"user":         map[string]string{"id": "user-1", "email": "bot@example.com"},
		})
	})
	mux.HandleFunc("POST /transfer/initiate", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(f.t, r.Header.Get("Authorization"), "Bearer ")
		var body map[string]any
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotEmpty(f.t, body["idempotencyKey"])
		_ = json.NewEncoder(w).Encode(map[string]string{
			"transferId":  "tx-42",
			"status":      "pending",
			"paymentLink": "https://pay.example.com/tx-42",
		})
	})
	mux.HandleFunc("GET /transfer/status/{id}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"transferId": r.PathValue("id"),
			"status":     "processing",
		})
	})
	mux.HandleFunc("GET /transfer/details/{id}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"transferId":      r.PathValue("id"),
			"status":          "COMPLETED",
			"recipientAmount": 1550000.0,
			"currency":        "IDR",
			"rate":            15500.0,
			"fee":             1.5,
			"blockchainTx":    "0xabc",
		})
	})
	mux.HandleFunc("GET /transactions/history", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "5", r.URL.Query().Get("limit"))
		fmt.Fprint(w, `[{"transferId":"tx-1","status":"COMPLETED"},{"transferId":"tx-2","status":"FAILED"}]`)
	})
	return mux
}

func newClient(srvURL string) *backend.Client {
	return backend.New(config.Backend{
		BaseURL:      srvURL,
		Email:        "bot@example.com",
		Password:     "secret",
		HTTPTimeout:  2 * time.Second,
		TokenRefresh: time.Minute,
	}, nil)
}

func TestClientReusesTokenUntilExpiryWindow(t *testing.T) {
	fake := &fakeBackend{t: t, tokenTTL: time.Hour}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newClient(srv.URL)
	ctx := context.Background()

	_, err := c.TransferStatus(ctx, "tx-1")
	require.NoError(t, err)
	_, err = c.TransferStatus(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.logins, "token should be reused across calls")
}

func TestClientReloginsWhenTokenNearExpiry(t *testing.T) {
	fake := &fakeBackend{t: t, tokenTTL: 10 * time.Second} // inside the 1m refresh window
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newClient(srv.URL)
	ctx := context.Background()

	_, err := c.TransferStatus(ctx, "tx-1")
	require.NoError(t, err)
	_, err = c.TransferStatus(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.logins)
}

func TestInitiateTransfer(t *testing.T) {
	fake := &fakeBackend{t: t, tokenTTL: time.Hour}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	tx, err := newClient(srv.URL).InitiateTransfer(context.Background(), provider.InitiateRequest{
		IdempotencyKey:    "key-1",
		Method:            domain.MethodWallet,
		RecipientName:     "Budi",
		RecipientCurrency: "IDR",
		SenderCurrency:    "USDT",
		Amount:            100,
	})
	require.NoError(t, err)
	assert.Equal(t, "tx-42", tx.ID)
	assert.Equal(t, domain.StatusPending, tx.Status)
	assert.Equal(t, "https://pay.example.com/tx-42", tx.PaymentLink)
}

func TestTransferDetails(t *testing.T) {
	fake := &fakeBackend{t: t, tokenTTL: time.Hour}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	details, err := newClient(srv.URL).TransferDetails(context.Background(), "tx-42")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, details.Status)
	assert.Equal(t, 1550000.0, details.RecipientAmount)
	assert.Equal(t, "0xabc", details.BlockchainTx)
}

func TestHistory(t *testing.T) {
	fake := &fakeBackend{t: t, tokenTTL: time.Hour}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	txs, err := newClient(srv.URL).History(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, domain.StatusFailed, txs[1].Status)
}

func TestBackendErrorsAreSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/login" {
			_ = json.NewEncoder(w).Encode(map[string]any{"accessToken": signToken(t, time.Hour)})
			return
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message":"insufficient funds"}`)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).InitiateTransfer(context.Background(), provider.InitiateRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransferSubmission)
	assert.Contains(t, err.Error(), "insufficient funds")
}

func TestLoginFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).TransferStatus(context.Background(), "tx-1")
	assert.ErrorIs(t, err, backend.ErrUnauthenticated)
}
