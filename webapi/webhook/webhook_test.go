package webhook_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remitflow/remitflow/pkg/domain"
	"github.com/remitflow/remitflow/webapi/webhook"
)

type dispatcherSpy struct {
	mu     sync.Mutex
	events []string
}

func (d *dispatcherSpy) PushUpdate(_ context.Context, id string, status domain.TransferStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, id+":"+string(status))
}

func newApp(secret, env string, spy *dispatcherSpy) *fiber.App {
	app := fiber.New()
	app.Post("/webhooks/transfer", webhook.Handler(secret, env, spy, slog.Default()))
	return app
}

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func post(t *testing.T, app *fiber.App, body, signature string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/transfer", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(webhook.SignatureHeader, signature)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestValidSignatureDispatches(t *testing.T) {
	spy := &dispatcherSpy{}
	app := newApp("topsecret", "production", spy)
	body := `{"transferId":"tx-1","status":"paid"}`

	resp := post(t, app, body, sign("topsecret", body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"tx-1:PAID"}, spy.events)
}

func TestInvalidSignatureRejected(t *testing.T) {
	spy := &dispatcherSpy{}
	app := newApp("topsecret", "production", spy)
	body := `{"transferId":"tx-1","status":"paid"}`

	resp := post(t, app, body, sign("wrongsecret", body))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, spy.events)
}

func TestMissingSignatureRejected(t *testing.T) {
	spy := &dispatcherSpy{}
	app := newApp("topsecret", "production", spy)

	resp := post(t, app, `{"transferId":"tx-1","status":"paid"}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMissingSecretFailsClosedInProduction(t *testing.T) {
	spy := &dispatcherSpy{}
	app := newApp("", "production", spy)

	resp := post(t, app, `{"transferId":"tx-1","status":"paid"}`, "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Empty(t, spy.events)
}

func TestMissingSecretSkipsVerificationInDevelopment(t *testing.T) {
	spy := &dispatcherSpy{}
	app := newApp("", "development", spy)

	resp := post(t, app, `{"transferId":"tx-1","status":"completed"}`, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"tx-1:COMPLETED"}, spy.events)
}

func TestMalformedEventRejected(t *testing.T) {
	spy := &dispatcherSpy{}
	body := `{"status":"paid"}`
	app := newApp("topsecret", "production", spy)

	resp := post(t, app, body, sign("topsecret", body))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
