// Package webhook receives out-of-band transfer status pushes from the
// backend, verifying their HMAC signature before dispatching.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/remitflow/remitflow/pkg/domain"
)

// SignatureHeader carries the hex-encoded HMAC-SHA256 of the raw body.
const SignatureHeader = "X-Webhook-Signature"

// Dispatcher consumes verified status events; the poller implements it.
type Dispatcher interface {
	PushUpdate(ctx context.Context, id string, status domain.TransferStatus)
}

type event struct {
	TransferID string `json:"transferId"`
	Status     string `json:"status"`
}

// Handler returns the webhook endpoint. With no secret configured,
// production fails closed; other environments log and skip verification.
func Handler(secret, env string, dispatcher Dispatcher, logger *slog.Logger) fiber.Handler {
	production := env == "production"
	return func(c *fiber.Ctx) error {
		body := c.Body()
		if len(body) == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "empty request body",
			})
		}

		if secret == "" {
			if production {
				logger.Error("webhook secret not configured, rejecting")
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "webhook verification unavailable",
				})
			}
			logger.Warn("webhook secret not configured, skipping verification")
		} else if !verify(secret, body, c.Get(SignatureHeader)) {
			logger.Warn("webhook signature rejected")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid signature",
			})
		}

		var ev event
		if err := json.Unmarshal(body, &ev); err != nil || ev.TransferID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "malformed event",
			})
		}

		dispatcher.PushUpdate(c.Context(), ev.TransferID, domain.NormalizeStatus(ev.Status))
		return c.SendStatus(fiber.StatusOK)
	}
}

// verify compares the expected body MAC with the presented hex
// signature in constant time.
func verify(secret string, body []byte, signature string) bool {
	presented, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), presented)
}
