// Package chat holds messenger implementations. The real chat transport
// lives outside this service; LogMessenger stands in for local runs.
package chat

import (
	"context"
	"log/slog"

	"github.com/remitflow/remitflow/pkg/provider"
)

// LogMessenger writes outbound messages to the log instead of a chat
// transport. Useful for development and as a wiring default.
type LogMessenger struct {
	logger *slog.Logger
}

var _ provider.Messenger = (*LogMessenger)(nil)

// NewLogMessenger creates a LogMessenger.
func NewLogMessenger(logger *slog.Logger) *LogMessenger {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMessenger{logger: logger}
}

// Send logs the message that would have been delivered.
func (m *LogMessenger) Send(_ context.Context, chatID, text string) error {
	m.logger.Info("outbound chat message", "chat", chatID, "text", text)
	return nil
}
