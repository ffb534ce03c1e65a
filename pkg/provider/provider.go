// Package provider defines the collaborator interfaces the orchestration
// engine depends on. Implementations live under infra/.
package provider

import (
	"context"
	"time"

	"github.com/remitflow/remitflow/pkg/domain"
)

// RateQuote is a single exchange-rate observation from a provider.
type RateQuote struct {
	From      string
	To        string
	Rate      float64
	Source    string
	Timestamp time.Time
}

// FiatRates quotes fiat currency pairs. Implementations are expected to
// triangulate through USD when the direct pair is missing from the
// provider's quote table for the base currency.
type FiatRates interface {
	GetRate(ctx context.Context, from, to string) (*RateQuote, error)
}

// TokenRates quotes a crypto token against a settlement fiat. The token
// is always the base; inverse pairs are the resolver's responsibility.
type TokenRates interface {
	GetRate(ctx context.Context, token, fiat string) (*RateQuote, error)
}

// InitiateRequest is the payload for creating a transaction.
type InitiateRequest struct {
	IdempotencyKey    string
	Method            domain.PaymentMethod
	RecipientName     string
	RecipientCurrency string
	RecipientBank     string
	RecipientAccount  string
	SenderCurrency    string
	Amount            float64
	RecipientAmount   float64
	Fee               float64
	Rate              float64
	Card              *domain.CardDetails
}

// CalculateRequest asks the backend for its own rate and fee preview.
type CalculateRequest struct {
	SenderCurrency    string
	RecipientCurrency string
	Amount            float64
}

// CalculateResponse mirrors POST /transfer/calculate.
type CalculateResponse struct {
	Rate            float64
	Fee             float64
	RecipientAmount float64
	Total           float64
}

// StatusResponse mirrors GET /transfer/status/:id.
type StatusResponse struct {
	TransferID   string
	Status       domain.TransferStatus
	BlockchainTx string
}

// TransferBackend is the REST transaction service the engine submits to
// and polls.
type TransferBackend interface {
	InitiateTransfer(ctx context.Context, req InitiateRequest) (*domain.Transaction, error)
	CalculateTransfer(ctx context.Context, req CalculateRequest) (*CalculateResponse, error)
	TransferStatus(ctx context.Context, id string) (*StatusResponse, error)
	TransferDetails(ctx context.Context, id string) (*domain.TransferDetails, error)
	History(ctx context.Context, limit int) ([]domain.Transaction, error)
}

// Messenger delivers text to a chat. The transport itself is out of
// scope; the engine only pushes through this interface.
type Messenger interface {
	Send(ctx context.Context, chatID, text string) error
}
