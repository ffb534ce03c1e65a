// Package domain holds the transfer types shared across the engine:
// payment methods, drafts, transaction lifecycle statuses, and the
// sentinel errors the layers above translate into user-facing text.
package domain

import (
	"errors"
	"strings"
	"time"
)

// PaymentMethod selects how the sender funds the transfer.
type PaymentMethod string

const (
	MethodWallet     PaymentMethod = "WALLET"
	MethodMastercard PaymentMethod = "MASTERCARD"
)

// ParsePaymentMethod maps free-form chat input onto a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WALLET":
		return MethodWallet, true
	case "MASTERCARD", "CARD":
		return MethodMastercard, true
	default:
		return "", false
	}
}

// CardDetails carries the card fields collected on the MASTERCARD
// branch. Values are held only for the lifetime of a draft and are
// never logged.
type CardDetails struct {
	Number string
	CVC    string
	Expiry string
}

// TransferDraft accumulates the wizard's answers. A zero Draft is an
// empty one.
type TransferDraft struct {
	Method            PaymentMethod
	RecipientName     string
	RecipientCurrency string
	RecipientBank     string
	RecipientAccount  string
	SenderCurrency    string
	Amount            float64
	Card              CardDetails
}

// TransferStatus is a transaction lifecycle state as reported by the
// backend. Comparisons should go through NormalizeStatus first.
type TransferStatus string

const (
	StatusPending    TransferStatus = "PENDING"
	StatusPaid       TransferStatus = "PAID"
	StatusProcessing TransferStatus = "PROCESSING"
	StatusCompleted  TransferStatus = "COMPLETED"
	StatusFailed     TransferStatus = "FAILED"
	StatusCancelled  TransferStatus = "CANCELLED"
)

// NormalizeStatus canonicalizes a backend-reported status for
// comparison. Unknown values pass through uppercased.
func NormalizeStatus(s string) TransferStatus {
	return TransferStatus(strings.ToUpper(strings.TrimSpace(s)))
}

// IsTerminal reports whether the status ends the transaction's
// lifecycle. Unknown statuses are not terminal.
func (s TransferStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Transaction is a submitted transfer as the backend reports it.
type Transaction struct {
	ID          string
	Status      TransferStatus
	PaymentLink string
	CreatedAt   time.Time
}

// TransferDetails is the full settlement breakdown for a transaction,
// fetched on completion to enrich the final notification.
type TransferDetails struct {
	ID              string
	Status          TransferStatus
	SenderCurrency  string
	Amount          float64
	RecipientName   string
	RecipientBank   string
	RecipientAmount float64
	Currency        string
	Rate            float64
	Fee             float64
	BlockchainTx    string
	CompletedAt     time.Time
}

// Sentinel errors shared across packages. Wrap with %w so callers can
// branch with errors.Is.
var (
	ErrExchangeRateUnavailable = errors.New("exchange rate unavailable")
	ErrTransferSubmission      = errors.New("transfer submission failed")
)
