// Package notification renders user-facing text for transaction status
// updates. Pure formatting; delivery belongs to the poller.
package notification

import (
	"fmt"
	"strings"

	"github.com/remitflow/remitflow/pkg/domain"
)

// StatusChange renders the message for a transaction moving to status.
// details may be nil; when present (COMPLETED enrichment) the full
// settlement breakdown is appended.
func StatusChange(id string, status domain.TransferStatus, details *domain.TransferDetails) string {
	switch domain.NormalizeStatus(string(status)) {
	case domain.StatusPaid:
		return fmt.Sprintf(
			"✅ Payment received for transfer %s. We are preparing your transfer.", id)
	case domain.StatusProcessing:
		return fmt.Sprintf(
			"🔄 Transfer %s is being processed. Funds are on their way.", id)
	case domain.StatusCompleted:
		return completed(id, details)
	case domain.StatusFailed:
		return fmt.Sprintf(
			"❌ Transfer %s failed. Your funds have not been moved — please contact support.", id)
	case domain.StatusCancelled:
		return fmt.Sprintf("🚫 Transfer %s was cancelled.", id)
	default:
		return fmt.Sprintf("ℹ️ Transfer %s status update: %s", id, status)
	}
}

func completed(id string, details *domain.TransferDetails) string {
	if details == nil {
		return fmt.Sprintf("🎉 Transfer %s completed!", id)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 Transfer %s completed!\n", id)
	fmt.Fprintf(&b, "Recipient: %s (%s)\n", details.RecipientName, details.RecipientBank)
	fmt.Fprintf(&b, "Delivered: %.2f %s\n", details.RecipientAmount, details.Currency)
	fmt.Fprintf(&b, "Rate: %g, fee: %g %s", details.Rate, details.Fee, details.SenderCurrency)
	if details.BlockchainTx != "" {
		fmt.Fprintf(&b, "\nOn-chain tx: %s", details.BlockchainTx)
	}
	return b.String()
}

// Timeout renders the message for a transaction the poller stopped
// tracking after exceeding the poll budget. A deliberate outcome, not a
// failure.
func Timeout(id string) string {
	return fmt.Sprintf(
		"⏰ We stopped watching transfer %s — it is taking longer than expected. "+
			"It may still complete; check back later with its reference.", id)
}

// PollingError renders the message emitted after repeated status-fetch
// failures exhausted the error budget.
func PollingError(id string) string {
	return fmt.Sprintf(
		"⚠️ We lost track of transfer %s due to repeated errors. "+
			"Please contact support with this reference.", id)
}
