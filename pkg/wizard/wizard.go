// Package wizard drives the per-chat conversation that collects a
// transfer's parameters step by step, with validation and backward
// navigation, and submits the finished draft.
package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/remitflow/remitflow/infra/metrics"
	"github.com/remitflow/remitflow/pkg/currency"
	"github.com/remitflow/remitflow/pkg/domain"
	"github.com/remitflow/remitflow/pkg/exchange"
	"github.com/remitflow/remitflow/pkg/provider"
	"github.com/remitflow/remitflow/pkg/quote"
)

// Reserved inputs, checked before any step validator.
const (
	tokenBack    = "back"
	tokenCancel  = "cancel"
	tokenConfirm = "confirm"
	tokenHistory = "history"
)

// historyLimit caps how many past transactions the history command shows.
const historyLimit = 5

// RateResolver is the slice of the exchange resolver the wizard needs.
type RateResolver interface {
	Resolve(ctx context.Context, from, to string) (exchange.Result, error)
}

// Tracker registers a submitted transaction for status polling.
type Tracker interface {
	Track(id, chatID string)
}

// Config wires a Wizard.
type Config struct {
	Sessions           *Sessions
	Resolver           RateResolver
	Backend            provider.TransferBackend
	Tracker            Tracker
	Table              *currency.Table
	SettlementCurrency string
	FeeRate            float64
	Logger             *slog.Logger
	Metrics            *metrics.Metrics
}

// Wizard is the conversation state machine. HandleMessage is safe for
// concurrent calls across chats; a per-session lock serializes messages
// within one chat.
type Wizard struct {
	sessions   *Sessions
	resolver   RateResolver
	backend    provider.TransferBackend
	tracker    Tracker
	table      *currency.Table
	settlement string
	feeRate    float64
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// New creates a Wizard from cfg.
func New(cfg Config) *Wizard {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Wizard{
		sessions:   cfg.Sessions,
		resolver:   cfg.Resolver,
		backend:    cfg.Backend,
		tracker:    cfg.Tracker,
		table:      cfg.Table,
		settlement: currency.Normalize(cfg.SettlementCurrency).String(),
		feeRate:    cfg.FeeRate,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
	}
}

// HandleMessage advances the chat's wizard with one inbound message and
// returns the reply to send. Every failure mode maps to user-facing
// text; the wizard never surfaces raw errors to the transport.
func (w *Wizard) HandleMessage(ctx context.Context, chatID, text string) string {
	sess := w.sessions.GetOrCreate(chatID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	token := strings.ToLower(strings.TrimSpace(text))

	if sess.State == StepIdle {
		if token == tokenHistory {
			return w.renderHistory(ctx)
		}
		sess.State = StepPaymentMethod
		w.logger.Info("wizard started", "chat", chatID)
		return "👋 Let's set up your transfer.\n\n" + w.prompt(sess)
	}

	if token == tokenCancel {
		sess.reset()
		return "🚫 Transfer cancelled. Message me any time to start a new one."
	}
	if token == tokenBack {
		return w.stepBack(sess)
	}
	if sess.State == StepConfirm {
		return w.handleConfirmation(ctx, sess, token)
	}
	return w.handleStep(ctx, sess, text)
}

// stepBack moves to the preceding step and clears the value that step
// had collected. Back past the first step cancels the whole draft.
func (w *Wizard) stepBack(sess *Session) string {
	if sess.State == StepPaymentMethod {
		sess.reset()
		return "🚫 Transfer cancelled. Message me any time to start a new one."
	}
	target := prev(sess.State, sess.Draft.Method)
	clearField(&sess.Draft, target)
	if sess.State == StepConfirm {
		sess.quote = nil
	}
	sess.State = target
	return w.prompt(sess)
}

// handleStep validates the input for the current step, stores it, and
// advances. Invalid input re-prompts without a state change.
func (w *Wizard) handleStep(ctx context.Context, sess *Session, text string) string {
	draft := &sess.Draft

	var verr error
	switch sess.State {
	case StepPaymentMethod:
		method, ok := domain.ParsePaymentMethod(text)
		if !ok {
			verr = fmt.Errorf("please answer WALLET or MASTERCARD")
		} else {
			draft.Method = method
		}
	case StepRecipientName:
		var name string
		if name, verr = validateRecipientName(text); verr == nil {
			draft.RecipientName = name
		}
	case StepRecipientCurrency:
		var code string
		if code, verr = validateCurrency(text, currency.NewSet(w.settlement)); verr == nil {
			draft.RecipientCurrency = code
		}
	case StepRecipientBank:
		var bank string
		if bank, verr = validateBank(text); verr == nil {
			draft.RecipientBank = bank
		}
	case StepRecipientAccount:
		var account string
		if account, verr = validateAccountNumber(text); verr == nil {
			draft.RecipientAccount = account
		}
	case StepSenderCurrency:
		allowed := w.table.Tokens()
		if draft.Method == domain.MethodMastercard {
			allowed = w.table.Fiat()
		}
		var code string
		if code, verr = validateCurrency(text, allowed); verr == nil {
			draft.SenderCurrency = code
		}
	case StepCardNumber:
		var number string
		if number, verr = validateCardNumber(text); verr == nil {
			draft.Card.Number = number
		}
	case StepCardCVC:
		var cvc string
		if cvc, verr = validateCVC(text); verr == nil {
			draft.Card.CVC = cvc
		}
	case StepCardExpiry:
		var expiry string
		if expiry, verr = validateExpiry(text); verr == nil {
			draft.Card.Expiry = expiry
		}
	case StepAmount:
		var amount float64
		if amount, verr = validateAmount(text); verr == nil {
			draft.Amount = amount
		}
	default:
		verr = fmt.Errorf("something went wrong, send cancel to start over")
	}

	if verr != nil {
		return fmt.Sprintf("⚠️ %s\n\n%s", verr, w.prompt(sess))
	}

	sess.State = next(sess.State, draft.Method)
	if sess.State == StepConfirm {
		return w.enterConfirmation(ctx, sess)
	}
	return w.prompt(sess)
}

// enterConfirmation computes the quote and renders the summary. A
// failure here aborts the draft: confirmation must never be entered
// with a quote it cannot stand behind.
func (w *Wizard) enterConfirmation(ctx context.Context, sess *Session) string {
	draft := &sess.Draft
	res, err := w.resolver.Resolve(ctx, draft.SenderCurrency, draft.RecipientCurrency)
	if err != nil {
		w.logger.Error("confirmation quote failed, aborting draft",
			"chat", sess.ChatID, "error", err)
		sess.reset()
		return "😔 Sorry, something went wrong preparing your quote. Please start over."
	}

	q := quote.Calculate(draft.Amount, res.Rate, w.feeRate)
	sess.quote = &pendingQuote{Quote: q, Rate: res.Rate, Degraded: res.Degraded}
	return w.renderSummary(sess)
}

func (w *Wizard) renderSummary(sess *Session) string {
	draft := &sess.Draft
	pq := sess.quote

	var b strings.Builder
	b.WriteString("📋 Please review your transfer:\n")
	fmt.Fprintf(&b, "Method: %s\n", draft.Method)
	fmt.Fprintf(&b, "Recipient: %s, %s %s\n", draft.RecipientName, draft.RecipientBank, draft.RecipientAccount)
	fmt.Fprintf(&b, "You send: %g %s\n", draft.Amount, draft.SenderCurrency)
	fmt.Fprintf(&b, "Rate: %g", pq.Rate)
	if pq.Degraded {
		b.WriteString(" (indicative — live rates unavailable)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Recipient gets: %.2f %s\n", pq.RecipientAmount, draft.RecipientCurrency)
	fmt.Fprintf(&b, "Fee: %g %s, total: %g %s\n\n", pq.Fee, draft.SenderCurrency, pq.Total, draft.SenderCurrency)
	b.WriteString("Reply confirm to submit, back to change the amount, or cancel.")
	return b.String()
}

// handleConfirmation accepts exactly confirm, cancel or back; cancel
// and back are intercepted earlier, so only confirm and unknown input
// reach this point.
func (w *Wizard) handleConfirmation(ctx context.Context, sess *Session, token string) string {
	if token != tokenConfirm {
		return "Please reply confirm, back, or cancel.\n\n" + w.renderSummary(sess)
	}

	draft := sess.Draft
	pq := sess.quote

	req := provider.InitiateRequest{
		IdempotencyKey:    uuid.NewString(),
		Method:            draft.Method,
		RecipientName:     draft.RecipientName,
		RecipientCurrency: draft.RecipientCurrency,
		RecipientBank:     draft.RecipientBank,
		RecipientAccount:  draft.RecipientAccount,
		SenderCurrency:    draft.SenderCurrency,
		Amount:            draft.Amount,
		RecipientAmount:   pq.RecipientAmount,
		Fee:               pq.Fee,
		Rate:              pq.Rate,
	}
	if draft.Method == domain.MethodMastercard {
		card := draft.Card
		req.Card = &card
	}

	tx, err := w.backend.InitiateTransfer(ctx, req)
	if err != nil {
		// Submission is not retried: the draft state cannot be safely
		// resumed, so it is discarded and the backend's answer shown.
		w.logger.Error("transfer submission failed", "chat", sess.ChatID, "error", err)
		sess.reset()
		return fmt.Sprintf("😔 Sorry, we couldn't submit your transfer: %v\nPlease start over.", err)
	}

	w.metrics.TransferSubmitted()
	w.tracker.Track(tx.ID, sess.ChatID)
	sess.reset()
	w.logger.Info("transfer submitted", "chat", sess.ChatID, "tx", tx.ID)

	reply := fmt.Sprintf("🚀 Transfer submitted! Reference: %s\nI'll keep you posted on its progress.", tx.ID)
	if tx.PaymentLink != "" {
		reply += "\nComplete your payment here: " + tx.PaymentLink
	}
	return reply
}

// renderHistory lists the chat's most recent transactions. Only
// recognized while the wizard is idle; inside a flow the word is
// treated as step input.
func (w *Wizard) renderHistory(ctx context.Context) string {
	txs, err := w.backend.History(ctx, historyLimit)
	if err != nil {
		w.logger.Error("history fetch failed", "error", err)
		return "😔 Sorry, I couldn't fetch your transfer history right now."
	}
	if len(txs) == 0 {
		return "No transfers yet. Send any message to start one."
	}
	var b strings.Builder
	b.WriteString("📋 Your recent transfers:\n")
	for _, tx := range txs {
		fmt.Fprintf(&b, "• %s — %s", tx.ID, tx.Status)
		if !tx.CreatedAt.IsZero() {
			fmt.Fprintf(&b, " (%s)", tx.CreatedAt.Format("2006-01-02"))
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// prompt returns the question for the session's current step.
func (w *Wizard) prompt(sess *Session) string {
	switch sess.State {
	case StepPaymentMethod:
		return "How will you fund the transfer? Reply WALLET or MASTERCARD."
	case StepRecipientName:
		return "What is the recipient's full name?"
	case StepRecipientCurrency:
		return fmt.Sprintf("Which currency should the recipient receive? (%s)", w.settlement)
	case StepRecipientBank:
		return "Which bank does the recipient use?"
	case StepRecipientAccount:
		return "What is the recipient's account number?"
	case StepSenderCurrency:
		if sess.Draft.Method == domain.MethodMastercard {
			return fmt.Sprintf("Which currency will you pay in? (%s)",
				strings.Join(w.table.Fiat().List(), ", "))
		}
		return fmt.Sprintf("Which token will you send from your wallet? (%s)",
			strings.Join(w.table.Tokens().List(), ", "))
	case StepCardNumber:
		return "Please enter your card number."
	case StepCardCVC:
		return "Please enter the card's CVC."
	case StepCardExpiry:
		return "Please enter the card's expiry (MM/YY)."
	case StepAmount:
		return fmt.Sprintf("How much %s would you like to send?", sess.Draft.SenderCurrency)
	}
	return "Send any message to start a transfer."
}
