package wizard

import "github.com/remitflow/remitflow/pkg/domain"

// Step identifies one wizard state. The zero value is idle (no transfer
// in progress).
type Step int

const (
	StepIdle Step = iota
	StepPaymentMethod
	StepRecipientName
	StepRecipientCurrency
	StepRecipientBank
	StepRecipientAccount
	StepSenderCurrency
	StepCardNumber
	StepCardCVC
	StepCardExpiry
	StepAmount
	StepConfirm
)

func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepPaymentMethod:
		return "payment_method"
	case StepRecipientName:
		return "recipient_name"
	case StepRecipientCurrency:
		return "recipient_currency"
	case StepRecipientBank:
		return "recipient_bank"
	case StepRecipientAccount:
		return "recipient_account"
	case StepSenderCurrency:
		return "sender_currency"
	case StepCardNumber:
		return "card_number"
	case StepCardCVC:
		return "card_cvc"
	case StepCardExpiry:
		return "card_expiry"
	case StepAmount:
		return "amount"
	case StepConfirm:
		return "confirmation"
	}
	return "unknown"
}

// next returns the state that follows s. The card sub-flow is only
// visited on the MASTERCARD branch.
func next(s Step, method domain.PaymentMethod) Step {
	switch s {
	case StepPaymentMethod:
		return StepRecipientName
	case StepRecipientName:
		return StepRecipientCurrency
	case StepRecipientCurrency:
		return StepRecipientBank
	case StepRecipientBank:
		return StepRecipientAccount
	case StepRecipientAccount:
		return StepSenderCurrency
	case StepSenderCurrency:
		if method == domain.MethodMastercard {
			return StepCardNumber
		}
		return StepAmount
	case StepCardNumber:
		return StepCardCVC
	case StepCardCVC:
		return StepCardExpiry
	case StepCardExpiry:
		return StepAmount
	case StepAmount:
		return StepConfirm
	}
	return StepIdle
}

// prev returns the state that precedes s. Stepping before the first
// state is the caller's signal to cancel.
func prev(s Step, method domain.PaymentMethod) Step {
	switch s {
	case StepRecipientName:
		return StepPaymentMethod
	case StepRecipientCurrency:
		return StepRecipientName
	case StepRecipientBank:
		return StepRecipientCurrency
	case StepRecipientAccount:
		return StepRecipientBank
	case StepSenderCurrency:
		return StepRecipientAccount
	case StepCardNumber:
		return StepSenderCurrency
	case StepCardCVC:
		return StepCardNumber
	case StepCardExpiry:
		return StepCardCVC
	case StepAmount:
		if method == domain.MethodMastercard {
			return StepCardExpiry
		}
		return StepSenderCurrency
	case StepConfirm:
		return StepAmount
	}
	return StepIdle
}

// clearField deletes the draft field a step had populated, used when
// navigating back onto that step. Earlier fields are never touched.
func clearField(draft *domain.TransferDraft, s Step) {
	switch s {
	case StepPaymentMethod:
		draft.Method = ""
	case StepRecipientName:
		draft.RecipientName = ""
	case StepRecipientCurrency:
		draft.RecipientCurrency = ""
	case StepRecipientBank:
		draft.RecipientBank = ""
	case StepRecipientAccount:
		draft.RecipientAccount = ""
	case StepSenderCurrency:
		draft.SenderCurrency = ""
	case StepCardNumber:
		draft.Card.Number = ""
	case StepCardCVC:
		draft.Card.CVC = ""
	case StepCardExpiry:
		draft.Card.Expiry = ""
	case StepAmount:
		draft.Amount = 0
	}
}
