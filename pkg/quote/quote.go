// Package quote computes the display and submission figures for a
// transfer from an amount, an exchange rate, and the service fee rate.
package quote

// Quote is the breakdown shown at the confirmation step and sent with
// the initiate payload.
type Quote struct {
	RecipientAmount float64
	Fee             float64
	Total           float64
}

// Calculate derives the quote. Pure arithmetic, no rounding: display
// formatting is the formatter's concern.
func Calculate(amount, rate, feeRate float64) Quote {
	fee := amount * feeRate
	return Quote{
		RecipientAmount: amount * rate,
		Fee:             fee,
		Total:           amount + fee,
	}
}
