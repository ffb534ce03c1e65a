package wizard

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator"

	"github.com/remitflow/remitflow/pkg/currency"
)

// One validator per field type, shared by both payment-method branches.

var validate = validator.New()

var (
	digitsRe = regexp.MustCompile(`^\d+$`)
	expiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2}|\d{4})$`)
)

// validateCurrency checks raw against an allowed set, case-insensitively,
// and returns the normalized code.
func validateCurrency(raw string, allowed currency.Set) (string, error) {
	code := currency.Normalize(raw)
	if !allowed.Has(code.String()) {
		return "", fmt.Errorf("%q is not supported here; choose one of: %s",
			strings.TrimSpace(raw), strings.Join(allowed.List(), ", "))
	}
	return code.String(), nil
}

// validateAccountNumber accepts digits only.
func validateAccountNumber(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" || !digitsRe.MatchString(s) {
		return "", fmt.Errorf("account number must contain digits only")
	}
	return s, nil
}

// validateAmount accepts a finite number greater than zero.
func validateAmount(raw string) (float64, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("that doesn't look like a number; send the amount like 100 or 99.50")
	}
	if err := validate.Var(amount, "gt=0"); err != nil {
		return 0, fmt.Errorf("amount must be greater than zero")
	}
	return amount, nil
}

// validateCardNumber strips whitespace and requires 13 to 19 digits.
func validateCardNumber(raw string) (string, error) {
	s := strings.Join(strings.Fields(raw), "")
	if !digitsRe.MatchString(s) || len(s) < 13 || len(s) > 19 {
		return "", fmt.Errorf("card number must be 13-19 digits")
	}
	return s, nil
}

// validateCVC requires 3 or 4 digits.
func validateCVC(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if !digitsRe.MatchString(s) || len(s) < 3 || len(s) > 4 {
		return "", fmt.Errorf("CVC must be 3 or 4 digits")
	}
	return s, nil
}

// validateExpiry requires MM/YY or MM/YYYY with month 01-12.
func validateExpiry(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if !expiryRe.MatchString(s) {
		return "", fmt.Errorf("expiry must be MM/YY or MM/YYYY")
	}
	return s, nil
}

// validateRecipientName requires non-empty free text.
func validateRecipientName(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if err := validate.Var(s, "required,min=2"); err != nil {
		return "", fmt.Errorf("please send the recipient's full name")
	}
	return s, nil
}

// validateBank requires non-empty free text.
func validateBank(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if err := validate.Var(s, "required"); err != nil {
		return "", fmt.Errorf("please send the recipient's bank name")
	}
	return s, nil
}
