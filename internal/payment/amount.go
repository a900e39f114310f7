package payment

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Donation bounds in KES, inclusive. These mirror the limits enforced by the
// payments backend for a single STK push.
const (
	MinAmount = 10
	MaxAmount = 70000
)

var amountPrinter = message.NewPrinter(language.English)

// ParseAmount parses a donation amount entered as free text. Fractional and
// non-numeric input is rejected, as are amounts outside [MinAmount, MaxAmount].
// The returned error is always a *ValidationError.
func ParseAmount(raw string) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, &ValidationError{Code: NotANumber, Message: "Please enter an amount"}
	}
	amount, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, &ValidationError{Code: NotANumber, Message: "Please enter a valid number"}
	}
	if amount < MinAmount {
		return 0, &ValidationError{
			Code:    TooSmall,
			Message: amountPrinter.Sprintf("Minimum amount is KES %d", MinAmount),
		}
	}
	if amount > MaxAmount {
		return 0, &ValidationError{
			Code:    TooLarge,
			Message: amountPrinter.Sprintf("Maximum amount is KES %d", MaxAmount),
		}
	}
	return amount, nil
}
