package payment

import (
	"regexp"
	"strings"
)

// Kenyan mobile numbers in international format: country code 254 followed
// by a Safaricom (7xx) or Airtel-interop (1xx) subscriber prefix and eight
// more digits.
var phonePattern = regexp.MustCompile(`^254[17]\d{8}$`)

// FormatPhone normalizes user input to the international form the gateway
// expects. All non-digit characters are stripped and a leading trunk zero is
// replaced with the 254 country code, so "0712 345-678" becomes "254712345678".
func FormatPhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if strings.HasPrefix(cleaned, "0") {
		cleaned = "254" + cleaned[1:]
	}
	return cleaned
}

// ValidatePhone checks an already-normalized phone number and returns a
// *ValidationError describing the first problem found, or nil when the number
// is acceptable.
func ValidatePhone(phone string) error {
	switch {
	case phone == "":
		return &ValidationError{Code: InvalidPhone, Message: "Phone number is required"}
	case len(phone) < 10:
		return &ValidationError{Code: InvalidPhone, Message: "Phone number is too short"}
	case len(phone) > 15:
		return &ValidationError{Code: InvalidPhone, Message: "Phone number is too long"}
	case !phonePattern.MatchString(phone):
		return &ValidationError{Code: InvalidPhone, Message: "Please enter a valid Kenyan phone number (e.g., 0712345678)"}
	}
	return nil
}
