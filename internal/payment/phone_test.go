package payment

import (
	"errors"
	"testing"
)

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trunk zero", "0712345678", "254712345678"},
		{"already international", "254712345678", "254712345678"},
		{"plus prefix", "+254712345678", "254712345678"},
		{"spaces and dashes", "0712 345-678", "254712345678"},
		{"airtel interop prefix", "0112345678", "254112345678"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatPhone(tc.in); got != tc.want {
				t.Fatalf("FormatPhone(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestValidatePhone(t *testing.T) {
	valid := []string{"254712345678", "254112345678", "254798765432"}
	for _, phone := range valid {
		if err := ValidatePhone(phone); err != nil {
			t.Fatalf("ValidatePhone(%q) = %v, want nil", phone, err)
		}
	}

	tests := []struct {
		name    string
		phone   string
		message string
	}{
		{"required", "", "Phone number is required"},
		{"too short", "254712", "Phone number is too short"},
		{"too long", "2547123456789012", "Phone number is too long"},
		{"bad subscriber prefix", "254812345678", "Please enter a valid Kenyan phone number (e.g., 0712345678)"},
		{"wrong country code", "255712345678", "Please enter a valid Kenyan phone number (e.g., 0712345678)"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePhone(tc.phone)
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("ValidatePhone(%q) = %v, want *ValidationError", tc.phone, err)
			}
			if validation.Code != InvalidPhone {
				t.Fatalf("code = %q, want %q", validation.Code, InvalidPhone)
			}
			if validation.Message != tc.message {
				t.Fatalf("message = %q, want %q", validation.Message, tc.message)
			}
		})
	}
}

func TestFormatThenValidateRoundTrip(t *testing.T) {
	// Any trunk-prefixed Safaricom number must validate after normalization.
	inputs := []string{"0712345678", "0799999999", "0100000000"}
	for _, in := range inputs {
		normalized := FormatPhone(in)
		if err := ValidatePhone(normalized); err != nil {
			t.Fatalf("normalized %q from %q failed validation: %v", normalized, in, err)
		}
	}
}
