package payment

import (
	"errors"
	"strings"
)

// ErrAttemptInFlight is returned by Submit while a previous attempt is still
// pending. The caller must wait for a terminal state or dismiss first.
var ErrAttemptInFlight = errors.New("payment: attempt already in flight")

// ValidationCode identifies which local input check rejected a submission.
type ValidationCode string

const (
	InvalidPhone ValidationCode = "invalid_phone"
	NotANumber   ValidationCode = "not_a_number"
	TooSmall     ValidationCode = "too_small"
	TooLarge     ValidationCode = "too_large"
)

// ValidationError is a local, synchronous rejection of user input. No network
// call is made and no attempt is created when one of these is returned.
type ValidationError struct {
	Code    ValidationCode
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// InitiationError reports that the STK push request itself was rejected. The
// coordinator reverts to idle and no polling starts.
type InitiationError struct {
	Message string
	Err     error
}

func (e *InitiationError) Error() string { return e.Message }

func (e *InitiationError) Unwrap() error { return e.Err }

// FailureReason classifies why a pending attempt ended in failure.
type FailureReason string

const (
	ReasonCancelled        FailureReason = "cancelled"
	ReasonUnregisteredLine FailureReason = "unregistered_line"
	ReasonInsufficient     FailureReason = "insufficient_balance"
	ReasonSubscriberLocked FailureReason = "subscriber_locked"
	ReasonGatewayFailure   FailureReason = "gateway_failure"
	ReasonConnectivity     FailureReason = "connectivity"
	ReasonTimeout          FailureReason = "timeout"
)

// AttemptError is the terminal failure of a pending attempt. ResultCode holds
// the gateway result code when the failure originated there, zero otherwise.
type AttemptError struct {
	Reason     FailureReason
	ResultCode int
	Message    string
}

func (e *AttemptError) Error() string { return e.Message }

// initiationMessage maps raw backend error text to the copy shown to the
// user, matching the known failure modes of the payments service.
func initiationMessage(raw string) string {
	switch {
	case raw == "":
		return "Failed to initiate payment"
	case strings.Contains(raw, "Invalid phone number"):
		return "Please enter a valid Kenyan phone number registered with M-Pesa"
	case strings.Contains(raw, "Merchant does not exist"):
		return "Payment service is temporarily unavailable. Please try again later."
	case strings.Contains(raw, "Invalid amount"):
		return "Please enter a valid amount between KES 10 and KES 70,000"
	case strings.Contains(raw, "Network error"):
		return "Network connection issue. Please check your internet and try again."
	case strings.Contains(raw, "timeout"):
		return "Request timed out. Please try again."
	}
	return raw
}
