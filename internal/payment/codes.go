package payment

// Gateway result codes treated as definitive: polling stops on the first
// occurrence instead of waiting out the ambiguous-failure debounce. The set is
// an external contract of the M-Pesa gateway and may be overridden through
// configuration.
const (
	codeUserCancelled    = 1032
	codeUnregisteredLine = 2029
	codeInsufficient     = 2001
	codeSubscriberLocked = 11
)

// ResultCodeTable maps a definitive gateway result code to the failure it
// represents. Codes absent from the table are ambiguous.
type ResultCodeTable map[int]DefinitiveFailure

// DefinitiveFailure carries the classification and user-facing copy for a
// known terminal result code.
type DefinitiveFailure struct {
	Reason  FailureReason
	Message string
}

// DefaultDefinitiveCodes returns the built-in definitive code set.
func DefaultDefinitiveCodes() ResultCodeTable {
	return ResultCodeTable{
		codeUserCancelled: {
			Reason:  ReasonCancelled,
			Message: "Payment was cancelled by user. Please try again.",
		},
		codeUnregisteredLine: {
			Reason:  ReasonUnregisteredLine,
			Message: "Phone number not registered with M-Pesa or business account issue. Please check your M-Pesa registration and try again.",
		},
		codeInsufficient: {
			Reason:  ReasonInsufficient,
			Message: "Insufficient balance. Please top up your M-Pesa account and try again.",
		},
		codeSubscriberLocked: {
			Reason:  ReasonSubscriberLocked,
			Message: "Unable to process payment. Please ensure your M-Pesa service is active and try again.",
		},
	}
}

// DefinitiveCodesFor builds a table for an operator-supplied code list. Codes
// with built-in copy keep it; anything else gets a generic gateway failure.
func DefinitiveCodesFor(codes []int) ResultCodeTable {
	defaults := DefaultDefinitiveCodes()
	table := make(ResultCodeTable, len(codes))
	for _, code := range codes {
		if known, ok := defaults[code]; ok {
			table[code] = known
			continue
		}
		table[code] = DefinitiveFailure{
			Reason:  ReasonGatewayFailure,
			Message: "Payment failed. Please try again or contact support.",
		}
	}
	return table
}
