package handlers

import (
	"fmt"
	"strconv"
	"strings"
)

// Scenario scripts how the mock gateway resolves a checkout across polls.
// Supported forms:
//
//	success_after:N  PENDING for N-1 polls, then SUCCESS
//	cancel_after:N   PENDING for N-1 polls, then FAILED 1032
//	insufficient     FAILED 2001 on the first poll
//	unregistered     FAILED 2029 on the first poll
//	locked           FAILED 11 on the first poll
//	ambiguous        FAILED with a non-definitive code on every poll
//	pending          PENDING forever
type Scenario struct {
	kind  string
	after int
}

// Verdict is the scenario's answer for one poll.
type Verdict struct {
	Status            string
	ResultCode        int
	ResultDescription string
}

// ParseScenario parses a MOCK_SCENARIO value.
func ParseScenario(raw string) (Scenario, error) {
	kind, arg, hasArg := strings.Cut(strings.TrimSpace(raw), ":")
	switch kind {
	case "success_after", "cancel_after":
		after := 1
		if hasArg {
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 {
				return Scenario{}, fmt.Errorf("scenario %q: poll count must be a positive integer", raw)
			}
			after = n
		}
		return Scenario{kind: kind, after: after}, nil
	case "insufficient", "unregistered", "locked", "ambiguous", "pending":
		if hasArg {
			return Scenario{}, fmt.Errorf("scenario %q takes no argument", kind)
		}
		return Scenario{kind: kind}, nil
	}
	return Scenario{}, fmt.Errorf("unknown scenario %q", raw)
}

// Verdict resolves the scenario for the given 1-based poll number.
func (s Scenario) Verdict(poll int) Verdict {
	switch s.kind {
	case "success_after":
		if poll >= s.after {
			return Verdict{Status: "SUCCESS", ResultCode: 0, ResultDescription: "The service request is processed successfully."}
		}
	case "cancel_after":
		if poll >= s.after {
			return Verdict{Status: "FAILED", ResultCode: 1032, ResultDescription: "Request cancelled by user"}
		}
	case "insufficient":
		return Verdict{Status: "FAILED", ResultCode: 2001, ResultDescription: "The initiator information is invalid."}
	case "unregistered":
		return Verdict{Status: "FAILED", ResultCode: 2029, ResultDescription: "Push request failed: unregistered subscriber"}
	case "locked":
		return Verdict{Status: "FAILED", ResultCode: 11, ResultDescription: "Unable to lock subscriber, a transaction is already in process"}
	case "ambiguous":
		return Verdict{Status: "FAILED", ResultCode: 9999, ResultDescription: "Request processing error"}
	case "pending":
		return Verdict{Status: "PENDING"}
	}
	return Verdict{Status: "PENDING"}
}
