package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"patchnotes/internal/infra"
	"patchnotes/internal/notify"
)

// State is the lifecycle phase of the current donation attempt.
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
	StateSuccess State = "success"
	StateFailed  State = "failed"
)

// Policy carries the tunables of the polling loop. Zero values fall back to
// the defaults the web client shipped with.
type Policy struct {
	// PollInterval is the cadence of status polls while pending.
	PollInterval time.Duration
	// MaxPollAttempts caps the number of polls before the attempt is timed
	// out client-side.
	MaxPollAttempts int
	// AmbiguousFailureLimit is how many consecutive non-definitive FAILED
	// responses are absorbed before the attempt fails.
	AmbiguousFailureLimit int
	// TransportFailureLimit is how many status-poll transport errors are
	// tolerated before the attempt fails with a connectivity message.
	TransportFailureLimit int
	// SuccessDismissDelay is how long the host should keep a successful
	// attempt on screen before tearing down.
	SuccessDismissDelay time.Duration
	// DefinitiveCodes maps gateway result codes that end the attempt on
	// first sight. Nil means the built-in set.
	DefinitiveCodes ResultCodeTable
}

func (p Policy) withDefaults() Policy {
	if p.PollInterval <= 0 {
		p.PollInterval = 2 * time.Second
	}
	if p.MaxPollAttempts <= 0 {
		p.MaxPollAttempts = 150
	}
	if p.AmbiguousFailureLimit <= 0 {
		p.AmbiguousFailureLimit = 3
	}
	if p.TransportFailureLimit <= 0 {
		p.TransportFailureLimit = 5
	}
	if p.SuccessDismissDelay <= 0 {
		p.SuccessDismissDelay = 3 * time.Second
	}
	if p.DefinitiveCodes == nil {
		p.DefinitiveCodes = DefaultDefinitiveCodes()
	}
	return p
}

// Attempt is a snapshot of the current donation attempt.
type Attempt struct {
	Phone              string
	Amount             int64
	PostID             string
	CheckoutRequestID  string
	PollAttempts       int
	MpesaReceiptNumber string
	Failure            *AttemptError
}

// Options configures a Coordinator.
type Options struct {
	Gateway  Gateway
	Notifier notify.Notifier
	Logger   *infra.Logger
	Policy   Policy
}

// Coordinator owns the lifecycle of one donation attempt: it validates input,
// issues the STK push, then drives a fixed-cadence polling loop until the
// gateway reports a terminal status, the attempt cap is reached, or the host
// dismisses it. All state transitions are serialized behind one mutex and an
// attempt generation number makes late poll responses harmless.
type Coordinator struct {
	gateway  Gateway
	notifier notify.Notifier
	logger   infra.Logger
	policy   Policy

	mu         sync.Mutex
	state      State
	attempt    *Attempt
	generation int

	ambiguousFailures int
	transportFailures int

	cancelPoll context.CancelFunc
	loopDone   chan struct{}
	terminal   chan struct{}
}

// NewCoordinator constructs an idle coordinator.
func NewCoordinator(opts Options) (*Coordinator, error) {
	if opts.Gateway == nil {
		return nil, errors.New("payment: gateway is required")
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.Discard{}
	}
	var logger infra.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	} else {
		logger = infra.NopLogger()
	}
	return &Coordinator{
		gateway:  opts.Gateway,
		notifier: notifier,
		logger:   logger,
		policy:   opts.Policy.withDefaults(),
		state:    StateIdle,
	}, nil
}

// State returns the current lifecycle phase.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the current attempt, or nil when idle.
func (c *Coordinator) Snapshot() *Attempt {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attempt == nil {
		return nil
	}
	snapshot := *c.attempt
	if c.attempt.Failure != nil {
		failure := *c.attempt.Failure
		snapshot.Failure = &failure
	}
	return &snapshot
}

// Policy returns the effective polling policy.
func (c *Coordinator) Policy() Policy { return c.policy }

// Done reports terminal resolution of the attempt started by the last Submit.
// The channel is closed when the attempt reaches Success or Failed. It is nil
// before the first successful Submit.
func (c *Coordinator) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.terminal
}

// Submit validates the donation input, issues the STK push and, on success,
// transitions to pending and starts the polling loop. Validation failures are
// returned as *ValidationError and make no network call; a rejected initiation
// is returned as *InitiationError and leaves the coordinator idle.
func (c *Coordinator) Submit(ctx context.Context, rawPhone, rawAmount, postID string) (*InitiationReceipt, error) {
	c.mu.Lock()
	if c.state == StatePending {
		c.mu.Unlock()
		return nil, ErrAttemptInFlight
	}
	// A fresh submit after a terminal attempt starts from a clean slate.
	c.resetLocked()
	c.mu.Unlock()

	phone := FormatPhone(rawPhone)
	if err := ValidatePhone(phone); err != nil {
		c.notifier.Error(err.Error())
		return nil, err
	}
	amount, err := ParseAmount(rawAmount)
	if err != nil {
		c.notifier.Error(err.Error())
		return nil, err
	}

	receipt, err := c.gateway.InitiateSTKPush(ctx, STKPushRequest{
		PostID: postID,
		Phone:  phone,
		Amount: amount,
	})
	if err != nil {
		initiationsTotal.WithLabelValues("rejected").Inc()
		c.logger.Error().Err(err).Str("phone", phone).Msg("payment: stk push rejected")
		initErr := &InitiationError{Message: initiationMessage(err.Error()), Err: err}
		c.notifier.Error(initErr.Message)
		return nil, initErr
	}
	initiationsTotal.WithLabelValues("accepted").Inc()

	c.mu.Lock()
	c.state = StatePending
	c.generation++
	c.attempt = &Attempt{
		Phone:             phone,
		Amount:            amount,
		PostID:            postID,
		CheckoutRequestID: receipt.CheckoutRequestID,
	}
	c.ambiguousFailures = 0
	c.transportFailures = 0
	c.terminal = make(chan struct{})
	pollCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancelPoll = cancel
	c.loopDone = make(chan struct{})
	gen := c.generation
	done := c.loopDone
	c.mu.Unlock()

	c.logger.Info().
		Str("checkout_request_id", receipt.CheckoutRequestID).
		Int64("amount", amount).
		Msg("payment: stk push accepted, polling for status")
	c.notifier.Success(fmt.Sprintf("STK push sent to %s! Check your phone to complete payment.", phone))

	go c.pollLoop(pollCtx, gen, receipt.CheckoutRequestID, done)
	return receipt, nil
}

// Close dismisses the host surface. A pending attempt stops polling
// deterministically; the in-flight payment is not cancelled remotely and may
// still complete on the provider's side. Close is safe to call in any state.
func (c *Coordinator) Close() {
	c.mu.Lock()
	cancel := c.cancelPoll
	done := c.loopDone
	c.cancelPoll = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Reset discards the current attempt and returns to idle so the user can
// retry with fresh input. Any leftover polling is torn down first.
func (c *Coordinator) Reset() {
	c.Close()
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
}

// resetLocked clears attempt state. Callers hold c.mu and must have stopped
// the polling loop for any pending attempt.
func (c *Coordinator) resetLocked() {
	c.state = StateIdle
	c.attempt = nil
	c.generation++
	c.ambiguousFailures = 0
	c.transportFailures = 0
	c.terminal = nil
	c.loopDone = nil
}

func (c *Coordinator) pollLoop(ctx context.Context, gen int, checkoutRequestID string, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.policy.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			attemptNo, ok := c.beginPoll(gen)
			if !ok {
				return
			}
			pollsTotal.Inc()
			status, err := c.gateway.CheckStatus(ctx, checkoutRequestID)
			if ctx.Err() != nil {
				return
			}
			c.logger.Debug().
				Int("attempt", attemptNo).
				Int("max_attempts", c.policy.MaxPollAttempts).
				Str("checkout_request_id", checkoutRequestID).
				Msg("payment: status poll")
			if terminal := c.applyPoll(gen, status, err); terminal {
				return
			}
		}
	}
}

// beginPoll increments the poll counter for the given attempt generation and
// reports whether polling should proceed.
func (c *Coordinator) beginPoll(gen int) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.state != StatePending || c.attempt == nil {
		return 0, false
	}
	c.attempt.PollAttempts++
	return c.attempt.PollAttempts, true
}

// applyPoll classifies one poll result and applies the resulting transition.
// It returns true when the attempt has reached a terminal state and the loop
// must stop. Results for a superseded or already-terminal attempt are no-ops.
func (c *Coordinator) applyPoll(gen int, status *StatusResponse, pollErr error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation || c.state != StatePending || c.attempt == nil {
		// Stale response: the attempt already resolved or was replaced.
		return true
	}

	if pollErr != nil {
		c.transportFailures++
		c.logger.Warn().Err(pollErr).
			Int("transport_failures", c.transportFailures).
			Msg("payment: status poll failed")
		if c.transportFailures >= c.policy.TransportFailureLimit ||
			c.attempt.PollAttempts >= c.policy.MaxPollAttempts {
			c.failLocked(&AttemptError{
				Reason:  ReasonConnectivity,
				Message: "Unable to check payment status. Please try again.",
			})
			return true
		}
		return false
	}

	switch status.Status {
	case StatusSuccess:
		c.succeedLocked(status)
		return true
	case StatusFailed:
		code, description := 0, ""
		if status.RawResponse != nil {
			code = status.RawResponse.ResultCode
			description = status.RawResponse.ResultDescription
		}
		if definitive, ok := c.policy.DefinitiveCodes[code]; ok {
			c.failLocked(&AttemptError{
				Reason:     definitive.Reason,
				ResultCode: code,
				Message:    definitive.Message,
			})
			return true
		}
		c.ambiguousFailures++
		if c.ambiguousFailures >= c.policy.AmbiguousFailureLimit {
			if description == "" {
				description = "Unknown error"
			}
			c.failLocked(&AttemptError{
				Reason:     ReasonGatewayFailure,
				ResultCode: code,
				Message:    fmt.Sprintf("Payment failed: %s", description),
			})
			return true
		}
	case StatusPending:
		// A healthy pending read means the gateway is still tracking the
		// request, so earlier ambiguous failures do not accumulate.
		c.ambiguousFailures = 0
	default:
		c.logger.Warn().Str("status", status.Status).Msg("payment: unknown status value")
	}

	if c.attempt.PollAttempts >= c.policy.MaxPollAttempts {
		c.failLocked(&AttemptError{
			Reason:  ReasonTimeout,
			Message: "Payment timeout. Please check your M-Pesa messages or try again.",
		})
		return true
	}
	return false
}

// succeedLocked moves a pending attempt to Success. Callers hold c.mu.
func (c *Coordinator) succeedLocked(status *StatusResponse) {
	c.state = StateSuccess
	c.attempt.MpesaReceiptNumber = status.MpesaReceiptNumber
	outcomesTotal.WithLabelValues(string(StateSuccess), "completed").Inc()
	c.logger.Info().
		Str("transaction_id", status.TransactionID).
		Str("receipt", status.MpesaReceiptNumber).
		Msg("payment: completed")
	receipt := status.MpesaReceiptNumber
	if receipt == "" {
		receipt = "N/A"
	}
	c.notifier.Success(fmt.Sprintf("Payment successful! Receipt: %s", receipt))
	c.closeTerminalLocked()
}

// failLocked moves a pending attempt to Failed. Callers hold c.mu.
func (c *Coordinator) failLocked(failure *AttemptError) {
	c.state = StateFailed
	c.attempt.Failure = failure
	outcomesTotal.WithLabelValues(string(StateFailed), string(failure.Reason)).Inc()
	c.logger.Info().
		Str("reason", string(failure.Reason)).
		Int("result_code", failure.ResultCode).
		Int("poll_attempts", c.attempt.PollAttempts).
		Msg("payment: failed")
	c.notifier.Error(failure.Message)
	c.closeTerminalLocked()
}

func (c *Coordinator) closeTerminalLocked() {
	if c.terminal != nil {
		close(c.terminal)
	}
}
