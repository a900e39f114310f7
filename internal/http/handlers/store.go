package handlers

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Checkout is one simulated STK push tracked by the mock gateway.
type Checkout struct {
	CheckoutRequestID string
	Phone             string
	Amount            int64
	PostID            string
	Polls             int
	CreatedAt         time.Time
}

// CheckoutStore keeps simulated checkouts in memory and resolves each status
// poll through the configured scenario.
type CheckoutStore struct {
	scenario Scenario

	mu        sync.Mutex
	checkouts map[string]*Checkout
}

// NewCheckoutStore builds an empty store driven by the given scenario.
func NewCheckoutStore(scenario Scenario) *CheckoutStore {
	return &CheckoutStore{
		scenario:  scenario,
		checkouts: make(map[string]*Checkout),
	}
}

// Create registers a new checkout and returns its request id, shaped like the
// gateway's "ws_CO_..." correlation keys.
func (s *CheckoutStore) Create(phone string, amount int64, postID string) *Checkout {
	id := fmt.Sprintf("ws_CO_%s_%s",
		time.Now().Format("20060102150405"),
		strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8]))
	checkout := &Checkout{
		CheckoutRequestID: id,
		Phone:             phone,
		Amount:            amount,
		PostID:            postID,
		CreatedAt:         time.Now(),
	}
	s.mu.Lock()
	s.checkouts[id] = checkout
	s.mu.Unlock()
	return checkout
}

// Poll records one status observation for the checkout and returns the
// scenario's verdict. ok is false for unknown ids.
func (s *CheckoutStore) Poll(checkoutRequestID string) (Verdict, *Checkout, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	checkout, ok := s.checkouts[checkoutRequestID]
	if !ok {
		return Verdict{}, nil, false
	}
	checkout.Polls++
	return s.scenario.Verdict(checkout.Polls), checkout, true
}

// receiptNumber fabricates an M-Pesa style receipt id.
func receiptNumber() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:10]
}
