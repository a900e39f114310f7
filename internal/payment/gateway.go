package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"patchnotes/internal/api"
)

// Gateway status values reported by the payments backend.
const (
	StatusPending = "PENDING"
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
)

// STKPushRequest is the initiation payload sent to the payments backend.
type STKPushRequest struct {
	PostID string `json:"postId,omitempty"`
	Phone  string `json:"phone"`
	Amount int64  `json:"amount"`
}

// InitiationReceipt correlates an accepted STK push with later status polls.
type InitiationReceipt struct {
	CheckoutRequestID string `json:"checkoutRequestId"`
}

// RawResult is the gateway's underlying result envelope as relayed by the
// backend.
type RawResult struct {
	ResultCode        int    `json:"resultCode"`
	ResultDescription string `json:"resultDescription"`
}

// StatusResponse is one observation of an in-flight payment.
type StatusResponse struct {
	Status             string     `json:"status"`
	TransactionID      string     `json:"transactionId,omitempty"`
	Amount             int64      `json:"amount,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	MpesaReceiptNumber string     `json:"mpesaReceiptNumber,omitempty"`
	RawResponse        *RawResult `json:"rawResponse,omitempty"`
}

// Gateway is the payments backend surface the coordinator drives.
type Gateway interface {
	InitiateSTKPush(ctx context.Context, req STKPushRequest) (*InitiationReceipt, error)
	CheckStatus(ctx context.Context, checkoutRequestID string) (*StatusResponse, error)
}

// HTTPGateway implements Gateway over the PatchNotes REST API.
type HTTPGateway struct {
	client *api.Client
}

// NewHTTPGateway wraps an API client as a payment gateway.
func NewHTTPGateway(client *api.Client) *HTTPGateway {
	return &HTTPGateway{client: client}
}

func (g *HTTPGateway) InitiateSTKPush(ctx context.Context, req STKPushRequest) (*InitiationReceipt, error) {
	var receipt InitiationReceipt
	if err := g.client.Post(ctx, "/payments/stkpush", req, &receipt); err != nil {
		return nil, err
	}
	if receipt.CheckoutRequestID == "" {
		return nil, fmt.Errorf("payment: initiation response missing checkout request id")
	}
	return &receipt, nil
}

func (g *HTTPGateway) CheckStatus(ctx context.Context, checkoutRequestID string) (*StatusResponse, error) {
	var status StatusResponse
	if err := g.client.Get(ctx, "/payments/"+checkoutRequestID+"/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// TestCredentials asks the backend to verify its gateway credentials.
func (g *HTTPGateway) TestCredentials(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := g.client.Get(ctx, "/payments/test-mpesa", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TestPhone asks the backend to validate a phone number against the gateway.
func (g *HTTPGateway) TestPhone(ctx context.Context, phone string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := g.client.Post(ctx, "/payments/test-phone", map[string]string{"phone": phone}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Diagnostics runs the backend's payment diagnostics, optionally against a
// test phone number.
func (g *HTTPGateway) Diagnostics(ctx context.Context, testPhone string) (json.RawMessage, error) {
	body := map[string]string{}
	if testPhone != "" {
		body["testPhone"] = testPhone
	}
	var out json.RawMessage
	if err := g.client.Post(ctx, "/payments/diagnostics", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var _ Gateway = (*HTTPGateway)(nil)
