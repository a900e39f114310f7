package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"patchnotes/internal/payment"
)

type stkPushRequest struct {
	PostID string `json:"postId"`
	Phone  string `json:"phone"`
	Amount int64  `json:"amount"`
}

func (a *App) PaymentsSTKPush(w http.ResponseWriter, r *http.Request) {
	var req stkPushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	phone := payment.FormatPhone(req.Phone)
	if err := payment.ValidatePhone(phone); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "Invalid phone number")
		return
	}
	if req.Amount < payment.MinAmount || req.Amount > payment.MaxAmount {
		a.error(w, http.StatusBadRequest, "bad_request", "Invalid amount")
		return
	}
	checkout := a.Store.Create(phone, req.Amount, req.PostID)
	a.Logger.Info().
		Str("checkout_request_id", checkout.CheckoutRequestID).
		Int64("amount", req.Amount).
		Msg("mockgateway: stk push accepted")
	a.json(w, http.StatusOK, map[string]any{
		"checkoutRequestId": checkout.CheckoutRequestID,
	})
}

func (a *App) PaymentsStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "checkoutRequestID")
	verdict, checkout, ok := a.Store.Poll(id)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "unknown checkout request")
		return
	}

	resp := map[string]any{"status": verdict.Status}
	switch verdict.Status {
	case "SUCCESS":
		resp["transactionId"] = checkout.CheckoutRequestID
		resp["amount"] = checkout.Amount
		resp["phone"] = checkout.Phone
		resp["mpesaReceiptNumber"] = receiptNumber()
		resp["rawResponse"] = map[string]any{
			"resultCode":        verdict.ResultCode,
			"resultDescription": verdict.ResultDescription,
		}
	case "FAILED":
		resp["rawResponse"] = map[string]any{
			"resultCode":        verdict.ResultCode,
			"resultDescription": verdict.ResultDescription,
		}
	}
	a.json(w, http.StatusOK, resp)
}

func (a *App) PaymentsTestMpesa(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"environment": "mock",
		"shortcode":   "174379",
	})
}

func (a *App) PaymentsTestPhone(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	normalized := payment.FormatPhone(req.Phone)
	if err := payment.ValidatePhone(normalized); err != nil {
		a.json(w, http.StatusOK, map[string]any{"valid": false, "reason": err.Error()})
		return
	}
	a.json(w, http.StatusOK, map[string]any{"valid": true, "normalized": normalized})
}

func (a *App) PaymentsDiagnostics(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TestPhone string `json:"testPhone"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	checks := []map[string]any{
		{"name": "credentials", "ok": true},
		{"name": "shortcode", "ok": true},
	}
	if req.TestPhone != "" {
		normalized := payment.FormatPhone(req.TestPhone)
		checks = append(checks, map[string]any{
			"name": "test_phone",
			"ok":   payment.ValidatePhone(normalized) == nil,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"environment": "mock", "checks": checks})
}
