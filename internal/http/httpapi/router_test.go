package httpapi

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"patchnotes/internal/api"
	"patchnotes/internal/http/handlers"
	"patchnotes/internal/infra"
	"patchnotes/internal/payment"
)

// End-to-end: a tokenless coordinator against the full router. The first
// request hits 401, the client refreshes, and the payment resolves through
// the scripted scenario.
func TestCoordinatorAgainstMockGateway(t *testing.T) {
	scenario, err := handlers.ParseScenario("success_after:2")
	if err != nil {
		t.Fatalf("ParseScenario: %v", err)
	}
	cfg := &infra.Config{
		JWTSecret:       "router-test-secret",
		TokenTTL:        time.Minute,
		RateLimitPerMin: 1000,
	}
	logger := infra.NopLogger()
	app := handlers.NewApp(handlers.NewCheckoutStore(scenario), cfg, logger)
	srv := httptest.NewServer(NewRouter(app, cfg, logger))
	defer srv.Close()

	client, err := api.NewClient(api.Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("api.NewClient: %v", err)
	}
	coordinator, err := payment.NewCoordinator(payment.Options{
		Gateway: payment.NewHTTPGateway(client),
		Policy:  payment.Policy{PollInterval: 5 * time.Millisecond},
	})
	if err != nil {
		t.Fatalf("NewCoordinator: %v", err)
	}
	defer coordinator.Close()

	receipt, err := coordinator.Submit(context.Background(), "0712345678", "200", "post-1")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if receipt.CheckoutRequestID == "" {
		t.Fatalf("expected checkout request id")
	}
	if client.Tokens().Get() == "" {
		t.Fatalf("expected client to hold a refreshed token")
	}

	select {
	case <-coordinator.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("payment did not resolve, state %q", coordinator.State())
	}
	if coordinator.State() != payment.StateSuccess {
		t.Fatalf("state = %q, want success", coordinator.State())
	}
	snapshot := coordinator.Snapshot()
	if snapshot.PollAttempts != 2 {
		t.Fatalf("poll attempts = %d, want 2", snapshot.PollAttempts)
	}
	if snapshot.MpesaReceiptNumber == "" {
		t.Fatalf("expected a receipt number on success")
	}
}

func TestHealthAndRefreshRoutes(t *testing.T) {
	scenario, _ := handlers.ParseScenario("pending")
	cfg := &infra.Config{
		JWTSecret:       "router-test-secret",
		TokenTTL:        time.Minute,
		RateLimitPerMin: 1000,
	}
	logger := infra.NopLogger()
	app := handlers.NewApp(handlers.NewCheckoutStore(scenario), cfg, logger)
	srv := httptest.NewServer(NewRouter(app, cfg, logger))
	defer srv.Close()

	client, err := api.NewClient(api.Options{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("api.NewClient: %v", err)
	}

	var health map[string]string
	if err := client.Get(context.Background(), "/v1/healthz", &health); err != nil {
		t.Fatalf("healthz: %v", err)
	}
	if health["status"] != "ok" {
		t.Fatalf("healthz = %#v", health)
	}

	// Payments routes are gated; the client is expected to refresh and
	// retry on its own.
	gw := payment.NewHTTPGateway(client)
	if _, err := gw.TestCredentials(context.Background()); err != nil {
		t.Fatalf("test-mpesa through auth gate: %v", err)
	}
}
