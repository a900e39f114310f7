package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("PAYMENT_DEFINITIVE_CODES", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8080" {
		t.Fatalf("APIBaseURL mismatch: got %q", cfg.APIBaseURL)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Fatalf("PollInterval = %v, want 2s", cfg.PollInterval)
	}
	if cfg.PollMaxAttempts != 150 {
		t.Fatalf("PollMaxAttempts = %d, want 150", cfg.PollMaxAttempts)
	}
	if cfg.AmbiguousFailureLimit != 3 || cfg.TransportFailureLimit != 5 {
		t.Fatalf("failure limits = %d/%d, want 3/5", cfg.AmbiguousFailureLimit, cfg.TransportFailureLimit)
	}
	expected := []int{1032, 2029, 2001, 11}
	if len(cfg.DefinitiveCodes) != len(expected) {
		t.Fatalf("DefinitiveCodes mismatch: got %#v want %#v", cfg.DefinitiveCodes, expected)
	}
	for i, code := range expected {
		if cfg.DefinitiveCodes[i] != code {
			t.Fatalf("DefinitiveCodes[%d] = %d, want %d", i, cfg.DefinitiveCodes[i], code)
		}
	}
}

func TestLoadConfigHonorsOverrides(t *testing.T) {
	t.Setenv("PAYMENT_POLL_INTERVAL_SECONDS", "5")
	t.Setenv("PAYMENT_POLL_MAX_ATTEMPTS", "30")
	t.Setenv("PAYMENT_DEFINITIVE_CODES", "1032, 4999 ")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Fatalf("PollInterval = %v, want 5s", cfg.PollInterval)
	}
	if cfg.PollMaxAttempts != 30 {
		t.Fatalf("PollMaxAttempts = %d, want 30", cfg.PollMaxAttempts)
	}
	if len(cfg.DefinitiveCodes) != 2 || cfg.DefinitiveCodes[0] != 1032 || cfg.DefinitiveCodes[1] != 4999 {
		t.Fatalf("DefinitiveCodes mismatch: %#v", cfg.DefinitiveCodes)
	}
}

func TestLoadConfigRejectsBadCodeList(t *testing.T) {
	t.Setenv("PAYMENT_DEFINITIVE_CODES", "1032,abc")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for malformed code list")
	}
}
