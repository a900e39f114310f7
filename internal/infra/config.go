package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv     string
	Port       string
	APIBaseURL string

	// Polling policy for the payment coordinator.
	PollInterval          time.Duration
	PollMaxAttempts       int
	AmbiguousFailureLimit int
	TransportFailureLimit int
	SuccessDismissDelay   time.Duration
	DefinitiveCodes       []int

	// Outbound HTTP.
	RequestTimeout time.Duration

	// Mock gateway.
	JWTSecret        string
	TokenTTL         time.Duration
	MockScenario     string
	RateLimitPerMin  int
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:     getEnv("APP_ENV", "development"),
		Port:       getEnv("PORT", "8080"),
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),

		PollInterval:          time.Second * time.Duration(getEnvInt("PAYMENT_POLL_INTERVAL_SECONDS", 2)),
		PollMaxAttempts:       getEnvInt("PAYMENT_POLL_MAX_ATTEMPTS", 150),
		AmbiguousFailureLimit: getEnvInt("PAYMENT_AMBIGUOUS_FAILURE_LIMIT", 3),
		TransportFailureLimit: getEnvInt("PAYMENT_TRANSPORT_FAILURE_LIMIT", 5),
		SuccessDismissDelay:   time.Second * time.Duration(getEnvInt("PAYMENT_SUCCESS_DISMISS_SECONDS", 3)),

		RequestTimeout: time.Second * time.Duration(getEnvInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30)),

		JWTSecret:        getEnv("JWT_SECRET", "patchnotes-dev"),
		TokenTTL:         time.Second * time.Duration(getEnvInt("TOKEN_TTL_SECONDS", 900)),
		MockScenario:     getEnv("MOCK_SCENARIO", "success_after:3"),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	codes, err := parseCodeList(getEnv("PAYMENT_DEFINITIVE_CODES", "1032,2029,2001,11"))
	if err != nil {
		return nil, err
	}
	cfg.DefinitiveCodes = codes

	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("PAYMENT_POLL_INTERVAL_SECONDS must be positive")
	}
	if cfg.PollMaxAttempts <= 0 {
		return nil, fmt.Errorf("PAYMENT_POLL_MAX_ATTEMPTS must be positive")
	}

	return cfg, nil
}

func parseCodeList(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	codes := make([]int, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		code, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil, fmt.Errorf("PAYMENT_DEFINITIVE_CODES: invalid code %q", trimmed)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
