// Package handlers implements the mock payments gateway: a local stand-in
// for the PatchNotes backend used to exercise the donation client end to end.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"patchnotes/internal/infra"
)

// App is the handler container for the mock gateway.
type App struct {
	Logger    infra.Logger
	Store     *CheckoutStore
	JWTSecret string
	TokenTTL  time.Duration
}

// NewApp wires the mock gateway handlers.
func NewApp(store *CheckoutStore, cfg *infra.Config, logger infra.Logger) *App {
	return &App{
		Logger:    logger,
		Store:     store,
		JWTSecret: cfg.JWTSecret,
		TokenTTL:  cfg.TokenTTL,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]any{"code": errCode, "message": message},
	})
}
