package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"patchnotes/internal/middleware"
)

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// AuthRefresh mints a short-lived access token. The real backend exchanges a
// refresh cookie; the mock issues one on first contact so an expiring token
// exercises the client's 401-then-retry path.
func (a *App) AuthRefresh(w http.ResponseWriter, r *http.Request) {
	subject := "donor"
	if cookie, err := r.Cookie("refreshToken"); err == nil && cookie.Value != "" {
		subject = cookie.Value
	} else {
		subject = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     "refreshToken",
			Value:    subject,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	token, err := middleware.SignJWT(a.JWTSecret, middleware.TokenClaims{
		Sub:      subject,
		Exp:      time.Now().Add(a.TokenTTL).Unix(),
		Issuer:   "patchnotes-mockgateway",
		Audience: "patchnotes-clients",
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("mockgateway: sign token failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}
	a.json(w, http.StatusOK, refreshResponse{AccessToken: token})
}
