package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSignAndVerifyJWT(t *testing.T) {
	claims := TokenClaims{
		Sub:      "donor-1",
		Exp:      time.Now().Add(time.Minute).Unix(),
		Issuer:   "patchnotes-mockgateway",
		Audience: "patchnotes-clients",
	}
	token, err := SignJWT("secret", claims)
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	got, err := VerifyJWT("secret", token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if got.Sub != claims.Sub || got.Issuer != claims.Issuer {
		t.Fatalf("claims = %+v, want %+v", got, claims)
	}

	if _, err := VerifyJWT("other-secret", token); err == nil {
		t.Fatalf("expected verification failure with wrong secret")
	}
}

func TestVerifyJWTRejectsExpired(t *testing.T) {
	token, err := SignJWT("secret", TokenClaims{
		Sub: "donor-1",
		Exp: time.Now().Add(-time.Minute).Unix(),
	})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	if _, err := VerifyJWT("secret", token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestRequireAuth(t *testing.T) {
	var gotSubject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := RequireAuth("secret")(next)

	req := httptest.NewRequest("GET", "/payments/test-mpesa", nil)
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", rr.Code)
	}

	token, err := SignJWT("secret", TokenClaims{Sub: "donor-7", Exp: time.Now().Add(time.Minute).Unix()})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	req = httptest.NewRequest("GET", "/payments/test-mpesa", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	protected.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want 200", rr.Code)
	}
	if gotSubject != "donor-7" {
		t.Fatalf("subject = %q, want donor-7", gotSubject)
	}
}
