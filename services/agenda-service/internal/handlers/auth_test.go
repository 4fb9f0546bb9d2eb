package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/plvieira/agendabarber/libs/auth"
)

func testAuthHandler() *AuthHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthHandler(nil, logger, "test-secret", time.Hour)
}

func TestRequireAdminRejectsMissingToken(t *testing.T) {
	h := testAuthHandler()
	next := h.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a token")
	}))

	rec := httptest.NewRecorder()
	next.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/agenda", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("got %d, want 401", rec.Code)
	}
}

func TestRequireAdminRejectsNonAdminRole(t *testing.T) {
	h := testAuthHandler()
	token, err := auth.SignHS256(auth.Claims{
		Sub:  "user-1",
		Role: "viewer",
		Exp:  time.Now().Add(time.Hour).Unix(),
	}, "test-secret")
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}

	next := h.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run for non-admin role")
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/agenda", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	next.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("got %d, want 403", rec.Code)
	}
}

func TestRequireAdminPassesClaims(t *testing.T) {
	h := testAuthHandler()
	token, err := auth.SignHS256(auth.Claims{
		Sub:  "admin-1",
		Role: "admin",
		Exp:  time.Now().Add(time.Hour).Unix(),
	}, "test-secret")
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}

	var got *auth.Claims
	next := h.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := AdminClaims(r.Context())
		if !ok {
			t.Fatal("claims missing from context")
		}
		got = claims
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/agenda", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	next.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d, want 200", rec.Code)
	}
	if got == nil || got.Sub != "admin-1" {
		t.Fatalf("unexpected claims: %+v", got)
	}
}
