package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/plvieira/agendabarber/libs/auth"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	admins   *storage.AdminRepository
	logger   *slog.Logger
	secret   string
	tokenTTL time.Duration
}

func NewAuthHandler(admins *storage.AdminRepository, logger *slog.Logger, secret string, tokenTTL time.Duration) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &AuthHandler{admins: admins, logger: logger, secret: secret, tokenTTL: tokenTTL}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		http.Error(w, "missing credentials", http.StatusBadRequest)
		return
	}

	user, err := h.admins.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.logger.Error("admin lookup failed", "err", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	nowUnix := time.Now()
	expires := nowUnix.Add(h.tokenTTL)
	token, err := auth.SignHS256(auth.Claims{
		Sub:  user.ID,
		Name: user.Email,
		Role: user.Role,
		Iat:  nowUnix.Unix(),
		Exp:  expires.Unix(),
	}, h.secret)
	if err != nil {
		h.logger.Error("token signing failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expires.UTC().Format(time.RFC3339),
	})
}

type claimsKey struct{}

// RequireAdmin verifies the bearer token and stashes its claims in the
// request context.
func (h *AuthHandler) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		claims, err := auth.ParseAndVerifyHS256(token, h.secret)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		if claims.Role != "admin" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminClaims returns the verified claims placed by RequireAdmin, if any.
func AdminClaims(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}
