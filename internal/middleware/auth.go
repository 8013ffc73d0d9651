package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mtlprog/tasktrack/internal/domain"
	"github.com/mtlprog/tasktrack/internal/handler/dto"
)

type contextKey string

const (
	// ContextKeyUserID is the key for storing the authenticated user ID in request context.
	ContextKeyUserID contextKey = "user_id"
)

// IdentityVerifier turns a bearer token into the ID of the user it was issued for.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// AuthMiddleware handles Bearer token authentication.
type AuthMiddleware struct {
	verifier IdentityVerifier
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(verifier IdentityVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// Authenticate validates the Bearer token and adds the user ID to request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			unauthorized(w, "invalid authorization header format")
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			unauthorized(w, "missing token")
			return
		}

		userID, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidToken) {
				unauthorized(w, "invalid token")
				return
			}
			slog.Error("failed to verify token", "error", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyUserID, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext retrieves the authenticated user ID from request context.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok || userID == "" {
		return "", domain.ErrUnauthorized
	}
	return userID, nil
}

// WithUserID returns a copy of ctx carrying userID, as Authenticate would.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

func unauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", message)
}

// writeError writes the standard error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(dto.NewErrorResponse(code, message)); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}
