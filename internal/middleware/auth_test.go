package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtlprog/tasktrack/internal/domain"
	"github.com/mtlprog/tasktrack/internal/middleware"
)

const (
	testSecret = "0123456789abcdef0123456789abcdef"
	testUserID = "00000000-0000-0000-0000-000000000011"
)

func newAuthenticatedHandler(t *testing.T) (http.Handler, *string) {
	t.Helper()

	verifier, err := middleware.NewJWTVerifier(testSecret)
	require.NoError(t, err)

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := middleware.GetUserIDFromContext(r.Context())
		require.NoError(t, err)
		seen = userID
		w.WriteHeader(http.StatusNoContent)
	})

	return middleware.NewAuthMiddleware(verifier).Authenticate(next), &seen
}

func TestAuthenticate_ValidToken(t *testing.T) {
	h, seen := newAuthenticatedHandler(t)

	token, err := middleware.IssueToken(testSecret, testUserID, time.Hour, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, testUserID, *seen)
}

func TestAuthenticate_Rejections(t *testing.T) {
	expired, err := middleware.IssueToken(testSecret, testUserID, time.Hour, time.Now().Add(-3*time.Hour))
	require.NoError(t, err)

	otherSecret, err := middleware.IssueToken("ffffffffffffffffffffffffffffffff", testUserID, time.Hour, time.Now())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
		{"wrong secret", "Bearer " + otherSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, seen := newAuthenticatedHandler(t)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
			assert.Empty(t, *seen)
		})
	}
}

func TestJWTVerifier_ShortSecret(t *testing.T) {
	_, err := middleware.NewJWTVerifier("short")
	assert.Error(t, err)
}

func TestIssueToken_RejectsNonUUID(t *testing.T) {
	_, err := middleware.IssueToken(testSecret, "alice", time.Hour, time.Now())
	assert.Error(t, err)
}

func TestGetUserIDFromContext_Missing(t *testing.T) {
	_, err := middleware.GetUserIDFromContext(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	userID, err := middleware.GetUserIDFromContext(middleware.WithUserID(context.Background(), testUserID))
	require.NoError(t, err)
	assert.Equal(t, testUserID, userID)
}
