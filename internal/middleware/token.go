package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mtlprog/tasktrack/internal/domain"
)

// MinSecretLength is the shortest accepted HMAC signing secret.
const MinSecretLength = 32

const clockSkew = time.Minute

// JWTVerifier verifies HS256 tokens whose subject is a user UUID.
type JWTVerifier struct {
	secret []byte
	now    func() time.Time
}

// NewJWTVerifier creates a JWTVerifier for the shared secret.
func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	}
	return &JWTVerifier{secret: []byte(secret), now: time.Now}, nil
}

// Verify returns the user ID in the token subject.
// Any parse, signature, expiry or subject problem is reported as domain.ErrInvalidToken.
func (v *JWTVerifier) Verify(_ context.Context, token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) {
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", fmt.Errorf("%w: subject is not a user id", domain.ErrInvalidToken)
	}

	return userID.String(), nil
}

// IssueToken signs an HS256 token for userID valid for ttl.
// Tokens are normally minted by the identity provider; this serves the CLI and tests.
func IssueToken(secret, userID string, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) < MinSecretLength {
		return "", fmt.Errorf("jwt secret must be at least %d characters", MinSecretLength)
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return "", errors.New("user id must be a valid UUID")
	}

	claims := jwt.RegisteredClaims{
		Subject:   id.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
