package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HS256Verifier checks tokens signed with a shared secret
type HS256Verifier struct {
	secret []byte
	issuer string
}

// NewHS256Verifier verifies tokens signed with secret. A non-empty issuer
// must match the iss claim.
func NewHS256Verifier(secret, issuer string) *HS256Verifier {
	return &HS256Verifier{secret: []byte(secret), issuer: issuer}
}

// visitClaims carries the owner of pings and visits in uid, or in sub for
// tokens minted by generic issuers.
type visitClaims struct {
	UserID string `json:"uid,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (c *visitClaims) user() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// Verify parses token and returns the caller it belongs to
func (v *HS256Verifier) Verify(token string) (Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &visitClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Principal{}, fmt.Errorf("%w: %w", ErrTokenExpired, err)
	case err != nil:
		return Principal{}, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	userID := claims.user()
	if userID == "" {
		return Principal{}, fmt.Errorf("%w: %w", ErrTokenInvalid, ErrNoUser)
	}
	return Principal{
		UserID:    userID,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// SignHS256 mints an access token for userID. Used by tests and local tooling.
func SignHS256(secret, issuer, userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := visitClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token for %s: %w", userID, err)
	}
	return signed, nil
}
