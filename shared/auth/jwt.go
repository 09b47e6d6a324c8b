package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrMissingSubject = errors.New("token has no subject claim")
)

// SessionClaims is the payload carried by a session token. Tokens minted by
// this service set UserID; tokens minted by earlier releases carried the
// account identifier under "id" instead, and both forms must verify.
type SessionClaims struct {
	UserID   string `json:"userId,omitempty"`
	LegacyID string `json:"id,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Subject resolves the account identifier regardless of which claim field
// carried it.
func (c *SessionClaims) Subject() (string, error) {
	if c.UserID != "" {
		return c.UserID, nil
	}
	if c.LegacyID != "" {
		return c.LegacyID, nil
	}

	return "", ErrMissingSubject
}

// TokenAuthenticator mints and verifies HS256 session tokens.
type TokenAuthenticator struct {
	secret    []byte
	expiresIn time.Duration
}

// NewTokenAuthenticator creates a new TokenAuthenticator instance.
func NewTokenAuthenticator(secret string, expiresIn time.Duration) TokenAuthenticator {
	return TokenAuthenticator{
		secret:    []byte(secret),
		expiresIn: expiresIn,
	}
}

// Mint generates a signed session token for the given account.
func (a *TokenAuthenticator) Mint(userID, email string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiresIn)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenStr, err := token.SignedString(a.secret)
	if err != nil {
		return "", err
	}

	return tokenStr, nil
}

// Verify validates a session token and returns its claims. Structural,
// expiry, and signature failures map to distinct sentinel errors so callers
// can branch without parsing error text.
func (a *TokenAuthenticator) Verify(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return a.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenInvalid
		}
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	if _, err := claims.Subject(); err != nil {
		return nil, err
	}

	return claims, nil
}
