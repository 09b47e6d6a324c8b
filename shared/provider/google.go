// Package provider contains adapters for external identity providers.
package provider

import (
	"context"
	"errors"
	"net/http"
	"time"

	"google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// ErrInvalidAssertion is returned when a federated credential fails
// verification: bad signature, wrong audience, or no usable email claim.
var ErrInvalidAssertion = errors.New("invalid identity assertion")

// GoogleIdentity is the trusted result of verifying a Google ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
}

// GoogleVerifier validates a Google ID token and extracts a stable subject
// id and verified email. The concrete verifier calls Google's tokeninfo
// endpoint; tests substitute a stub.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

const verifyTimeout = 10 * time.Second

type googleOAuthVerifier struct {
	clientID string
}

// NewGoogleVerifier creates a GoogleVerifier bound to the given OAuth client
// identifier. Tokens minted for any other audience are rejected.
func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleOAuthVerifier{clientID: clientID}
}

func (v *googleOAuthVerifier) Verify(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	oauth2Service, err := oauth2.NewService(ctx, option.WithHTTPClient(&http.Client{Timeout: verifyTimeout}))
	if err != nil {
		return nil, err
	}

	tokenInfoCall := oauth2Service.Tokeninfo()
	tokenInfoCall.IdToken(idToken)
	tokenInfo, err := tokenInfoCall.Context(ctx).Do()
	if err != nil {
		return nil, ErrInvalidAssertion
	}

	if tokenInfo.Audience != v.clientID {
		return nil, ErrInvalidAssertion
	}

	if tokenInfo.Email == "" || !tokenInfo.VerifiedEmail {
		return nil, ErrInvalidAssertion
	}

	return &GoogleIdentity{
		Subject: tokenInfo.UserId,
		Email:   tokenInfo.Email,
	}, nil
}
