package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/wavenotes/wavenotes-api/internal/model"
	"github.com/wavenotes/wavenotes-api/internal/repository"
	"github.com/wavenotes/wavenotes-api/shared/mailer"
)

const (
	otpDigits = 6
	otpTTL    = 10 * time.Minute
)

var (
	ErrNoPendingOTP   = errors.New("no pending otp")
	ErrInvalidOTP     = errors.New("invalid otp")
	ErrOTPExpired     = errors.New("otp has expired")
	ErrDeliveryFailed = errors.New("failed to deliver otp")
)

// OTPIssuer generates, persists, and verifies one-time passcodes. A code is
// stored on the user record together with its expiry; issuing a new code
// overwrites any outstanding one.
type OTPIssuer struct {
	userRepo repository.UserRepository
	sender   mailer.OTPSender
}

// NewOTPIssuer constructs an OTPIssuer.
func NewOTPIssuer(userRepo repository.UserRepository, sender mailer.OTPSender) *OTPIssuer {
	return &OTPIssuer{
		userRepo: userRepo,
		sender:   sender,
	}
}

// Issue generates a fresh 6-digit code, persists it with a 10 minute expiry,
// and requests delivery to the account's email. The code is persisted before
// the delivery attempt; a transient delivery failure surfaces as
// ErrDeliveryFailed without unwinding the stored challenge.
func (i *OTPIssuer) Issue(ctx context.Context, user *model.User) (string, error) {
	code, err := generateOTP()
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(otpTTL)
	if _, err := i.userRepo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{
		OTP:          &code,
		OTPExpiresAt: &expiresAt,
	}); err != nil {
		return "", err
	}

	if err := i.sender.SendOTP(ctx, user.Email, code); err != nil {
		return "", ErrDeliveryFailed
	}

	return code, nil
}

// Verify checks the submitted code against the pending challenge. On
// success the account becomes verified and the challenge is cleared, making
// the code single-use. Comparison is exact string equality so a code with
// leading zeros must match digit for digit.
func (i *OTPIssuer) Verify(ctx context.Context, user *model.User, submitted string) (*model.User, error) {
	if !user.HasPendingOTP() {
		return nil, ErrNoPendingOTP
	}

	if user.OTP != submitted {
		return nil, ErrInvalidOTP
	}

	if !user.OTPExpiresAt.After(time.Now()) {
		return nil, ErrOTPExpired
	}

	verified := true
	updated, err := i.userRepo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{
		Verified: &verified,
		ClearOTP: true,
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func generateOTP() (string, error) {
	upper := big.NewInt(1_000_000)

	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}
