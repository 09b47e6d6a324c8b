package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavenotes/wavenotes-api/internal/model"
	"github.com/wavenotes/wavenotes-api/internal/repository"
)

func newTestUser(t *testing.T, repo repository.UserRepository, email string) *model.User {
	t.Helper()

	user, err := repo.CreateUser(context.Background(), &model.User{
		Email:        email,
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	return user
}

func TestGenerateOTP_Format(t *testing.T) {
	t.Parallel()

	for range 50 {
		code, err := generateOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, c := range code {
			assert.True(t, c >= '0' && c <= '9', "code %q contains non-digit", code)
		}
	}
}

func TestIssue_PersistsCodeAndSends(t *testing.T) {
	t.Parallel()

	repo := repository.NewInMemoryUserRepository()
	sender := &recorderSender{}
	issuer := NewOTPIssuer(repo, sender)
	user := newTestUser(t, repo, "a@b.com")

	code, err := issuer.Issue(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, code, 6)

	stored, err := repo.GetUser(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, code, stored.OTP)
	require.NotNil(t, stored.OTPExpiresAt)
	assert.WithinDuration(t, time.Now().Add(otpTTL), *stored.OTPExpiresAt, 5*time.Second)

	require.Equal(t, 1, sender.count())
	assert.Equal(t, sentOTP{to: "a@b.com", code: code}, sender.sends[0])
}

func TestIssue_DeliveryFailureKeepsCode(t *testing.T) {
	t.Parallel()

	repo := repository.NewInMemoryUserRepository()
	sender := &recorderSender{fail: true}
	issuer := NewOTPIssuer(repo, sender)
	user := newTestUser(t, repo, "a@b.com")

	_, err := issuer.Issue(context.Background(), user)
	assert.ErrorIs(t, err, ErrDeliveryFailed)

	stored, err := repo.GetUser(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.True(t, stored.HasPendingOTP(), "challenge should survive a transient delivery failure")
}

func TestVerify_WrongCodeLeavesChallenge(t *testing.T) {
	t.Parallel()

	repo := repository.NewInMemoryUserRepository()
	issuer := NewOTPIssuer(repo, &recorderSender{})
	user := newTestUser(t, repo, "a@b.com")

	code, err := issuer.Issue(context.Background(), user)
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	stored, err := repo.GetUser(context.Background(), user.ID.Hex())
	require.NoError(t, err)

	_, err = issuer.Verify(context.Background(), stored, wrong)
	assert.ErrorIs(t, err, ErrInvalidOTP)

	stored, err = repo.GetUser(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, code, stored.OTP, "pending code must be unchanged after a failed attempt")
	assert.False(t, stored.Verified)
}

func TestVerify_SingleUse(t *testing.T) {
	t.Parallel()

	repo := repository.NewInMemoryUserRepository()
	issuer := NewOTPIssuer(repo, &recorderSender{})
	user := newTestUser(t, repo, "a@b.com")

	code, err := issuer.Issue(context.Background(), user)
	require.NoError(t, err)

	stored, err := repo.GetUser(context.Background(), user.ID.Hex())
	require.NoError(t, err)

	verified, err := issuer.Verify(context.Background(), stored, code)
	require.NoError(t, err)
	assert.True(t, verified.Verified)
	assert.False(t, verified.HasPendingOTP())

	_, err = issuer.Verify(context.Background(), verified, code)
	assert.ErrorIs(t, err, ErrNoPendingOTP)
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	repo := repository.NewInMemoryUserRepository()
	issuer := NewOTPIssuer(repo, &recorderSender{})
	ctx := context.Background()

	user := newTestUser(t, repo, "a@b.com")
	code, err := issuer.Issue(ctx, user)
	require.NoError(t, err)

	// Just inside the window.
	expiresAt := time.Now().Add(time.Second)
	stored, err := repo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{OTPExpiresAt: &expiresAt})
	require.NoError(t, err)

	verified, err := issuer.Verify(ctx, stored, code)
	require.NoError(t, err)
	assert.True(t, verified.Verified)

	// Just past the window.
	user2 := newTestUser(t, repo, "c@d.com")
	code2, err := issuer.Issue(ctx, user2)
	require.NoError(t, err)

	expired := time.Now().Add(-time.Second)
	stored2, err := repo.UpdateUser(ctx, user2.ID.Hex(), repository.UpdateUserParams{OTPExpiresAt: &expired})
	require.NoError(t, err)

	_, err = issuer.Verify(ctx, stored2, code2)
	assert.ErrorIs(t, err, ErrOTPExpired)
}

func TestIssue_ResendInvalidatesPriorCode(t *testing.T) {
	t.Parallel()

	repo := repository.NewInMemoryUserRepository()
	sender := &recorderSender{}
	issuer := NewOTPIssuer(repo, sender)
	ctx := context.Background()

	user := newTestUser(t, repo, "a@b.com")

	first, err := issuer.Issue(ctx, user)
	require.NoError(t, err)
	second, err := issuer.Issue(ctx, user)
	require.NoError(t, err)

	require.Equal(t, 2, sender.count())

	stored, err := repo.GetUser(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, second, stored.OTP, "last-issued code wins")

	if first != second {
		_, err = issuer.Verify(ctx, stored, first)
		assert.ErrorIs(t, err, ErrInvalidOTP)
	}

	verified, err := issuer.Verify(ctx, stored, second)
	require.NoError(t, err)
	assert.True(t, verified.Verified)
}
