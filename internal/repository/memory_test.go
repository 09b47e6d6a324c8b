package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wavenotes/wavenotes-api/internal/model"
)

func TestInMemoryUserRepository_EmailUniqueness(t *testing.T) {
	t.Parallel()

	repo := NewInMemoryUserRepository()
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, &model.User{Email: "a@b.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, &model.User{Email: "a@b.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestInMemoryUserRepository_ConcurrentCreateSameEmail(t *testing.T) {
	t.Parallel()

	repo := NewInMemoryUserRepository()
	ctx := context.Background()

	const attempts = 8
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = repo.CreateUser(ctx, &model.User{Email: "a@b.com", PasswordHash: "h"})
		}()
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
		} else {
			assert.ErrorIs(t, err, ErrDuplicateKey)
		}
	}
	assert.Equal(t, 1, created, "exactly one concurrent create may win")
}

func TestInMemoryUserRepository_SparseGoogleIDUniqueness(t *testing.T) {
	t.Parallel()

	repo := NewInMemoryUserRepository()
	ctx := context.Background()

	// Multiple accounts without a google id are fine.
	_, err := repo.CreateUser(ctx, &model.User{Email: "a@b.com", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, &model.User{Email: "c@d.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, &model.User{Email: "e@f.com", GoogleID: "sub-1"})
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, &model.User{Email: "g@h.com", GoogleID: "sub-1"})
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestInMemoryUserRepository_UpdateClearsOTP(t *testing.T) {
	t.Parallel()

	repo := NewInMemoryUserRepository()
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, &model.User{Email: "a@b.com", PasswordHash: "h"})
	require.NoError(t, err)

	code := "012345"
	expiresAt := time.Now().Add(10 * time.Minute)
	updated, err := repo.UpdateUser(ctx, user.ID.Hex(), UpdateUserParams{
		OTP:          &code,
		OTPExpiresAt: &expiresAt,
	})
	require.NoError(t, err)
	assert.True(t, updated.HasPendingOTP())

	verified := true
	updated, err = repo.UpdateUser(ctx, user.ID.Hex(), UpdateUserParams{
		Verified: &verified,
		ClearOTP: true,
	})
	require.NoError(t, err)
	assert.False(t, updated.HasPendingOTP())
	assert.True(t, updated.Verified)
}

func TestInMemoryUserRepository_UpdateUnknownUser(t *testing.T) {
	t.Parallel()

	repo := NewInMemoryUserRepository()

	verified := true
	_, err := repo.UpdateUser(context.Background(), "missing", UpdateUserParams{Verified: &verified})
	assert.ErrorIs(t, err, ErrNotFound)
}
