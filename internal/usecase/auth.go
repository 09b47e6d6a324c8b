package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wavenotes/wavenotes-api/internal/model"
	"github.com/wavenotes/wavenotes-api/internal/repository"
	"github.com/wavenotes/wavenotes-api/shared/auth"
	"github.com/wavenotes/wavenotes-api/shared/provider"
	"github.com/wavenotes/wavenotes-api/shared/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*model.User, error)
	SignIn(ctx context.Context, email string) (*model.User, error)
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (*AuthSession, error)
	GoogleVerify(ctx context.Context, credential string) (*AuthSession, error)
}

// RegisterParams defines the parameters for password registration.
type RegisterParams struct {
	Email       string
	Password    string
	Name        string
	DateOfBirth time.Time
}

// AuthSession is the result of a completed authentication: a signed session
// token plus the authenticated account.
type AuthSession struct {
	Token string
	User  *model.User
}

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidAssertion  = errors.New("invalid google credential")
	ErrConflict          = errors.New("conflicting account state")
)

type authUsecase struct {
	userRepo  repository.UserRepository
	otpIssuer *OTPIssuer
	verifier  provider.GoogleVerifier
	tokenAuth auth.TokenAuthenticator
}

// NewAuthUsecase constructs an AuthUsecase from its collaborators.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	otpIssuer *OTPIssuer,
	verifier provider.GoogleVerifier,
	tokenAuth auth.TokenAuthenticator,
) AuthUsecase {
	return &authUsecase{
		userRepo:  userRepo,
		otpIssuer: otpIssuer,
		verifier:  verifier,
		tokenAuth: tokenAuth,
	}
}

// Register creates an unverified password account and issues an OTP
// challenge to its email. A uniqueness violation on email, whether found
// up front or raced, maps to ErrUserAlreadyExists.
func (u *authUsecase) Register(ctx context.Context, params RegisterParams) (*model.User, error) {
	email := normalizeEmail(params.Email)

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	dob := params.DateOfBirth
	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Email:        email,
		Name:         strings.TrimSpace(params.Name),
		DateOfBirth:  &dob,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrUserAlreadyExists
		}

		return nil, err
	}

	if _, err := u.otpIssuer.Issue(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SignIn issues an OTP challenge to an existing account. No account is ever
// created on this path.
func (u *authUsecase) SignIn(ctx context.Context, email string) (*model.User, error) {
	user, err := u.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if _, err := u.otpIssuer.Issue(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// SendOTP re-issues the OTP challenge, overwriting any outstanding code.
func (u *authUsecase) SendOTP(ctx context.Context, email string) error {
	user, err := u.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	_, err = u.otpIssuer.Issue(ctx, user)

	return err
}

// VerifyOTP completes the email+OTP flow: on a matching unexpired code the
// account becomes verified and a session token is minted.
func (u *authUsecase) VerifyOTP(ctx context.Context, email, code string) (*AuthSession, error) {
	user, err := u.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	verified, err := u.otpIssuer.Verify(ctx, user, code)
	if err != nil {
		return nil, err
	}

	return u.mintSession(verified)
}

// GoogleVerify completes the federated flow: the credential is validated
// against the configured client id, then resolved to exactly one account.
// An existing account with the same email is linked rather than duplicated,
// so one email never maps to two accounts.
func (u *authUsecase) GoogleVerify(ctx context.Context, credential string) (*AuthSession, error) {
	identity, err := u.verifier.Verify(ctx, credential)
	if err != nil {
		return nil, ErrInvalidAssertion
	}

	user, err := u.resolveGoogleIdentity(ctx, identity)
	if err != nil {
		return nil, err
	}

	return u.mintSession(user)
}

// resolveGoogleIdentity maps a verified Google identity to one account:
// reuse by subject id, link by email, or create. A concurrent create for
// the same email loses the race on the email unique index; the loser
// re-fetches once and links instead.
func (u *authUsecase) resolveGoogleIdentity(
	ctx context.Context,
	identity *provider.GoogleIdentity,
) (*model.User, error) {
	user, err := u.userRepo.GetUserByGoogleID(ctx, identity.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	email := normalizeEmail(identity.Email)

	user, err = u.userRepo.GetUserByEmail(ctx, email)
	if err == nil {
		return u.linkGoogleIdentity(ctx, user, identity.Subject)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user, err = u.userRepo.CreateUser(ctx, &model.User{
		Email:    email,
		GoogleID: identity.Subject,
		Verified: true,
	})
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrDuplicateKey) {
		return nil, err
	}

	// Lost a creation race: another request inserted this email first.
	user, err = u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, ErrConflict
	}

	return u.linkGoogleIdentity(ctx, user, identity.Subject)
}

func (u *authUsecase) linkGoogleIdentity(
	ctx context.Context,
	user *model.User,
	subject string,
) (*model.User, error) {
	if user.GoogleID == subject {
		return user, nil
	}

	verified := true
	linked, err := u.userRepo.UpdateUser(ctx, user.ID.Hex(), repository.UpdateUserParams{
		GoogleID: &subject,
		Verified: &verified,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrConflict
		}

		return nil, err
	}

	return linked, nil
}

func (u *authUsecase) mintSession(user *model.User) (*AuthSession, error) {
	token, err := u.tokenAuth.Mint(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthSession{Token: token, User: user}, nil
}

func (u *authUsecase) findByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
