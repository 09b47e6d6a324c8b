package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/wavenotes/wavenotes-api/internal/payload"
	"github.com/wavenotes/wavenotes-api/internal/usecase"
	"github.com/wavenotes/wavenotes-api/shared/validator"
)

const minAgeYears = 13

// AuthHandler exposes the authentication flows over HTTP.
type AuthHandler struct {
	logger      *zerolog.Logger
	validate    *validator.Validator
	authUsecase usecase.AuthUsecase
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(
	logger *zerolog.Logger,
	validate *validator.Validator,
	authUsecase usecase.AuthUsecase,
) *AuthHandler {
	return &AuthHandler{
		logger:      logger,
		validate:    validate,
		authUsecase: authUsecase,
	}
}

// RegisterRoutes mounts the auth endpoints on the given router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/signin", h.SignIn)
	r.Post("/send-otp", h.SendOTP)
	r.Post("/verify-otp", h.VerifyOTP)
	r.Post("/google/verify", h.GoogleVerify)
}

// Register handles POST /api/auth/register. Validation runs before any
// store access.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fieldErrors := h.validate.Struct(req); fieldErrors != nil {
		writeValidationErrors(w, fieldErrors)
		return
	}

	dateOfBirth, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		writeValidationErrors(w, map[string]string{"dateOfBirth": "dateOfBirth must be a valid date"})
		return
	}
	if dateOfBirth.After(time.Now().AddDate(-minAgeYears, 0, 0)) {
		writeValidationErrors(w, map[string]string{"dateOfBirth": "must be at least 13 years old"})
		return
	}

	user, err := h.authUsecase.Register(r.Context(), usecase.RegisterParams{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		DateOfBirth: dateOfBirth,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserAlreadyExists):
			writeError(w, http.StatusBadRequest, "User already exists with this email")
		case errors.Is(err, usecase.ErrDeliveryFailed):
			h.logger.Error().Err(err).Msg("failed to deliver otp email")
			writeError(w, http.StatusInternalServerError, "Failed to send OTP email")
		default:
			h.logger.Error().Err(err).Msg("failed to register user")
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}

		return
	}

	writeJSON(w, http.StatusCreated, payload.RegisterResponse{
		Success: true,
		Message: "User registered successfully. OTP sent to email.",
		UserID:  user.ID.Hex(),
	})
}

// SignIn handles POST /api/auth/signin.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req payload.EmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fieldErrors := h.validate.Struct(req); fieldErrors != nil {
		writeValidationErrors(w, fieldErrors)
		return
	}

	user, err := h.authUsecase.SignIn(r.Context(), req.Email)
	if err != nil {
		h.writeOTPIssueError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payload.RegisterResponse{
		Success: true,
		Message: "OTP sent to email",
		UserID:  user.ID.Hex(),
	})
}

// SendOTP handles POST /api/auth/send-otp, re-issuing the challenge and
// invalidating any outstanding code.
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req payload.EmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fieldErrors := h.validate.Struct(req); fieldErrors != nil {
		writeValidationErrors(w, fieldErrors)
		return
	}

	if err := h.authUsecase.SendOTP(r.Context(), req.Email); err != nil {
		h.writeOTPIssueError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payload.MessageResponse{
		Success: true,
		Message: "OTP sent successfully",
	})
}

// VerifyOTP handles POST /api/auth/verify-otp, the transition where an
// account becomes authenticated.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req payload.VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fieldErrors := h.validate.Struct(req); fieldErrors != nil {
		writeValidationErrors(w, fieldErrors)
		return
	}

	session, err := h.authUsecase.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			writeError(w, http.StatusBadRequest, "User not found")
		case errors.Is(err, usecase.ErrNoPendingOTP), errors.Is(err, usecase.ErrInvalidOTP):
			writeError(w, http.StatusBadRequest, "Invalid OTP")
		case errors.Is(err, usecase.ErrOTPExpired):
			writeError(w, http.StatusBadRequest, "OTP has expired")
		default:
			h.logger.Error().Err(err).Msg("failed to verify otp")
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}

		return
	}

	writeJSON(w, http.StatusOK, payload.SessionResponse{
		Success: true,
		Message: "Authentication successful",
		Token:   session.Token,
		User: payload.UserView{
			ID:              session.User.ID.Hex(),
			Email:           session.User.Email,
			IsEmailVerified: session.User.Verified,
		},
	})
}

// GoogleVerify handles POST /api/auth/google/verify. Federation is itself
// the proof of email ownership, so the OTP step is skipped.
func (h *AuthHandler) GoogleVerify(w http.ResponseWriter, r *http.Request) {
	var req payload.GoogleVerifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fieldErrors := h.validate.Struct(req); fieldErrors != nil {
		writeValidationErrors(w, fieldErrors)
		return
	}

	session, err := h.authUsecase.GoogleVerify(r.Context(), req.Credential)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidAssertion):
			writeError(w, http.StatusBadRequest, "Invalid Google token")
		case errors.Is(err, usecase.ErrConflict):
			writeError(w, http.StatusConflict, "Google authentication failed")
		default:
			h.logger.Error().Err(err).Msg("failed to verify google credential")
			writeError(w, http.StatusInternalServerError, "Google authentication failed")
		}

		return
	}

	writeJSON(w, http.StatusOK, payload.SessionResponse{
		Success: true,
		Message: "Google authentication successful",
		Token:   session.Token,
		User: payload.UserView{
			ID:              session.User.ID.Hex(),
			Email:           session.User.Email,
			IsEmailVerified: session.User.Verified,
		},
	})
}

func (h *AuthHandler) writeOTPIssueError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrUserNotFound):
		writeError(w, http.StatusBadRequest, "User not found")
	case errors.Is(err, usecase.ErrDeliveryFailed):
		h.logger.Error().Err(err).Msg("failed to deliver otp email")
		writeError(w, http.StatusInternalServerError, "Failed to send OTP email")
	default:
		h.logger.Error().Err(err).Msg("failed to issue otp")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
