package payload

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=6"`
	Name        string `json:"name"        validate:"required,max=50"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,datetime=2006-01-02"`
}

// EmailRequest is the body of POST /api/auth/signin and /api/auth/send-otp.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPRequest is the body of POST /api/auth/verify-otp.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp"   validate:"required,len=6"`
}

// GoogleVerifyRequest is the body of POST /api/auth/google/verify.
type GoogleVerifyRequest struct {
	Credential string `json:"credential" validate:"required"`
}

// UserView is the public representation of an account.
type UserView struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	IsEmailVerified bool   `json:"isEmailVerified"`
}

// RegisterResponse is returned by register and signin.
type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// MessageResponse is the generic `{success, message}` shape.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is the failure shape, optionally carrying field errors.
type ErrorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// SessionResponse is returned by verify-otp and google/verify.
type SessionResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    UserView `json:"user"`
}
