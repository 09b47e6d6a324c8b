package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents a user account in the authentication system. An account is
// reachable through at least one credential path: a password hash, a linked
// Google identity, or both.
type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Email        string        `bson:"email"`
	Name         string        `bson:"name,omitempty"`
	DateOfBirth  *time.Time    `bson:"date_of_birth,omitempty"`
	PasswordHash string        `bson:"password_hash,omitempty"`
	GoogleID     string        `bson:"google_id,omitempty"`
	Verified     bool          `bson:"verified"`
	OTP          string        `bson:"otp,omitempty"`
	OTPExpiresAt *time.Time    `bson:"otp_expires_at,omitempty"`
	CreatedAt    time.Time     `bson:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at"`
}

// HasPendingOTP reports whether an OTP challenge is currently outstanding.
func (u *User) HasPendingOTP() bool {
	return u.OTP != "" && u.OTPExpiresAt != nil
}
