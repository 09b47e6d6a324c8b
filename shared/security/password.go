// Package security provides password hashing backed by argon2id.
package security

import "github.com/matthewhartstonge/argon2"

// HashPassword hashes a plaintext password into an encoded argon2id string.
func HashPassword(password string) (string, error) {
	argon := argon2.DefaultConfig()

	encoded, err := argon.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword compares a plaintext password against an encoded argon2id
// hash in constant time.
func VerifyPassword(password, encodedHash string) (bool, error) {
	return argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
}
