package auth

import (
	"errors"
	"fmt"
	"sync"

	customError "github.com/segyhp/membership-fees/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword creates a bcrypt hash of the password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", customError.WrapValidation("password cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", customError.WrapValidation("password is too long")
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword returns an invalid-credentials error on mismatch.
func CheckPassword(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) || errors.Is(err, bcrypt.ErrHashTooShort) {
			return customError.WrapInvalidCredentials()
		}
		return fmt.Errorf("verify password: %w", err)
	}
	return nil
}

var (
	unknownAccountOnce sync.Once
	unknownAccountHash string
)

// UnknownAccountHash is a bcrypt hash at the default cost that no password
// matches. Logins for missing accounts compare against it so they take as
// long as a wrong password for a real one.
func UnknownAccountHash() string {
	unknownAccountOnce.Do(func() {
		hashed, err := bcrypt.GenerateFromPassword([]byte("\x00unknown-account"), bcrypt.DefaultCost)
		if err == nil {
			unknownAccountHash = string(hashed)
		}
	})
	return unknownAccountHash
}
