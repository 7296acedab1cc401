package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for a wrong or unusable password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash keeps the comparison cost similar for accounts with no usable password.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3Dh2iijNND0x3p5iDlJ8QWq")

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword verifies plain against an optional stored hash.
// A nil or empty hash never matches.
func CheckPassword(hashed *string, plain string) error {
	if hashed == nil || *hashed == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*hashed), []byte(plain)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
