package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const cost = 12

// MinLength is the shortest password accepted at registration.
const MinLength = 8

var ErrTooShort = errors.New("password too short")

// Hash hashes password using bcrypt
func Hash(password string) (string, error) {
	if len(password) < MinLength {
		return "", ErrTooShort
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compares password with hash
func Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
