// Package codehash hashes and checks access codes with bcrypt.
package codehash

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const MinCodeLength = 6

var ErrCodeTooShort = errors.New("access code must be at least 6 characters")

func Hash(code string) (string, error) {
	code = strings.TrimSpace(code)
	if len(code) < MinCodeLength {
		return "", ErrCodeTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func Matches(hash, code string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(strings.TrimSpace(code))) == nil
}
