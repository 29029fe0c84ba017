package utils

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrAPIKeyMismatch = errors.New("api key does not match")

func HashAPIKey(key string) (string, error) {
	if key == "" {
		return "", errors.New("api key cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash api key: %w", err)
	}
	return string(hash), nil
}

func CheckAPIKey(hash, key string) error {
	if hash == "" || key == "" {
		return ErrAPIKeyMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
		return ErrAPIKeyMismatch
	}
	return nil
}
