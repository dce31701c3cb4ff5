package service

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	dErrors "dexrank/pkg/domain-errors"
)

const passwordMinLength = 8

func hashPassword(password string) (string, error) {
	if len(password) < passwordMinLength {
		return "", dErrors.Newf(dErrors.CodeValidation, "password must be at least %d characters", passwordMinLength)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "password is too long")
		}
		return "", fmt.Errorf("could not hash password: %w", err)
	}
	return string(hashed), nil
}

func verifyPassword(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return fmt.Errorf("could not verify password: %w", err)
	}
	return nil
}
