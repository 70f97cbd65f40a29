package service

import (
	"strings"

	"github.com/Baaaki/inmobiliaria-api/internal/apperrors"
	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidCredentials = apperrors.New(apperrors.KindUnauthorized, "invalid credentials")
	ErrEmailAlreadyExists = apperrors.New(apperrors.KindConflict, "email already in use")
	ErrInvalidRole        = apperrors.New(apperrors.KindInvalidInput, "invalid role")
	ErrNoFieldsToUpdate   = apperrors.New(apperrors.KindInvalidInput, "no valid fields to update")
	ErrOwnerNotFound      = apperrors.New(apperrors.KindInvalidInput, "owner does not reference an existing user")

	// ErrNotFound covers both "does not exist" and "exists but is not the
	// caller's". Callers must not be able to tell the two apart.
	ErrNotFound = apperrors.New(apperrors.KindNotFound, "resource not found")

	ErrUserHasProperties = apperrors.New(apperrors.KindConflict,
		"cannot delete user: the user still owns properties, delete or reassign them first")
)

const minPasswordLength = 6

// validate checks values that reach the services without passing request
// binding, such as seeded accounts.
var validate = validator.New()

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.New(apperrors.KindInvalidInput, "name is required")
	}
	if len(name) > 100 {
		return apperrors.New(apperrors.KindInvalidInput, "name must be at most 100 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return apperrors.New(apperrors.KindInvalidInput, "email is required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return apperrors.New(apperrors.KindInvalidInput, "invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.New(apperrors.KindInvalidInput, "password must be at least 6 characters")
	}
	if len(password) > 72 {
		return apperrors.New(apperrors.KindInvalidInput, "password must be at most 72 characters")
	}
	return nil
}
