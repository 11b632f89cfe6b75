package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient KUSH")
	ErrValidation        = errors.New("invalid input")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrUpgradeLocked     = errors.New("upgrade is locked")

	ErrPlayerNotFound      = fmt.Errorf("player %w", ErrNotFound)
	ErrUpgradeNotFound     = fmt.Errorf("upgrade %w", ErrNotFound)
	ErrAchievementNotFound = fmt.Errorf("achievement %w", ErrNotFound)
)

// InsufficientFundsError carries the shortfall so a UI can explain it.
type InsufficientFundsError struct {
	Required  int64
	Available int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient KUSH: need %d, have %d", e.Required, e.Available)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
