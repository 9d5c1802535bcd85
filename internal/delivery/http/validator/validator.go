// Package validator adapts go-playground/validator to echo's Validator interface.
package validator

import (
	domainerrors "jobtrack/internal/domain/errors"

	playground "github.com/go-playground/validator/v10"
)

// echoValidator wraps a validator instance for echo.
type echoValidator struct {
	validate *playground.Validate
}

// New returns an echo-compatible request validator.
func New() *echoValidator {
	return &echoValidator{validate: playground.New()}
}

// Validate runs struct-tag validation and converts failures into the
// application's validation error so the error middleware renders them as 400s.
func (v *echoValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
