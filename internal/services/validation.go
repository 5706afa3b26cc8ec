package services

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a new validation helper with the digits and
// adult rules registered.
func NewValidationHelper() *ValidationHelper {
	v := validator.New()
	v.RegisterValidation("digits", validateDigits)
	v.RegisterValidation("adult", validateAdult)
	return &ValidationHelper{
		validator: v,
	}
}

// ValidateStruct validates a struct and returns validation errors
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// validateDigits checks for exactly N ASCII digits, N taken from the tag
// parameter (digits=10).
func validateDigits(fl validator.FieldLevel) bool {
	want, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return isDigits(fl.Field().String()) && len(fl.Field().String()) == want
}

// validateAdult accepts an unsigned integer string of at least 18. Digit
// strings too long for an int are above 18.
func validateAdult(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !isDigits(s) {
		return false
	}
	age, err := strconv.Atoi(s)
	if err != nil {
		return errors.Is(err, strconv.ErrRange)
	}
	return age >= 18
}

// IsAadhaar reports whether s is a 12 digit Aadhaar number.
func IsAadhaar(s string) bool {
	return len(s) == 12 && isDigits(s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
