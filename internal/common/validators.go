package common

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
	digitPattern = regexp.MustCompile(`^[0-9]+$`)
)

// NormalizeEmail lowercases and trims an email address for case-insensitive
// uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks syntactic validity of a required email field.
func ValidateEmail(email, fieldName string) error {
	if strings.TrimSpace(email) == "" {
		return NewValidationError(fieldName, fmt.Sprintf("%s is required", fieldName))
	}
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return NewValidationError(fieldName, "Please provide a valid email address")
	}
	return nil
}

// ValidatePassword enforces the canonical strength policy: at least 8
// characters with one uppercase letter, one lowercase letter, and one digit.
func ValidatePassword(password, fieldName string) error {
	if len(password) < 8 {
		return NewValidationError(fieldName, "Password must be at least 8 characters long")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return NewValidationError(fieldName, "Password must contain at least one uppercase letter")
	}
	if !hasLower {
		return NewValidationError(fieldName, "Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return NewValidationError(fieldName, "Password must contain at least one number")
	}
	return nil
}

// ValidatePhone checks for exactly 10 numeric digits.
func ValidatePhone(phone, fieldName string) error {
	phone = strings.TrimSpace(phone)
	if !digitPattern.MatchString(phone) {
		return NewValidationError(fieldName, "Phone number must contain only numeric digits (0-9)")
	}
	if !phonePattern.MatchString(phone) {
		return NewValidationError(fieldName, "Phone number must be exactly 10 digits")
	}
	return nil
}

// ValidateCharge checks a monetary charge field is not negative.
func ValidateCharge(value float64, fieldName string) error {
	if value < 0 {
		return NewValidationError(fieldName, fmt.Sprintf("%s cannot be negative", fieldName))
	}
	return nil
}

// ValidateName checks a person name has at least 3 characters after trim.
func ValidateName(name, fieldName string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return NewValidationError(fieldName, fmt.Sprintf("%s is required", fieldName))
	}
	if len(trimmed) < 3 {
		return NewValidationError(fieldName, fmt.Sprintf("%s must be at least 3 characters long", fieldName))
	}
	return nil
}

// ValidateNotes bounds free-text notes fields.
func ValidateNotes(notes *string, fieldName string, maxLength int) error {
	if notes == nil {
		return nil
	}
	*notes = strings.TrimSpace(*notes)
	if len(*notes) > maxLength {
		return NewValidationError(fieldName, fmt.Sprintf("%s cannot exceed %d characters", fieldName, maxLength))
	}
	return nil
}

// NormalizePagination clamps page/limit to sane bounds and returns the
// offset for skip-based pagination.
func NormalizePagination(page, limit int) (int, int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	return page, limit, (page - 1) * limit
}

// SafeString safely handles string pointer operations
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// SafeFloat64 safely handles float64 pointer operations
func SafeFloat64(f *float64) float64 {
	if f == nil {
		return 0.0
	}
	return *f
}
