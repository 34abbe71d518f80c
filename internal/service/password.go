package service

import (
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"go-account-service/internal/model"
	"go-account-service/pkg/apierror"
)

// bcrypt ignores everything past 72 bytes.
const maxPasswordBytes = 72

type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns model.ErrInvalidCredentials when the password does not match.
	Compare(hash string, password string) error
}

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = 12
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Compare(hash string, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return model.ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("compare password: %w", err)
	}
	return nil
}

// PasswordPolicy defines the requirements for password complexity.
type PasswordPolicy struct {
	MinLength          int
	RequireUppercase   bool
	RequireLowercase   bool
	RequireDigit       bool
	RequireSpecialChar bool
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:          6,
		RequireUppercase:   true,
		RequireLowercase:   true,
		RequireDigit:       true,
		RequireSpecialChar: true,
	}
}

var (
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	digitPattern   = regexp.MustCompile(`[0-9]`)
	specialPattern = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// Check reports every rule the password breaks, one field error per rule.
func (p PasswordPolicy) Check(field string, password string) []apierror.FieldError {
	fields := make([]apierror.FieldError, 0)
	fail := func(message string) {
		fields = append(fields, apierror.FieldError{Field: field, Message: message})
	}

	if password == "" {
		fail("password is required")
		return fields
	}
	if len(password) < p.MinLength {
		fail(fmt.Sprintf("password must be at least %d characters long", p.MinLength))
	}
	if len(password) > maxPasswordBytes {
		fail(fmt.Sprintf("password must be at most %d bytes long", maxPasswordBytes))
	}
	if p.RequireUppercase && !upperPattern.MatchString(password) {
		fail("password must contain at least one uppercase letter")
	}
	if p.RequireLowercase && !lowerPattern.MatchString(password) {
		fail("password must contain at least one lowercase letter")
	}
	if p.RequireDigit && !digitPattern.MatchString(password) {
		fail("password must contain at least one digit")
	}
	if p.RequireSpecialChar && !specialPattern.MatchString(password) {
		fail("password must contain at least one special character")
	}

	return fields
}
