package service

import (
	"net/mail"
	"regexp"
	"strings"

	"go-account-service/internal/model"
	"go-account-service/pkg/apierror"
)

const (
	maxUsernameLength = 256
	maxEmailLength    = 256
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9\-._@+]+$`)

func checkUsername(field string, username string) []apierror.FieldError {
	switch {
	case username == "":
		return []apierror.FieldError{{Field: field, Message: "username is required"}}
	case len(username) > maxUsernameLength:
		return []apierror.FieldError{{Field: field, Message: "username is too long"}}
	case !usernamePattern.MatchString(username):
		return []apierror.FieldError{{Field: field, Message: "username may only contain letters, digits and -._@+"}}
	}
	return nil
}

func checkEmail(field string, email string) []apierror.FieldError {
	if email == "" {
		return []apierror.FieldError{{Field: field, Message: "email is required"}}
	}
	if len(email) > maxEmailLength {
		return []apierror.FieldError{{Field: field, Message: "email is too long"}}
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return []apierror.FieldError{{Field: field, Message: "email is not a valid address"}}
	}
	return nil
}

// normalizeRegister trims identity fields in place. Passwords are taken verbatim.
func normalizeRegister(req *model.RegisterRequest) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
}

func validateRegister(req model.RegisterRequest, policy PasswordPolicy) []apierror.FieldError {
	fields := make([]apierror.FieldError, 0)
	fields = append(fields, checkUsername("username", req.Username)...)
	fields = append(fields, checkEmail("email", req.Email)...)
	fields = append(fields, policy.Check("password", req.Password)...)
	return fields
}

// normalizeUpdate trims the request and drops optional fields that were sent blank.
func normalizeUpdate(req *model.UpdateAccountRequest) {
	req.Username = strings.TrimSpace(req.Username)
	req.NewUsername = trimOptional(req.NewUsername)
	req.NewEmail = trimOptional(req.NewEmail)
	if req.NewPassword != nil && *req.NewPassword == "" {
		req.NewPassword = nil
	}
}

func validateUpdate(req model.UpdateAccountRequest, policy PasswordPolicy) []apierror.FieldError {
	fields := make([]apierror.FieldError, 0)
	if req.Username == "" {
		fields = append(fields, apierror.FieldError{Field: "username", Message: "username is required"})
	}
	if req.NewUsername != nil {
		fields = append(fields, checkUsername("newUsername", *req.NewUsername)...)
	}
	if req.NewEmail != nil {
		fields = append(fields, checkEmail("newEmail", *req.NewEmail)...)
	}
	if req.NewPassword != nil {
		fields = append(fields, policy.Check("newPassword", *req.NewPassword)...)
	}
	return fields
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
