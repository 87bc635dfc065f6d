package models

import (
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"

	dErrors "docverify/pkg/domain-errors"
)

const MinPasswordLength = 8

// Normalize trims whitespace and lower-cases the email.
func (r *SignupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Validate checks the signup form. Call Normalize first.
func (r *SignupRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if !govalidator.StringLength(r.Name, "1", "100") {
		return dErrors.New(dErrors.CodeValidation, "name is too long")
	}
	if !govalidator.StringLength(r.Email, "3", "255") || !govalidator.IsEmail(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "Please enter a valid email address")
	}
	if utf8.RuneCountInString(r.Password) < MinPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "Password must be at least 8 characters")
	}
	if len(r.Password) > 72 {
		// bcrypt rejects inputs longer than 72 bytes
		return dErrors.New(dErrors.CodeValidation, "Password must be at most 72 characters long")
	}
	if r.Password != r.ConfirmPassword {
		return dErrors.New(dErrors.CodeValidation, "Passwords do not match")
	}
	if !r.AcceptTerms {
		return dErrors.New(dErrors.CodeValidation, "You must agree to the Terms of Service")
	}
	return nil
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	if !govalidator.IsEmail(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "Please enter a valid email address")
	}
	return nil
}
