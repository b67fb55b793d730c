package common

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode"
)

const MinPasswordLength = 8

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailInvalid     = errors.New("email is not valid")
	ErrPasswordRequired = errors.New("password is required")
	ErrNameRequired     = errors.New("name is required")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

func IsValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	// ParseAddress accepts "Name <a@b>", the forms only want the bare address
	return err == nil && addr.Address == email
}

func IsValidURL(rawurl string) bool {
	u, err := url.ParseRequestURI(rawurl)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && len(u.Host) > 0
}

func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if len(email) == 0 {
		return ErrEmailRequired
	}
	if !IsValidEmail(email) {
		return ErrEmailInvalid
	}
	return nil
}

// ValidatePassword requires a minimum length and at least one letter and
// one digit.
func ValidatePassword(password string) error {
	if len(password) == 0 {
		return ErrPasswordRequired
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain letters and digits")
	}
	return nil
}

func ValidateName(name string) error {
	if len(strings.TrimSpace(name)) == 0 {
		return ErrNameRequired
	}
	return nil
}
