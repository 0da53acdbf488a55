// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ValidatePassword checks if a password meets security requirements.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}
	return nil
}

// ValidateUsername checks if a username meets requirements.
func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("username must be at least 3 characters long")
	}
	if len(username) > 30 {
		return fmt.Errorf("username must not exceed 30 characters")
	}
	if !usernameRe.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, underscores, and hyphens")
	}
	if username[0] == '_' || username[0] == '-' || username[len(username)-1] == '_' || username[len(username)-1] == '-' {
		return fmt.Errorf("username cannot start or end with underscore or hyphen")
	}
	return nil
}

// ValidateEmail checks if an email address is plausibly formed.
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	if !emailRe.MatchString(email) {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
