// Package validation checks registration and login input before anything is sent over the network.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	campuserrors "github.com/jrsteele09/go-campus/internal/errors"
)

// Messages shown to the user.
const (
	MsgInvalidEmail      = "Please enter a valid email address"
	MsgWeakPassword      = "Password must be at least 8 characters, include a letter and a number."
	MsgInvalidPhone      = "Please enter a valid phone number"
	MsgPasswordsMismatch = "Passwords do not match"
	MsgAllFieldsRequired = "All fields are required"
	MsgEmailRequired     = "email is required"
	MsgPasswordRequired  = "password is required"
	MsgNameRequired      = "name is required"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	passwordCharset = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{8,}$`)
	hasLetter       = regexp.MustCompile(`[A-Za-z]`)
	hasDigit        = regexp.MustCompile(`\d`)
	phonePattern    = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
)

// Error names the offending field. It matches errors.ErrValidation.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *Error) Is(target error) bool {
	return target == campuserrors.ErrValidation
}

// Registration is the sign up form.
type Registration struct {
	Name            string
	Email           string
	Phone           string
	Password        string
	ConfirmPassword string
}

func Email(email string) error {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return &Error{Field: "email", Message: MsgInvalidEmail}
	}
	return nil
}

// Password requires eight or more characters from the allowed set with at least one letter and one digit.
func Password(password string) error {
	if !passwordCharset.MatchString(password) || !hasLetter.MatchString(password) || !hasDigit.MatchString(password) {
		return &Error{Field: "password", Message: MsgWeakPassword}
	}
	return nil
}

// Phone accepts an empty value.
func Phone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}
	if !phonePattern.MatchString(phone) {
		return &Error{Field: "phone", Message: MsgInvalidPhone}
	}
	return nil
}

// Login only checks presence. Password strength is the server's concern for existing accounts.
func Login(email, password string) error {
	if strings.TrimSpace(email) == "" {
		return &Error{Field: "email", Message: MsgEmailRequired}
	}
	if password == "" {
		return &Error{Field: "password", Message: MsgPasswordRequired}
	}
	return nil
}

// Validate returns the first problem found: missing fields, confirmation, password strength, email, phone.
func (r Registration) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" || r.ConfirmPassword == "" {
		return &Error{Message: MsgAllFieldsRequired}
	}
	if r.Password != r.ConfirmPassword {
		return &Error{Field: "confirmPassword", Message: MsgPasswordsMismatch}
	}
	if err := Password(r.Password); err != nil {
		return err
	}
	if err := Email(r.Email); err != nil {
		return err
	}
	return Phone(r.Phone)
}
