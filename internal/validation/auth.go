package validation

import (
	"errors"
	"regexp"
	"unicode"
	"unicode/utf8"

	"moodfeed/internal/models"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateUsername enforces 3-20 characters of letters, digits and underscores.
func ValidateUsername(username string) error {
	switch n := utf8.RuneCountInString(username); {
	case n == 0:
		return errors.New("Username is required")
	case n < 3:
		return errors.New("Username must be at least 3 characters")
	case n > 20:
		return errors.New("Username must be at most 20 characters")
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("Username can only contain letters, numbers, and underscores")
	}
	return nil
}

// ValidateEmail checks the address shape only.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("Email is required")
	}
	if err := instance().Var(email, "email"); err != nil {
		return errors.New("Please enter a valid email address")
	}
	return nil
}

// ValidatePassword requires at least 8 characters with a letter, a digit and
// one character that is neither.
func ValidatePassword(password string) error {
	var hasLetter, hasDigit, hasOther bool
	for _, r := range password {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			hasOther = true
		}
	}
	if utf8.RuneCountInString(password) < 8 || !hasLetter || !hasDigit || !hasOther {
		return errors.New("Password must be at least 8 characters, include a letter, a number, and a special character.")
	}
	return nil
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ValidateRegister runs every sign-up rule and reports each failing field.
func ValidateRegister(req RegisterRequest) error {
	out := &ValidationError{}
	add := func(field string, err error) {
		if err != nil {
			out.Issues = append(out.Issues, models.ValidationIssue{Field: field, Code: "invalid", Message: err.Error()})
		}
	}
	add("username", ValidateUsername(req.Username))
	add("email", ValidateEmail(req.Email))
	add("password", ValidatePassword(req.Password))
	if len(out.Issues) == 0 {
		return nil
	}
	return out
}
