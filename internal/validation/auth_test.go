package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "SecurePass12!@", false},
		{"Exactly Min Length", "abcdef1!", false},
		{"Lower Only Letters Ok", "securepass12!", false},
		{"Too Short", "abc12!", true},
		{"No Letter", "1234567890!@", true},
		{"No Digit", "SecurePass!!", true},
		{"No Special", "SecurePass123", true},
		{"Unicode Counts As Special", "Ångstrom12", false},
		{"Empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  string
	}{
		{"Valid", "test_user123", ""},
		{"Empty", "", "Username is required"},
		{"Too Short", "tu", "Username must be at least 3 characters"},
		{"Too Long", "abcdefghijklmnopqrstu", "Username must be at most 20 characters"},
		{"Illegal Chars", "user@123", "Username can only contain letters, numbers, and underscores"},
		{"Dash", "-user", "Username can only contain letters, numbers, and underscores"},
		{"Underscore Edge", "user_", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateEmail("ana@example.com"))
	assert.EqualError(t, ValidateEmail(""), "Email is required")
	assert.EqualError(t, ValidateEmail("not-an-email"), "Please enter a valid email address")
}

func TestValidateRegister(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateRegister(RegisterRequest{Username: "ana_b", Email: "ana@example.com", Password: "hunter22!"}))

	err := ValidateRegister(RegisterRequest{Username: "a", Email: "nope", Password: "short"})
	require.Error(t, err)
	issues := Issues(err)
	require.Len(t, issues, 3)
	assert.Equal(t, "username", issues[0].Field)
	assert.Equal(t, "email", issues[1].Field)
	assert.Equal(t, "password", issues[2].Field)
}
