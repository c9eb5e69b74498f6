package auth

import (
	"regexp"
	"strings"
)

// Mode selects which branch Submit takes.
type Mode string

const (
	ModeLogin    Mode = "login"
	ModeRegister Mode = "register"
)

// ParseMode accepts "login" or "register" (case-insensitive).
func ParseMode(s string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLogin:
		return ModeLogin, true
	case ModeRegister:
		return ModeRegister, true
	}
	return "", false
}

// Form is the in-memory state of the auth screen.
type Form struct {
	Identifier string
	Name       string
	Email      string
	Credential string
	Mode       Mode
}

// Reset empties the input fields and keeps the mode.
func (f *Form) Reset() {
	f.Identifier, f.Name, f.Email, f.Credential = "", "", "", ""
}

// SetMode switches between login and register and clears the inputs.
func (f *Form) SetMode(m Mode) {
	f.Mode = m
	f.Reset()
}

// Empty reports whether all input fields are blank.
func (f *Form) Empty() bool {
	return f.Identifier == "" && f.Name == "" && f.Email == "" && f.Credential == ""
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Normalize derives the storage key of an identifier: trimmed and lowercased.
func Normalize(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

// ValidEmail applies the minimal <non-empty>@<non-empty>.<non-empty> check.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Validate runs the local checks that precede any remote call.
func Validate(f *Form) error {
	if strings.TrimSpace(f.Identifier) == "" {
		return &ValidationError{Field: "identifier", Message: "identifier required"}
	}
	if f.Credential == "" {
		return &ValidationError{Field: "credential", Message: "credential required"}
	}
	if f.Mode != ModeRegister {
		return nil
	}
	if strings.TrimSpace(f.Name) == "" {
		return &ValidationError{Field: "name", Message: "name required"}
	}
	email := strings.TrimSpace(f.Email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "email required"}
	}
	if !ValidEmail(email) {
		return &ValidationError{Field: "email", Message: "email is not valid"}
	}
	return nil
}
