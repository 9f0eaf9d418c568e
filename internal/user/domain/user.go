package domain

import (
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// User is the core user entity. PasswordHash is a bcrypt hash and never leaves the service layer.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
// An empty Name is filled from the email local part.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if strings.TrimSpace(u.Name) == "" {
		u.Name = NameFromEmail(u.Email)
	}
	return nil
}

// NameFromEmail returns the local part of email, or email itself when it has no "@".
func NameFromEmail(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found {
		return email
	}
	return local
}

// Initials returns up to two upper-case initials for the profile avatar: the first letters of the
// first two words of Name, else the first letter of the email.
func (u *User) Initials() string {
	var out []rune
	for _, word := range strings.Fields(u.Name) {
		r, _ := utf8.DecodeRuneInString(word)
		out = append(out, unicode.ToUpper(r))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 && u.Email != "" {
		r, _ := utf8.DecodeRuneInString(u.Email)
		out = append(out, unicode.ToUpper(r))
	}
	return string(out)
}
