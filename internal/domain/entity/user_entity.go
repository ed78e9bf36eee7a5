package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for the user domain.
// Passwords are stored as bcrypt hashes in PasswordHash.
type User struct {
	ID                 string
	Email              string
	Name               string
	PasswordHash       string
	ImageURL           string
	RememberToken      string
	Role               string
	MustChangePassword bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// hiddenUserColumns are columns that must never be used as lookup filters;
// filtering on them would let a caller probe secrets by equality.
var hiddenUserColumns = map[string]struct{}{
	"password_hash":  {},
	"remember_token": {},
}

// IsHiddenUserColumn reports whether col holds sensitive data.
func IsHiddenUserColumn(col string) bool {
	_, ok := hiddenUserColumns[col]
	return ok
}

// MatchesSearch reports whether the user's name or email contains term,
// case-insensitively. An empty term matches everything.
func (u *User) MatchesSearch(term string) bool {
	if term == "" {
		return true
	}
	t := strings.ToLower(term)
	return strings.Contains(strings.ToLower(u.Name), t) ||
		strings.Contains(strings.ToLower(u.Email), t)
}
