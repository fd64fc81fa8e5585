// Package session persists the mock identity database and the active
// session record for the mentor app.
package session

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Identity is one registered account.
//
// Password is stored and compared in plaintext. This store is a
// development stand-in for a real credential flow; nothing built on it
// may treat it as secure.
type Identity struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile is the public projection of an Identity. Operations return it
// and the session record stores it; it never carries the password.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile returns the public projection of the identity.
func (i Identity) Profile() Profile {
	return Profile{ID: i.ID, Name: i.Name, Email: i.Email, CreatedAt: i.CreatedAt}
}

var lowercase = cases.Lower(language.Und)

// NormalizeEmail trims surrounding whitespace and lowercases the address
// so comparisons ignore case.
func NormalizeEmail(email string) string {
	return lowercase.String(strings.TrimSpace(email))
}
