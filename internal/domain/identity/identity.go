// Package identity covers who is acting: login modes, stored credentials and
// the sessions produced by a successful login.
package identity

import (
	"unicode"

	"github.com/examhub/exam-room-scheduler/internal/domain/catalog"
)

// LoginMode records which identifier a person logged in with.
type LoginMode string

const (
	// ModeByIdentifier is used when the identifier is all digits (a roster number).
	ModeByIdentifier LoginMode = "by-identifier"

	// ModeByInitials is used for any other identifier.
	ModeByInitials LoginMode = "by-initials"
)

// ModeFor classifies a login identifier.
func ModeFor(identifier string) LoginMode {
	for _, r := range identifier {
		if !unicode.IsDigit(r) {
			return ModeByInitials
		}
	}
	return ModeByIdentifier
}

func (m LoginMode) Valid() bool {
	return m == ModeByIdentifier || m == ModeByInitials
}

// Identity is the public view of an authenticated person plus the mode they
// logged in with. It is never persisted in the relational store.
type Identity struct {
	catalog.Person
	Mode LoginMode `json:"mode"`
}

// NewIdentity builds the session value for a person.
func NewIdentity(p catalog.Person, mode LoginMode) Identity {
	id := Identity{Person: p, Mode: mode}
	if p.Initials != nil {
		v := *p.Initials
		id.Initials = &v
	}
	return id
}

// Clone returns a deep copy.
func (i Identity) Clone() Identity {
	return NewIdentity(i.Person, i.Mode)
}
