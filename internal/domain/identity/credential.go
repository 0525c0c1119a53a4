package identity

import (
	"context"

	"github.com/examhub/exam-room-scheduler/internal/domain/catalog"
	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREDENTIALS
// ══════════════════════════════════════════════════════════════════════════════

// Hasher computes and checks password hashes.
type Hasher interface {
	// Hash returns a new hash of password.
	Hash(password string) (string, error)

	// Compare reports whether password matches hash. A mismatch is
	// (false, nil); an unreadable hash is an error.
	Compare(hash, password string) (bool, error)
}

// Credential is either Implicit (no stored hash, the password equals a
// known field of the person) or Hashed.
type Credential struct {
	hash string
}

// Implicit returns the credential of an account that never set a password.
func Implicit() Credential {
	return Credential{}
}

// Hashed wraps a stored hash. An empty hash is treated as Implicit.
func Hashed(hash string) Credential {
	return Credential{hash: hash}
}

// CredentialFromColumn maps a nullable hash column to a Credential.
func CredentialFromColumn(hash *string) Credential {
	if hash == nil {
		return Implicit()
	}
	return Hashed(*hash)
}

func (c Credential) IsHashed() bool {
	return c.hash != ""
}

// Hash returns the stored hash, or "" for Implicit.
func (c Credential) Hash() string {
	return c.hash
}

// Verify checks password for person p logging in with mode.
//
// Hashed credentials are checked with h. Implicit credentials accept the
// roster number in ModeByIdentifier and the initials in ModeByInitials.
func (c Credential) Verify(h Hasher, p catalog.Person, mode LoginMode, password string) (bool, error) {
	if c.IsHashed() {
		ok, err := h.Compare(c.hash, password)
		if err != nil {
			return false, shared.WrapError("identity", "Verify", shared.ErrHash, "stored hash is unreadable", err)
		}
		return ok, nil
	}

	switch mode {
	case ModeByIdentifier:
		return password == p.RosterNumber, nil
	case ModeByInitials:
		return p.Initials != nil && password == *p.Initials, nil
	default:
		return false, nil
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNTS
// ══════════════════════════════════════════════════════════════════════════════

// Account is a person together with their credential.
type Account struct {
	catalog.Person
	Credential Credential
}

// AccountRepository reads persons with their credentials and stores hashes.
type AccountRepository interface {
	// FindForLogin returns the account whose roster number or initials equal
	// identifier, preferring a roster number match. Returns
	// shared.ErrNotFound when nobody matches.
	FindForLogin(ctx context.Context, identifier string) (*Account, error)

	// FindByRosterNumber returns shared.ErrNotFound when absent.
	FindByRosterNumber(ctx context.Context, rosterNumber string) (*Account, error)

	// SetPasswordHash overwrites the stored hash. This is the only write
	// path for hashes.
	SetPasswordHash(ctx context.Context, rosterNumber, hash string) error
}
