package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesKindAndCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := WrapError("exam", "Insert", ErrConstraint, "session code already used", cause)

	assert.ErrorIs(t, err, ErrConstraint)
	assert.ErrorIs(t, err, cause)
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "exam.Insert: session code already used: duplicate key", err.Error())
}

func TestDomainError_WrappedWithFmt(t *testing.T) {
	err := fmt.Errorf("allocate: %w", NewDomainError("exam", "Allocate", ErrConflict, "slot taken"))

	assert.True(t, IsConflict(err))
	assert.False(t, IsConstraint(err))

	var de *DomainError
	assert.True(t, errors.As(err, &de))
	assert.Equal(t, "Allocate", de.Op)
}

func TestClassifiers(t *testing.T) {
	assert.True(t, IsNotFound(NewDomainError("catalog", "Find", ErrNotFound, "missing")))
	assert.True(t, IsValidation(NewDomainError("exam", "Validate", ErrInvalidDate, "bad date")))
	assert.True(t, IsUnavailable(NewDomainError("catalog", "Fetch", ErrTransport, "down")))
	assert.True(t, IsUnavailable(NewDomainError("store", "Query", ErrStoreConnection, "closed")))
	assert.False(t, IsUnavailable(NewDomainError("identity", "Login", ErrAuth, "no session")))
}
