package identity

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examhub/exam-room-scheduler/internal/domain/catalog"
	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "h:" + password, nil }

func (plainHasher) Compare(hash, password string) (bool, error) {
	if len(hash) < 2 || hash[:2] != "h:" {
		return false, errors.New("malformed hash")
	}
	return hash == "h:"+password, nil
}

func strPtr(s string) *string { return &s }

func TestModeFor(t *testing.T) {
	assert.Equal(t, ModeByIdentifier, ModeFor("12345678"))
	assert.Equal(t, ModeByInitials, ModeFor("AB"))
	assert.Equal(t, ModeByInitials, ModeFor("AB12"))
	assert.Equal(t, ModeByInitials, ModeFor("1234 "))
}

func TestCredential_ImplicitRules(t *testing.T) {
	p := catalog.Person{RosterNumber: "12345678", Initials: strPtr("AB")}
	c := Implicit()

	ok, err := c.Verify(plainHasher{}, p, ModeByIdentifier, "12345678")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = c.Verify(plainHasher{}, p, ModeByIdentifier, "AB")
	assert.False(t, ok)

	ok, _ = c.Verify(plainHasher{}, p, ModeByInitials, "AB")
	assert.True(t, ok)

	ok, _ = c.Verify(plainHasher{}, catalog.Person{RosterNumber: "1"}, ModeByInitials, "")
	assert.False(t, ok, "no initials never matches")
}

func TestCredential_Hashed(t *testing.T) {
	p := catalog.Person{RosterNumber: "12345678"}
	c := Hashed("h:secret")
	assert.True(t, c.IsHashed())

	ok, err := c.Verify(plainHasher{}, p, ModeByIdentifier, "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Verify(plainHasher{}, p, ModeByIdentifier, "12345678")
	require.NoError(t, err)
	assert.False(t, ok, "implicit rule no longer applies once hashed")

	_, err = Hashed("garbage").Verify(plainHasher{}, p, ModeByIdentifier, "x")
	assert.ErrorIs(t, err, shared.ErrHash)
}

func TestCredentialFromColumn(t *testing.T) {
	assert.False(t, CredentialFromColumn(nil).IsHashed())
	assert.False(t, CredentialFromColumn(strPtr("")).IsHashed())
	assert.True(t, CredentialFromColumn(strPtr("h:x")).IsHashed())
}

func TestManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	_, err := m.Get(ctx, "t1")
	assert.ErrorIs(t, err, shared.ErrAuth)

	alice := NewIdentity(catalog.Person{RosterNumber: "1", Name: "Alice", Initials: strPtr("AL")}, ModeByInitials)
	require.NoError(t, m.Put(ctx, "t1", alice))

	got, err := m.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	// mutating the snapshot does not leak back
	*got.Initials = "ZZ"
	got.Name = "Mallory"
	again, _ := m.Get(ctx, "t1")
	assert.Equal(t, "Alice", again.Name)
	assert.Equal(t, "AL", *again.Initials)

	require.NoError(t, m.Delete(ctx, "t1"))
	_, err = m.Get(ctx, "t1")
	assert.ErrorIs(t, err, shared.ErrAuth)
	assert.NoError(t, m.Delete(ctx, "t1"))
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	require.NoError(t, m.Put(ctx, "a", NewIdentity(catalog.Person{RosterNumber: "1", Name: "A"}, ModeByIdentifier)))
	require.NoError(t, m.Put(ctx, "b", NewIdentity(catalog.Person{RosterNumber: "2", Name: "B"}, ModeByIdentifier)))
	require.NoError(t, m.Delete(ctx, "a"))

	_, err := m.Get(ctx, "a")
	assert.Error(t, err)
	b, err := m.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "B", b.Name)
}

func TestManager_Concurrent(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok := string(rune('a' + i%26))
			_ = m.Put(ctx, tok, NewIdentity(catalog.Person{RosterNumber: tok}, ModeByIdentifier))
			_, _ = m.Get(ctx, tok)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 26, m.Len())
}
