package redis

import (
	"context"
	"errors"
	"time"

	"github.com/examhub/exam-room-scheduler/internal/domain/identity"
	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// DefaultSessionTTL is used when NewSessionStore gets a non-positive ttl.
const DefaultSessionTTL = 12 * time.Hour

// SessionStore is identity.SessionStore on Redis. Every successful Get
// slides the expiry forward.
type SessionStore struct {
	cache *Cache
	ttl   time.Duration
}

var _ identity.SessionStore = (*SessionStore)(nil)

// NewSessionStore returns a store whose sessions expire after ttl of
// inactivity.
func NewSessionStore(cache *Cache, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{cache: cache, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, token string) (*identity.Identity, error) {
	if token == "" {
		return nil, identity.ErrNoSession
	}

	var id identity.Identity
	if err := s.cache.Touch(ctx, SessionKey(token), s.ttl, &id); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, identity.ErrNoSession
		}
		return nil, wrap("Get", err)
	}
	return &id, nil
}

func (s *SessionStore) Put(ctx context.Context, token string, id identity.Identity) error {
	return wrap("Put", s.cache.Put(ctx, SessionKey(token), id, s.ttl))
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return wrap("Delete", s.cache.Delete(ctx, SessionKey(token)))
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	kind := shared.ErrStoreConnection
	if errors.Is(err, ErrCacheSerialization) {
		kind = shared.ErrInvalidInput
	}
	return shared.WrapError("session", op, kind, "session store failed", err)
}
