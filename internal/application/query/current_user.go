package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/examhub/exam-room-scheduler/internal/domain/identity"
)

// CurrentUserHandler resolves a session token to its identity.
type CurrentUserHandler struct {
	sessions identity.SessionStore
}

func NewCurrentUserHandler(sessions identity.SessionStore) *CurrentUserHandler {
	return &CurrentUserHandler{sessions: sessions}
}

// Handle returns a copy of the identity bound to token, or an error
// matching shared.ErrAuth when there is none.
func (h *CurrentUserHandler) Handle(ctx context.Context, token string) (*identity.Identity, error) {
	who, err := h.sessions.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return who, nil
}

// Lookup is Handle for callers that treat "no session" as an answer: it
// returns nil, nil for an empty, unknown or expired token.
func (h *CurrentUserHandler) Lookup(ctx context.Context, token string) (*identity.Identity, error) {
	if token == "" {
		return nil, nil
	}
	who, err := h.Handle(ctx, token)
	if errors.Is(err, identity.ErrNoSession) {
		return nil, nil
	}
	return who, err
}
