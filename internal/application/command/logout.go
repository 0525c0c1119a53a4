package command

import (
	"context"
	"fmt"

	"github.com/examhub/exam-room-scheduler/internal/domain/identity"
)

// LogoutHandler ends a session. Logging out twice is not an error.
type LogoutHandler struct {
	sessions identity.SessionStore
}

func NewLogoutHandler(sessions identity.SessionStore) *LogoutHandler {
	return &LogoutHandler{sessions: sessions}
}

func (h *LogoutHandler) Handle(ctx context.Context, token string) error {
	if err := h.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}
