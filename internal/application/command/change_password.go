package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/examhub/exam-room-scheduler/internal/domain/identity"
	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHANGE PASSWORD COMMAND
// The only path that stores a password hash. Accounts stay on their implicit
// password until their holder changes it here.
// ══════════════════════════════════════════════════════════════════════════════

// ChangePasswordCommand acts on the identity bound to Token.
type ChangePasswordCommand struct {
	Token           string
	CurrentPassword string
	NewPassword     string
}

func (c ChangePasswordCommand) Validate() error {
	if c.NewPassword == "" {
		return shared.NewDomainError("identity", "ChangePassword", shared.ErrValidation, "new password is required")
	}
	return nil
}

// ChangePasswordOutcome is the user-facing result of a change.
type ChangePasswordOutcome string

const (
	PasswordChanged   ChangePasswordOutcome = "password-changed"
	IncorrectPassword ChangePasswordOutcome = "incorrect-password"
)

// ChangePasswordHandler handles the ChangePasswordCommand.
type ChangePasswordHandler struct {
	accounts identity.AccountRepository
	sessions identity.SessionStore
	hasher   identity.Hasher
	logger   *slog.Logger
}

func NewChangePasswordHandler(
	accounts identity.AccountRepository,
	sessions identity.SessionStore,
	hasher identity.Hasher,
	logger *slog.Logger,
) *ChangePasswordHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChangePasswordHandler{
		accounts: accounts,
		sessions: sessions,
		hasher:   hasher,
		logger:   logger.With("component", "auth"),
	}
}

// Handle re-verifies the current password with the login rule of the
// session's mode and stores a hash of the new one.
//
// Without a live session it fails with shared.ErrAuth. A wrong current
// password is the IncorrectPassword outcome, not an error.
func (h *ChangePasswordHandler) Handle(ctx context.Context, cmd ChangePasswordCommand) (ChangePasswordOutcome, error) {
	who, err := h.sessions.Get(ctx, cmd.Token)
	if err != nil {
		return "", fmt.Errorf("change_password: %w", err)
	}

	if err := cmd.Validate(); err != nil {
		return "", fmt.Errorf("change_password: %w", err)
	}

	account, err := h.accounts.FindByRosterNumber(ctx, who.RosterNumber)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", fmt.Errorf("change_password: %w",
				shared.WrapError("identity", "ChangePassword", shared.ErrAuth, "session user no longer exists", err))
		}
		return "", fmt.Errorf("change_password: %w", err)
	}

	ok, err := account.Credential.Verify(h.hasher, account.Person, who.Mode, cmd.CurrentPassword)
	if err != nil {
		return "", fmt.Errorf("change_password: %w", err)
	}
	if !ok {
		h.logger.Info("password change rejected", "roster_number", account.RosterNumber)
		return IncorrectPassword, nil
	}

	hash, err := h.hasher.Hash(cmd.NewPassword)
	if err != nil {
		return "", fmt.Errorf("change_password: %w",
			shared.WrapError("identity", "ChangePassword", shared.ErrHash, "failed to hash password", err))
	}

	if err := h.accounts.SetPasswordHash(ctx, account.RosterNumber, hash); err != nil {
		return "", fmt.Errorf("change_password: %w", err)
	}

	h.logger.Info("password changed", "roster_number", account.RosterNumber, "was_hashed", account.Credential.IsHashed())
	return PasswordChanged, nil
}
