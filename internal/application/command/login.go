package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/examhub/exam-room-scheduler/internal/domain/identity"
	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOGIN COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// LoginCommand carries the submitted credentials.
type LoginCommand struct {
	// Identifier is a roster number or initials.
	Identifier string
	Password   string
}

// LoginResult reports the outcome. A failed login is Matched=false with a
// nil error; it is never an error.
type LoginResult struct {
	Matched  bool
	Mode     identity.LoginMode
	Token    string
	Identity *identity.Identity
}

// LoginHandler verifies credentials and opens a session.
type LoginHandler struct {
	accounts identity.AccountRepository
	sessions identity.SessionStore
	hasher   identity.Hasher
	newToken func() string
	logger   *slog.Logger
}

// LoginHandlerConfig contains optional collaborators.
type LoginHandlerConfig struct {
	// TokenGenerator returns new session tokens. Defaults to random UUIDs.
	TokenGenerator func() string
	Logger         *slog.Logger
}

func NewLoginHandler(
	accounts identity.AccountRepository,
	sessions identity.SessionStore,
	hasher identity.Hasher,
	config LoginHandlerConfig,
) *LoginHandler {
	if config.TokenGenerator == nil {
		config.TokenGenerator = uuid.NewString
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &LoginHandler{
		accounts: accounts,
		sessions: sessions,
		hasher:   hasher,
		newToken: config.TokenGenerator,
		logger:   config.Logger.With("component", "auth"),
	}
}

// Handle looks the identifier up by roster number or initials, picks the
// login mode from its shape and verifies the password against the stored
// credential.
func (h *LoginHandler) Handle(ctx context.Context, cmd LoginCommand) (*LoginResult, error) {
	mode := identity.ModeFor(cmd.Identifier)

	account, err := h.accounts.FindForLogin(ctx, cmd.Identifier)
	if shared.IsNotFound(err) {
		h.logger.Info("login rejected", "reason", "unknown identifier", "mode", mode)
		return &LoginResult{Matched: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	ok, err := account.Credential.Verify(h.hasher, account.Person, mode, cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		h.logger.Info("login rejected", "reason", "wrong password", "roster_number", account.RosterNumber, "mode", mode)
		return &LoginResult{Matched: false}, nil
	}

	id := identity.NewIdentity(account.Person, mode)
	token := h.newToken()
	if err := h.sessions.Put(ctx, token, id); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	h.logger.Info("login succeeded", "roster_number", account.RosterNumber, "mode", mode, "hashed", account.Credential.IsHashed())
	return &LoginResult{Matched: true, Mode: mode, Token: token, Identity: &id}, nil
}
