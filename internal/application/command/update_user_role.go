package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/examhub/exam-room-scheduler/internal/domain/catalog"
	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// UpdateUserRoleCommand changes the role of a roster entry. The next
// catalog sync overwrites it with the remote value.
type UpdateUserRoleCommand struct {
	InstitutionNumber string
	Role              string
}

func (c UpdateUserRoleCommand) Validate() error {
	if strings.TrimSpace(c.InstitutionNumber) == "" || strings.TrimSpace(c.Role) == "" {
		return shared.NewDomainError("catalog", "UpdateRole", shared.ErrValidation, "institution number and role are required")
	}
	return nil
}

type UpdateUserRoleHandler struct {
	repo   catalog.Repository
	logger *slog.Logger
}

func NewUpdateUserRoleHandler(repo catalog.Repository, logger *slog.Logger) *UpdateUserRoleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateUserRoleHandler{repo: repo, logger: logger}
}

func (h *UpdateUserRoleHandler) Handle(ctx context.Context, cmd UpdateUserRoleCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("update_user_role: %w", err)
	}
	if err := h.repo.UpdateRole(ctx, cmd.InstitutionNumber, cmd.Role); err != nil {
		return fmt.Errorf("update_user_role: %w", err)
	}
	h.logger.Info("user role updated", "institution_number", cmd.InstitutionNumber, "role", cmd.Role)
	return nil
}
