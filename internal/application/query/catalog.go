// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/examhub/exam-room-scheduler/internal/domain/catalog"
	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG QUERIES
// Read-only views over the replicated catalog. Every list is ordered by key
// and never nil.
// ══════════════════════════════════════════════════════════════════════════════

// CatalogHandler serves the catalog listings.
type CatalogHandler struct {
	reader catalog.Reader
}

func NewCatalogHandler(reader catalog.Reader) *CatalogHandler {
	return &CatalogHandler{reader: reader}
}

// Users returns the whole roster.
func (h *CatalogHandler) Users(ctx context.Context) ([]catalog.Person, error) {
	return list(ctx, "users", h.reader.ListPeople)
}

func (h *CatalogHandler) Subjects(ctx context.Context) ([]catalog.Subject, error) {
	return list(ctx, "subjects", h.reader.ListSubjects)
}

func (h *CatalogHandler) Rooms(ctx context.Context) ([]catalog.Room, error) {
	return list(ctx, "rooms", h.reader.ListRooms)
}

// Shifts returns the fixed exam shifts.
func (h *CatalogHandler) Shifts(ctx context.Context) ([]catalog.Shift, error) {
	return list(ctx, "shifts", h.reader.ListShifts)
}

func (h *CatalogHandler) Enrollments(ctx context.Context) ([]catalog.Enrollment, error) {
	return list(ctx, "enrollments", h.reader.ListEnrollments)
}

// EnrollmentsBySubject returns the class sections of one subject. An unknown
// subject yields an empty list.
func (h *CatalogHandler) EnrollmentsBySubject(ctx context.Context, subjectCode string) ([]catalog.Enrollment, error) {
	code := strings.TrimSpace(subjectCode)
	if code == "" {
		return nil, shared.NewDomainError("catalog", "EnrollmentsBySubject", shared.ErrValidation, "subject code is required")
	}
	return list(ctx, "enrollments by subject", func(ctx context.Context) ([]catalog.Enrollment, error) {
		return h.reader.EnrollmentsBySubject(ctx, code)
	})
}

func list[T any](ctx context.Context, what string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	items, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", what, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
