// Package command contains write operations (CQRS - Commands).
// Commands are responsible for changing the state of the system.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/examhub/exam-room-scheduler/internal/domain/catalog"
	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SYNC CATALOG COMMAND
// Mirrors the remote catalog into the local store. Runs once at startup,
// before anything else is served.
// ══════════════════════════════════════════════════════════════════════════════

// SyncStage names one collection of the catalog.
type SyncStage string

const (
	StageRoster      SyncStage = "roster"
	StageRooms       SyncStage = "rooms"
	StageSubjects    SyncStage = "subjects"
	StageEnrollments SyncStage = "enrollments"
)

// SyncStages is the load order. Enrollments reference subjects and people,
// so they come last.
var SyncStages = []SyncStage{StageRoster, StageRooms, StageSubjects, StageEnrollments}

// StageReport describes one finished or failed stage.
type StageReport struct {
	Stage    SyncStage     `json:"stage"`
	Fetched  int           `json:"fetched"`
	Upserted int           `json:"upserted"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// SyncReport lists the stages that ran, in order. When a stage fails it is
// the last entry and FailedStage names it.
type SyncReport struct {
	Stages      []StageReport `json:"stages"`
	FailedStage SyncStage     `json:"failedStage,omitempty"`
}

// records maps each successful stage to its upsert count.
func (r *SyncReport) records() map[string]int {
	out := make(map[string]int, len(r.Stages))
	for _, s := range r.Stages {
		if s.Error == "" {
			out[string(s.Stage)] = s.Upserted
		}
	}
	return out
}

// SyncError is the first failure of a sync run.
type SyncError struct {
	Stage SyncStage
	Err   error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s: %v", e.Stage, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// CatalogSource fetches the remote collections.
type CatalogSource interface {
	FetchRoster(ctx context.Context) ([]catalog.Person, error)
	FetchRooms(ctx context.Context) ([]catalog.Room, error)
	FetchSubjects(ctx context.Context) ([]catalog.Subject, error)
	FetchEnrollments(ctx context.Context) ([]catalog.Enrollment, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// SyncCatalogHandler upserts every remote record by its unique key. The
// first fetch or upsert failure aborts the run; nothing is retried here.
type SyncCatalogHandler struct {
	source CatalogSource
	store  catalog.Writer
	events shared.EventPublisher
	logger *slog.Logger
}

func NewSyncCatalogHandler(source CatalogSource, store catalog.Writer, events shared.EventPublisher, logger *slog.Logger) *SyncCatalogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncCatalogHandler{
		source: source,
		store:  store,
		events: publisherOrNop(events),
		logger: logger.With("component", "sync"),
	}
}

// Handle runs all stages. The report is returned on failure too.
func (h *SyncCatalogHandler) Handle(ctx context.Context) (*SyncReport, error) {
	report := &SyncReport{Stages: make([]StageReport, 0, len(SyncStages))}

	for _, stage := range SyncStages {
		start := time.Now()
		fetched, upserted, err := h.runStage(ctx, stage)
		sr := StageReport{
			Stage:    stage,
			Fetched:  fetched,
			Upserted: upserted,
			Duration: time.Since(start),
		}

		if err != nil {
			sr.Error = err.Error()
			report.Stages = append(report.Stages, sr)
			report.FailedStage = stage
			h.logger.Error("catalog sync aborted",
				"stage", stage,
				"fetched", fetched,
				"upserted", upserted,
				"error", err,
			)
			publish(h.logger, h.events, shared.NewCatalogSyncedEvent(report.records(), string(stage), err))
			return report, &SyncError{Stage: stage, Err: err}
		}

		report.Stages = append(report.Stages, sr)
		h.logger.Info("catalog stage synced",
			"stage", stage,
			"records", upserted,
			"duration", sr.Duration,
		)
	}

	publish(h.logger, h.events, shared.NewCatalogSyncedEvent(report.records(), "", nil))
	return report, nil
}

func (h *SyncCatalogHandler) runStage(ctx context.Context, stage SyncStage) (int, int, error) {
	switch stage {
	case StageRoster:
		people, err := h.source.FetchRoster(ctx)
		if err != nil {
			return 0, 0, err
		}
		return upsertAll(ctx, people, h.store.UpsertPerson, func(p catalog.Person) string { return p.RosterNumber })
	case StageRooms:
		rooms, err := h.source.FetchRooms(ctx)
		if err != nil {
			return 0, 0, err
		}
		return upsertAll(ctx, rooms, h.store.UpsertRoom, func(r catalog.Room) string { return r.Number })
	case StageSubjects:
		subjects, err := h.source.FetchSubjects(ctx)
		if err != nil {
			return 0, 0, err
		}
		return upsertAll(ctx, subjects, h.store.UpsertSubject, func(s catalog.Subject) string { return s.Code })
	case StageEnrollments:
		enrollments, err := h.source.FetchEnrollments(ctx)
		if err != nil {
			return 0, 0, err
		}
		return upsertAll(ctx, enrollments, h.store.UpsertEnrollment, func(e catalog.Enrollment) string { return e.ClassCode })
	default:
		return 0, 0, fmt.Errorf("unknown stage %q", stage)
	}
}

// upsertAll writes records in order, so a later duplicate key overwrites an
// earlier one.
func upsertAll[T any](ctx context.Context, records []T, upsert func(context.Context, T) error, key func(T) string) (int, int, error) {
	for i, rec := range records {
		if err := upsert(ctx, rec); err != nil {
			return len(records), i, fmt.Errorf("upsert %q: %w", key(rec), err)
		}
	}
	return len(records), len(records), nil
}
