package shared

import "time"

// EventType represents the type of domain event.
type EventType string

const (
	// Catalog events
	EventCatalogSynced     EventType = "catalog.synced"
	EventCatalogSyncFailed EventType = "catalog.sync_failed"

	// Exam events
	EventExamAllocated   EventType = "exam.allocated"
	EventProctorAssigned EventType = "exam.proctor_assigned"
)

// Event is the base interface for all domain events.
type Event interface {
	EventType() EventType
	OccurredAt() time.Time

	// AggregateID is the key of the record the event is about.
	AggregateID() string

	// Payload returns the event data as flat key/values for logging and
	// transport.
	Payload() map[string]any
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	Aggregate     string    `json:"aggregate_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

func (e BaseEvent) EventType() EventType {
	return e.Type
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

func (e BaseEvent) AggregateID() string {
	return e.Aggregate
}

// NewBaseEvent creates a new base event stamped with the current time.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:      eventType,
		Timestamp: time.Now(),
		Aggregate: aggregateID,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Catalog Events
// ═══════════════════════════════════════════════════════════════════════════

// CatalogSyncedEvent is raised after a replica sync run, successful or not.
// Records maps each finished stage to the number of upserted rows.
type CatalogSyncedEvent struct {
	BaseEvent
	Records     map[string]int `json:"records"`
	FailedStage string         `json:"failed_stage,omitempty"`
	Error       string         `json:"error,omitempty"`
}

func (e CatalogSyncedEvent) Payload() map[string]any {
	p := map[string]any{"records": e.Records}
	if e.FailedStage != "" {
		p["failed_stage"] = e.FailedStage
		p["error"] = e.Error
	}
	return p
}

// NewCatalogSyncedEvent builds the event for a run. A non-empty failedStage
// makes it a catalog.sync_failed event.
func NewCatalogSyncedEvent(records map[string]int, failedStage string, err error) CatalogSyncedEvent {
	typ := EventCatalogSynced
	e := CatalogSyncedEvent{Records: records}
	if failedStage != "" {
		typ = EventCatalogSyncFailed
		e.FailedStage = failedStage
		if err != nil {
			e.Error = err.Error()
		}
	}
	e.BaseEvent = NewBaseEvent(typ, "catalog")
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Exam Events
// ═══════════════════════════════════════════════════════════════════════════

// ExamAllocatedEvent is raised after an allocation commits.
type ExamAllocatedEvent struct {
	BaseEvent
	SubjectCode string   `json:"subject_code"`
	Date        string   `json:"date"`
	ShiftCode   string   `json:"shift_code"`
	RoomNumber  string   `json:"room_number"`
	ClassCodes  []string `json:"class_codes,omitempty"`
}

func (e ExamAllocatedEvent) Payload() map[string]any {
	return map[string]any{
		"code":         e.Aggregate,
		"subject_code": e.SubjectCode,
		"date":         e.Date,
		"shift_code":   e.ShiftCode,
		"room_number":  e.RoomNumber,
		"class_codes":  e.ClassCodes,
	}
}

func NewExamAllocatedEvent(code, subjectCode, date, shiftCode, roomNumber string, classCodes []string) ExamAllocatedEvent {
	return ExamAllocatedEvent{
		BaseEvent:   NewBaseEvent(EventExamAllocated, code),
		SubjectCode: subjectCode,
		Date:        date,
		ShiftCode:   shiftCode,
		RoomNumber:  roomNumber,
		ClassCodes:  classCodes,
	}
}

// ProctorAssignedEvent is raised when a session's proctor is set or
// cleared. Proctor is empty when cleared.
type ProctorAssignedEvent struct {
	BaseEvent
	Proctor string `json:"proctor"`
}

func (e ProctorAssignedEvent) Payload() map[string]any {
	return map[string]any{
		"code":    e.Aggregate,
		"proctor": e.Proctor,
	}
}

func NewProctorAssignedEvent(code, proctor string) ProctorAssignedEvent {
	return ProctorAssignedEvent{
		BaseEvent: NewBaseEvent(EventProctorAssigned, code),
		Proctor:   proctor,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Publishing
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	Subscribe(eventType EventType, handler EventHandler) error
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
