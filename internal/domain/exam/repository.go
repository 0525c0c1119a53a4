package exam

import "context"

// SlotTx is the view of the store available inside an allocation
// transaction. All calls share one transaction.
type SlotTx interface {
	// LockSlot serializes concurrent allocations for the same slot until
	// the transaction ends.
	LockSlot(ctx context.Context, slot Slot) error

	// SessionsInSlot returns the sessions on slot.Date in slot.ShiftCode,
	// in any room.
	SessionsInSlot(ctx context.Context, slot Slot) ([]Session, error)

	// Insert stores a new session. A duplicate code yields an error
	// matching both ErrCodeCollision and shared.ErrConstraint; a missing
	// subject, shift or room yields shared.ErrConstraint.
	Insert(ctx context.Context, s Session) error
}

// UnitOfWork runs fn inside one store transaction. The transaction commits
// when fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx SlotTx) error) error
}

// Repository reads and edits sessions outside allocation.
type Repository interface {
	// List returns every session ordered by date, shift and code.
	List(ctx context.Context) ([]Session, error)

	// ListOn returns the sessions of one date, ordered by shift and code.
	ListOn(ctx context.Context, date string) ([]Session, error)

	// SessionsInSlot is the non-transactional form of SlotTx.SessionsInSlot.
	SessionsInSlot(ctx context.Context, slot Slot) ([]Session, error)

	// ScheduledRooms returns the occupied (room, shift) pairs of a date.
	ScheduledRooms(ctx context.Context, date string) ([]ScheduledRoom, error)

	// UpdateProctor assigns or clears the proctor of a session.
	// Returns shared.ErrNotFound for an unknown code.
	UpdateProctor(ctx context.Context, code string, proctor *string) error
}
