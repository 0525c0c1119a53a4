// Package exam models scheduled exam sittings and the rule that decides
// whether a new sitting may be placed in a (date, shift) slot.
package exam

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// DateLayout is the wire and storage format of session dates.
const DateLayout = "2006-01-02"

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Session is one scheduled exam sitting. Proctor references a Person by
// roster number and may be assigned after creation.
type Session struct {
	Code        string  `json:"code"`
	SubjectCode string  `json:"subjectCode"`
	ShiftCode   string  `json:"shiftCode"`
	RoomNumber  string  `json:"roomNumber"`
	Date        string  `json:"date"`
	Proctor     *string `json:"proctor"`
}

// Slot is the unit the conflict rule is evaluated on. Room is not part of it.
type Slot struct {
	Date      string
	ShiftCode string
}

func (s Slot) String() string {
	return s.Date + "/" + s.ShiftCode
}

// ScheduledRoom is a (room, shift) pair occupied on some date.
type ScheduledRoom struct {
	RoomNumber string `json:"roomNumber"`
	ShiftCode  string `json:"shiftCode"`
}

// ParseDate validates a "YYYY-MM-DD" date and returns it unchanged.
func ParseDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if _, err := time.Parse(DateLayout, raw); err != nil {
		return "", shared.WrapError("exam", "ParseDate", shared.ErrInvalidDate,
			fmt.Sprintf("date %q is not YYYY-MM-DD", raw), err)
	}
	return raw, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// ConflictError reports that a slot already holds a session.
type ConflictError struct {
	Date      string
	ShiftCode string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("a session with shift code %s already exists for the date %s", e.ShiftCode, e.Date)
}

// Is makes ConflictError match shared.ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == shared.ErrConflict
}

// ErrCodeCollision marks an insert rejected because the generated session
// code already exists. The whole allocation may be retried.
var ErrCodeCollision = errors.New("session code already in use")

// IsCodeCollision reports whether err is a session code collision.
func IsCodeCollision(err error) bool {
	return errors.Is(err, ErrCodeCollision)
}
