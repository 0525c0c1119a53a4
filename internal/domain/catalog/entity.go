package catalog

import (
	"fmt"
	"strings"

	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Person is one entry of the roster. RosterNumber is the store key and the
// default login credential; InstitutionNumber is the institution-wide id.
type Person struct {
	InstitutionNumber string  `json:"institutionNumber"`
	RosterNumber      string  `json:"rosterNumber"`
	Name              string  `json:"name"`
	Major             string  `json:"major"`
	Role              string  `json:"role"`
	Initials          *string `json:"initials,omitempty"`
}

// HasInitials reports whether the person can log in by initials.
func (p Person) HasInitials() bool {
	return p.Initials != nil && *p.Initials != ""
}

// Validate checks the key is present.
func (p Person) Validate() error {
	if strings.TrimSpace(p.RosterNumber) == "" {
		return shared.NewDomainError("catalog", "Person.Validate", shared.ErrValidation, "roster number is required")
	}
	return nil
}

// Subject is an examinable course.
type Subject struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (s Subject) Validate() error {
	if strings.TrimSpace(s.Code) == "" {
		return shared.NewDomainError("catalog", "Subject.Validate", shared.ErrValidation, "subject code is required")
	}
	return nil
}

// Room is a physical exam room.
type Room struct {
	Number   string `json:"number"`
	Capacity int    `json:"capacity"`
	Campus   string `json:"campus"`
}

func (r Room) Validate() error {
	if strings.TrimSpace(r.Number) == "" {
		return shared.NewDomainError("catalog", "Room.Validate", shared.ErrValidation, "room number is required")
	}
	if r.Capacity < 0 {
		return shared.NewDomainError("catalog", "Room.Validate", shared.ErrValidation,
			fmt.Sprintf("room %s has negative capacity %d", r.Number, r.Capacity))
	}
	return nil
}

// Enrollment registers one person in one class section of a subject.
type Enrollment struct {
	ClassCode    string `json:"classCode"`
	SubjectCode  string `json:"subjectCode"`
	RosterNumber string `json:"rosterNumber"`
}

func (e Enrollment) Validate() error {
	if strings.TrimSpace(e.ClassCode) == "" {
		return shared.NewDomainError("catalog", "Enrollment.Validate", shared.ErrValidation, "class code is required")
	}
	return nil
}
