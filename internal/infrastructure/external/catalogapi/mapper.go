package catalogapi

import (
	"strings"

	"github.com/examhub/exam-room-scheduler/internal/domain/catalog"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAPPER - DTO to domain transformations
// ══════════════════════════════════════════════════════════════════════════════

// Mapper keeps catalog field names out of the domain.
type Mapper struct{}

func NewMapper() *Mapper {
	return &Mapper{}
}

// Person maps a roster entry. A blank initial is treated as absent.
func (m *Mapper) Person(dto UserDTO) catalog.Person {
	p := catalog.Person{
		InstitutionNumber: strings.TrimSpace(dto.BNNumber.String()),
		RosterNumber:      strings.TrimSpace(dto.NIM.String()),
		Name:              dto.Name,
		Major:             dto.Major,
		Role:              dto.Role,
	}
	if dto.Initial != nil {
		if v := strings.TrimSpace(*dto.Initial); v != "" {
			p.Initials = &v
		}
	}
	return p
}

func (m *Mapper) People(dtos []UserDTO) []catalog.Person {
	out := make([]catalog.Person, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, m.Person(d))
	}
	return out
}

func (m *Mapper) Subjects(dtos []SubjectDTO) []catalog.Subject {
	out := make([]catalog.Subject, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, catalog.Subject{Code: d.SubjectCode, Name: d.SubjectName})
	}
	return out
}

func (m *Mapper) Rooms(dtos []RoomDTO) []catalog.Room {
	out := make([]catalog.Room, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, catalog.Room{
			Number:   d.RoomNumber.String(),
			Capacity: d.RoomCapacity,
			Campus:   d.Campus,
		})
	}
	return out
}

// Enrollments drops null entries and entries with any null field.
func (m *Mapper) Enrollments(dtos []*EnrollmentDTO) []catalog.Enrollment {
	out := make([]catalog.Enrollment, 0, len(dtos))
	for _, d := range dtos {
		if d == nil || d.ClassCode == nil || d.NIM == nil || d.SubjectCode == nil {
			continue
		}
		out = append(out, catalog.Enrollment{
			ClassCode:    *d.ClassCode,
			SubjectCode:  *d.SubjectCode,
			RosterNumber: *d.NIM,
		})
	}
	return out
}
