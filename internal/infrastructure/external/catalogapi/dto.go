// Package catalogapi is the client of the remote catalog service, a read-only
// GraphQL endpoint exposing the roster, subjects, rooms and enrollments.
package catalogapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRAPHQL ENVELOPE
// ══════════════════════════════════════════════════════════════════════════════

type graphQLRequest struct {
	Query string `json:"query"`
}

type graphQLResponse[T any] struct {
	Data   *T                `json:"data"`
	Errors []GraphQLErrorDTO `json:"errors,omitempty"`
}

// GraphQLErrorDTO is one entry of a GraphQL "errors" array.
type GraphQLErrorDTO struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

func (e GraphQLErrorDTO) Error() string {
	return e.Message
}

// ══════════════════════════════════════════════════════════════════════════════
// COLLECTION DTOs
// ══════════════════════════════════════════════════════════════════════════════

const (
	queryUsers       = `query { getAllUser { bn_number nim name major role initial } }`
	querySubjects    = `query { getAllSubject { subject_name subject_code } }`
	queryRooms       = `query { getAllRoom { campus room_capacity room_number } }`
	queryEnrollments = `query { getAllEnrollment { class_code nim subject_code } }`
)

// UserDTO is a roster entry as the catalog returns it.
type UserDTO struct {
	BNNumber flexString `json:"bn_number"`
	NIM      flexString `json:"nim"`
	Name     string     `json:"name"`
	Major    string     `json:"major"`
	Role     string     `json:"role"`
	Initial  *string    `json:"initial"`
}

type usersData struct {
	GetAllUser []UserDTO `json:"getAllUser"`
}

type SubjectDTO struct {
	SubjectName string `json:"subject_name"`
	SubjectCode string `json:"subject_code"`
}

type subjectsData struct {
	GetAllSubject []SubjectDTO `json:"getAllSubject"`
}

type RoomDTO struct {
	Campus       string     `json:"campus"`
	RoomCapacity int        `json:"room_capacity"`
	RoomNumber   flexString `json:"room_number"`
}

type roomsData struct {
	GetAllRoom []RoomDTO `json:"getAllRoom"`
}

// EnrollmentDTO fields are nullable in the catalog schema.
type EnrollmentDTO struct {
	ClassCode   *string `json:"class_code"`
	NIM         *string `json:"nim"`
	SubjectCode *string `json:"subject_code"`
}

type enrollmentsData struct {
	GetAllEnrollment []*EnrollmentDTO `json:"getAllEnrollment"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// flexString accepts a JSON string or number. Identifier columns are
// numeric in some catalog deployments.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

func (f flexString) String() string {
	return string(f)
}
