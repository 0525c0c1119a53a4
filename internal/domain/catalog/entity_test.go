package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examhub/exam-room-scheduler/internal/domain/shared"
)

func TestStandardShifts(t *testing.T) {
	shifts := StandardShifts()
	require.Len(t, shifts, 7)

	assert.Equal(t, Shift{Code: "1", StartTime: "07:00:00", EndTime: "09:00:00"}, shifts[0])
	assert.Equal(t, Shift{Code: "4", StartTime: "13:00:00", EndTime: "15:00:00"}, shifts[3])
	assert.Equal(t, Shift{Code: "7", StartTime: "19:00:00", EndTime: "21:00:00"}, shifts[6])

	for i := 1; i < len(shifts); i++ {
		assert.Equal(t, shifts[i-1].EndTime, shifts[i].StartTime)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Person{RosterNumber: "2301"}.Validate())
	assert.ErrorIs(t, Person{}.Validate(), shared.ErrValidation)
	assert.ErrorIs(t, Subject{Name: "Algorithms"}.Validate(), shared.ErrValidation)
	assert.ErrorIs(t, Room{Number: "R1", Capacity: -1}.Validate(), shared.ErrValidation)
	assert.NoError(t, Room{Number: "R1", Capacity: 40}.Validate())
	assert.ErrorIs(t, Enrollment{SubjectCode: "CS101"}.Validate(), shared.ErrValidation)
}

func TestPerson_HasInitials(t *testing.T) {
	empty := ""
	ab := "AB"
	assert.False(t, Person{}.HasInitials())
	assert.False(t, Person{Initials: &empty}.HasInitials())
	assert.True(t, Person{Initials: &ab}.HasInitials())
}
