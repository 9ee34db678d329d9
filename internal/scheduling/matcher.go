package scheduling

import (
	"github.com/google/uuid"

	"github.com/usmanali13/university-timetable-management/internal/models"
)

// Matcher binds one pending course to an instructor and a room for a single
// (day, slot) cell. Selection is first-fit over the ledgers' entity order; no
// subject qualification check is applied.
type Matcher struct {
	instructors *Ledger
	rooms       *Ledger
}

// NewMatcher builds a matcher over the two availability ledgers.
func NewMatcher(instructors, rooms *Ledger) *Matcher {
	return &Matcher{instructors: instructors, rooms: rooms}
}

// Match attempts to fill (day, slot) with the given course. A nil entry with
// a nil error means the cell is unfillable: no instructor or no room is free
// there. On success the cell is consumed from both ledgers and the returned
// entry snapshots the course, instructor and room fields.
func (m *Matcher) Match(day, slot string, course models.Course) (*models.ClassEntry, error) {
	instructor, instructorOK := m.instructors.FirstFree(day, slot)
	room, roomOK := m.rooms.FirstFree(day, slot)
	if !instructorOK || !roomOK {
		return nil, nil
	}

	if err := m.instructors.Consume(instructor, day, slot); err != nil {
		return nil, err
	}
	if err := m.rooms.Consume(room, day, slot); err != nil {
		return nil, err
	}

	return &models.ClassEntry{
		ID:             uuid.NewString(),
		TimeSlot:       slot,
		CourseName:     course.CourseName,
		CourseCode:     course.CourseCode,
		CreditHours:    course.CreditHours,
		InstructorName: instructor,
		RoomNumber:     room,
	}, nil
}
