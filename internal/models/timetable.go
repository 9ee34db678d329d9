package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Shift enumerates the two teaching shifts.
type Shift string

const (
	ShiftMorning Shift = "Morning"
	ShiftEvening Shift = "Evening"
)

// ClassEntry is one scheduled class. Course, instructor and room fields are
// snapshots taken at generation time; later edits to the source records do
// not flow back into a published timetable.
type ClassEntry struct {
	ID             string `json:"id"`
	TimeSlot       string `json:"timeSlot"`
	CourseName     string `json:"courseName"`
	CourseCode     string `json:"courseCode"`
	CreditHours    int    `json:"creditHours"`
	InstructorName string `json:"instructorName"`
	RoomNumber     string `json:"roomNumber"`
}

// DaySchedule groups the classes placed on one weekday.
type DaySchedule struct {
	Day     string       `json:"day"`
	Classes []ClassEntry `json:"classes"`
}

// Schedule is the ordered per-day class list, stored as a JSONB column.
type Schedule []DaySchedule

// Value implements driver.Valuer.
func (s Schedule) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *Schedule) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("schedule: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, s)
}

// Timetable is a generated timetable for a (department, semester, shift)
// triple. At most one exists per triple.
type Timetable struct {
	ID         string    `db:"id" json:"id"`
	Department string    `db:"department" json:"department"`
	Semester   string    `db:"semester" json:"semester"`
	Shift      Shift     `db:"shift" json:"shift"`
	Schedule   Schedule  `db:"schedule" json:"schedule"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ClassEntryUpdate carries a partial update for a single class entry.
type ClassEntryUpdate struct {
	TimeSlot       *string `json:"timeSlot"`
	CourseName     *string `json:"courseName"`
	CourseCode     *string `json:"courseCode"`
	CreditHours    *int    `json:"creditHours"`
	InstructorName *string `json:"instructorName"`
	RoomNumber     *string `json:"roomNumber"`
}
