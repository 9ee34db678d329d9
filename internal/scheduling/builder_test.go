package scheduling

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usmanali13/university-timetable-management/internal/models"
)

func fullWeek() models.WeeklyAvailability {
	var availability models.WeeklyAvailability
	for _, day := range Days {
		availability = append(availability, models.DayAvailability{
			Day:       day,
			TimeSlots: append([]string(nil), TimeSlots...),
		})
	}
	return availability
}

func testCourses(n int) []models.Course {
	courses := make([]models.Course, 0, n)
	for i := 0; i < n; i++ {
		courses = append(courses, models.Course{
			CourseName:  fmt.Sprintf("Course %d", i+1),
			CourseCode:  fmt.Sprintf("CS%03d", i+1),
			CreditHours: 3,
		})
	}
	return courses
}

func TestBuilderSingleCell(t *testing.T) {
	instructors := []models.Instructor{{
		Name: "Dr. A",
		Availability: models.WeeklyAvailability{
			{Day: "Monday", TimeSlots: []string{"9AM-10AM"}},
		},
	}}
	rooms := []models.Room{{
		RoomNumber: "R1",
		Availability: models.WeeklyAvailability{
			{Day: "Monday", TimeSlots: []string{"9AM-10AM"}},
		},
	}}
	courses := []models.Course{{CourseName: "Data Structures", CourseCode: "CS101", CreditHours: 3}}

	builder := NewBuilder(instructors, rooms, nil)
	result, err := builder.Build(courses)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Placed)
	assert.Equal(t, 0, result.Dropped)
	require.Len(t, result.Schedule, 1)
	assert.Equal(t, "Monday", result.Schedule[0].Day)
	require.Len(t, result.Schedule[0].Classes, 1)

	entry := result.Schedule[0].Classes[0]
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "9AM-10AM", entry.TimeSlot)
	assert.Equal(t, "CS101", entry.CourseCode)
	assert.Equal(t, "Data Structures", entry.CourseName)
	assert.Equal(t, 3, entry.CreditHours)
	assert.Equal(t, "Dr. A", entry.InstructorName)
	assert.Equal(t, "R1", entry.RoomNumber)
}

func TestBuilderPlacesAtMostOneClassPerSlot(t *testing.T) {
	instructors := []models.Instructor{
		{Name: "Dr. A", Availability: fullWeek()},
		{Name: "Dr. B", Availability: fullWeek()},
	}
	rooms := []models.Room{
		{RoomNumber: "R1", Availability: fullWeek()},
		{RoomNumber: "R2", Availability: fullWeek()},
	}

	builder := NewBuilder(instructors, rooms, nil)
	result, err := builder.Build(testCourses(40))
	require.NoError(t, err)

	// 5 days x 4 slots gives 20 cells; the rest of the pool stays pending.
	assert.Equal(t, 20, result.Placed)
	assert.Equal(t, 0, result.Dropped)

	seen := map[string]struct{}{}
	for _, day := range result.Schedule {
		for _, class := range day.Classes {
			key := day.Day + "|" + class.TimeSlot
			_, dup := seen[key]
			assert.False(t, dup, "slot %s filled twice", key)
			seen[key] = struct{}{}
		}
	}
}

func TestBuilderNoInstructorDoubleBooking(t *testing.T) {
	instructors := []models.Instructor{{Name: "Dr. A", Availability: fullWeek()}}
	rooms := []models.Room{
		{RoomNumber: "R1", Availability: fullWeek()},
		{RoomNumber: "R2", Availability: fullWeek()},
	}

	builder := NewBuilder(instructors, rooms, nil)
	result, err := builder.Build(testCourses(40))
	require.NoError(t, err)

	booked := map[string]struct{}{}
	for _, day := range result.Schedule {
		for _, class := range day.Classes {
			key := class.InstructorName + "|" + day.Day + "|" + class.TimeSlot
			_, dup := booked[key]
			assert.False(t, dup, "instructor double booked at %s", key)
			booked[key] = struct{}{}
		}
	}
	assert.Equal(t, 20, result.Placed)
}

func TestBuilderPopsCoursesFromEnd(t *testing.T) {
	instructors := []models.Instructor{{Name: "Dr. A", Availability: fullWeek()}}
	rooms := []models.Room{{RoomNumber: "R1", Availability: fullWeek()}}
	courses := []models.Course{
		{CourseName: "First", CourseCode: "CS001", CreditHours: 3},
		{CourseName: "Second", CourseCode: "CS002", CreditHours: 3},
	}

	builder := NewBuilder(instructors, rooms, nil)
	result, err := builder.Build(courses)
	require.NoError(t, err)

	require.Len(t, result.Schedule, 1)
	require.Len(t, result.Schedule[0].Classes, 2)
	assert.Equal(t, "CS002", result.Schedule[0].Classes[0].CourseCode)
	assert.Equal(t, "CS001", result.Schedule[0].Classes[1].CourseCode)
}

func TestBuilderDropsCoursesWhenCellUnfillable(t *testing.T) {
	// Instructor and room availability never overlap, so no cell can be
	// filled and every popped course is lost.
	instructors := []models.Instructor{{
		Name: "Dr. A",
		Availability: models.WeeklyAvailability{
			{Day: "Monday", TimeSlots: []string{"9AM-10AM"}},
		},
	}}
	rooms := []models.Room{{
		RoomNumber: "R1",
		Availability: models.WeeklyAvailability{
			{Day: "Tuesday", TimeSlots: []string{"9AM-10AM"}},
		},
	}}

	builder := NewBuilder(instructors, rooms, nil)
	result, err := builder.Build(testCourses(3))
	require.NoError(t, err)

	assert.Empty(t, result.Schedule)
	assert.Equal(t, 0, result.Placed)
	assert.Equal(t, 3, result.Dropped)
}

func TestBuilderOmitsEmptyDays(t *testing.T) {
	instructors := []models.Instructor{{
		Name: "Dr. A",
		Availability: models.WeeklyAvailability{
			{Day: "Wednesday", TimeSlots: []string{"11AM-12PM"}},
		},
	}}
	rooms := []models.Room{{
		RoomNumber: "R1",
		Availability: models.WeeklyAvailability{
			{Day: "Wednesday", TimeSlots: []string{"11AM-12PM"}},
		},
	}}

	builder := NewBuilder(instructors, rooms, nil)
	result, err := builder.Build(testCourses(12))
	require.NoError(t, err)

	require.Len(t, result.Schedule, 1)
	assert.Equal(t, "Wednesday", result.Schedule[0].Day)
	assert.Equal(t, 1, result.Placed)
}

func TestBuilderStopsWhenPoolExhausted(t *testing.T) {
	instructors := []models.Instructor{{Name: "Dr. A", Availability: fullWeek()}}
	rooms := []models.Room{{RoomNumber: "R1", Availability: fullWeek()}}

	builder := NewBuilder(instructors, rooms, nil)
	result, err := builder.Build(testCourses(1))
	require.NoError(t, err)

	require.Len(t, result.Schedule, 1)
	assert.Equal(t, "Monday", result.Schedule[0].Day)
	assert.Equal(t, 1, result.Placed)
	assert.Equal(t, 0, result.Dropped)
}
