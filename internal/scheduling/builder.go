package scheduling

import (
	"go.uber.org/zap"

	"github.com/usmanali13/university-timetable-management/internal/models"
)

// Days is the fixed weekday order of the grid walk.
var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// TimeSlots is the fixed slot order within each day.
var TimeSlots = []string{"9AM-10AM", "10AM-11AM", "11AM-12PM", "12PM-1PM"}

// Builder walks the day x slot grid in fixed order and assembles a schedule.
// The walk is strictly sequential: each cell's availability depends on what
// earlier cells consumed.
type Builder struct {
	matcher *Matcher
	logger  *zap.Logger
}

// NewBuilder prepares a builder for one generation run over the given
// instructor and room pools. Availability is copied into ledgers, so the
// input records are left untouched.
func NewBuilder(instructors []models.Instructor, rooms []models.Room, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}

	instructorEntries := make([]LedgerEntry, 0, len(instructors))
	for _, inst := range instructors {
		instructorEntries = append(instructorEntries, LedgerEntry{Label: inst.Name, Availability: inst.Availability})
	}
	roomEntries := make([]LedgerEntry, 0, len(rooms))
	for _, room := range rooms {
		roomEntries = append(roomEntries, LedgerEntry{Label: room.RoomNumber, Availability: room.Availability})
	}

	return &Builder{
		matcher: NewMatcher(NewLedger(instructorEntries), NewLedger(roomEntries)),
		logger:  logger,
	}
}

// Result reports what a grid walk produced.
type Result struct {
	Schedule models.Schedule
	Placed   int
	Dropped  int
}

// Build places courses into the grid. The pending pool is consumed from the
// end of the course list, one course per cell attempt; a course popped for an
// unfillable cell is not requeued. Days with zero placements are omitted.
func (b *Builder) Build(courses []models.Course) (Result, error) {
	pending := make([]models.Course, len(courses))
	copy(pending, courses)

	var result Result
	for _, day := range Days {
		var classes []models.ClassEntry

		for _, slot := range TimeSlots {
			if len(pending) == 0 {
				break
			}
			course := pending[len(pending)-1]
			pending = pending[:len(pending)-1]

			entry, err := b.matcher.Match(day, slot, course)
			if err != nil {
				return Result{}, err
			}
			if entry == nil {
				result.Dropped++
				b.logger.Warn("no instructor/room pair free, course dropped",
					zap.String("course_code", course.CourseCode),
					zap.String("day", day),
					zap.String("time_slot", slot),
				)
				continue
			}
			classes = append(classes, *entry)
			result.Placed++
		}

		if len(classes) > 0 {
			result.Schedule = append(result.Schedule, models.DaySchedule{Day: day, Classes: classes})
		}
	}

	return result, nil
}
