package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usmanali13/university-timetable-management/internal/models"
)

const scheduleJSON = `[{"day":"Monday","classes":[{"id":"e1","timeSlot":"9AM-10AM","courseName":"Data Structures","courseCode":"CS101","creditHours":3,"instructorName":"Dr. A","roomNumber":"R1"}]}]`

func timetableRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "department", "semester", "shift", "schedule", "created_at", "updated_at"}).
		AddRow("t1", "CS", "3", "Morning", []byte(scheduleJSON), time.Now(), time.Now())
}

func TestTimetableRepositoryExistsByTriple(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM timetables WHERE department = $1 AND semester = $2 AND shift = $3 LIMIT 1")).
		WithArgs("CS", "3", models.ShiftMorning).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	exists, err := repo.ExistsByTriple(context.Background(), "CS", "3", models.ShiftMorning)
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM timetables WHERE department = $1 AND semester = $2 AND shift = $3 LIMIT 1")).
		WithArgs("EE", "1", models.ShiftEvening).
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.ExistsByTriple(context.Background(), "EE", "1", models.ShiftEvening)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindByTriple(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, department, semester, shift, schedule, created_at, updated_at FROM timetables WHERE department = $1 AND semester = $2 AND shift = $3 ORDER BY created_at DESC LIMIT 1")).
		WithArgs("CS", "3", models.ShiftMorning).
		WillReturnRows(timetableRows())

	timetable, err := repo.FindByTriple(context.Background(), "CS", "3", models.ShiftMorning)
	require.NoError(t, err)
	require.Len(t, timetable.Schedule, 1)
	assert.Equal(t, "Monday", timetable.Schedule[0].Day)
	require.Len(t, timetable.Schedule[0].Classes, 1)
	assert.Equal(t, "CS101", timetable.Schedule[0].Classes[0].CourseCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryFindByEntryID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectQuery("SELECT id, department, semester, shift, schedule, created_at, updated_at FROM timetables\\s+WHERE EXISTS").
		WithArgs("e1").
		WillReturnRows(timetableRows())

	timetable, err := repo.FindByEntryID(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "t1", timetable.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec("INSERT INTO timetables").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	timetable := &models.Timetable{
		Department: "CS",
		Semester:   "3",
		Shift:      models.ShiftMorning,
		Schedule: models.Schedule{
			{Day: "Monday", Classes: []models.ClassEntry{{ID: "e1", TimeSlot: "9AM-10AM"}}},
		},
	}
	require.NoError(t, repo.Create(context.Background(), timetable))
	assert.NotEmpty(t, timetable.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryUpdateSchedule(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec("UPDATE timetables SET schedule").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateSchedule(context.Background(), "t1", models.Schedule{})
	require.NoError(t, err)

	mock.ExpectExec("UPDATE timetables SET schedule").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateSchedule(context.Background(), "missing", models.Schedule{})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
