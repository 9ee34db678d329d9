package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/usmanali13/university-timetable-management/internal/models"
	"github.com/usmanali13/university-timetable-management/internal/scheduling"
	appErrors "github.com/usmanali13/university-timetable-management/pkg/errors"
)

type mockTimetableRepo struct {
	exists       bool
	existsErr    error
	byTriple     *models.Timetable
	byTripleErr  error
	byEntry      *models.Timetable
	byEntryErr   error
	byID         *models.Timetable
	byIDErr      error
	first        *models.Timetable
	firstErr     error
	created      *models.Timetable
	createErr    error
	updatedID    string
	updated      models.Schedule
	updateErr    error
	deletedID    string
	deleteErr    error
	existsCalls  int
	createCalls  int
	updateCalls  int
}

func (m *mockTimetableRepo) ExistsByTriple(_ context.Context, _, _ string, _ models.Shift) (bool, error) {
	m.existsCalls++
	return m.exists, m.existsErr
}

func (m *mockTimetableRepo) FindByTriple(_ context.Context, _, _ string, _ models.Shift) (*models.Timetable, error) {
	if m.byTripleErr != nil {
		return nil, m.byTripleErr
	}
	return m.byTriple, nil
}

func (m *mockTimetableRepo) FindByID(_ context.Context, _ string) (*models.Timetable, error) {
	if m.byIDErr != nil {
		return nil, m.byIDErr
	}
	return m.byID, nil
}

func (m *mockTimetableRepo) FindByEntryID(_ context.Context, _ string) (*models.Timetable, error) {
	if m.byEntryErr != nil {
		return nil, m.byEntryErr
	}
	return m.byEntry, nil
}

func (m *mockTimetableRepo) First(_ context.Context) (*models.Timetable, error) {
	if m.firstErr != nil {
		return nil, m.firstErr
	}
	return m.first, nil
}

func (m *mockTimetableRepo) Create(_ context.Context, timetable *models.Timetable) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	m.created = timetable
	return nil
}

func (m *mockTimetableRepo) UpdateSchedule(_ context.Context, id string, schedule models.Schedule) error {
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedID = id
	m.updated = schedule
	return nil
}

func (m *mockTimetableRepo) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedID = id
	return nil
}

type mockCourseSource struct {
	courses []models.Course
	err     error
}

func (m *mockCourseSource) ListForGeneration(_ context.Context, _, _ string) ([]models.Course, error) {
	return m.courses, m.err
}

type mockInstructorSource struct {
	instructors []models.Instructor
	err         error
}

func (m *mockInstructorSource) ListAll(_ context.Context) ([]models.Instructor, error) {
	return m.instructors, m.err
}

type mockRoomSource struct {
	rooms []models.Room
	err   error
}

func (m *mockRoomSource) ListActive(_ context.Context) ([]models.Room, error) {
	return m.rooms, m.err
}

type stubLock struct {
	denied   bool
	acquired int
	released int
}

func (s *stubLock) Acquire(_ context.Context, _, _ string, _ models.Shift) (bool, error) {
	s.acquired++
	return !s.denied, nil
}

func (s *stubLock) Release(_ context.Context, _, _ string, _ models.Shift) error {
	s.released++
	return nil
}

type stubTripleCache struct {
	cached      *models.Timetable
	sets        int
	invalidates int
}

func (s *stubTripleCache) Get(_ context.Context, _, _ string, _ models.Shift) (*models.Timetable, error) {
	return s.cached, nil
}

func (s *stubTripleCache) Set(_ context.Context, timetable *models.Timetable) error {
	s.sets++
	s.cached = timetable
	return nil
}

func (s *stubTripleCache) Invalidate(_ context.Context, _, _ string, _ models.Shift) error {
	s.invalidates++
	s.cached = nil
	return nil
}

func fullWeekAvailability() models.WeeklyAvailability {
	var availability models.WeeklyAvailability
	for _, day := range scheduling.Days {
		availability = append(availability, models.DayAvailability{
			Day:       day,
			TimeSlots: append([]string(nil), scheduling.TimeSlots...),
		})
	}
	return availability
}

func newTimetableFixture(repo *mockTimetableRepo, courses *mockCourseSource, instructors *mockInstructorSource, rooms *mockRoomSource, lock *stubLock, cache *stubTripleCache) *TimetableService {
	return NewTimetableService(repo, courses, instructors, rooms, lock, cache, nil, nil, zap.NewNop())
}

func appErrorCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected typed error, got %v", err)
	return appErr.Code
}

func TestTimetableServiceGenerate(t *testing.T) {
	repo := &mockTimetableRepo{}
	lock := &stubLock{}
	cache := &stubTripleCache{}
	svc := newTimetableFixture(repo,
		&mockCourseSource{courses: []models.Course{{CourseName: "Data Structures", CourseCode: "CS101", CreditHours: 3}}},
		&mockInstructorSource{instructors: []models.Instructor{{Name: "Dr. A", Availability: fullWeekAvailability()}}},
		&mockRoomSource{rooms: []models.Room{{RoomNumber: "R1", Availability: fullWeekAvailability()}}},
		lock, cache,
	)

	timetable, err := svc.Generate(context.Background(), GenerateTimetableRequest{
		Department: "CS", Semester: "3", Shift: "Morning",
	})
	require.NoError(t, err)
	require.NotNil(t, timetable)
	assert.Equal(t, "CS", timetable.Department)
	assert.Equal(t, models.ShiftMorning, timetable.Shift)
	require.Len(t, timetable.Schedule, 1)
	assert.Equal(t, "Monday", timetable.Schedule[0].Day)

	assert.Equal(t, 1, repo.createCalls)
	assert.Equal(t, 1, lock.acquired)
	assert.Equal(t, 1, lock.released)
	assert.Equal(t, 1, cache.invalidates)
}

func TestTimetableServiceGenerateConflict(t *testing.T) {
	repo := &mockTimetableRepo{exists: true}
	svc := newTimetableFixture(repo, &mockCourseSource{}, &mockInstructorSource{}, &mockRoomSource{}, &stubLock{}, &stubTripleCache{})

	_, err := svc.Generate(context.Background(), GenerateTimetableRequest{
		Department: "CS", Semester: "3", Shift: "Morning",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrorCode(t, err))
	assert.Equal(t, 0, repo.createCalls)
}

func TestTimetableServiceGenerateLockDenied(t *testing.T) {
	repo := &mockTimetableRepo{}
	lock := &stubLock{denied: true}
	svc := newTimetableFixture(repo, &mockCourseSource{}, &mockInstructorSource{}, &mockRoomSource{}, lock, &stubTripleCache{})

	_, err := svc.Generate(context.Background(), GenerateTimetableRequest{
		Department: "CS", Semester: "3", Shift: "Morning",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrorCode(t, err))
	assert.Equal(t, 0, repo.existsCalls)
	assert.Equal(t, 0, lock.released)
}

func TestTimetableServiceGeneratePreconditions(t *testing.T) {
	t.Run("no instructors", func(t *testing.T) {
		svc := newTimetableFixture(&mockTimetableRepo{},
			&mockCourseSource{courses: []models.Course{{CourseCode: "CS101"}}},
			&mockInstructorSource{},
			&mockRoomSource{rooms: []models.Room{{RoomNumber: "R1"}}},
			&stubLock{}, &stubTripleCache{},
		)
		_, err := svc.Generate(context.Background(), GenerateTimetableRequest{Department: "CS", Semester: "3", Shift: "Morning"})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrorCode(t, err))
	})

	t.Run("no rooms", func(t *testing.T) {
		svc := newTimetableFixture(&mockTimetableRepo{},
			&mockCourseSource{courses: []models.Course{{CourseCode: "CS101"}}},
			&mockInstructorSource{instructors: []models.Instructor{{Name: "Dr. A"}}},
			&mockRoomSource{},
			&stubLock{}, &stubTripleCache{},
		)
		_, err := svc.Generate(context.Background(), GenerateTimetableRequest{Department: "CS", Semester: "3", Shift: "Morning"})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrorCode(t, err))
	})
}

func TestTimetableServiceGenerateInvalidShift(t *testing.T) {
	svc := newTimetableFixture(&mockTimetableRepo{}, &mockCourseSource{}, &mockInstructorSource{}, &mockRoomSource{}, &stubLock{}, &stubTripleCache{})

	_, err := svc.Generate(context.Background(), GenerateTimetableRequest{Department: "CS", Semester: "3", Shift: "Night"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrorCode(t, err))
}

func TestTimetableServiceGetByTripleCacheHit(t *testing.T) {
	cached := &models.Timetable{ID: "t1", Department: "CS"}
	repo := &mockTimetableRepo{byTripleErr: errors.New("must not be called")}
	svc := newTimetableFixture(repo, &mockCourseSource{}, &mockInstructorSource{}, &mockRoomSource{}, &stubLock{}, &stubTripleCache{cached: cached})

	timetable, err := svc.GetByTriple(context.Background(), "CS", "3", models.ShiftMorning)
	require.NoError(t, err)
	assert.Equal(t, "t1", timetable.ID)
}

func TestTimetableServiceGetByTripleCacheMiss(t *testing.T) {
	stored := &models.Timetable{ID: "t1", Department: "CS"}
	cache := &stubTripleCache{}
	svc := newTimetableFixture(&mockTimetableRepo{byTriple: stored}, &mockCourseSource{}, &mockInstructorSource{}, &mockRoomSource{}, &stubLock{}, cache)

	timetable, err := svc.GetByTriple(context.Background(), "CS", "3", models.ShiftMorning)
	require.NoError(t, err)
	assert.Equal(t, "t1", timetable.ID)
	assert.Equal(t, 1, cache.sets)
}

func TestTimetableServiceGetByTripleNotFound(t *testing.T) {
	svc := newTimetableFixture(&mockTimetableRepo{byTripleErr: sql.ErrNoRows}, &mockCourseSource{}, &mockInstructorSource{}, &mockRoomSource{}, &stubLock{}, &stubTripleCache{})

	_, err := svc.GetByTriple(context.Background(), "CS", "3", models.ShiftMorning)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrorCode(t, err))
}

func TestTimetableServiceEditEntry(t *testing.T) {
	stored := &models.Timetable{
		ID:         "t1",
		Department: "CS",
		Semester:   "3",
		Shift:      models.ShiftMorning,
		Schedule: models.Schedule{
			{Day: "Monday", Classes: []models.ClassEntry{
				{ID: "e1", TimeSlot: "9AM-10AM", RoomNumber: "R1"},
				{ID: "e2", TimeSlot: "10AM-11AM", RoomNumber: "R1"},
			}},
		},
	}
	repo := &mockTimetableRepo{byEntry: stored}
	cache := &stubTripleCache{}
	svc := newTimetableFixture(repo, &mockCourseSource{}, &mockInstructorSource{}, &mockRoomSource{}, &stubLock{}, cache)

	newRoom := "R9"
	timetable, err := svc.EditEntry(context.Background(), "e2", models.ClassEntryUpdate{RoomNumber: &newRoom})
	require.NoError(t, err)

	assert.Equal(t, "R1", timetable.Schedule[0].Classes[0].RoomNumber)
	assert.Equal(t, "R9", timetable.Schedule[0].Classes[1].RoomNumber)
	assert.Equal(t, "10AM-11AM", timetable.Schedule[0].Classes[1].TimeSlot)
	assert.Equal(t, "t1", repo.updatedID)
	assert.Equal(t, 1, cache.invalidates)
}

func TestTimetableServiceEditEntryNotFound(t *testing.T) {
	svc := newTimetableFixture(&mockTimetableRepo{byEntryErr: sql.ErrNoRows}, &mockCourseSource{}, &mockInstructorSource{}, &mockRoomSource{}, &stubLock{}, &stubTripleCache{})

	_, err := svc.EditEntry(context.Background(), "missing", models.ClassEntryUpdate{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrorCode(t, err))
}

func TestTimetableServiceDelete(t *testing.T) {
	stored := &models.Timetable{ID: "t1", Department: "CS", Semester: "3", Shift: models.ShiftMorning}
	repo := &mockTimetableRepo{byID: stored}
	cache := &stubTripleCache{}
	svc := newTimetableFixture(repo, &mockCourseSource{}, &mockInstructorSource{}, &mockRoomSource{}, &stubLock{}, cache)

	require.NoError(t, svc.Delete(context.Background(), "t1"))
	assert.Equal(t, "t1", repo.deletedID)
	assert.Equal(t, 1, cache.invalidates)
}
