package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/usmanali13/university-timetable-management/internal/models"
	"github.com/usmanali13/university-timetable-management/internal/scheduling"
	appErrors "github.com/usmanali13/university-timetable-management/pkg/errors"
)

type timetableRepository interface {
	ExistsByTriple(ctx context.Context, department, semester string, shift models.Shift) (bool, error)
	FindByTriple(ctx context.Context, department, semester string, shift models.Shift) (*models.Timetable, error)
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	FindByEntryID(ctx context.Context, entryID string) (*models.Timetable, error)
	First(ctx context.Context) (*models.Timetable, error)
	Create(ctx context.Context, timetable *models.Timetable) error
	UpdateSchedule(ctx context.Context, id string, schedule models.Schedule) error
	Delete(ctx context.Context, id string) error
}

type generationCourseSource interface {
	ListForGeneration(ctx context.Context, department, semester string) ([]models.Course, error)
}

type generationInstructorSource interface {
	ListAll(ctx context.Context) ([]models.Instructor, error)
}

type generationRoomSource interface {
	ListActive(ctx context.Context) ([]models.Room, error)
}

// tripleLocker serializes generation runs per (department, semester, shift):
// the existence check and the final insert form one critical section.
type tripleLocker interface {
	Acquire(ctx context.Context, department, semester string, shift models.Shift) (bool, error)
	Release(ctx context.Context, department, semester string, shift models.Shift) error
}

type tripleCache interface {
	Get(ctx context.Context, department, semester string, shift models.Shift) (*models.Timetable, error)
	Set(ctx context.Context, timetable *models.Timetable) error
	Invalidate(ctx context.Context, department, semester string, shift models.Shift) error
}

// GenerateTimetableRequest identifies the triple to generate for.
type GenerateTimetableRequest struct {
	Department string `json:"department" validate:"required"`
	Semester   string `json:"semester" validate:"required"`
	Shift      string `json:"shift" validate:"required,oneof=Morning Evening"`
}

// TimetableService drives timetable generation and lifecycle operations.
type TimetableService struct {
	timetables  timetableRepository
	courses     generationCourseSource
	instructors generationInstructorSource
	rooms       generationRoomSource
	lock        tripleLocker
	cache       tripleCache
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTimetableService constructs a TimetableService.
func NewTimetableService(
	timetables timetableRepository,
	courses generationCourseSource,
	instructors generationInstructorSource,
	rooms generationRoomSource,
	lock tripleLocker,
	cache tripleCache,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		timetables:  timetables,
		courses:     courses,
		instructors: instructors,
		rooms:       rooms,
		lock:        lock,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// Generate walks the day x slot grid and persists a new timetable for the
// triple. Fails with Conflict if one already exists, and with
// PreconditionFailed when no instructors or no active rooms are available.
func (s *TimetableService) Generate(ctx context.Context, req GenerateTimetableRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}
	shift := models.Shift(req.Shift)

	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, req.Department, req.Semester, shift)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire generation lock")
		}
		if !acquired {
			s.metrics.ObserveGeneration("conflict", 0, 0)
			return nil, appErrors.Clone(appErrors.ErrConflict, "timetable generation already in progress")
		}
		defer func() {
			if err := s.lock.Release(ctx, req.Department, req.Semester, shift); err != nil {
				s.logger.Warn("failed to release generation lock", zap.Error(err))
			}
		}()
	}

	exists, err := s.timetables.ExistsByTriple(ctx, req.Department, req.Semester, shift)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing timetable")
	}
	if exists {
		s.metrics.ObserveGeneration("conflict", 0, 0)
		return nil, appErrors.Clone(appErrors.ErrConflict, "timetable already exists")
	}

	courses, err := s.courses.ListForGeneration(ctx, req.Department, req.Semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	instructors, err := s.instructors.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructors")
	}
	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}

	if len(instructors) == 0 {
		s.metrics.ObserveGeneration("precondition_failed", 0, 0)
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no available instructors")
	}
	if len(rooms) == 0 {
		s.metrics.ObserveGeneration("precondition_failed", 0, 0)
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no available rooms")
	}

	builder := scheduling.NewBuilder(instructors, rooms, s.logger)
	result, err := builder.Build(courses)
	if err != nil {
		s.metrics.ObserveGeneration("error", 0, 0)
		return nil, err
	}

	timetable := &models.Timetable{
		Department: req.Department,
		Semester:   req.Semester,
		Shift:      shift,
		Schedule:   result.Schedule,
	}
	if err := s.timetables.Create(ctx, timetable); err != nil {
		s.metrics.ObserveGeneration("error", result.Placed, result.Dropped)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable")
	}

	if err := s.cacheInvalidate(ctx, req.Department, req.Semester, shift); err != nil {
		s.logger.Warn("failed to invalidate timetable cache", zap.Error(err))
	}

	s.metrics.ObserveGeneration("success", result.Placed, result.Dropped)
	s.logger.Info("timetable generated",
		zap.String("department", req.Department),
		zap.String("semester", req.Semester),
		zap.String("shift", req.Shift),
		zap.Int("classes_placed", result.Placed),
		zap.Int("courses_dropped", result.Dropped),
	)
	return timetable, nil
}

// GetByTriple returns the most recently created timetable for the triple,
// consulting the cache first.
func (s *TimetableService) GetByTriple(ctx context.Context, department, semester string, shift models.Shift) (*models.Timetable, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, department, semester, shift)
		if err != nil {
			s.logger.Warn("timetable cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	timetable, err := s.timetables.FindByTriple(ctx, department, semester, shift)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, timetable); err != nil {
			s.logger.Warn("timetable cache write failed", zap.Error(err))
		}
	}
	return timetable, nil
}

// GetLatest returns any stored timetable, newest first.
func (s *TimetableService) GetLatest(ctx context.Context) (*models.Timetable, error) {
	timetable, err := s.timetables.First(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return timetable, nil
}

// EditEntry applies a partial update to a single class entry located by its
// identifier across all stored schedules.
func (s *TimetableService) EditEntry(ctx context.Context, entryID string, update models.ClassEntryUpdate) (*models.Timetable, error) {
	timetable, err := s.timetables.FindByEntryID(ctx, entryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to locate class entry")
	}

	updated := false
	for di := range timetable.Schedule {
		for ci := range timetable.Schedule[di].Classes {
			entry := &timetable.Schedule[di].Classes[ci]
			if entry.ID != entryID {
				continue
			}
			applyEntryUpdate(entry, update)
			updated = true
		}
	}
	if !updated {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class entry not found")
	}

	if err := s.timetables.UpdateSchedule(ctx, timetable.ID, timetable.Schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timetable")
	}

	if err := s.cacheInvalidate(ctx, timetable.Department, timetable.Semester, timetable.Shift); err != nil {
		s.logger.Warn("failed to invalidate timetable cache", zap.Error(err))
	}
	return timetable, nil
}

// Delete removes a timetable as a whole.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	timetable, err := s.timetables.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	if err := s.timetables.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	if err := s.cacheInvalidate(ctx, timetable.Department, timetable.Semester, timetable.Shift); err != nil {
		s.logger.Warn("failed to invalidate timetable cache", zap.Error(err))
	}
	return nil
}

func (s *TimetableService) cacheInvalidate(ctx context.Context, department, semester string, shift models.Shift) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, department, semester, shift)
}

func applyEntryUpdate(entry *models.ClassEntry, update models.ClassEntryUpdate) {
	if update.TimeSlot != nil {
		entry.TimeSlot = *update.TimeSlot
	}
	if update.CourseName != nil {
		entry.CourseName = *update.CourseName
	}
	if update.CourseCode != nil {
		entry.CourseCode = *update.CourseCode
	}
	if update.CreditHours != nil {
		entry.CreditHours = *update.CreditHours
	}
	if update.InstructorName != nil {
		entry.InstructorName = *update.InstructorName
	}
	if update.RoomNumber != nil {
		entry.RoomNumber = *update.RoomNumber
	}
}
