package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/usmanali13/university-timetable-management/internal/models"
	appErrors "github.com/usmanali13/university-timetable-management/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

// CreateCourseRequest represents payload for creating courses.
type CreateCourseRequest struct {
	CourseName  string `json:"courseName" validate:"required"`
	CourseCode  string `json:"courseCode" validate:"required"`
	CreditHours int    `json:"creditHours" validate:"required,min=1,max=6"`
	ClassType   string `json:"classType" validate:"omitempty,oneof=Lecture Lab"`
	Semester    string `json:"semester" validate:"required"`
	Department  string `json:"department" validate:"required"`
	Status      string `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

// UpdateCourseRequest represents a partial course update.
type UpdateCourseRequest struct {
	CourseName  *string `json:"courseName"`
	CourseCode  *string `json:"courseCode"`
	CreditHours *int    `json:"creditHours" validate:"omitempty,min=1,max=6"`
	ClassType   *string `json:"classType" validate:"omitempty,oneof=Lecture Lab"`
	Semester    *string `json:"semester"`
	Department  *string `json:"department"`
	Status      *string `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

// CourseService orchestrates course operations.
type CourseService struct {
	repo      courseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, validator: validate, logger: logger}
}

// List returns courses plus pagination data.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return courses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a course by id.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create registers a new course record.
func (s *CourseService) Create(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	exists, err := s.repo.ExistsByCode(ctx, req.CourseCode, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course code already exists")
	}

	course := &models.Course{
		CourseName:  strings.TrimSpace(req.CourseName),
		CourseCode:  strings.TrimSpace(req.CourseCode),
		CreditHours: req.CreditHours,
		ClassType:   models.ClassTypeLecture,
		Semester:    strings.TrimSpace(req.Semester),
		Department:  strings.TrimSpace(req.Department),
		Status:      models.CourseStatusActive,
	}
	if req.ClassType != "" {
		course.ClassType = models.CourseClassType(req.ClassType)
	}
	if req.Status != "" {
		course.Status = models.CourseStatus(req.Status)
	}

	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}
	return course, nil
}

// Update applies a partial update to an existing course.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CourseCode != nil && !strings.EqualFold(*req.CourseCode, course.CourseCode) {
		exists, err := s.repo.ExistsByCode(ctx, *req.CourseCode, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "course code already exists")
		}
		course.CourseCode = strings.TrimSpace(*req.CourseCode)
	}
	if req.CourseName != nil {
		course.CourseName = strings.TrimSpace(*req.CourseName)
	}
	if req.CreditHours != nil {
		course.CreditHours = *req.CreditHours
	}
	if req.ClassType != nil {
		course.ClassType = models.CourseClassType(*req.ClassType)
	}
	if req.Semester != nil {
		course.Semester = strings.TrimSpace(*req.Semester)
	}
	if req.Department != nil {
		course.Department = strings.TrimSpace(*req.Department)
	}
	if req.Status != nil {
		course.Status = models.CourseStatus(*req.Status)
	}

	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}
	return course, nil
}

// Delete removes a course unconditionally.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	return nil
}
