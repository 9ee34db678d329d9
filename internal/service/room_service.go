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

type roomRepository interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
	FindByID(ctx context.Context, id string) (*models.Room, error)
	ExistsByNumber(ctx context.Context, number, excludeID string) (bool, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id string) error
}

// CreateRoomRequest represents payload for creating rooms.
type CreateRoomRequest struct {
	RoomNumber   string              `json:"roomNumber" validate:"required"`
	RoomType     string              `json:"roomType" validate:"omitempty,oneof=Room Laboratory 'Seminar Room' 'Computer Lab'"`
	Capacity     int                 `json:"capacity" validate:"required,min=1"`
	Availability []AvailabilityInput `json:"availability" validate:"dive"`
	Location     string              `json:"location" validate:"omitempty,oneof='Main Campus' 'Sub Campus'"`
	Equipment    string              `json:"equipment" validate:"omitempty,oneof=Lecture Lab"`
	IsActive     *bool               `json:"isActive"`
}

// UpdateRoomRequest represents a partial room update.
type UpdateRoomRequest struct {
	RoomNumber   *string             `json:"roomNumber"`
	RoomType     *string             `json:"roomType" validate:"omitempty,oneof=Room Laboratory 'Seminar Room' 'Computer Lab'"`
	Capacity     *int                `json:"capacity" validate:"omitempty,min=1"`
	Availability []AvailabilityInput `json:"availability" validate:"omitempty,dive"`
	Location     *string             `json:"location" validate:"omitempty,oneof='Main Campus' 'Sub Campus'"`
	Equipment    *string             `json:"equipment" validate:"omitempty,oneof=Lecture Lab"`
	IsActive     *bool               `json:"isActive"`
}

// RoomService orchestrates room operations.
type RoomService struct {
	repo      roomRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRoomService constructs a RoomService.
func NewRoomService(repo roomRepository, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{repo: repo, validator: validate, logger: logger}
}

// List returns rooms plus pagination data.
func (s *RoomService) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, *models.Pagination, error) {
	rooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return rooms, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a room by id.
func (s *RoomService) Get(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	return room, nil
}

// Create registers a new room record.
func (s *RoomService) Create(ctx context.Context, req CreateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	exists, err := s.repo.ExistsByNumber(ctx, req.RoomNumber, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "room number already exists")
	}

	room := &models.Room{
		RoomNumber:   strings.TrimSpace(req.RoomNumber),
		RoomType:     models.RoomTypeRoom,
		Capacity:     req.Capacity,
		Availability: toWeeklyAvailability(req.Availability),
		Location:     models.LocationMainCampus,
		Equipment:    models.EquipmentLecture,
		IsActive:     true,
	}
	if req.RoomType != "" {
		room.RoomType = models.RoomType(req.RoomType)
	}
	if req.Location != "" {
		room.Location = models.RoomLocation(req.Location)
	}
	if req.Equipment != "" {
		room.Equipment = models.RoomEquipment(req.Equipment)
	}
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	return room, nil
}

// Update applies a partial update to an existing room.
func (s *RoomService) Update(ctx context.Context, id string, req UpdateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RoomNumber != nil && !strings.EqualFold(*req.RoomNumber, room.RoomNumber) {
		exists, err := s.repo.ExistsByNumber(ctx, *req.RoomNumber, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room number")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "room number already exists")
		}
		room.RoomNumber = strings.TrimSpace(*req.RoomNumber)
	}
	if req.RoomType != nil {
		room.RoomType = models.RoomType(*req.RoomType)
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.Availability != nil {
		room.Availability = toWeeklyAvailability(req.Availability)
	}
	if req.Location != nil {
		room.Location = models.RoomLocation(*req.Location)
	}
	if req.Equipment != nil {
		room.Equipment = models.RoomEquipment(*req.Equipment)
	}
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room")
	}
	return room, nil
}

// Delete removes a room unconditionally.
func (s *RoomService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete room")
	}
	return nil
}
