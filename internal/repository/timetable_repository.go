package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/usmanali13/university-timetable-management/internal/models"
)

// TimetableRepository persists generated timetables.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs a TimetableRepository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

const timetableColumns = "id, department, semester, shift, schedule, created_at, updated_at"

// ExistsByTriple reports whether a timetable already exists for the
// (department, semester, shift) triple.
func (r *TimetableRepository) ExistsByTriple(ctx context.Context, department, semester string, shift models.Shift) (bool, error) {
	const query = `SELECT 1 FROM timetables WHERE department = $1 AND semester = $2 AND shift = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, department, semester, shift); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check timetable existence: %w", err)
	}
	return true, nil
}

// FindByTriple returns the most recently created timetable for the triple.
func (r *TimetableRepository) FindByTriple(ctx context.Context, department, semester string, shift models.Shift) (*models.Timetable, error) {
	query := fmt.Sprintf("SELECT %s FROM timetables WHERE department = $1 AND semester = $2 AND shift = $3 ORDER BY created_at DESC LIMIT 1", timetableColumns)
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, department, semester, shift); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// FindByID loads a timetable by its identifier.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	query := fmt.Sprintf("SELECT %s FROM timetables WHERE id = $1", timetableColumns)
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// FindByEntryID locates the timetable containing the given class entry. The
// entry identifiers live inside the schedule JSONB document.
func (r *TimetableRepository) FindByEntryID(ctx context.Context, entryID string) (*models.Timetable, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetables
WHERE EXISTS (
	SELECT 1 FROM jsonb_array_elements(schedule) AS day,
		jsonb_array_elements(day->'classes') AS class
	WHERE class->>'id' = $1
) LIMIT 1`, timetableColumns)
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, entryID); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// First returns any stored timetable, newest first. Mirrors the lookup used
// by PDF download and email dispatch.
func (r *TimetableRepository) First(ctx context.Context) (*models.Timetable, error) {
	query := fmt.Sprintf("SELECT %s FROM timetables ORDER BY created_at DESC LIMIT 1", timetableColumns)
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// Create inserts a generated timetable.
func (r *TimetableRepository) Create(ctx context.Context, timetable *models.Timetable) error {
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = now
	}
	timetable.UpdatedAt = now

	const query = `INSERT INTO timetables (id, department, semester, shift, schedule, created_at, updated_at)
		VALUES (:id, :department, :semester, :shift, :schedule, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, timetable); err != nil {
		return fmt.Errorf("create timetable: %w", err)
	}
	return nil
}

// UpdateSchedule replaces the schedule document of an existing timetable.
func (r *TimetableRepository) UpdateSchedule(ctx context.Context, id string, schedule models.Schedule) error {
	const query = `UPDATE timetables SET schedule = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, schedule, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update timetable schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a timetable as a whole.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM timetables WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("timetable rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
