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

func roomRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "room_number", "room_type", "capacity", "availability", "location", "equipment", "is_active", "created_at", "updated_at"}).
		AddRow("r1", "A-101", "Room", 40, []byte(availabilityJSON), "Main Campus", "Lecture", true, time.Now(), time.Now())
}

func TestRoomRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, room_number, room_type, capacity, availability, location, equipment, is_active, created_at, updated_at FROM rooms WHERE is_active = TRUE ORDER BY created_at ASC")).
		WillReturnRows(roomRows())

	rooms, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "A-101", rooms[0].RoomNumber)
	assert.Equal(t, models.RoomTypeRoom, rooms[0].RoomType)
	require.Len(t, rooms[0].Availability, 1)
	assert.Equal(t, "Monday", rooms[0].Availability[0].Day)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryExistsByNumber(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM rooms WHERE LOWER(room_number) = LOWER($1) LIMIT 1")).
		WithArgs("A-101").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByNumber(context.Background(), "A-101", "")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM rooms WHERE LOWER(room_number) = LOWER($1) AND id <> $2 LIMIT 1")).
		WithArgs("A-101", "r1").
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.ExistsByNumber(context.Background(), "A-101", "r1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rooms WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
