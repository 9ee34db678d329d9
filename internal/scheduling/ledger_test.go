package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usmanali13/university-timetable-management/internal/models"
)

func mondayMorning(label string, slots ...string) LedgerEntry {
	return LedgerEntry{
		Label: label,
		Availability: models.WeeklyAvailability{
			{Day: "Monday", TimeSlots: slots},
		},
	}
}

func TestLedgerIsFree(t *testing.T) {
	ledger := NewLedger([]LedgerEntry{mondayMorning("Dr. A", "9AM-10AM", "10AM-11AM")})

	assert.True(t, ledger.IsFree("Dr. A", "Monday", "9AM-10AM"))
	assert.False(t, ledger.IsFree("Dr. A", "Monday", "11AM-12PM"))
	assert.False(t, ledger.IsFree("Dr. A", "Tuesday", "9AM-10AM"))
	assert.False(t, ledger.IsFree("Dr. B", "Monday", "9AM-10AM"))
}

func TestLedgerFirstFreeScansInOrder(t *testing.T) {
	ledger := NewLedger([]LedgerEntry{
		mondayMorning("Dr. A", "10AM-11AM"),
		mondayMorning("Dr. B", "9AM-10AM", "10AM-11AM"),
		mondayMorning("Dr. C", "10AM-11AM"),
	})

	label, ok := ledger.FirstFree("Monday", "9AM-10AM")
	require.True(t, ok)
	assert.Equal(t, "Dr. B", label)

	label, ok = ledger.FirstFree("Monday", "10AM-11AM")
	require.True(t, ok)
	assert.Equal(t, "Dr. A", label)

	_, ok = ledger.FirstFree("Monday", "12PM-1PM")
	assert.False(t, ok)
}

func TestLedgerConsume(t *testing.T) {
	ledger := NewLedger([]LedgerEntry{mondayMorning("R1", "9AM-10AM")})

	require.NoError(t, ledger.Consume("R1", "Monday", "9AM-10AM"))
	assert.False(t, ledger.IsFree("R1", "Monday", "9AM-10AM"))

	err := ledger.Consume("R1", "Monday", "9AM-10AM")
	require.Error(t, err)

	err = ledger.Consume("R2", "Monday", "9AM-10AM")
	require.Error(t, err)
}

func TestLedgerCopiesAvailability(t *testing.T) {
	availability := models.WeeklyAvailability{
		{Day: "Monday", TimeSlots: []string{"9AM-10AM"}},
	}
	ledger := NewLedger([]LedgerEntry{{Label: "Dr. A", Availability: availability}})

	require.NoError(t, ledger.Consume("Dr. A", "Monday", "9AM-10AM"))

	assert.Equal(t, []string{"9AM-10AM"}, availability[0].TimeSlots)
}

func TestLedgerDuplicateDayEntriesMerge(t *testing.T) {
	ledger := NewLedger([]LedgerEntry{{
		Label: "Dr. A",
		Availability: models.WeeklyAvailability{
			{Day: "Monday", TimeSlots: []string{"9AM-10AM"}},
			{Day: "Monday", TimeSlots: []string{"10AM-11AM"}},
		},
	}})

	assert.True(t, ledger.IsFree("Dr. A", "Monday", "9AM-10AM"))
	assert.True(t, ledger.IsFree("Dr. A", "Monday", "10AM-11AM"))
}
