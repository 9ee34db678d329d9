package scheduling

import (
	"fmt"

	"github.com/usmanali13/university-timetable-management/internal/models"
	appErrors "github.com/usmanali13/university-timetable-management/pkg/errors"
)

// LedgerEntry seeds the ledger with one schedulable entity and its weekly
// availability.
type LedgerEntry struct {
	Label        string
	Availability models.WeeklyAvailability
}

type ledgerEntity struct {
	label string
	free  map[string]map[string]struct{} // day -> free slots
}

// Ledger tracks which (day, slot) cells remain free for a set of entities
// (instructors or rooms) and supports consuming one cell at a time. It copies
// the availability it is given: mutations stay inside one generation run and
// never reach the persisted records.
type Ledger struct {
	entities []ledgerEntity
}

// NewLedger builds a ledger preserving the given entity order, which is also
// the first-fit scan order.
func NewLedger(entries []LedgerEntry) *Ledger {
	entities := make([]ledgerEntity, 0, len(entries))
	for _, entry := range entries {
		free := make(map[string]map[string]struct{}, len(entry.Availability))
		for _, day := range entry.Availability {
			slots, ok := free[day.Day]
			if !ok {
				slots = make(map[string]struct{}, len(day.TimeSlots))
				free[day.Day] = slots
			}
			for _, slot := range day.TimeSlots {
				slots[slot] = struct{}{}
			}
		}
		entities = append(entities, ledgerEntity{label: entry.Label, free: free})
	}
	return &Ledger{entities: entities}
}

// IsFree reports whether the named entity still has (day, slot) available.
func (l *Ledger) IsFree(label, day, slot string) bool {
	for i := range l.entities {
		if l.entities[i].label == label {
			return l.entities[i].isFree(day, slot)
		}
	}
	return false
}

// FirstFree scans entities in their given order and returns the label of the
// first one free at (day, slot).
func (l *Ledger) FirstFree(day, slot string) (string, bool) {
	for i := range l.entities {
		if l.entities[i].isFree(day, slot) {
			return l.entities[i].label, true
		}
	}
	return "", false
}

// Consume removes (day, slot) from the named entity's free set. Consuming a
// cell that is not free is an invariant violation: the matcher only consumes
// after a successful FirstFree.
func (l *Ledger) Consume(label, day, slot string) error {
	for i := range l.entities {
		if l.entities[i].label != label {
			continue
		}
		if l.entities[i].isFree(day, slot) {
			delete(l.entities[i].free[day], slot)
			return nil
		}
	}
	return appErrors.Wrap(
		fmt.Errorf("%s has no free slot %s on %s", label, slot, day),
		appErrors.ErrInvariant.Code, appErrors.ErrInvariant.Status, appErrors.ErrInvariant.Message,
	)
}

func (e *ledgerEntity) isFree(day, slot string) bool {
	slots, ok := e.free[day]
	if !ok {
		return false
	}
	_, ok = slots[slot]
	return ok
}
