package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DayAvailability lists the free time slots an entity has on one weekday.
type DayAvailability struct {
	Day       string   `json:"day"`
	TimeSlots []string `json:"timeSlots"`
}

// WeeklyAvailability is the ordered per-day availability of an instructor or
// room, stored as a JSONB column.
type WeeklyAvailability []DayAvailability

// Value implements driver.Valuer.
func (w WeeklyAvailability) Value() (driver.Value, error) {
	if w == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(w)
}

// Scan implements sql.Scanner.
func (w *WeeklyAvailability) Scan(src interface{}) error {
	if src == nil {
		*w = nil
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("availability: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, w)
}

// Clone returns a deep copy so callers can mutate slots without touching the
// loaded record.
func (w WeeklyAvailability) Clone() WeeklyAvailability {
	if w == nil {
		return nil
	}
	out := make(WeeklyAvailability, len(w))
	for i, day := range w {
		slots := make([]string, len(day.TimeSlots))
		copy(slots, day.TimeSlots)
		out[i] = DayAvailability{Day: day.Day, TimeSlots: slots}
	}
	return out
}

// StringList is a JSONB-backed list of strings.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("string list: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, l)
}
