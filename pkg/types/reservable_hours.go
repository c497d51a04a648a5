package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DayHours is a single day's bookable window in 24h "HH:MM" wall time.
type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// ReservableHours maps lowercase weekday names to bookable windows,
// persisted as JSONB. Days without an entry are not reservable.
type ReservableHours map[string]DayHours

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// ParseReservableHours decodes and validates the JSON-string form clients
// send in multipart fields. A malformed value is a caller error, never a
// silent pass-through.
func ParseReservableHours(raw string) (ReservableHours, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	var hours ReservableHours
	if err := json.Unmarshal([]byte(trimmed), &hours); err != nil {
		return nil, fmt.Errorf("invalid reservable hours json: %w", err)
	}
	for day, window := range hours {
		if !weekdays[strings.ToLower(day)] {
			return nil, fmt.Errorf("unknown weekday %q", day)
		}
		open, err := parseClock(window.Open)
		if err != nil {
			return nil, fmt.Errorf("%s open: %w", day, err)
		}
		close, err := parseClock(window.Close)
		if err != nil {
			return nil, fmt.Errorf("%s close: %w", day, err)
		}
		if !open.Before(close) {
			return nil, fmt.Errorf("%s window must open before it closes", day)
		}
	}
	return hours, nil
}

func parseClock(value string) (time.Time, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, want HH:MM", value)
	}
	return t, nil
}

// Value marshals the hours into JSON for Postgres.
func (h ReservableHours) Value() (driver.Value, error) {
	if h == nil {
		return nil, nil
	}
	buf, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the hours map.
func (h *ReservableHours) Scan(value interface{}) error {
	if value == nil {
		*h = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("reservable hours: unsupported scan type %T", value)
	}

	result := make(ReservableHours)
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*h = result
	return nil
}
