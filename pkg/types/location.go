package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Location is a place's street address with coordinates, persisted as JSONB.
type Location struct {
	Address string  `json:"address" validate:"required"`
	Lat     float64 `json:"lat" validate:"min=-90,max=90"`
	Lng     float64 `json:"lng" validate:"min=-180,max=180"`
}

// ParseLocation decodes the JSON-string form clients send in multipart fields.
func ParseLocation(raw string) (*Location, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("location is required")
	}
	var loc Location
	if err := json.Unmarshal([]byte(trimmed), &loc); err != nil {
		return nil, fmt.Errorf("invalid location json: %w", err)
	}
	if loc.Address == "" {
		return nil, fmt.Errorf("location address is required")
	}
	if loc.Lat < -90 || loc.Lat > 90 {
		return nil, fmt.Errorf("location lat out of range")
	}
	if loc.Lng < -180 || loc.Lng > 180 {
		return nil, fmt.Errorf("location lng out of range")
	}
	return &loc, nil
}

// Value marshals the location into JSON for Postgres.
func (l Location) Value() (driver.Value, error) {
	buf, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the location.
func (l *Location) Scan(value interface{}) error {
	if value == nil {
		*l = Location{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("location: unsupported scan type %T", value)
	}

	return json.Unmarshal(raw, l)
}
