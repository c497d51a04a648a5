package enums

import "fmt"

// PlaceStatus is the moderation state of a listed place.
type PlaceStatus string

const (
	PlaceStatusPending  PlaceStatus = "pending"
	PlaceStatusApproved PlaceStatus = "approved"
	PlaceStatusRejected PlaceStatus = "rejected"
)

var validPlaceStatuses = []PlaceStatus{
	PlaceStatusPending,
	PlaceStatusApproved,
	PlaceStatusRejected,
}

// decisionPlaceStatuses are the statuses an admin decision may assign.
// Pending is never a decision target; it is the automatic state after
// any owner create or edit.
var decisionPlaceStatuses = []PlaceStatus{
	PlaceStatusApproved,
	PlaceStatusRejected,
}

func (s PlaceStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PlaceStatus.
func (s PlaceStatus) IsValid() bool {
	for _, candidate := range validPlaceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsDecision reports whether the value is a valid admin decision target.
func (s PlaceStatus) IsDecision() bool {
	for _, candidate := range decisionPlaceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePlaceStatus converts raw input into a PlaceStatus.
func ParsePlaceStatus(value string) (PlaceStatus, error) {
	for _, candidate := range validPlaceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid place status %q", value)
}
