package valueobject

import "fmt"

// PartOfDay is the coarse time bucket in which a transaction happened.
type PartOfDay struct {
	value string
}

var (
	PartOfDayMorning   = PartOfDay{value: "morning"}
	PartOfDayAfternoon = PartOfDay{value: "afternoon"}
	PartOfDayEvening   = PartOfDay{value: "evening"}
	PartOfDayNight     = PartOfDay{value: "night"}
)

// PartOfDayFromString parses a part-of-day bucket.
func PartOfDayFromString(s string) (PartOfDay, error) {
	switch s {
	case "morning":
		return PartOfDayMorning, nil
	case "afternoon":
		return PartOfDayAfternoon, nil
	case "evening":
		return PartOfDayEvening, nil
	case "night":
		return PartOfDayNight, nil
	default:
		return PartOfDay{}, fmt.Errorf("invalid part_of_the_day: %s", s)
	}
}

// String returns the string representation.
func (p PartOfDay) String() string {
	return p.value
}

// IsZero returns true if the PartOfDay has not been set.
func (p PartOfDay) IsZero() bool {
	return p.value == ""
}

// Equal checks equality with another PartOfDay.
func (p PartOfDay) Equal(other PartOfDay) bool {
	return p.value == other.value
}
