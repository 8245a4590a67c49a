package valueobject

import "fmt"

// Status is the fraud classification attached to an assessed transaction.
type Status struct {
	value string
}

var (
	StatusNormal     = Status{value: "normal"}
	StatusSuspicious = Status{value: "suspicious"}
	StatusFraud      = Status{value: "fraud"}
)

// SuspicionThreshold is the probability above which a non-fraud verdict is
// still reported as suspicious.
const SuspicionThreshold = 0.3

// StatusFromString reconstructs a Status from its string representation.
func StatusFromString(s string) (Status, error) {
	switch s {
	case "normal":
		return StatusNormal, nil
	case "suspicious":
		return StatusSuspicious, nil
	case "fraud":
		return StatusFraud, nil
	default:
		return Status{}, fmt.Errorf("invalid status: %s", s)
	}
}

// DeriveStatus applies the classification rule: a fraud verdict always wins,
// otherwise the probability decides between suspicious and normal.
func DeriveStatus(verdict bool, probability float64) Status {
	switch {
	case verdict:
		return StatusFraud
	case probability > SuspicionThreshold:
		return StatusSuspicious
	default:
		return StatusNormal
	}
}

// String returns the string representation.
func (s Status) String() string {
	return s.value
}

// IsZero returns true if the Status has not been set.
func (s Status) IsZero() bool {
	return s.value == ""
}

// Equal checks equality with another Status.
func (s Status) Equal(other Status) bool {
	return s.value == other.value
}

// IsAlerting reports whether the status belongs in the fraud history.
func (s Status) IsAlerting() bool {
	return s == StatusFraud || s == StatusSuspicious
}

// AllStatuses lists every status in reporting order.
func AllStatuses() []Status {
	return []Status{StatusNormal, StatusSuspicious, StatusFraud}
}
