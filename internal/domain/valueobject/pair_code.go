package valueobject

import "fmt"

// PairCode identifies the counterparties of a transaction: customer to
// customer ("cc") or customer to merchant ("cm").
type PairCode struct {
	value string
}

var (
	PairCodeCustomerToCustomer = PairCode{value: "cc"}
	PairCodeCustomerToMerchant = PairCode{value: "cm"}
)

// PairCodeFromString parses a pair code.
func PairCodeFromString(s string) (PairCode, error) {
	switch s {
	case "cc":
		return PairCodeCustomerToCustomer, nil
	case "cm":
		return PairCodeCustomerToMerchant, nil
	default:
		return PairCode{}, fmt.Errorf("invalid transaction_pair_code: %s", s)
	}
}

// String returns the string representation.
func (p PairCode) String() string {
	return p.value
}

// IsZero returns true if the PairCode has not been set.
func (p PairCode) IsZero() bool {
	return p.value == ""
}

// Equal checks equality with another PairCode.
func (p PairCode) Equal(other PairCode) bool {
	return p.value == other.value
}
