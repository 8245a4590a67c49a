package valueobject

import "fmt"

// TransactionType is the kind of money movement being scored.
type TransactionType struct {
	value string
}

var (
	TransactionTypeCashOut  = TransactionType{value: "CASH_OUT"}
	TransactionTypeTransfer = TransactionType{value: "TRANSFER"}
	TransactionTypePayment  = TransactionType{value: "PAYMENT"}
	TransactionTypeCashIn   = TransactionType{value: "CASH_IN"}
	TransactionTypeDebit    = TransactionType{value: "DEBIT"}
)

// TransactionTypeFromString parses one of the five supported type codes.
// Matching is exact; "cash_out" is rejected.
func TransactionTypeFromString(s string) (TransactionType, error) {
	switch s {
	case "CASH_OUT":
		return TransactionTypeCashOut, nil
	case "TRANSFER":
		return TransactionTypeTransfer, nil
	case "PAYMENT":
		return TransactionTypePayment, nil
	case "CASH_IN":
		return TransactionTypeCashIn, nil
	case "DEBIT":
		return TransactionTypeDebit, nil
	default:
		return TransactionType{}, fmt.Errorf("invalid transaction type: %s", s)
	}
}

// String returns the string representation.
func (t TransactionType) String() string {
	return t.value
}

// IsZero returns true if the TransactionType has not been set.
func (t TransactionType) IsZero() bool {
	return t.value == ""
}

// Equal checks equality with another TransactionType.
func (t TransactionType) Equal(other TransactionType) bool {
	return t.value == other.value
}
