package model

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/frauddetect/internal/domain/valueobject"
)

const (
	MinDay = 1
	MaxDay = 31
)

// TransactionRequest is a transaction description that has passed validation.
type TransactionRequest struct {
	amount    decimal.Decimal
	txType    valueobject.TransactionType
	pairCode  valueobject.PairCode
	partOfDay valueobject.PartOfDay
	day       int
}

// NewTransactionRequest builds a request from already-parsed parts. It
// rejects values the validator would reject so a request can never be
// assembled around it.
func NewTransactionRequest(
	amount decimal.Decimal,
	day int,
	txType valueobject.TransactionType,
	pairCode valueobject.PairCode,
	partOfDay valueobject.PartOfDay,
) (TransactionRequest, error) {
	if txType.IsZero() || pairCode.IsZero() || partOfDay.IsZero() {
		return TransactionRequest{}, fmt.Errorf("transaction request has unset enum fields")
	}
	if !amount.IsPositive() {
		return TransactionRequest{}, fmt.Errorf("amount must be positive: %s", amount)
	}
	if day < MinDay || day > MaxDay {
		return TransactionRequest{}, fmt.Errorf("day must be between 1 and 31: %d", day)
	}

	return TransactionRequest{
		amount:    amount,
		day:       day,
		txType:    txType,
		pairCode:  pairCode,
		partOfDay: partOfDay,
	}, nil
}

func (r TransactionRequest) Amount() decimal.Decimal           { return r.amount }
func (r TransactionRequest) Day() int                          { return r.day }
func (r TransactionRequest) Type() valueobject.TransactionType { return r.txType }
func (r TransactionRequest) PairCode() valueobject.PairCode    { return r.pairCode }
func (r TransactionRequest) PartOfDay() valueobject.PartOfDay  { return r.partOfDay }
