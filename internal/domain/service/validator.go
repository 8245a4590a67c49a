package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/frauddetect/internal/domain/model"
	"github.com/bibbank/frauddetect/internal/domain/valueobject"
)

// RawTransaction is an unvalidated transaction submission as it arrives from
// a transport.
type RawTransaction struct {
	Amount    decimal.Decimal
	Type      string
	PairCode  string
	PartOfDay string
	Day       int
}

// Validator turns raw submissions into TransactionRequests. Rules run in a
// fixed order and the first violation is the one reported.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks, in order: presence, type, pair code, part of day, amount, day.
func (v *Validator) Validate(raw *RawTransaction) (model.TransactionRequest, error) {
	if raw == nil {
		return model.TransactionRequest{}, &model.ValidationError{
			Field:   "request",
			Message: "Request body is null",
		}
	}

	txType, err := valueobject.TransactionTypeFromString(raw.Type)
	if err != nil {
		return model.TransactionRequest{}, invalid("type", raw.Type, "Invalid transaction type: %s", raw.Type)
	}

	pairCode, err := valueobject.PairCodeFromString(raw.PairCode)
	if err != nil {
		return model.TransactionRequest{}, invalid("transaction_pair_code", raw.PairCode,
			"Invalid transaction_pair_code: %s", raw.PairCode)
	}

	partOfDay, err := valueobject.PartOfDayFromString(raw.PartOfDay)
	if err != nil {
		return model.TransactionRequest{}, invalid("part_of_the_day", raw.PartOfDay,
			"Invalid part_of_the_day: %s", raw.PartOfDay)
	}

	if !raw.Amount.IsPositive() {
		return model.TransactionRequest{}, invalid("amount", raw.Amount,
			"Amount must be positive: %s", raw.Amount.String())
	}

	if raw.Day < model.MinDay || raw.Day > model.MaxDay {
		return model.TransactionRequest{}, invalid("day", raw.Day, "Day must be between 1 and 31: %d", raw.Day)
	}

	req, err := model.NewTransactionRequest(raw.Amount, raw.Day, txType, pairCode, partOfDay)
	if err != nil {
		return model.TransactionRequest{}, &model.InternalError{Message: "failed to build transaction request", Err: err}
	}
	return req, nil
}

func invalid(field string, value any, format string, args ...any) *model.ValidationError {
	return &model.ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf(format, args...),
	}
}
