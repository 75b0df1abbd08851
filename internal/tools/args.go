package tools

import (
	"encoding/json"
	"errors"

	"expenseledger/internal/core"
)

var errNotANumber = errors.New("must be a number")

// Amount accepts a JSON number or a string holding a decimal (dot, or comma
// with one or two digits).
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*a = Amount(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if v, err := core.ParseAmount(s); err == nil {
			*a = Amount(v)
			return nil
		}
	}
	return errNotANumber
}

type (
	// AddExpenseArgs are the arguments of add_expense. Pointers tell a
	// missing or null field apart from an empty one.
	AddExpenseArgs struct {
		Amount      *Amount `json:"amount"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
	}

	GetByCategoryArgs struct {
		Category *string `json:"category"`
	}

	// NoArgs is accepted by tools without parameters.
	NoArgs struct{}
)

type validator interface {
	validate() error
}

func (a AddExpenseArgs) validate() error {
	switch {
	case a.Amount == nil:
		return required("amount")
	case a.Description == nil:
		return required("description")
	case a.Category == nil:
		return required("category")
	}
	return nil
}

func (a GetByCategoryArgs) validate() error {
	if a.Category == nil {
		return required("category")
	}
	return nil
}

func (NoArgs) validate() error { return nil }

func required(name string) error {
	return &ArgumentError{Argument: name, Reason: "is required"}
}
