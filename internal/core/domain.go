package core

import "strings"

const (
	StatusSuccess = "success"
)

type (
	// Expense is one logged monetary transaction within a session ledger.
	Expense struct {
		ID          int     `json:"id"`
		Amount      float64 `json:"amount"`
		Description string  `json:"description"`
		Category    string  `json:"category"` // always lowercase
	}

	RecordResult struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Expense Expense `json:"expense"`
	}

	TotalResult struct {
		Total   float64 `json:"total"`
		Count   int     `json:"count"`
		Message string  `json:"message"`
	}

	ListResult struct {
		Count    int       `json:"count"`
		Expenses []Expense `json:"expenses"`
		Total    float64   `json:"total"`
		Message  string    `json:"message,omitempty"`
	}

	FilterResult struct {
		Category string    `json:"category"` // as supplied by the caller
		Count    int       `json:"count"`
		Total    float64   `json:"total"`
		Expenses []Expense `json:"expenses"`
		Message  string    `json:"message,omitempty"`
	}

	ClearResult struct {
		Status       string `json:"status"`
		DeletedCount int    `json:"deleted_count"`
		Message      string `json:"message"`
	}
)

// NormalizeCategory returns the stored form of a category name.
func NormalizeCategory(category string) string {
	return strings.ToLower(category)
}

// SumAmounts adds up the amounts of the given expenses.
func SumAmounts(expenses []Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return total
}

// ByCategory returns the expenses whose stored category equals the
// normalized form of category, preserving order.
func ByCategory(expenses []Expense, category string) []Expense {
	want := NormalizeCategory(category)
	out := make([]Expense, 0)
	for _, e := range expenses {
		if e.Category == want {
			out = append(out, e)
		}
	}
	return out
}
