// Package tools exposes the ledger as a closed set of typed function calls
// for an orchestration layer (for example a model-driven agent) to invoke by
// name with JSON arguments.
package tools

import (
	llmtoolsgoSpec "github.com/flexigpt/llmtools-go/spec"
)

const (
	AddExpense    = "add_expense"
	GetTotal      = "get_total"
	ListExpenses  = "list_expenses"
	GetByCategory = "get_by_category"
	ClearAll      = "clear_all"
)

const (
	FuncIDAddExpense    llmtoolsgoSpec.FuncID = "expenseledger/internal/tools.AddExpense"
	FuncIDGetTotal      llmtoolsgoSpec.FuncID = "expenseledger/internal/tools.GetTotal"
	FuncIDListExpenses  llmtoolsgoSpec.FuncID = "expenseledger/internal/tools.ListExpenses"
	FuncIDGetByCategory llmtoolsgoSpec.FuncID = "expenseledger/internal/tools.GetByCategory"
	FuncIDClearAll      llmtoolsgoSpec.FuncID = "expenseledger/internal/tools.ClearAll"
)

// Instructions is the guidance a conversational front-end is expected to
// follow when driving these tools.
const Instructions = `You are a friendly expense tracker assistant.

You help users track their daily expenses. You can:
- add_expense: Record a new expense with amount, description, and category
- get_total: Show total spending
- list_expenses: Show all expenses
- get_by_category: Filter by category (food, transport, entertainment, etc.)
- clear_all: Delete all expenses (ask for confirmation first!)

Common categories: food, transport, entertainment, shopping, bills, health, other

Always be helpful and format money nicely (e.g., $25.50).
When showing expenses, organize them clearly.`

// Catalog returns freshly built descriptions of every tool, in a stable order.
func Catalog() []llmtoolsgoSpec.Tool {
	return []llmtoolsgoSpec.Tool{
		AddExpenseTool(),
		GetTotalTool(),
		ListExpensesTool(),
		GetByCategoryTool(),
		ClearAllTool(),
	}
}

// Lookup returns the description of the tool with the given slug.
func Lookup(name string) (llmtoolsgoSpec.Tool, bool) {
	for _, t := range Catalog() {
		if t.Slug == name {
			return t, true
		}
	}
	return llmtoolsgoSpec.Tool{}, false
}

func AddExpenseTool() llmtoolsgoSpec.Tool {
	return llmtoolsgoSpec.Tool{
		SchemaVersion: llmtoolsgoSpec.SchemaVersion,
		ID:            "0199a3c2-5e10-7c41-9b2e-6f0d3a8e1001",
		Slug:          AddExpense,
		Version:       "v1.0.0",
		DisplayName:   "Add Expense",
		Description:   "Add a new expense to the tracker.",
		Tags:          []string{"ledger", "write"},
		ArgSchema: llmtoolsgoSpec.JSONSchema(`{
		  "$schema":"http://json-schema.org/draft-07/schema#",
		  "type":"object",
		  "properties":{
		    "amount":{"type":["number","string"],"description":"How much was spent (e.g. 150.50)"},
		    "description":{"type":"string","description":"What was purchased (e.g. \"Groceries at Walmart\")"},
		    "category":{"type":"string","description":"Category of the expense (e.g. \"Food\", \"Transport\")"}
		  },
		  "required":["amount","description","category"],
		  "additionalProperties":false
		}`),
		GoImpl:     llmtoolsgoSpec.GoToolImpl{FuncID: FuncIDAddExpense},
		CreatedAt:  llmtoolsgoSpec.SchemaStartTime,
		ModifiedAt: llmtoolsgoSpec.SchemaStartTime,
	}
}

func GetTotalTool() llmtoolsgoSpec.Tool {
	return llmtoolsgoSpec.Tool{
		SchemaVersion: llmtoolsgoSpec.SchemaVersion,
		ID:            "0199a3c2-5e10-7c41-9b2e-6f0d3a8e1002",
		Slug:          GetTotal,
		Version:       "v1.0.0",
		DisplayName:   "Get Total",
		Description:   "Get the total expenses recorded.",
		Tags:          []string{"ledger", "read"},
		ArgSchema:     emptyArgSchema(),
		GoImpl:        llmtoolsgoSpec.GoToolImpl{FuncID: FuncIDGetTotal},
		CreatedAt:     llmtoolsgoSpec.SchemaStartTime,
		ModifiedAt:    llmtoolsgoSpec.SchemaStartTime,
	}
}

func ListExpensesTool() llmtoolsgoSpec.Tool {
	return llmtoolsgoSpec.Tool{
		SchemaVersion: llmtoolsgoSpec.SchemaVersion,
		ID:            "0199a3c2-5e10-7c41-9b2e-6f0d3a8e1003",
		Slug:          ListExpenses,
		Version:       "v1.0.0",
		DisplayName:   "List Expenses",
		Description:   "List all recorded expenses.",
		Tags:          []string{"ledger", "read"},
		ArgSchema:     emptyArgSchema(),
		GoImpl:        llmtoolsgoSpec.GoToolImpl{FuncID: FuncIDListExpenses},
		CreatedAt:     llmtoolsgoSpec.SchemaStartTime,
		ModifiedAt:    llmtoolsgoSpec.SchemaStartTime,
	}
}

func GetByCategoryTool() llmtoolsgoSpec.Tool {
	return llmtoolsgoSpec.Tool{
		SchemaVersion: llmtoolsgoSpec.SchemaVersion,
		ID:            "0199a3c2-5e10-7c41-9b2e-6f0d3a8e1004",
		Slug:          GetByCategory,
		Version:       "v1.0.0",
		DisplayName:   "Get By Category",
		Description:   "Get expenses filtered by category.",
		Tags:          []string{"ledger", "read"},
		ArgSchema: llmtoolsgoSpec.JSONSchema(`{
		  "$schema":"http://json-schema.org/draft-07/schema#",
		  "type":"object",
		  "properties":{
		    "category":{"type":"string","description":"The category to filter by (e.g. \"Food\")"}
		  },
		  "required":["category"],
		  "additionalProperties":false
		}`),
		GoImpl:     llmtoolsgoSpec.GoToolImpl{FuncID: FuncIDGetByCategory},
		CreatedAt:  llmtoolsgoSpec.SchemaStartTime,
		ModifiedAt: llmtoolsgoSpec.SchemaStartTime,
	}
}

func ClearAllTool() llmtoolsgoSpec.Tool {
	return llmtoolsgoSpec.Tool{
		SchemaVersion: llmtoolsgoSpec.SchemaVersion,
		ID:            "0199a3c2-5e10-7c41-9b2e-6f0d3a8e1005",
		Slug:          ClearAll,
		Version:       "v1.0.0",
		DisplayName:   "Clear All",
		Description:   "Clear all recorded expenses.",
		Tags:          []string{"ledger", "write"},
		ArgSchema:     emptyArgSchema(),
		GoImpl:        llmtoolsgoSpec.GoToolImpl{FuncID: FuncIDClearAll},
		CreatedAt:     llmtoolsgoSpec.SchemaStartTime,
		ModifiedAt:    llmtoolsgoSpec.SchemaStartTime,
	}
}

func emptyArgSchema() llmtoolsgoSpec.JSONSchema {
	return llmtoolsgoSpec.JSONSchema(`{
		  "$schema":"http://json-schema.org/draft-07/schema#",
		  "type":"object",
		  "properties":{},
		  "additionalProperties":false
		}`)
}
