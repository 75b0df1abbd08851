package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flexigpt/llmtools-go"
	llmtoolsgoSpec "github.com/flexigpt/llmtools-go/spec"

	"expenseledger/internal/core"
)

const callTimeout = 10 * time.Second

var (
	ErrUnknownTool      = errors.New("unknown tool")
	ErrInvalidArguments = errors.New("invalid arguments")
)

// ArgumentError reports a type-invalid or missing argument.
type ArgumentError struct {
	Tool     string
	Argument string
	Reason   string
}

func (e *ArgumentError) Error() string {
	if e.Argument == "" {
		return fmt.Sprintf("%s: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("%s: argument %q %s", e.Tool, e.Argument, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return ErrInvalidArguments }

// Ledger is the set of session-scoped operations the dispatcher drives.
type Ledger interface {
	Record(ctx context.Context, sessionID string, amount float64, description, category string) (core.RecordResult, error)
	Total(ctx context.Context, sessionID string) (core.TotalResult, error)
	List(ctx context.Context, sessionID string) (core.ListResult, error)
	FilterByCategory(ctx context.Context, sessionID, category string) (core.FilterResult, error)
	ClearAll(ctx context.Context, sessionID string) (core.ClearResult, error)
}

// Dispatcher runs the ledger tools through an llmtools-go registry.
type Dispatcher struct {
	registry *llmtools.Registry
}

// NewDispatcher registers the five ledger tools against l.
func NewDispatcher(l Ledger) (*Dispatcher, error) {
	r, err := llmtools.NewRegistry(llmtools.WithDefaultCallTimeout(callTimeout))
	if err != nil {
		return nil, err
	}

	if err := register(r, AddExpenseTool(), func(ctx context.Context, sessionID string, a AddExpenseArgs) (core.RecordResult, error) {
		return l.Record(ctx, sessionID, float64(*a.Amount), *a.Description, *a.Category)
	}); err != nil {
		return nil, err
	}
	if err := register(r, GetTotalTool(), func(ctx context.Context, sessionID string, _ NoArgs) (core.TotalResult, error) {
		return l.Total(ctx, sessionID)
	}); err != nil {
		return nil, err
	}
	if err := register(r, ListExpensesTool(), func(ctx context.Context, sessionID string, _ NoArgs) (core.ListResult, error) {
		return l.List(ctx, sessionID)
	}); err != nil {
		return nil, err
	}
	if err := register(r, GetByCategoryTool(), func(ctx context.Context, sessionID string, a GetByCategoryArgs) (core.FilterResult, error) {
		return l.FilterByCategory(ctx, sessionID, *a.Category)
	}); err != nil {
		return nil, err
	}
	if err := register(r, ClearAllTool(), func(ctx context.Context, sessionID string, _ NoArgs) (core.ClearResult, error) {
		return l.ClearAll(ctx, sessionID)
	}); err != nil {
		return nil, err
	}

	return &Dispatcher{registry: r}, nil
}

// Tools returns the registered tool descriptions sorted by slug.
func (d *Dispatcher) Tools() []llmtoolsgoSpec.Tool {
	return d.registry.Tools()
}

// call carries the session and the typed result of one invocation through
// the registry, which only speaks JSON.
type call struct {
	sessionID string
	invoked   bool
	result    any
}

type callKey struct{}

// register binds fn as a typed tool. The session comes from the call in ctx.
func register[T validator, R any](r *llmtools.Registry, tool llmtoolsgoSpec.Tool, fn func(context.Context, string, T) (R, error)) error {
	return llmtools.RegisterTypedAsTextTool[T, R](r, tool, func(ctx context.Context, args T) (R, error) {
		var zero R
		c, ok := ctx.Value(callKey{}).(*call)
		if !ok {
			return zero, errors.New("tool invoked without a session")
		}
		if err := args.validate(); err != nil {
			return zero, err
		}
		c.invoked = true
		res, err := fn(ctx, c.sessionID, args)
		if err != nil {
			return zero, err
		}
		c.result = res
		return res, nil
	})
}

// Call validates args for the named tool and runs it against the session.
// Arguments are checked before the ledger is touched. The returned value
// is one of the core.*Result types.
func (d *Dispatcher) Call(ctx context.Context, sessionID, name string, args json.RawMessage) (any, error) {
	tool, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	c := &call{sessionID: sessionID}
	_, err := d.registry.Call(context.WithValue(ctx, callKey{}, c), tool.GoImpl.FuncID, args)
	if err == nil {
		return c.result, nil
	}
	if c.invoked {
		return nil, err
	}
	return nil, argumentError(name, err)
}

// argumentError maps a decode or validation failure to an *ArgumentError.
func argumentError(tool string, err error) error {
	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		argErr.Tool = tool
		return argErr
	}
	if errors.Is(err, errNotANumber) {
		return &ArgumentError{Tool: tool, Argument: "amount", Reason: errNotANumber.Error()}
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return &ArgumentError{Tool: tool, Argument: typeErr.Field, Reason: "must be a " + typeErr.Type.String()}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ArgumentError{Tool: tool, Reason: "arguments must be a JSON object"}
	}
	return &ArgumentError{Tool: tool, Reason: strings.TrimPrefix(err.Error(), "invalid input: ")}
}

// Summary returns a short description of a result for logging.
func Summary(result any) string {
	switch r := result.(type) {
	case core.RecordResult:
		return fmt.Sprintf("recorded id=%d", r.Expense.ID)
	case core.TotalResult:
		return fmt.Sprintf("total=%.2f count=%d", r.Total, r.Count)
	case core.ListResult:
		return fmt.Sprintf("count=%d", r.Count)
	case core.FilterResult:
		return fmt.Sprintf("category=%s count=%d", strings.ToLower(r.Category), r.Count)
	case core.ClearResult:
		return fmt.Sprintf("deleted=%d", r.DeletedCount)
	}
	return ""
}
