package yahoo

import (
	"context"
	"fmt"
	"sort"

	"github.com/komsit37/yqdash/pkg/yqdash/handle"
	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

type accessFunc func(ctx context.Context, t *Ticker, id string, args []any) (any, error)

type accessor struct {
	arity types.Arity
	fn    accessFunc
}

// accessors maps endpoint identifiers to how the ticker serves them.
var accessors = map[string]accessor{}

func init() {
	for id, ref := range summaryEndpoints {
		accessors[id] = accessor{arity: types.ArityZero, fn: moduleAccessor(ref)}
	}
	for id := range statementEndpoints {
		accessors[id] = accessor{arity: types.ArityFrequency, fn: statement}
	}
	for id := range premiumEndpoints {
		accessors[id] = accessor{arity: types.ArityZero, fn: premiumProperty}
	}
	for id := range premiumStatements {
		accessors[id] = accessor{arity: types.ArityFrequency, fn: premiumStatement}
	}
	accessors["all_modules"] = accessor{arity: types.ArityZero, fn: allModules}
	accessors["get_modules"] = accessor{arity: types.ArityModules, fn: getModules}
	accessors["option_chain"] = accessor{arity: types.ArityZero, fn: optionChain}
	accessors["history"] = accessor{arity: types.ArityHistory, fn: history}
}

func mismatch(id string, arity types.Arity, format string, a ...any) error {
	return &handle.ArgumentMismatchError{ID: id, Arity: arity, Reason: fmt.Sprintf(format, a...)}
}

func noArgs(id string, args []any) error {
	if len(args) > 0 {
		return mismatch(id, types.ArityZero, "takes no arguments, got %d", len(args))
	}
	return nil
}

// frequencyArg defaults to annual like the statement accessors do.
func frequencyArg(id string, args []any) (string, error) {
	switch len(args) {
	case 0:
		return "a", nil
	case 1:
		s, ok := args[0].(string)
		if !ok {
			return "", mismatch(id, types.ArityFrequency, "frequency must be a string, got %T", args[0])
		}
		if s != "a" && s != "q" {
			return "", fmt.Errorf("%s: frequency must be \"a\" or \"q\", got %q", id, s)
		}
		return s, nil
	default:
		return "", mismatch(id, types.ArityFrequency, "takes one frequency argument, got %d", len(args))
	}
}

func historyArg(id string, args []any) (types.HistoryRequest, error) {
	switch len(args) {
	case 0:
		return types.HistoryRequest{}, nil
	case 1:
		switch v := args[0].(type) {
		case types.HistoryRequest:
			return v, nil
		case *types.HistoryRequest:
			if v != nil {
				return *v, nil
			}
		}
		return types.HistoryRequest{}, mismatch(id, types.ArityHistory, "expects a HistoryRequest, got %T", args[0])
	default:
		return types.HistoryRequest{}, mismatch(id, types.ArityHistory, "takes one HistoryRequest, got %d arguments", len(args))
	}
}

func modulesArg(id string, args []any) ([]string, error) {
	if len(args) != 1 {
		return nil, mismatch(id, types.ArityModules, "takes one module list, got %d arguments", len(args))
	}
	switch v := args[0].(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, mismatch(id, types.ArityModules, "module names must be strings, got %T", e)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, mismatch(id, types.ArityModules, "expects a module list, got %T", args[0])
	}
}

// recordsTable builds a table whose columns are lead followed by every other
// key found in recs, sorted.
func recordsTable(lead []string, recs []map[string]any) types.Table {
	cols := append([]string(nil), lead...)
	seen := make(map[string]bool, len(lead))
	for _, c := range lead {
		seen[c] = true
	}
	var rest []string
	for _, r := range recs {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				rest = append(rest, k)
			}
		}
	}
	sort.Strings(rest)
	cols = append(cols, rest...)

	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = r[c]
		}
		rows = append(rows, row)
	}
	return types.Table{Columns: cols, Rows: rows}
}
