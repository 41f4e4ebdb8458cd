package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/komsit37/yqdash/pkg/yqdash/catalog"
	"github.com/komsit37/yqdash/pkg/yqdash/handle"
	"github.com/komsit37/yqdash/pkg/yqdash/handle/handletest"
	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

// frequencyStub mimics a statement accessor: it accepts zero args (annual
// default) or one "a"/"q" string.
func frequencyStub(id string) handletest.AccessFunc {
	return func(args []any) (any, error) {
		freq := "a"
		switch len(args) {
		case 0:
		case 1:
			s, ok := args[0].(string)
			if !ok {
				return nil, &handle.ArgumentMismatchError{ID: id, Arity: types.ArityFrequency, Reason: "frequency must be a string"}
			}
			freq = s
		default:
			return nil, &handle.ArgumentMismatchError{ID: id, Arity: types.ArityFrequency, Reason: "too many arguments"}
		}
		return map[string]any{"AAPL": map[string]any{"frequency": freq}}, nil
	}
}

func newDispatcher() *Dispatcher { return New(catalog.New(), nil) }

func TestLookupDisplayName(t *testing.T) {
	d := newDispatcher()
	name, err := d.LookupDisplayName("key_stats")
	if err != nil || name != "Key Statistics" {
		t.Fatalf("unexpected %q, %v", name, err)
	}
	if _, err := d.LookupDisplayName("nope"); !errors.Is(err, catalog.ErrUnknownEndpoint) {
		t.Fatalf("expected unknown endpoint, got %v", err)
	}
}

func TestResolveArityProbesHandle(t *testing.T) {
	d := newDispatcher()
	h := handletest.New("AAPL").
		On("balance_sheet", types.ArityFrequency, frequencyStub("balance_sheet")).
		Value("price", map[string]any{})

	a, err := d.ResolveArity("balance_sheet", h)
	if err != nil || a != types.ArityFrequency {
		t.Fatalf("balance_sheet: %s, %v", a, err)
	}
	a, err = d.ResolveArity("price", h)
	if err != nil || a != types.ArityZero {
		t.Fatalf("price: %s, %v", a, err)
	}
}

func TestResolveArityStaticStillRequiresExposure(t *testing.T) {
	d := newDispatcher()
	h := handletest.New("AAPL")
	if _, err := d.ResolveArity("history", h); !errors.Is(err, handle.ErrNotExposed) {
		t.Fatalf("expected ErrNotExposed, got %v", err)
	}
	h.On("history", types.ArityUnknown, nil)
	a, err := d.ResolveArity("history", h)
	if err != nil || a != types.ArityHistory {
		t.Fatalf("expected static history arity, got %s, %v", a, err)
	}
}

func TestInvokeUnknownEndpointMakesNoCall(t *testing.T) {
	d := newDispatcher()
	h := handletest.New("AAPL")
	_, err := d.Invoke(context.Background(), "bogus", h)
	if !errors.Is(err, catalog.ErrUnknownEndpoint) {
		t.Fatalf("expected unknown endpoint, got %v", err)
	}
	if n := len(h.Calls()); n != 0 {
		t.Fatalf("expected no handle calls, got %d", n)
	}
}

func TestInvokeNotExposed(t *testing.T) {
	d := newDispatcher()
	h := handletest.New("AAPL")
	_, err := d.Invoke(context.Background(), "esg_scores", h)
	if !errors.Is(err, handle.ErrNotExposed) {
		t.Fatalf("expected ErrNotExposed, got %v", err)
	}
}

func TestInvokeFrequencyWithAndWithoutArgs(t *testing.T) {
	d := newDispatcher()
	h := handletest.New("AAPL").On("balance_sheet", types.ArityFrequency, frequencyStub("balance_sheet"))

	res, err := d.Invoke(context.Background(), "balance_sheet", h, "q")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	got := res.Data.(map[string]any)["AAPL"].(map[string]any)["frequency"]
	if got != "q" {
		t.Fatalf("expected quarterly, got %v", got)
	}

	res, err = d.Invoke(context.Background(), "balance_sheet", h)
	if err != nil {
		t.Fatalf("zero-arg call must not fail: %v", err)
	}
	if res.Endpoint.Arity != types.ArityFrequency {
		t.Fatalf("expected resolved arity in result, got %s", res.Endpoint.Arity)
	}
}

func TestInvokeFallsBackOnceOnArgumentMismatch(t *testing.T) {
	d := newDispatcher()
	h := handletest.New("AAPL").Value("asset_profile", map[string]any{"AAPL": map[string]any{"sector": "Technology"}})

	res, err := d.Invoke(context.Background(), "asset_profile", h, "a")
	if err != nil {
		t.Fatalf("expected fallback to succeed, got %v", err)
	}
	calls := h.Calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}
	if len(calls[0].Args) != 1 || len(calls[1].Args) != 0 {
		t.Fatalf("expected call with args then without, got %+v", calls)
	}
	if res.Args != nil {
		t.Fatalf("result should record the zero-arg access, got %v", res.Args)
	}
	if res.Shape != types.ShapeMultiSymbolDict {
		t.Fatalf("expected symbol keyed shape, got %s", res.Shape)
	}
}

func TestInvokeFallbackHappensOnlyOnce(t *testing.T) {
	d := newDispatcher()
	h := handletest.New("AAPL").On("get_modules", types.ArityModules, func(args []any) (any, error) {
		return nil, &handle.ArgumentMismatchError{ID: "get_modules", Arity: types.ArityModules, Reason: "modules required"}
	})
	_, err := d.Invoke(context.Background(), "get_modules", h, 42)
	if !errors.Is(err, handle.ErrArgumentMismatch) {
		t.Fatalf("expected mismatch from the retry, got %v", err)
	}
	if n := h.CallCount("get_modules"); n != 2 {
		t.Fatalf("expected exactly 2 calls, got %d", n)
	}
}

func TestInvokeNoFallbackWithoutArgs(t *testing.T) {
	d := newDispatcher()
	h := handletest.New("AAPL").On("get_modules", types.ArityModules, func(args []any) (any, error) {
		return nil, &handle.ArgumentMismatchError{ID: "get_modules", Reason: "modules required"}
	})
	if _, err := d.Invoke(context.Background(), "get_modules", h); err == nil {
		t.Fatalf("expected error")
	}
	if n := h.CallCount("get_modules"); n != 1 {
		t.Fatalf("expected 1 call, got %d", n)
	}
}

func TestInvokeUpstreamErrorPropagatesUnchanged(t *testing.T) {
	d := newDispatcher()
	upstream := errors.New("yahoo: 503 service unavailable")
	h := handletest.New("AAPL").On("price", types.ArityZero, func(args []any) (any, error) {
		return nil, upstream
	})
	_, err := d.Invoke(context.Background(), "price", h, "a")
	if err != upstream {
		t.Fatalf("expected the exact upstream error, got %v", err)
	}
	if n := h.CallCount("price"); n != 1 {
		t.Fatalf("non-mismatch errors must not be retried, got %d calls", n)
	}
}

func TestInvokeFillsEnvelope(t *testing.T) {
	d := newDispatcher()
	h := handletest.New("AAPL", "MSFT")
	h.Opts = types.Options{Formatted: true}
	h.Value("option_chain", types.Table{Columns: []string{"symbol"}, Rows: [][]any{{"AAPL"}}})

	res, err := d.Invoke(context.Background(), "option_chain", h)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if res.Endpoint.DisplayName != "Option Chain" {
		t.Fatalf("display name: %q", res.Endpoint.DisplayName)
	}
	if res.Shape != types.ShapeTabular {
		t.Fatalf("shape: %s", res.Shape)
	}
	want := `yahoo.NewTicker([]string{"AAPL", "MSFT"}, types.Options{Formatted: true}).Access(ctx, "option_chain")`
	if res.Code != want {
		t.Fatalf("code:\n got %s\nwant %s", res.Code, want)
	}
}
