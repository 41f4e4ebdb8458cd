package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/komsit37/yqdash/pkg/yqdash/catalog"
	"github.com/komsit37/yqdash/pkg/yqdash/dispatch"
	"github.com/komsit37/yqdash/pkg/yqdash/filter"
	"github.com/komsit37/yqdash/pkg/yqdash/handle/handletest"
	"github.com/komsit37/yqdash/pkg/yqdash/render"
	"github.com/komsit37/yqdash/pkg/yqdash/session"
	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

func TestExecuteRendersResult(t *testing.T) {
	stub := handletest.New().Value("price", map[string]any{"AAPL": map[string]any{"currency": "USD"}})
	s := session.New("cli", dispatch.New(catalog.New(), nil), stub.Factory(), nil, nil)
	ctx := context.Background()

	var buf bytes.Buffer
	r := &Runner{Session: s, Renderer: render.NewCodeRenderer(), Writer: &buf}
	res, err := r.Execute(ctx, ExecuteOptions{Symbols: []string{"AAPL"}, Endpoint: "price"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Shape != types.ShapeMultiSymbolDict {
		t.Fatalf("shape: %s", res.Shape)
	}
	if len(res.Symbols) != 1 || res.Symbols[0] != "AAPL" {
		t.Fatalf("symbols: %v", res.Symbols)
	}
	if !strings.Contains(buf.String(), `Access(ctx, "price")`) {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestExecuteUnknownEndpoint(t *testing.T) {
	stub := handletest.New()
	s := session.New("cli", dispatch.New(catalog.New(), nil), stub.Factory(), nil, nil)

	var buf bytes.Buffer
	r := &Runner{Session: s, Renderer: render.NewJSONRenderer(), Writer: &buf}
	if _, err := r.Execute(context.Background(), ExecuteOptions{Symbols: []string{"AAPL"}, Endpoint: "bogus"}); err == nil {
		t.Fatalf("expected error")
	}
	if buf.Len() != 0 {
		t.Fatalf("nothing should be rendered on error")
	}
}

func TestListEndpoints(t *testing.T) {
	var buf bytes.Buffer
	f, _ := filter.Parse("/^p_/")
	descs := ListEndpoints(&buf, catalog.New(), f, []types.Category{types.CategoryPremium}, ExecuteOptions{})
	if len(descs) != 10 {
		t.Fatalf("expected 10 premium endpoints, got %d", len(descs))
	}
	if !strings.Contains(buf.String(), "p_value_analyzer") {
		t.Fatalf("listing missing entries:\n%s", buf.String())
	}
}
