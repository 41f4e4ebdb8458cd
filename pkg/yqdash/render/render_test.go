package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

func sampleTable() types.QueryResult {
	return types.QueryResult{
		Endpoint: types.EndpointDescriptor{ID: "history", DisplayName: "Historical Pricing", Category: types.CategoryMarket, Arity: types.ArityHistory},
		Symbols:  []string{"AAPL"},
		Shape:    types.ShapeTabular,
		Code:     `yahoo.NewTicker([]string{"AAPL"}).Access(ctx, "history")`,
		Data: types.Table{
			Columns: []string{"symbol", "date", "close"},
			Rows:    [][]any{{"AAPL", "2024-01-02", 185.64}, {"AAPL", "2024-01-03", 184.25}},
		},
	}
}

func sampleDict() types.QueryResult {
	return types.QueryResult{
		Endpoint: types.EndpointDescriptor{ID: "price", DisplayName: "Pricing"},
		Symbols:  []string{"MSFT", "AAPL"},
		Shape:    types.ShapeMultiSymbolDict,
		Data: map[string]any{
			"AAPL": map[string]any{"regularMarketPrice": 190.5, "currency": "USD"},
			"MSFT": "Quote not found",
		},
	}
}

func TestNew(t *testing.T) {
	for _, f := range []string{"", "json", "table", "code"} {
		if _, err := New(f); err != nil {
			t.Fatalf("%q: %v", f, err)
		}
	}
	if _, err := New("xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONRenderer().Render(&buf, sampleTable(), Options{}); err != nil {
		t.Fatal(err)
	}
	var got struct {
		Endpoint string           `json:"endpoint"`
		Shape    string           `json:"shape"`
		Data     []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if got.Endpoint != "history" || got.Shape != "tabular" || len(got.Data) != 2 {
		t.Fatalf("unexpected %+v", got)
	}
	if got.Data[1]["close"] != 184.25 {
		t.Fatalf("records not preserved: %v", got.Data)
	}
}

func TestJSONRendererPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONRenderer().Render(&buf, sampleDict(), Options{Pretty: true}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "\n  \"endpoint\": \"price\"") {
		t.Fatalf("expected indented output, got %s", buf.String())
	}
}

func TestTableRendererTabular(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTableRenderer().Render(&buf, sampleTable(), Options{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Historical Pricing", "SYMBOL", "CLOSE", "2024-01-03", "185.64"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
}

func TestTableRendererSymbolDict(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTableRenderer().Render(&buf, sampleDict(), Options{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	msft, aapl := strings.Index(out, "MSFT"), strings.Index(out, "AAPL")
	if msft < 0 || aapl < 0 || msft > aapl {
		t.Fatalf("sections must follow symbol order:\n%s", out)
	}
	for _, want := range []string{"Quote not found", "regularMarketPrice", "190.5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
}

func TestCodeRenderer(t *testing.T) {
	var buf bytes.Buffer
	res := sampleTable()
	if err := NewCodeRenderer().Render(&buf, res, Options{}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != res.Code+"\n" {
		t.Fatalf("unexpected %q", buf.String())
	}
}

func TestCell(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{1.5, "1.5"},
		{29965000000.0, "29965000000"},
		{true, "true"},
		{map[string]any{"raw": 1.0}, `{"raw":1}`},
	}
	for _, tc := range cases {
		if got := cell(tc.in); got != tc.want {
			t.Fatalf("cell(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
