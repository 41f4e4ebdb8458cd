package filter

import (
	"testing"

	"github.com/komsit37/yqdash/pkg/yqdash/catalog"
)

func TestParse(t *testing.T) {
	cases := []struct {
		expr  string
		name  string
		match bool
	}{
		{"", "anything", true},
		{"price,key_stats", "key_stats", true},
		{"price,key_stats", "key", false},
		{"fund_*", "fund_performance", true},
		{"fund_*", "p_portal", false},
		{"/^p_/", "p_portal", true},
		{"/^p_/", "price", false},
		{"Trend", "earnings_trend", true},
		{"trend", "price", false},
	}
	for _, tc := range cases {
		f, err := Parse(tc.expr)
		if err != nil {
			t.Fatalf("%q: %v", tc.expr, err)
		}
		if got := f.Match(tc.name); got != tc.match {
			t.Fatalf("%q match %q: got %v", tc.expr, tc.name, got)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, expr := range []string{"/(/", "fund_["} {
		if _, err := Parse(expr); err == nil {
			t.Fatalf("%q: expected error", expr)
		}
	}
}

func TestEndpointsMatchesDisplayName(t *testing.T) {
	f, _ := Parse("statistics")
	got := Endpoints(f, catalog.New().List())
	if len(got) != 1 || got[0].ID != "key_stats" {
		t.Fatalf("unexpected %+v", got)
	}
}
