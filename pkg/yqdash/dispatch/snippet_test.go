package dispatch

import (
	"strings"
	"testing"

	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

func TestSnippet(t *testing.T) {
	cases := []struct {
		name string
		syms []string
		opts types.Options
		id   string
		args []any
		want string
	}{
		{
			name: "property",
			syms: []string{"AAPL"},
			id:   "asset_profile",
			want: `yahoo.NewTicker([]string{"AAPL"}).Access(ctx, "asset_profile")`,
		},
		{
			name: "frequency",
			syms: []string{"AAPL", "MSFT"},
			opts: types.Options{Asynchronous: true},
			id:   "cash_flow",
			args: []any{"q"},
			want: `yahoo.NewTicker([]string{"AAPL", "MSFT"}, types.Options{Asynchronous: true}).Access(ctx, "cash_flow", "q")`,
		},
		{
			name: "history",
			syms: []string{"SPY"},
			id:   "history",
			args: []any{types.HistoryRequest{Start: day(2023, 1, 2), Interval: "1wk"}},
			want: `yahoo.NewTicker([]string{"SPY"}).Access(ctx, "history", types.HistoryRequest{Interval: "1wk", Start: date("2023-01-02")})`,
		},
		{
			name: "modules",
			syms: []string{"AAPL"},
			id:   "get_modules",
			args: []any{[]string{"assetProfile", "price"}},
			want: `yahoo.NewTicker([]string{"AAPL"}).Access(ctx, "get_modules", []string{"assetProfile", "price"})`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Snippet(tc.syms, tc.opts, tc.id, tc.args); got != tc.want {
				t.Fatalf("\n got %s\nwant %s", got, tc.want)
			}
		})
	}
}

func TestSnippetHidesPassword(t *testing.T) {
	got := Snippet([]string{"AAPL"}, types.Options{Username: "me@example.com", Password: "hunter2"}, "p_portal", nil)
	if strings.Contains(got, "hunter2") {
		t.Fatalf("password leaked: %s", got)
	}
	if !strings.Contains(got, `Username: "me@example.com"`) {
		t.Fatalf("username missing: %s", got)
	}
}
