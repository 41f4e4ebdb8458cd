package dispatch

import (
	"testing"
	"time"

	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

func fixedNow(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestBuildHistoryRequestPeriodMode(t *testing.T) {
	fixedNow(t, time.Date(2024, 6, 1, 15, 0, 0, 0, time.Local))
	req := BuildHistoryRequest("1y", "1wk", nil, nil)
	if req.Period != "1y" || req.Interval != "1wk" {
		t.Fatalf("unexpected %+v", req)
	}
	if req.Start != nil || req.End != nil {
		t.Fatalf("dates must be nil in period mode: %+v", req)
	}
}

func TestBuildHistoryRequestDateMode(t *testing.T) {
	fixedNow(t, time.Date(2024, 6, 1, 15, 0, 0, 0, time.Local))
	req := BuildHistoryRequest("1y", "1d", day(2023, 1, 1), day(2023, 12, 31))
	if req.Period != "" {
		t.Fatalf("period must be cleared, got %q", req.Period)
	}
	if req.Start == nil || !req.Start.Equal(*day(2023, 1, 1)) {
		t.Fatalf("start: %v", req.Start)
	}
	if req.End == nil || !req.End.Equal(*day(2023, 12, 31)) {
		t.Fatalf("end: %v", req.End)
	}
}

func TestBuildHistoryRequestTodayIsOpenEnded(t *testing.T) {
	fixedNow(t, time.Date(2024, 6, 1, 23, 30, 0, 0, time.Local))
	today := day(2024, 6, 1)

	req := BuildHistoryRequest("1y", "1d", day(2024, 1, 1), today)
	if req.End != nil {
		t.Fatalf("end equal to today must be nil, got %v", req.End)
	}
	if req.Start == nil || req.Period != "" {
		t.Fatalf("unexpected %+v", req)
	}

	req = BuildHistoryRequest("1y", "1d", today, nil)
	if req.Start != nil {
		t.Fatalf("start equal to today must be nil, got %v", req.Start)
	}
	if req.Period != "" {
		t.Fatalf("date mode must clear period even when dates normalize away")
	}
}

func TestBuildHistoryRequestDefaultsInterval(t *testing.T) {
	if req := BuildHistoryRequest("ytd", "", nil, nil); req.Interval != DefaultInterval {
		t.Fatalf("interval: %q", req.Interval)
	}
}

func TestBuildHistoryRequestCopiesDates(t *testing.T) {
	fixedNow(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	start := day(2023, 1, 1)
	req := BuildHistoryRequest("", "1d", start, nil)
	*start = start.AddDate(1, 0, 0)
	if req.Start.Year() != 2023 {
		t.Fatalf("request must not alias caller's date")
	}
}

func TestFrequencyCode(t *testing.T) {
	cases := map[string]string{"Annual": "a", "Quarterly": "q", "a": "a", " q ": "q", "QUARTERLY": "q"}
	for in, want := range cases {
		got, err := FrequencyCode(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %q, %v", in, got, err)
		}
	}
	for _, bad := range []string{"", "monthly", "x"} {
		if _, err := FrequencyCode(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}

func TestClassify(t *testing.T) {
	table := types.Table{Columns: []string{"symbol", "close"}, Rows: [][]any{{"AAPL", 1.0}}}
	cases := []struct {
		name    string
		data    any
		symbols []string
		want    types.ResultShape
	}{
		{"single symbol rows", table, []string{"AAPL"}, types.ShapeTabular},
		{"records", []any{map[string]any{"a": 1}}, []string{"AAPL"}, types.ShapeTabular},
		{"two symbol dict", map[string]any{"AAPL": []any{}, "MSFT": "No data found"}, []string{"aapl", "msft"}, types.ShapeMultiSymbolDict},
		{"non symbol keys", map[string]any{"error": "x"}, []string{"AAPL"}, types.ShapeDocument},
		{"scalar", "text", []string{"AAPL"}, types.ShapeDocument},
		{"empty list", []any{}, []string{"AAPL"}, types.ShapeDocument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.data, tc.symbols); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}
