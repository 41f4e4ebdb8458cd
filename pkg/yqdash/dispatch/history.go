package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

const DefaultInterval = "1d"

var now = time.Now

// BuildHistoryRequest picks between the period and the date range. Supplying
// either date clears the period; supplying neither clears the dates. A date
// that falls on today's calendar day means "open ended" and becomes nil.
func BuildHistoryRequest(period, interval string, start, end *time.Time) types.HistoryRequest {
	if interval == "" {
		interval = DefaultInterval
	}
	req := types.HistoryRequest{Interval: interval}
	if start == nil && end == nil {
		req.Period = period
		return req
	}
	req.Start = unlessToday(start)
	req.End = unlessToday(end)
	return req
}

func unlessToday(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	y, m, d := t.Date()
	ty, tm, td := now().Date()
	if y == ty && m == tm && d == td {
		return nil
	}
	v := *t
	return &v
}

// FrequencyCode reduces "Annual"/"Quarterly" (or their first letter) to the
// one-letter code statements take.
func FrequencyCode(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", fmt.Errorf("frequency is required")
	}
	code := s[:1]
	if code != "a" && code != "q" {
		return "", fmt.Errorf("unknown frequency %q: want annual or quarterly", s)
	}
	return code, nil
}

// Classify reports the display shape of data. Symbol-keyed maps are what the
// handle returns when a multi-symbol request could not be combined into one
// table.
func Classify(data any, symbols []string) types.ResultShape {
	switch v := data.(type) {
	case types.Table, *types.Table, []map[string]any:
		return types.ShapeTabular
	case []any:
		if len(v) == 0 {
			return types.ShapeDocument
		}
		for _, e := range v {
			if _, ok := e.(map[string]any); !ok {
				return types.ShapeDocument
			}
		}
		return types.ShapeTabular
	case map[string]any:
		if len(v) == 0 || len(symbols) == 0 {
			return types.ShapeDocument
		}
		known := make(map[string]bool, len(symbols))
		for _, s := range symbols {
			known[strings.ToUpper(s)] = true
		}
		for k := range v {
			if !known[strings.ToUpper(k)] {
				return types.ShapeDocument
			}
		}
		return types.ShapeMultiSymbolDict
	default:
		return types.ShapeDocument
	}
}
