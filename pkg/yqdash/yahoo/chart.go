package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	yfgo "github.com/komsit37/yf-go"

	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

const defaultPeriod = "ytd"

var historyColumns = []string{"symbol", "date", "open", "high", "low", "close", "volume", "adjclose"}

// ChartClient is the slice of yfgo.API history needs. *yfgo.Client
// satisfies it.
type ChartClient interface {
	Chart(ctx context.Context, symbol string, opts yfgo.ChartOptions) (any, error)
}

type chartResult struct {
	Meta struct {
		Symbol               string `json:"symbol"`
		ExchangeTimezoneName string `json:"exchangeTimezoneName"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// chartOptions maps a HistoryRequest onto chart API options. Dates take
// precedence over the period; a missing end means now and a missing start
// means the beginning of the series.
func (t *Ticker) chartOptions(req types.HistoryRequest) (yfgo.ChartOptions, error) {
	interval := req.Interval
	if interval == "" {
		interval = "1d"
	}
	if !types.ValidInterval(interval) {
		return yfgo.ChartOptions{}, fmt.Errorf("history: invalid interval %q; valid intervals: %s", interval, strings.Join(types.HistoryIntervals, ", "))
	}
	opts := yfgo.ChartOptions{Interval: interval, Events: "div,split"}

	if req.Start == nil && req.End == nil {
		period := req.Period
		if period == "" {
			period = defaultPeriod
		}
		if !types.ValidPeriod(period) {
			return yfgo.ChartOptions{}, fmt.Errorf("history: invalid period %q; valid periods: %s", period, strings.Join(types.HistoryPeriods, ", "))
		}
		opts.Range = period
		return opts, nil
	}

	var p1, p2 int64
	if req.Start != nil {
		p1 = req.Start.Unix()
	}
	if req.End != nil {
		p2 = req.End.Unix()
	} else {
		p2 = t.now().Unix()
	}
	if p1 > p2 {
		return yfgo.ChartOptions{}, errors.New("history: start must not be after end")
	}
	opts.Period1, opts.Period2 = &p1, &p2
	return opts, nil
}

func history(ctx context.Context, t *Ticker, id string, args []any) (any, error) {
	req, err := historyArg(id, args)
	if err != nil {
		return nil, err
	}
	opts, err := t.chartOptions(req)
	if err != nil {
		return nil, err
	}
	intraday := isIntraday(opts.Interval)

	results, errs := t.perSymbol(ctx, func(ctx context.Context, sym string) (any, error) {
		raw, err := t.chart.Chart(ctx, sym, opts)
		if err != nil {
			return nil, err
		}
		r, err := decodeChart(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s chart: %w", sym, err)
		}
		return chartRecords(sym, r, intraday), nil
	})
	return t.tableOrDict(historyColumns, results, errs)
}

// decodeChart reads the chart.result[0] value yf-go returns.
func decodeChart(raw any) (chartResult, error) {
	var r chartResult
	if raw == nil {
		return r, errNoData
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return r, err
	}
	if len(r.Timestamp) == 0 {
		return r, errNoData
	}
	return r, nil
}

func chartRecords(sym string, r chartResult, intraday bool) []map[string]any {
	loc := time.UTC
	if r.Meta.ExchangeTimezoneName != "" {
		if l, err := time.LoadLocation(r.Meta.ExchangeTimezoneName); err == nil {
			loc = l
		}
	}
	at := func(vals []*float64, i int) any {
		if i < len(vals) && vals[i] != nil {
			return *vals[i]
		}
		return nil
	}

	recs := make([]map[string]any, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		when := time.Unix(ts, 0).In(loc)
		rec := map[string]any{"symbol": sym}
		if intraday {
			rec["date"] = when.Format(time.RFC3339)
		} else {
			rec["date"] = when.Format("2006-01-02")
		}
		if len(r.Indicators.Quote) > 0 {
			qt := r.Indicators.Quote[0]
			rec["open"] = at(qt.Open, i)
			rec["high"] = at(qt.High, i)
			rec["low"] = at(qt.Low, i)
			rec["close"] = at(qt.Close, i)
			rec["volume"] = at(qt.Volume, i)
		}
		if len(r.Indicators.AdjClose) > 0 {
			rec["adjclose"] = at(r.Indicators.AdjClose[0].AdjClose, i)
		}
		recs = append(recs, rec)
	}
	return recs
}

func isIntraday(interval string) bool {
	return strings.HasSuffix(interval, "m") || strings.HasSuffix(interval, "h")
}
