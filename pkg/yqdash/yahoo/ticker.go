package yahoo

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	yfgo "github.com/komsit37/yf-go"
	"github.com/sourcegraph/conc/pool"

	"github.com/komsit37/yqdash/pkg/yqdash/handle"
	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

const (
	DefaultBaseURL        = "https://query2.finance.yahoo.com"
	DefaultUserAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
	DefaultMaxConcurrency = 8
)

var errNoSymbols = errors.New("no symbols")

// defaultYFClient is shared by tickers built without WithYFClient. Caching is
// left to the session memo.
var defaultYFClient = sync.OnceValue(func() *yfgo.Client {
	return yfgo.NewClient(yfgo.WithCacheDisabled())
})

// Ticker is the Yahoo Finance data handle for a fixed symbol list.
type Ticker struct {
	symbols        []string
	opts           types.Options
	summary        SummaryFetcher
	chart          ChartClient
	client         *http.Client
	baseURL        string
	userAgent      string
	maxConcurrency int
	now            func() time.Time
}

type Option func(*Ticker)

// WithSummaryFetcher replaces the yf-go backed quoteSummary fetcher.
func WithSummaryFetcher(f SummaryFetcher) Option {
	return func(t *Ticker) { t.summary = f }
}

// WithChartClient replaces the yf-go client history reads charts from.
func WithChartClient(c ChartClient) Option {
	return func(t *Ticker) { t.chart = c }
}

// WithYFClient routes both quoteSummary and chart reads through one yf-go
// client so they share its cookie and crumb session.
func WithYFClient(c *yfgo.Client) Option {
	return func(t *Ticker) {
		t.summary = NewYFFetcher(c)
		t.chart = c
	}
}

// WithHTTPClient sets the client used for option chain and premium reads.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Ticker) { t.client = c }
}

func WithBaseURL(u string) Option {
	return func(t *Ticker) { t.baseURL = strings.TrimRight(u, "/") }
}

func WithUserAgent(ua string) Option {
	return func(t *Ticker) { t.userAgent = ua }
}

// WithMaxConcurrency bounds per-symbol fan-out for asynchronous tickers.
func WithMaxConcurrency(n int) Option {
	return func(t *Ticker) {
		if n > 0 {
			t.maxConcurrency = n
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(t *Ticker) { t.now = now }
}

func NewTicker(symbols []string, opts types.Options, options ...Option) *Ticker {
	t := &Ticker{
		symbols:        normalizeSymbols(symbols),
		opts:           opts,
		client:         &http.Client{Timeout: 30 * time.Second},
		baseURL:        DefaultBaseURL,
		userAgent:      DefaultUserAgent,
		maxConcurrency: DefaultMaxConcurrency,
		now:            time.Now,
	}
	for _, o := range options {
		o(t)
	}
	if t.summary == nil {
		t.summary = NewYFFetcher(nil)
	}
	if t.chart == nil {
		t.chart = defaultYFClient()
	}
	return t
}

// NewFactory returns a handle.Factory that builds tickers with options.
func NewFactory(options ...Option) handle.Factory {
	return func(symbols []string, opts types.Options) handle.Handle {
		return NewTicker(symbols, opts, options...)
	}
}

func (t *Ticker) Symbols() []string      { return append([]string(nil), t.symbols...) }
func (t *Ticker) Options() types.Options { return t.opts }

func (t *Ticker) Probe(id string) (types.Arity, bool) {
	acc, ok := accessors[id]
	if !ok {
		return types.ArityUnknown, false
	}
	return acc.arity, true
}

func (t *Ticker) Access(ctx context.Context, id string, args ...any) (any, error) {
	acc, ok := accessors[id]
	if !ok {
		return nil, &handle.NotExposedError{ID: id}
	}
	if len(t.symbols) == 0 {
		return nil, errNoSymbols
	}
	return acc.fn(ctx, t, id, args)
}

// perSymbol runs fn for every symbol, concurrently when the ticker is
// asynchronous.
func (t *Ticker) perSymbol(ctx context.Context, fn func(ctx context.Context, sym string) (any, error)) (map[string]any, map[string]error) {
	results := make(map[string]any, len(t.symbols))
	errs := make(map[string]error)
	var mu sync.Mutex
	run := func(sym string) {
		v, err := fn(ctx, sym)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			errs[sym] = err
			return
		}
		results[sym] = v
	}

	if t.opts.Asynchronous && len(t.symbols) > 1 {
		p := pool.New().WithMaxGoroutines(t.maxConcurrency)
		for _, sym := range t.symbols {
			sym := sym
			p.Go(func() { run(sym) })
		}
		p.Wait()
		return results, errs
	}
	for _, sym := range t.symbols {
		run(sym)
	}
	return results, errs
}

// firstError returns the error of the first failing symbol in input order.
func (t *Ticker) firstError(errs map[string]error) error {
	for _, sym := range t.symbols {
		if err, ok := errs[sym]; ok {
			return err
		}
	}
	return nil
}

// symbolDict keys results by symbol, recording failures as their message.
// It fails only when no symbol succeeded.
func (t *Ticker) symbolDict(results map[string]any, errs map[string]error) (any, error) {
	if len(results) == 0 && len(errs) > 0 {
		return nil, t.firstError(errs)
	}
	out := make(map[string]any, len(results)+len(errs))
	for sym, v := range results {
		out[sym] = v
	}
	for sym, err := range errs {
		out[sym] = err.Error()
	}
	return out, nil
}

// tableOrDict combines per-symbol records into one table when every symbol
// succeeded. Otherwise it falls back to a symbol keyed map so partial data is
// not lost.
func (t *Ticker) tableOrDict(lead []string, results map[string]any, errs map[string]error) (any, error) {
	if len(errs) > 0 {
		return t.symbolDict(results, errs)
	}
	var recs []map[string]any
	for _, sym := range t.symbols {
		if r, ok := results[sym].([]map[string]any); ok {
			recs = append(recs, r...)
		}
	}
	return recordsTable(lead, recs), nil
}

func normalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	seen := map[string]struct{}{}
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
