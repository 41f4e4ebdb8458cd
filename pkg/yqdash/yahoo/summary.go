package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	yfgo "github.com/komsit37/yf-go"
)

var errNoData = errors.New("no data found")

// SummaryFetcher fetches quoteSummary modules for one symbol and returns them
// keyed by module name.
type SummaryFetcher interface {
	Fetch(ctx context.Context, symbol string, modules []string) (map[string]any, error)
}

// SummaryFetcherFunc adapts a function to SummaryFetcher.
type SummaryFetcherFunc func(ctx context.Context, symbol string, modules []string) (map[string]any, error)

func (f SummaryFetcherFunc) Fetch(ctx context.Context, symbol string, modules []string) (map[string]any, error) {
	return f(ctx, symbol, modules)
}

// QuoteSummaryClient is the slice of yfgo.API the summary fetcher needs.
// *yfgo.Client satisfies it.
type QuoteSummaryClient interface {
	QuoteSummary(ctx context.Context, symbol string, modules []yfgo.QuoteSummaryModule) (any, error)
}

// YFFetcher is the SummaryFetcher backed by yf-go. The untyped result is
// passed through as-is so every module keeps the fields Yahoo sent.
type YFFetcher struct {
	client QuoteSummaryClient
}

// NewYFFetcher wraps client, or the shared default yf-go client when nil.
func NewYFFetcher(client QuoteSummaryClient) *YFFetcher {
	if client == nil {
		client = defaultYFClient()
	}
	return &YFFetcher{client: client}
}

func (f *YFFetcher) Fetch(ctx context.Context, symbol string, modules []string) (map[string]any, error) {
	mods := make([]yfgo.QuoteSummaryModule, 0, len(modules))
	for _, m := range modules {
		mods = append(mods, yfgo.QuoteSummaryModule(m))
	}
	raw, err := f.client.QuoteSummary(ctx, symbol, mods)
	if err != nil {
		return nil, err
	}
	m, err := decodeModules(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s summary: %w", symbol, err)
	}
	return m, nil
}

// decodeModules turns a raw quoteSummary result into module name -> body.
func decodeModules(raw any) (map[string]any, error) {
	m, err := decodeSummary(raw)
	if err != nil {
		return nil, err
	}
	return unwrapSummary(m)
}

// decodeSummary turns whatever the client returned into a generic map.
func decodeSummary(raw any) (map[string]any, error) {
	var b []byte
	switch v := raw.(type) {
	case nil:
		return nil, errNoData
	case map[string]any:
		return v, nil
	case json.RawMessage:
		b = v
	case []byte:
		b = v
	default:
		enc, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		b = enc
	}
	if len(b) == 0 {
		return nil, errNoData
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errNoData
	}
	return m, nil
}

// unwrapSummary strips the quoteSummary.result[0] envelope when present.
func unwrapSummary(m map[string]any) (map[string]any, error) {
	qs, ok := m["quoteSummary"].(map[string]any)
	if !ok {
		return m, nil
	}
	if e, ok := qs["error"].(map[string]any); ok && e != nil {
		if desc, _ := e["description"].(string); desc != "" {
			return nil, errors.New(desc)
		}
		return nil, errNoData
	}
	res, _ := qs["result"].([]any)
	if len(res) == 0 {
		return nil, errNoData
	}
	first, ok := res[0].(map[string]any)
	if !ok {
		return nil, errNoData
	}
	return first, nil
}

// moduleRef locates an endpoint's data inside a quoteSummary response.
type moduleRef struct {
	module  string
	path    string   // sub-key inside the module, empty for the whole module
	exclude []string // keys dropped from the whole module
	table   bool     // list data returned as a Table
}

var summaryEndpoints = map[string]moduleRef{
	"asset_profile":           {module: "assetProfile", exclude: []string{"companyOfficers"}},
	"calendar_events":         {module: "calendarEvents"},
	"esg_scores":              {module: "esgScores"},
	"financial_data":          {module: "financialData"},
	"fund_profile":            {module: "fundProfile"},
	"key_stats":               {module: "defaultKeyStatistics"},
	"major_holders":           {module: "majorHoldersBreakdown"},
	"price":                   {module: "price"},
	"quote_type":              {module: "quoteType"},
	"share_purchase_activity": {module: "netSharePurchaseActivity"},
	"summary_detail":          {module: "summaryDetail"},
	"summary_profile":         {module: "summaryProfile"},
	"earnings":                {module: "earnings"},
	"index_trend":             {module: "indexTrend"},
	"sector_trend":            {module: "sectorTrend"},
	"industry_trend":          {module: "industryTrend"},
	"fund_performance":        {module: "fundPerformance"},
	"fund_bond_holdings":      {module: "topHoldings", path: "bondHoldings"},
	"fund_bond_ratings":       {module: "topHoldings", path: "bondRatings"},
	"fund_equity_holdings":    {module: "topHoldings", path: "equityHoldings"},
	"fund_sector_weightings":  {module: "topHoldings", path: "sectorWeightings"},
	"fund_holding_info": {module: "topHoldings", exclude: []string{
		"holdings", "equityHoldings", "bondHoldings", "bondRatings", "sectorWeightings",
	}},
	"company_officers":      {module: "assetProfile", path: "companyOfficers", table: true},
	"earning_history":       {module: "earningsHistory", path: "history", table: true},
	"earnings_trend":        {module: "earningsTrend", path: "trend", table: true},
	"fund_ownership":        {module: "fundOwnership", path: "ownershipList", table: true},
	"grading_history":       {module: "upgradeDowngradeHistory", path: "history", table: true},
	"insider_holders":       {module: "insiderHolders", path: "holders", table: true},
	"insider_transactions":  {module: "insiderTransactions", path: "transactions", table: true},
	"institution_ownership": {module: "institutionOwnership", path: "ownershipList", table: true},
	"recommendation_trend":  {module: "recommendationTrend", path: "trend", table: true},
	"sec_filings":           {module: "secFilings", path: "filings", table: true},
	"fund_top_holdings":     {module: "topHoldings", path: "holdings", table: true},
}

type statementRef struct {
	annual, quarterly string
	list              string
}

var statementEndpoints = map[string]statementRef{
	"balance_sheet":    {annual: "balanceSheetHistory", quarterly: "balanceSheetHistoryQuarterly", list: "balanceSheetStatements"},
	"cash_flow":        {annual: "cashflowStatementHistory", quarterly: "cashflowStatementHistoryQuarterly", list: "cashflowStatements"},
	"income_statement": {annual: "incomeStatementHistory", quarterly: "incomeStatementHistoryQuarterly", list: "incomeStatementHistory"},
}

// Modules lists every quoteSummary module name get_modules accepts.
var Modules = func() []string {
	set := map[string]bool{}
	for _, ref := range summaryEndpoints {
		set[ref.module] = true
	}
	for _, ref := range statementEndpoints {
		set[ref.annual] = true
		set[ref.quarterly] = true
	}
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}()

// IsModule reports whether name is a known quoteSummary module.
func IsModule(name string) bool {
	i := sort.SearchStrings(Modules, name)
	return i < len(Modules) && Modules[i] == name
}

func moduleAccessor(ref moduleRef) accessFunc {
	return func(ctx context.Context, t *Ticker, id string, args []any) (any, error) {
		if err := noArgs(id, args); err != nil {
			return nil, err
		}
		results, errs := t.perSymbol(ctx, func(ctx context.Context, sym string) (any, error) {
			m, err := t.summary.Fetch(ctx, sym, []string{ref.module})
			if err != nil {
				return nil, err
			}
			v, err := ref.extract(m)
			if err != nil {
				return nil, err
			}
			v = t.format(v)
			if ref.table {
				return symbolRecords(sym, v), nil
			}
			return v, nil
		})
		if ref.table {
			return t.tableOrDict([]string{"symbol", "row"}, results, errs)
		}
		return t.symbolDict(results, errs)
	}
}

func (r moduleRef) extract(m map[string]any) (any, error) {
	mod, ok := m[r.module].(map[string]any)
	if !ok {
		return nil, errNoData
	}
	if r.path != "" {
		v, ok := mod[r.path]
		if !ok {
			return nil, errNoData
		}
		return v, nil
	}
	if len(r.exclude) == 0 {
		return mod, nil
	}
	out := make(map[string]any, len(mod))
	for k, v := range mod {
		out[k] = v
	}
	for _, k := range r.exclude {
		delete(out, k)
	}
	return out, nil
}

// symbolRecords turns list data into records tagged with symbol and row.
func symbolRecords(sym string, v any) []map[string]any {
	list, _ := v.([]any)
	recs := make([]map[string]any, 0, len(list))
	for i, e := range list {
		rec := map[string]any{}
		if m, ok := e.(map[string]any); ok {
			for k, val := range m {
				if k == "maxAge" {
					continue
				}
				rec[k] = val
			}
		} else {
			rec["value"] = e
		}
		rec["symbol"] = sym
		rec["row"] = i
		recs = append(recs, rec)
	}
	return recs
}

// format reduces {raw, fmt} pairs to their raw value unless the ticker was
// created with Formatted set.
func (t *Ticker) format(v any) any {
	if t.opts.Formatted {
		return v
	}
	return stripFormatted(v)
}

func stripFormatted(v any) any {
	switch x := v.(type) {
	case map[string]any:
		if raw, ok := x["raw"]; ok {
			if _, hasFmt := x["fmt"]; hasFmt || len(x) == 1 {
				return raw
			}
		}
		if len(x) == 0 {
			return x
		}
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = stripFormatted(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = stripFormatted(e)
		}
		return out
	default:
		return v
	}
}

func statement(ctx context.Context, t *Ticker, id string, args []any) (any, error) {
	freq, err := frequencyArg(id, args)
	if err != nil {
		return nil, err
	}
	ref := statementEndpoints[id]
	module := ref.annual
	if freq == "q" {
		module = ref.quarterly
	}
	results, errs := t.perSymbol(ctx, func(ctx context.Context, sym string) (any, error) {
		m, err := t.summary.Fetch(ctx, sym, []string{module})
		if err != nil {
			return nil, err
		}
		mod, ok := m[module].(map[string]any)
		if !ok {
			return nil, errNoData
		}
		list, _ := t.format(mod[ref.list]).([]any)
		if len(list) == 0 {
			return nil, errNoData
		}
		periodType := "12M"
		if freq == "q" {
			periodType = "3M"
		}
		recs := make([]map[string]any, 0, len(list))
		for _, e := range list {
			row, ok := e.(map[string]any)
			if !ok {
				continue
			}
			rec := map[string]any{"symbol": sym, "periodType": periodType}
			for k, v := range row {
				if k == "maxAge" {
					continue
				}
				rec[k] = v
			}
			recs = append(recs, rec)
		}
		return recs, nil
	})
	return t.tableOrDict([]string{"symbol", "endDate", "periodType"}, results, errs)
}

func allModules(ctx context.Context, t *Ticker, id string, args []any) (any, error) {
	if err := noArgs(id, args); err != nil {
		return nil, err
	}
	return t.fetchModules(ctx, Modules)
}

func getModules(ctx context.Context, t *Ticker, id string, args []any) (any, error) {
	mods, err := modulesArg(id, args)
	if err != nil {
		return nil, err
	}
	if len(mods) == 0 {
		return nil, fmt.Errorf("%s: at least one module is required", id)
	}
	var unknown []string
	for _, m := range mods {
		if !IsModule(m) {
			unknown = append(unknown, m)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%s: unknown modules %s; valid modules: %s",
			id, strings.Join(unknown, ", "), strings.Join(Modules, ", "))
	}
	return t.fetchModules(ctx, mods)
}

func (t *Ticker) fetchModules(ctx context.Context, mods []string) (any, error) {
	results, errs := t.perSymbol(ctx, func(ctx context.Context, sym string) (any, error) {
		m, err := t.summary.Fetch(ctx, sym, mods)
		if err != nil {
			return nil, err
		}
		return t.format(m), nil
	})
	return t.symbolDict(results, errs)
}
