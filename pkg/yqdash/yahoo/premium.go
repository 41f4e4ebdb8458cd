package yahoo

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ErrPremiumCredentials is returned by premium endpoints when the ticker has
// no username or password.
var ErrPremiumCredentials = errors.New("premium endpoints require a username and password")

type premiumRef struct {
	path  string
	param string // query parameter carrying the symbol
}

var premiumEndpoints = map[string]premiumRef{
	"p_company_360":              {path: "/ws/finance-company-360/v1/finance/company360", param: "symbol"},
	"p_portal":                   {path: "/v1/finance/premium/portal", param: "symbols"},
	"p_reports":                  {path: "/v2/finance/premium/research/reports", param: "symbol"},
	"p_ideas":                    {path: "/v2/finance/premium/tradeideas", param: "symbol"},
	"p_technical_events":         {path: "/ws/finance-technical-events/v1/finance/technicalEvents", param: "symbol"},
	"p_value_analyzer":           {path: "/ws/value-analyzer/v1/finance/premium/valueAnalyzer", param: "symbol"},
	"p_value_analyzer_drilldown": {path: "/ws/value-analyzer/v1/finance/premium/valueAnalyzer/multiquote", param: "symbols"},
}

const timeseriesPath = "/ws/fundamentals-timeseries/v1/finance/premium/timeseries/"

// premiumStatements lists the timeseries fields requested per statement.
var premiumStatements = map[string][]string{
	"p_balance_sheet": {
		"TotalAssets", "CurrentAssets", "CashAndCashEquivalents", "Inventory",
		"TotalLiabilitiesNetMinorityInterest", "CurrentLiabilities", "LongTermDebt",
		"StockholdersEquity", "RetainedEarnings", "TotalDebt", "WorkingCapital",
	},
	"p_cash_flow": {
		"OperatingCashFlow", "InvestingCashFlow", "FinancingCashFlow", "CapitalExpenditure",
		"FreeCashFlow", "RepurchaseOfCapitalStock", "CashDividendsPaid", "EndCashPosition",
	},
	"p_income_statement": {
		"TotalRevenue", "CostOfRevenue", "GrossProfit", "OperatingExpense", "OperatingIncome",
		"PretaxIncome", "TaxProvision", "NetIncome", "BasicEPS", "DilutedEPS", "EBITDA",
	},
}

func (t *Ticker) requireCredentials() error {
	if t.opts.Username == "" || t.opts.Password == "" {
		return ErrPremiumCredentials
	}
	return nil
}

func premiumProperty(ctx context.Context, t *Ticker, id string, args []any) (any, error) {
	if err := noArgs(id, args); err != nil {
		return nil, err
	}
	if err := t.requireCredentials(); err != nil {
		return nil, err
	}
	ref := premiumEndpoints[id]
	results, errs := t.perSymbol(ctx, func(ctx context.Context, sym string) (any, error) {
		var body map[string]any
		q := url.Values{ref.param: {sym}}
		if err := t.getJSON(ctx, ref.path, q, true, &body); err != nil {
			return nil, err
		}
		v, err := unwrapFinance(body)
		if err != nil {
			return nil, err
		}
		return t.format(v), nil
	})
	return t.symbolDict(results, errs)
}

// unwrapFinance strips the {"finance": {"result": ...}} envelope premium
// endpoints share.
func unwrapFinance(body map[string]any) (any, error) {
	fin, ok := body["finance"].(map[string]any)
	if !ok {
		return body, nil
	}
	if e, ok := fin["error"].(map[string]any); ok && e != nil {
		if desc, _ := e["description"].(string); desc != "" {
			return nil, errors.New(desc)
		}
		return nil, errNoData
	}
	res, ok := fin["result"]
	if !ok || res == nil {
		return nil, errNoData
	}
	return res, nil
}

type timeseriesResponse struct {
	Timeseries struct {
		Result []map[string]any `json:"result"`
		Error  *apiError        `json:"error"`
	} `json:"timeseries"`
}

func premiumStatement(ctx context.Context, t *Ticker, id string, args []any) (any, error) {
	freq, err := frequencyArg(id, args)
	if err != nil {
		return nil, err
	}
	if err := t.requireCredentials(); err != nil {
		return nil, err
	}
	prefix := "annual"
	if freq == "q" {
		prefix = "quarterly"
	}
	fields := premiumStatements[id]
	typesParam := make([]string, len(fields))
	for i, f := range fields {
		typesParam[i] = prefix + f
	}
	q := url.Values{
		"type":    {strings.Join(typesParam, ",")},
		"period1": {"493590046"},
		"period2": {strconv.FormatInt(t.now().Unix(), 10)},
	}

	results, errs := t.perSymbol(ctx, func(ctx context.Context, sym string) (any, error) {
		var resp timeseriesResponse
		if err := t.getJSON(ctx, timeseriesPath+url.PathEscape(sym), q, true, &resp); err != nil {
			return nil, err
		}
		if e := resp.Timeseries.Error; e != nil {
			return nil, errors.New(e.Description)
		}
		recs := t.timeseriesRecords(sym, prefix, resp.Timeseries.Result)
		if len(recs) == 0 {
			return nil, errNoData
		}
		return recs, nil
	})
	return t.tableOrDict([]string{"symbol", "asOfDate", "periodType"}, results, errs)
}

// timeseriesRecords pivots one series per field into one record per date.
func (t *Ticker) timeseriesRecords(sym, prefix string, series []map[string]any) []map[string]any {
	byDate := map[string]map[string]any{}
	for _, s := range series {
		for key, v := range s {
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			field := strings.TrimPrefix(key, prefix)
			points, _ := v.([]any)
			for _, p := range points {
				pt, ok := p.(map[string]any)
				if !ok {
					continue
				}
				date, _ := pt["asOfDate"].(string)
				if date == "" {
					continue
				}
				rec, ok := byDate[date]
				if !ok {
					rec = map[string]any{"symbol": sym, "asOfDate": date, "periodType": pt["periodType"]}
					byDate[date] = rec
				}
				rec[field] = t.format(pt["reportedValue"])
			}
		}
	}
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	recs := make([]map[string]any, 0, len(dates))
	for _, d := range dates {
		recs = append(recs, byDate[d])
	}
	return recs
}
