package catalog

import (
	"sort"
	"strings"

	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

// baseModules maps endpoint identifiers to display names for the
// non-premium data a ticker exposes.
var baseModules = map[string]string{
	"asset_profile":           "Asset Profile",
	"calendar_events":         "Calendar Events",
	"esg_scores":              "ESG Scores",
	"financial_data":          "Financial Data",
	"fund_profile":            "Fund Profile",
	"key_stats":               "Key Statistics",
	"major_holders":           "Major Holders",
	"price":                   "Pricing",
	"quote_type":              "Quote Type",
	"share_purchase_activity": "Share Purchase Activity",
	"summary_detail":          "Summary Detail",
	"summary_profile":         "Summary Profile",
	"balance_sheet":           "Balance Sheet",
	"cash_flow":               "Cash Flow",
	"company_officers":        "Company Officers",
	"earning_history":         "Earning History",
	"earnings":                "Earnings",
	"earnings_trend":          "Earnings Trend",
	"index_trend":             "Index Trend",
	"sector_trend":            "Sector Trend",
	"industry_trend":          "Industry Trend",
	"fund_ownership":          "Fund Ownership",
	"grading_history":         "Grading History",
	"income_statement":        "Income Statement",
	"insider_holders":         "Insider Holders",
	"insider_transactions":    "Insider Transactions",
	"institution_ownership":   "Institution Ownership",
	"recommendation_trend":    "Recommendation Trends",
	"sec_filings":             "SEC Filings",
	"fund_bond_holdings":      "Fund Bond Holdings",
	"fund_bond_ratings":       "Fund Bond Ratings",
	"fund_equity_holdings":    "Fund Equity Holdings",
	"fund_holding_info":       "Fund Holding Information",
	"fund_performance":        "Fund Performance",
	"fund_sector_weightings":  "Fund Sector Weightings",
	"fund_top_holdings":       "Fund Top Holdings",
}

var premium = map[string]string{
	"p_balance_sheet":            "Balance Sheet",
	"p_cash_flow":                "Cash Flow",
	"p_income_statement":         "Income Statement",
	"p_company_360":              "Company 360",
	"p_portal":                   "Premium Portal",
	"p_reports":                  "Research Reports",
	"p_ideas":                    "Trade Ideas",
	"p_technical_events":         "Technical Events",
	"p_value_analyzer":           "Value Analyzer",
	"p_value_analyzer_drilldown": "Value Analyzer Drilldown",
}

var statements = map[string]bool{
	"balance_sheet":    true,
	"cash_flow":        true,
	"income_statement": true,
}

// special endpoints carry a static arity; everything else is probed.
var special = []types.EndpointDescriptor{
	{ID: "history", DisplayName: "Historical Pricing", Category: types.CategoryMarket, Arity: types.ArityHistory},
	{ID: "option_chain", DisplayName: "Option Chain", Category: types.CategoryMarket, Arity: types.ArityZero},
	{ID: "all_modules", DisplayName: "All Modules", Category: types.CategoryAggregate, Arity: types.ArityZero},
	{ID: "get_modules", DisplayName: "Multiple Modules", Category: types.CategoryAggregate, Arity: types.ArityModules},
}

// Catalog is the immutable endpoint table. Build it once with New and
// share the pointer.
type Catalog struct {
	byID    map[string]types.EndpointDescriptor
	ordered []types.EndpointDescriptor
}

// New builds the full catalog.
func New() *Catalog {
	c := &Catalog{byID: make(map[string]types.EndpointDescriptor, len(baseModules)+len(premium)+len(special))}
	for id, name := range baseModules {
		c.add(types.EndpointDescriptor{ID: id, DisplayName: name, Category: baseCategory(id)})
	}
	for id, name := range premium {
		c.add(types.EndpointDescriptor{ID: id, DisplayName: name, Category: types.CategoryPremium})
	}
	for _, d := range special {
		c.add(d)
	}
	rank := map[types.Category]int{}
	for i, cat := range types.Categories() {
		rank[cat] = i
	}
	sort.Slice(c.ordered, func(i, j int) bool {
		a, b := c.ordered[i], c.ordered[j]
		if a.Category != b.Category {
			return rank[a.Category] < rank[b.Category]
		}
		return a.ID < b.ID
	})
	return c
}

func (c *Catalog) add(d types.EndpointDescriptor) {
	c.byID[d.ID] = d
	c.ordered = append(c.ordered, d)
}

func baseCategory(id string) types.Category {
	switch {
	case statements[id]:
		return types.CategoryFinancialStatement
	case strings.HasPrefix(id, "fund_") && id != "fund_ownership":
		return types.CategoryFundSpecific
	default:
		return types.CategoryProfile
	}
}

// Lookup returns the descriptor for id.
func (c *Catalog) Lookup(id string) (types.EndpointDescriptor, error) {
	d, ok := c.byID[id]
	if !ok {
		return types.EndpointDescriptor{}, &UnknownEndpointError{ID: id}
	}
	return d, nil
}

// DisplayName returns the human-readable name for id.
func (c *Catalog) DisplayName(id string) (string, error) {
	d, err := c.Lookup(id)
	if err != nil {
		return "", err
	}
	return d.DisplayName, nil
}

// List returns descriptors in display order, restricted to cats when given.
func (c *Catalog) List(cats ...types.Category) []types.EndpointDescriptor {
	if len(cats) == 0 {
		return append([]types.EndpointDescriptor(nil), c.ordered...)
	}
	want := make(map[types.Category]bool, len(cats))
	for _, cat := range cats {
		want[cat] = true
	}
	out := make([]types.EndpointDescriptor, 0, len(c.ordered))
	for _, d := range c.ordered {
		if want[d.Category] {
			out = append(out, d)
		}
	}
	return out
}

// IDs returns every identifier in display order.
func (c *Catalog) IDs() []string {
	out := make([]string, 0, len(c.ordered))
	for _, d := range c.ordered {
		out = append(out, d.ID)
	}
	return out
}

func (c *Catalog) Len() int { return len(c.ordered) }
