package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Category groups endpoints the way the dashboard pages group them.
type Category int

const (
	CategoryProfile Category = iota
	CategoryFinancialStatement
	CategoryFundSpecific
	CategoryPremium
	CategoryMarket
	CategoryAggregate
)

var categoryNames = map[Category]string{
	CategoryProfile:            "profile",
	CategoryFinancialStatement: "financial_statement",
	CategoryFundSpecific:       "fund",
	CategoryPremium:            "premium",
	CategoryMarket:             "market",
	CategoryAggregate:          "aggregate",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return fmt.Sprintf("category(%d)", int(c))
}

func (c Category) MarshalJSON() ([]byte, error) { return json.Marshal(c.String()) }

func (c *Category) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory accepts the String form, case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range categoryNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// Categories lists all categories in display order.
func Categories() []Category {
	return []Category{
		CategoryProfile,
		CategoryFinancialStatement,
		CategoryFundSpecific,
		CategoryMarket,
		CategoryAggregate,
		CategoryPremium,
	}
}

// Arity describes which arguments an endpoint access takes.
// ArityUnknown means the data handle has to be probed.
type Arity int

const (
	ArityUnknown Arity = iota
	ArityZero
	ArityFrequency
	ArityHistory
	ArityModules
)

var arityNames = map[Arity]string{
	ArityUnknown:   "unknown",
	ArityZero:      "zero",
	ArityFrequency: "frequency",
	ArityHistory:   "history",
	ArityModules:   "modules",
}

func (a Arity) String() string {
	if s, ok := arityNames[a]; ok {
		return s
	}
	return fmt.Sprintf("arity(%d)", int(a))
}

func (a Arity) MarshalJSON() ([]byte, error) { return json.Marshal(a.String()) }

func (a *Arity) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for k, name := range arityNames {
		if name == s {
			*a = k
			return nil
		}
	}
	return fmt.Errorf("unknown arity %q", s)
}

// EndpointDescriptor is one catalog entry.
type EndpointDescriptor struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Category    Category `json:"category"`
	Arity       Arity    `json:"arity"`
}

// Options shape every request made through a data handle.
// Credentials are forwarded as-is and never validated.
type Options struct {
	Formatted    bool   `json:"formatted"`
	Asynchronous bool   `json:"asynchronous"`
	Username     string `json:"username,omitempty"`
	Password     string `json:"-"`
}

// HistoryRequest selects either a period or an explicit date range.
// An empty Period and nil dates mean unset.
type HistoryRequest struct {
	Period   string     `json:"period,omitempty"`
	Interval string     `json:"interval"`
	Start    *time.Time `json:"start,omitempty"`
	End      *time.Time `json:"end,omitempty"`
}

// Table is a row-oriented result. Its JSON form is a list of records.
type Table struct {
	Columns []string
	Rows    [][]any
}

func (t Table) Len() int { return len(t.Rows) }

// Records returns rows as column-keyed maps.
func (t Table) Records() []map[string]any {
	out := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]any, len(t.Columns))
		for i, c := range t.Columns {
			if i < len(row) {
				rec[c] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out
}

func (t Table) MarshalJSON() ([]byte, error) { return json.Marshal(t.Records()) }

// ResultShape tells presentation code how to display a result.
type ResultShape int

const (
	ShapeDocument ResultShape = iota
	ShapeTabular
	ShapeMultiSymbolDict
)

func (s ResultShape) String() string {
	switch s {
	case ShapeTabular:
		return "tabular"
	case ShapeMultiSymbolDict:
		return "multi_symbol_dict"
	default:
		return "document"
	}
}

func (s ResultShape) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }

func (s *ResultShape) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	switch str {
	case "tabular":
		*s = ShapeTabular
	case "multi_symbol_dict":
		*s = ShapeMultiSymbolDict
	default:
		*s = ShapeDocument
	}
	return nil
}

// QueryResult wraps the verbatim data returned by a data handle.
type QueryResult struct {
	Endpoint EndpointDescriptor `json:"endpoint"`
	Symbols  []string           `json:"symbols"`
	Args     []any              `json:"args,omitempty"`
	Shape    ResultShape        `json:"shape"`
	Code     string             `json:"code"`
	Data     any                `json:"data"`
}

// HistoryPeriods are the period values the chart API accepts.
var HistoryPeriods = []string{"1d", "5d", "7d", "60d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"}

// HistoryIntervals are the bar sizes the chart API accepts. Intraday
// intervals are only served for short ranges.
var HistoryIntervals = []string{"1m", "2m", "5m", "15m", "30m", "60m", "90m", "1h", "1d", "5d", "1wk", "1mo", "3mo"}

func ValidPeriod(p string) bool   { return contains(HistoryPeriods, p) }
func ValidInterval(i string) bool { return contains(HistoryIntervals, i) }

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
