package yahoo

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"time"
)

var optionColumns = []string{"symbol", "expiration", "optionType", "contractSymbol"}

type optionResponse struct {
	OptionChain struct {
		Result []optionResult `json:"result"`
		Error  *apiError      `json:"error"`
	} `json:"optionChain"`
}

type optionResult struct {
	UnderlyingSymbol string        `json:"underlyingSymbol"`
	ExpirationDates  []int64       `json:"expirationDates"`
	Options          []optionGroup `json:"options"`
}

type optionGroup struct {
	ExpirationDate int64            `json:"expirationDate"`
	Calls          []map[string]any `json:"calls"`
	Puts           []map[string]any `json:"puts"`
}

func optionChain(ctx context.Context, t *Ticker, id string, args []any) (any, error) {
	if err := noArgs(id, args); err != nil {
		return nil, err
	}
	results, errs := t.perSymbol(ctx, t.symbolOptions)
	return t.tableOrDict(optionColumns, results, errs)
}

// symbolOptions walks every expiration date the first response lists.
func (t *Ticker) symbolOptions(ctx context.Context, sym string) (any, error) {
	first, err := t.fetchOptions(ctx, sym, 0)
	if err != nil {
		return nil, err
	}
	if len(first.ExpirationDates) == 0 {
		return nil, errNoData
	}

	var recs []map[string]any
	seen := map[int64]bool{}
	add := func(groups []optionGroup) {
		for _, g := range groups {
			if seen[g.ExpirationDate] {
				continue
			}
			seen[g.ExpirationDate] = true
			recs = append(recs, t.optionRecords(sym, g)...)
		}
	}
	add(first.Options)
	for _, exp := range first.ExpirationDates {
		if seen[exp] {
			continue
		}
		res, err := t.fetchOptions(ctx, sym, exp)
		if err != nil {
			return nil, err
		}
		add(res.Options)
	}
	return recs, nil
}

func (t *Ticker) fetchOptions(ctx context.Context, sym string, date int64) (optionResult, error) {
	q := url.Values{}
	if date > 0 {
		q.Set("date", strconv.FormatInt(date, 10))
	}
	var resp optionResponse
	if err := t.getJSON(ctx, symbolPath("/v7/finance/options/", sym), q, false, &resp); err != nil {
		return optionResult{}, err
	}
	if e := resp.OptionChain.Error; e != nil {
		return optionResult{}, errors.New(e.Description)
	}
	if len(resp.OptionChain.Result) == 0 {
		return optionResult{}, errNoData
	}
	return resp.OptionChain.Result[0], nil
}

func (t *Ticker) optionRecords(sym string, g optionGroup) []map[string]any {
	exp := time.Unix(g.ExpirationDate, 0).UTC().Format("2006-01-02")
	recs := make([]map[string]any, 0, len(g.Calls)+len(g.Puts))
	for _, side := range []struct {
		name      string
		contracts []map[string]any
	}{{"calls", g.Calls}, {"puts", g.Puts}} {
		for _, c := range side.contracts {
			rec := map[string]any{"symbol": sym, "expiration": exp, "optionType": side.name}
			for k, v := range c {
				rec[k] = t.format(v)
			}
			recs = append(recs, rec)
		}
	}
	return recs
}
