package catalog

import (
	"errors"
	"testing"

	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

func TestDisplayNameForEveryEndpoint(t *testing.T) {
	c := New()
	for _, id := range c.IDs() {
		first, err := c.DisplayName(id)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", id, err)
		}
		if first == "" {
			t.Fatalf("%s: empty display name", id)
		}
		second, _ := c.DisplayName(id)
		if first != second {
			t.Fatalf("%s: display name not stable: %q vs %q", id, first, second)
		}
	}
}

func TestDisplayNameUnknown(t *testing.T) {
	_, err := New().DisplayName("not_a_module")
	if !errors.Is(err, ErrUnknownEndpoint) {
		t.Fatalf("expected ErrUnknownEndpoint, got %v", err)
	}
	var ue *UnknownEndpointError
	if !errors.As(err, &ue) || ue.ID != "not_a_module" {
		t.Fatalf("expected UnknownEndpointError with id, got %v", err)
	}
}

func TestCatalogSize(t *testing.T) {
	c := New()
	want := len(baseModules) + len(premium) + len(special)
	if c.Len() != want {
		t.Fatalf("expected %d endpoints, got %d", want, c.Len())
	}
}

func TestCategories(t *testing.T) {
	c := New()
	cases := map[string]types.Category{
		"asset_profile":     types.CategoryProfile,
		"fund_ownership":    types.CategoryProfile,
		"balance_sheet":     types.CategoryFinancialStatement,
		"fund_top_holdings": types.CategoryFundSpecific,
		"p_company_360":     types.CategoryPremium,
		"history":           types.CategoryMarket,
		"get_modules":       types.CategoryAggregate,
	}
	for id, want := range cases {
		d, err := c.Lookup(id)
		if err != nil {
			t.Fatalf("%s: %v", id, err)
		}
		if d.Category != want {
			t.Fatalf("%s: expected %s, got %s", id, want, d.Category)
		}
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	c := New()
	prem := c.List(types.CategoryPremium)
	if len(prem) != len(premium) {
		t.Fatalf("expected %d premium endpoints, got %d", len(premium), len(prem))
	}
	for i := 1; i < len(prem); i++ {
		if prem[i-1].ID > prem[i].ID {
			t.Fatalf("premium list not sorted at %d", i)
		}
	}
	all := c.List()
	all[0].DisplayName = "mutated"
	if again := c.List(); again[0].DisplayName == "mutated" {
		t.Fatalf("List must return a copy")
	}
}

func TestStaticArity(t *testing.T) {
	c := New()
	d, _ := c.Lookup("history")
	if d.Arity != types.ArityHistory {
		t.Fatalf("history arity: %s", d.Arity)
	}
	d, _ = c.Lookup("balance_sheet")
	if d.Arity != types.ArityUnknown {
		t.Fatalf("balance_sheet should be probed, got %s", d.Arity)
	}
}
