package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/komsit37/yqdash/pkg/yqdash/config"
)

func TestAppSymbols(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "lists.yaml")
	body := "symbols:\n  - name: tech\n    symbols: [aapl, msft]\n  - name: banks\n    symbols: [jpm]\n"
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		cfg  config.Config
		want []string
		err  bool
	}{
		{"flag only", config.Config{Symbols: "aapl nvda,aapl"}, []string{"AAPL", "NVDA"}, false},
		{"file all lists", config.Config{Symbols: "nvda", SymbolsFile: file}, []string{"NVDA", "AAPL", "MSFT", "JPM"}, false},
		{"named list", config.Config{SymbolsFile: file, List: "banks"}, []string{"JPM"}, false},
		{"missing list", config.Config{SymbolsFile: file, List: "nope"}, nil, true},
		{"nothing", config.Config{}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &app{cfg: &tt.cfg}
			got, err := a.symbols()
			if tt.err {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDateFlag(t *testing.T) {
	if d, err := parseDateFlag("start", ""); d != nil || err != nil {
		t.Fatalf("empty flag: %v %v", d, err)
	}
	d, err := parseDateFlag("start", "2024-03-01")
	if err != nil || d.Format(dateLayout) != "2024-03-01" {
		t.Fatalf("got %v %v", d, err)
	}
	if _, err := parseDateFlag("end", "03/01/2024"); err == nil {
		t.Fatalf("expected error")
	}
}
