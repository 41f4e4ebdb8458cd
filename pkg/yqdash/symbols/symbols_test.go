package symbols

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	cases := map[string][]string{
		"aapl":              {"AAPL"},
		"AAPL, msft  nvda":  {"AAPL", "MSFT", "NVDA"},
		"aapl,AAPL,\tspy\n": {"AAPL", "SPY"},
		" , ":               {},
		"7203.T 9984.t":     {"7203.T", "9984.T"},
	}
	for in, want := range cases {
		if got := Parse(in); !reflect.DeepEqual(got, want) {
			t.Fatalf("Parse(%q) = %v, want %v", in, got, want)
		}
	}
}

const sample = `
symbols:
  - sym: aapl
  - MSFT
  - name: Funds
    symbols:
      - sym: SPY
      - VTI
      - name: Bonds
        symbols: [BND]
`

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func byName(lists []List) map[string][]string {
	out := map[string][]string{}
	for _, l := range lists {
		out[l.Name] = l.Symbols
	}
	return out
}

func TestLoadFile(t *testing.T) {
	p := write(t, t.TempDir(), "core.yaml", sample)
	lists, err := LoadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string][]string{
		"core":        {"AAPL", "MSFT"},
		"Funds":       {"SPY", "VTI"},
		"Funds/Bonds": {"BND"},
	}
	if got := byName(lists); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if got := Flatten(lists); len(got) != 5 {
		t.Fatalf("flatten: %v", got)
	}
}

func TestLoadDirectoryPrefixesNames(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "us/tech.yml", "symbols: [AAPL, MSFT]\n")
	write(t, dir, "jp.yaml", "symbols:\n  - name: auto\n    symbols: [7203.T]\n")
	write(t, dir, "notes.txt", "ignored")

	lists, err := LoadFile(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string][]string{
		"jp/auto": {"7203.T"},
		"us/tech": {"AAPL", "MSFT"},
	}
	if got := byName(lists); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLoadFileInvalid(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFile(write(t, dir, "bad.yaml", "watchlist: [AAPL]\n")); err == nil {
		t.Fatalf("expected missing symbols error")
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected not found error")
	}
}
