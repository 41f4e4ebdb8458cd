// Package symbols parses ticker symbol input and loads named symbol lists
// from YAML files.
package symbols

import (
	"strings"
	"unicode"
)

// List is a named group of symbols.
type List struct {
	Name    string
	Symbols []string
}

// Parse splits text on commas and whitespace, upper-cases each symbol and
// drops duplicates, keeping first-seen order.
func Parse(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
	return normalize(fields)
}

// Flatten joins every list's symbols, dropping duplicates.
func Flatten(lists []List) []string {
	var all []string
	for _, l := range lists {
		all = append(all, l.Symbols...)
	}
	return normalize(all)
}

func normalize(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, s := range in {
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
