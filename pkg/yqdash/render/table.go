package render

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

type TableRenderer struct{}

func NewTableRenderer() *TableRenderer { return &TableRenderer{} }

// Render prints tabular data as one table, symbol keyed maps as one section
// per symbol and anything else as a key/value table.
func (r *TableRenderer) Render(w io.Writer, res types.QueryResult, opts Options) error {
	fmt.Fprintln(w, text.Bold.Sprint(res.Endpoint.DisplayName))
	switch res.Shape {
	case types.ShapeMultiSymbolDict:
		m, _ := res.Data.(map[string]any)
		for i, sym := range orderedKeys(m, res.Symbols) {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, text.Bold.Sprint(sym))
			if err := renderValue(w, m[sym], opts); err != nil {
				return err
			}
		}
		return nil
	default:
		return renderValue(w, res.Data, opts)
	}
}

func renderValue(w io.Writer, v any, opts Options) error {
	switch x := v.(type) {
	case types.Table:
		writeTable(w, x.Columns, x.Rows, opts)
	case *types.Table:
		writeTable(w, x.Columns, x.Rows, opts)
	case []map[string]any:
		cols, rows := fromRecords(x)
		writeTable(w, cols, rows, opts)
	case []any:
		if recs, ok := asRecords(x); ok {
			cols, rows := fromRecords(recs)
			writeTable(w, cols, rows, opts)
			return nil
		}
		b, err := json.Marshal(x)
		if err != nil {
			return err
		}
		return writeJSON(w, b, Options{Pretty: true})
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([][]any, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []any{k, x[k]})
		}
		writeTable(w, []string{"field", "value"}, rows, opts)
	default:
		fmt.Fprintln(w, cell(v))
	}
	return nil
}

func writeTable(w io.Writer, cols []string, rows [][]any, opts Options) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleColoredDark)
	if !opts.Color {
		tw.SetStyle(table.StyleLight)
	}
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false
	if opts.TableWidth > 0 {
		tw.SetAllowedRowLength(opts.TableWidth)
	}

	hdr := make(table.Row, len(cols))
	for i, c := range cols {
		hdr[i] = strings.ToUpper(c)
	}
	tw.AppendHeader(hdr)

	// Wrap text to MaxColWidth (default 40), no truncation.
	maxWidth := opts.MaxColWidth
	if maxWidth <= 0 {
		maxWidth = 40
	}
	cfgs := make([]table.ColumnConfig, 0, len(cols))
	for i := range cols {
		cfgs = append(cfgs, table.ColumnConfig{Number: i + 1, WidthMax: maxWidth})
	}
	tw.SetColumnConfigs(cfgs)

	for _, r := range rows {
		row := make(table.Row, len(cols))
		for i := range cols {
			var v any
			if i < len(r) {
				v = r[i]
			}
			row[i] = cell(v)
			if opts.Color && isChangeColumn(cols[i]) {
				row[i] = colorize(v, row[i].(string))
			}
		}
		tw.AppendRow(row)
	}
	tw.Render()
}

// cell formats a value for display. Nested values are shown as compact JSON.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool, int, int64:
		return fmt.Sprint(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

func isChangeColumn(name string) bool {
	l := strings.ToLower(name)
	return strings.Contains(l, "change") || strings.HasSuffix(l, "%")
}

func colorize(v any, s string) string {
	f, ok := v.(float64)
	switch {
	case !ok || f == 0:
		return s
	case f < 0:
		return text.Colors{text.FgRed}.Sprint(s)
	default:
		return text.Colors{text.FgGreen}.Sprint(s)
	}
}

func asRecords(list []any) ([]map[string]any, bool) {
	if len(list) == 0 {
		return nil, false
	}
	out := make([]map[string]any, 0, len(list))
	for _, e := range list {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, false
		}
		out = append(out, m)
	}
	return out, true
}

// fromRecords uses the sorted union of record keys as columns.
func fromRecords(recs []map[string]any) ([]string, [][]any) {
	seen := map[string]bool{}
	var cols []string
	for _, r := range recs {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		row := make([]any, len(cols))
		for i, c := range cols {
			row[i] = r[c]
		}
		rows = append(rows, row)
	}
	return cols, rows
}

// orderedKeys lists symbols first in handle order, then any other keys sorted.
func orderedKeys(m map[string]any, symbols []string) []string {
	out := make([]string, 0, len(m))
	seen := map[string]bool{}
	for _, s := range symbols {
		if _, ok := m[s]; ok && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// RenderEndpoints prints the catalog listing.
func RenderEndpoints(w io.Writer, descs []types.EndpointDescriptor, opts Options) {
	rows := make([][]any, 0, len(descs))
	for _, d := range descs {
		rows = append(rows, []any{d.ID, d.DisplayName, d.Category.String(), d.Arity.String()})
	}
	writeTable(w, []string{"id", "name", "category", "arity"}, rows, opts)
}
