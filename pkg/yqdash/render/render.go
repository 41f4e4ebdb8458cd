package render

import (
	"fmt"
	"io"

	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

// Renderer writes a query result.
type Renderer interface {
	Render(w io.Writer, res types.QueryResult, opts Options) error
}

type Options struct {
	Color       bool
	Pretty      bool
	MaxColWidth int
	// TableWidth caps table rows at the terminal width when positive.
	TableWidth int
}

// New returns the renderer for an output format: json, table or code.
func New(format string) (Renderer, error) {
	switch format {
	case "", "json":
		return NewJSONRenderer(), nil
	case "table":
		return NewTableRenderer(), nil
	case "code":
		return NewCodeRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (json, table, code)", format)
	}
}
