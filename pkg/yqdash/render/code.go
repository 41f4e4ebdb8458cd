package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

// codeRenderer prints only the snippet that reproduces the call.
type codeRenderer struct{}

func NewCodeRenderer() Renderer {
	return codeRenderer{}
}

func (codeRenderer) Render(w io.Writer, res types.QueryResult, opts Options) error {
	code := res.Code
	if opts.Color {
		code = text.FgCyan.Sprint(code)
	}
	_, err := fmt.Fprintln(w, code)
	return err
}
