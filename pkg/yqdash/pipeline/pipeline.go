package pipeline

import (
	"context"
	"io"

	"github.com/komsit37/yqdash/pkg/yqdash/catalog"
	"github.com/komsit37/yqdash/pkg/yqdash/filter"
	"github.com/komsit37/yqdash/pkg/yqdash/render"
	"github.com/komsit37/yqdash/pkg/yqdash/session"
	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

// Runner executes one CLI query: query through the session, then render.
type Runner struct {
	Session  *session.Session
	Renderer render.Renderer
	Writer   io.Writer
}

type ExecuteOptions struct {
	Symbols     []string
	Options     types.Options
	Endpoint    string
	Args        []any
	Color       bool
	PrettyJSON  bool
	MaxColWidth int
	TableWidth  int
}

func (o ExecuteOptions) renderOptions() render.Options {
	return render.Options{
		Color:       o.Color,
		Pretty:      o.PrettyJSON,
		MaxColWidth: o.MaxColWidth,
		TableWidth:  o.TableWidth,
	}
}

func (r *Runner) Execute(ctx context.Context, opts ExecuteOptions) (types.QueryResult, error) {
	res, err := r.Session.Query(ctx, opts.Symbols, opts.Options, opts.Endpoint, opts.Args...)
	if err != nil {
		return types.QueryResult{}, err
	}
	return res, r.Renderer.Render(r.Writer, res, opts.renderOptions())
}

// ListEndpoints renders the catalog restricted to cats and filtered by name.
func ListEndpoints(w io.Writer, c *catalog.Catalog, f filter.Filter, cats []types.Category, opts ExecuteOptions) []types.EndpointDescriptor {
	descs := filter.Endpoints(f, c.List(cats...))
	render.RenderEndpoints(w, descs, opts.renderOptions())
	return descs
}
