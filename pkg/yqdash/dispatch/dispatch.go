package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/komsit37/yqdash/pkg/yqdash/catalog"
	"github.com/komsit37/yqdash/pkg/yqdash/handle"
	"github.com/komsit37/yqdash/pkg/yqdash/logger"
	"github.com/komsit37/yqdash/pkg/yqdash/metrics"
	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

// Dispatcher resolves catalog identifiers against a data handle.
type Dispatcher struct {
	catalog *catalog.Catalog
	logger  *logger.Logger
}

func New(c *catalog.Catalog, l *logger.Logger) *Dispatcher {
	if l == nil {
		l = logger.Nop()
	}
	return &Dispatcher{catalog: c, logger: l.With(logger.String("component", "dispatch"))}
}

func (d *Dispatcher) Catalog() *catalog.Catalog { return d.catalog }

// LookupDisplayName fails with *catalog.UnknownEndpointError when id is not
// in the catalog.
func (d *Dispatcher) LookupDisplayName(id string) (string, error) {
	return d.catalog.DisplayName(id)
}

// ResolveArity returns the catalog arity when it is fixed, otherwise the
// arity the handle reports for id. A handle that does not expose id is an
// error in both cases.
func (d *Dispatcher) ResolveArity(id string, h handle.Handle) (types.Arity, error) {
	desc, err := d.catalog.Lookup(id)
	if err != nil {
		return types.ArityUnknown, err
	}
	probed, ok := h.Probe(id)
	if !ok {
		return types.ArityUnknown, &handle.NotExposedError{ID: id}
	}
	if desc.Arity != types.ArityUnknown {
		return desc.Arity, nil
	}
	return probed, nil
}

// Invoke reads id from h. When args were given and the handle reports an
// argument mismatch, the access is retried once without arguments. Every
// other error is returned as is.
func (d *Dispatcher) Invoke(ctx context.Context, id string, h handle.Handle, args ...any) (types.QueryResult, error) {
	desc, err := d.catalog.Lookup(id)
	if err != nil {
		return types.QueryResult{}, err
	}
	arity, err := d.ResolveArity(id, h)
	if err != nil {
		return types.QueryResult{}, err
	}
	desc.Arity = arity

	begin := time.Now()
	data, err := h.Access(ctx, id, args...)
	if err != nil && len(args) > 0 && errors.Is(err, handle.ErrArgumentMismatch) {
		d.logger.Debug("argument mismatch, retrying without arguments",
			logger.String("endpoint", id),
			logger.Error(err),
		)
		metrics.ArgumentFallbacks.WithLabelValues(id).Inc()
		args = nil
		data, err = h.Access(ctx, id)
	}
	metrics.ObserveUpstream(id, begin, err)
	if err != nil {
		d.logger.Warn("endpoint access failed",
			logger.String("endpoint", id),
			logger.Strings("symbols", h.Symbols()),
			logger.Error(err),
		)
		return types.QueryResult{}, err
	}

	symbols := h.Symbols()
	return types.QueryResult{
		Endpoint: desc,
		Symbols:  symbols,
		Args:     args,
		Shape:    Classify(data, symbols),
		Code:     Snippet(symbols, h.Options(), id, args),
		Data:     data,
	}, nil
}
