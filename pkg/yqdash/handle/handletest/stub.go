// Package handletest provides a scripted handle.Handle for tests.
package handletest

import (
	"context"
	"sync"

	"github.com/komsit37/yqdash/pkg/yqdash/handle"
	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

// AccessFunc answers one Access call.
type AccessFunc func(args []any) (any, error)

// Stub records every Access call and answers from Funcs.
type Stub struct {
	Syms    []string
	Opts    types.Options
	Arities map[string]types.Arity
	Funcs   map[string]AccessFunc

	mu    sync.Mutex
	calls []Call
}

// Call is one recorded Access.
type Call struct {
	ID   string
	Args []any
}

// New returns a stub for syms with no endpoints.
func New(syms ...string) *Stub {
	return &Stub{
		Syms:    syms,
		Arities: map[string]types.Arity{},
		Funcs:   map[string]AccessFunc{},
	}
}

// On registers id with an arity and a responder.
func (s *Stub) On(id string, arity types.Arity, fn AccessFunc) *Stub {
	s.Arities[id] = arity
	s.Funcs[id] = fn
	return s
}

// Value registers a zero-arity id that always returns v.
func (s *Stub) Value(id string, v any) *Stub {
	return s.On(id, types.ArityZero, func(args []any) (any, error) {
		if len(args) > 0 {
			return nil, &handle.ArgumentMismatchError{ID: id, Arity: types.ArityZero, Reason: "takes no arguments"}
		}
		return v, nil
	})
}

func (s *Stub) Symbols() []string      { return s.Syms }
func (s *Stub) Options() types.Options { return s.Opts }

func (s *Stub) Probe(id string) (types.Arity, bool) {
	a, ok := s.Arities[id]
	return a, ok
}

func (s *Stub) Access(_ context.Context, id string, args ...any) (any, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{ID: id, Args: args})
	s.mu.Unlock()
	fn, ok := s.Funcs[id]
	if !ok {
		return nil, &handle.NotExposedError{ID: id}
	}
	return fn(args)
}

// Calls returns a copy of the recorded calls.
func (s *Stub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount counts calls for id.
func (s *Stub) CallCount(id string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.ID == id {
			n++
		}
	}
	return n
}

// Factory returns a handle.Factory that always hands out s, updating its
// symbols and options.
func (s *Stub) Factory() handle.Factory {
	return func(symbols []string, opts types.Options) handle.Handle {
		s.Syms = symbols
		s.Opts = opts
		return s
	}
}
