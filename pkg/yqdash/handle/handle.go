package handle

import (
	"context"
	"errors"
	"fmt"

	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

var (
	// ErrArgumentMismatch means the access exists but not with the supplied
	// arguments.
	ErrArgumentMismatch = errors.New("argument mismatch")
	// ErrNotExposed means the handle has no access for the identifier.
	ErrNotExposed = errors.New("endpoint not exposed by data handle")
)

// Handle is an opaque reference to one or more symbols plus the options
// every request is shaped with.
type Handle interface {
	Symbols() []string
	Options() types.Options
	// Probe reports how id must be accessed, and whether it is exposed at all.
	Probe(id string) (types.Arity, bool)
	// Access reads id. With no args it is a plain attribute read.
	Access(ctx context.Context, id string, args ...any) (any, error)
}

// Factory builds a handle for a symbol list.
type Factory func(symbols []string, opts types.Options) Handle

// ArgumentMismatchError is returned by Access when args do not fit the arity.
type ArgumentMismatchError struct {
	ID     string
	Arity  types.Arity
	Reason string
}

func (e *ArgumentMismatchError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.ID, e.Arity, e.Reason)
}

func (e *ArgumentMismatchError) Is(target error) bool { return target == ErrArgumentMismatch }

// NotExposedError names the identifier the handle could not serve.
type NotExposedError struct {
	ID string
}

func (e *NotExposedError) Error() string { return "endpoint not exposed by data handle: " + e.ID }

func (e *NotExposedError) Is(target error) bool { return target == ErrNotExposed }
