package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/komsit37/yqdash/pkg/yqdash/dispatch"
	"github.com/komsit37/yqdash/pkg/yqdash/handle"
	"github.com/komsit37/yqdash/pkg/yqdash/logger"
	"github.com/komsit37/yqdash/pkg/yqdash/metrics"
	"github.com/komsit37/yqdash/pkg/yqdash/types"
)

var ErrNotConfigured = errors.New("session has no symbols configured")

// Session owns one data handle and the memo of results obtained through it.
// Invocations on a session are serialized.
type Session struct {
	ID string

	dispatcher *dispatch.Dispatcher
	factory    handle.Factory
	store      Store
	logger     *logger.Logger

	mu       sync.Mutex
	handle   handle.Handle
	symbols  []string
	opts     types.Options
	lastUsed time.Time
}

func New(id string, d *dispatch.Dispatcher, f handle.Factory, store Store, l *logger.Logger) *Session {
	if l == nil {
		l = logger.Nop()
	}
	if store == nil {
		store = NewMemoryStore(0, 0)
	}
	return &Session{
		ID:         id,
		dispatcher: d,
		factory:    f,
		store:      store,
		logger:     l.With(logger.String("session", id)),
		lastUsed:   time.Now(),
	}
}

// Configure points the session at symbols with opts. The handle is rebuilt
// and the memo cleared only when either differs from the current ones.
func (s *Session) Configure(ctx context.Context, symbols []string, opts types.Options) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	return s.configureLocked(ctx, symbols, opts)
}

func (s *Session) configureLocked(ctx context.Context, symbols []string, opts types.Options) (bool, error) {
	if s.handle != nil && equalStrings(s.symbols, symbols) && s.opts == opts {
		return false, nil
	}
	if err := s.store.Clear(ctx); err != nil {
		return false, fmt.Errorf("clear memo: %w", err)
	}
	s.symbols = append([]string(nil), symbols...)
	s.opts = opts
	s.handle = s.factory(s.symbols, opts)
	s.logger.Debug("session configured",
		logger.Strings("symbols", s.symbols),
		logger.Bool("formatted", opts.Formatted),
		logger.Bool("asynchronous", opts.Asynchronous),
	)
	return true, nil
}

// Handle returns the current data handle, nil before Configure.
func (s *Session) Handle() handle.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

func (s *Session) Symbols() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.symbols...)
}

func (s *Session) Options() types.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

// Invoke returns the memoized result for (id, args) when present and
// otherwise dispatches and stores it. Errors are not memoized.
func (s *Session) Invoke(ctx context.Context, id string, args ...any) (types.QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	return s.invokeLocked(ctx, id, args)
}

// Query configures the session and invokes id in one critical section, so
// concurrent callers on a shared session each get results for their own
// symbols.
func (s *Session) Query(ctx context.Context, symbols []string, opts types.Options, id string, args ...any) (types.QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
	if _, err := s.configureLocked(ctx, symbols, opts); err != nil {
		return types.QueryResult{}, err
	}
	return s.invokeLocked(ctx, id, args)
}

func (s *Session) invokeLocked(ctx context.Context, id string, args []any) (types.QueryResult, error) {
	if s.handle == nil {
		return types.QueryResult{}, ErrNotConfigured
	}

	key, err := MemoKey(id, args)
	if err != nil {
		return types.QueryResult{}, err
	}
	if res, ok, err := s.store.Get(ctx, key); err != nil {
		s.logger.Warn("memo lookup failed", logger.String("key", key), logger.Error(err))
	} else if ok {
		metrics.ObserveMemo(true)
		s.logger.Debug("memo hit", logger.String("key", key))
		return res, nil
	}
	metrics.ObserveMemo(false)

	res, err := s.dispatcher.Invoke(ctx, id, s.handle, args...)
	if err != nil {
		return types.QueryResult{}, err
	}
	if err := s.store.Set(ctx, key, res); err != nil {
		s.logger.Warn("memo store failed", logger.String("key", key), logger.Error(err))
	}
	return res, nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = now
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastUsed)
}

// MemoKey identifies a call by endpoint and JSON-encoded arguments.
func MemoKey(id string, args []any) (string, error) {
	if len(args) == 0 {
		return id + "|[]", nil
	}
	b, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("memo key for %s: %w", id, err)
	}
	return id + "|" + string(b), nil
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
