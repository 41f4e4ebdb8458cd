package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/komsit37/yqdash/pkg/yqdash/dispatch"
	"github.com/komsit37/yqdash/pkg/yqdash/handle"
	"github.com/komsit37/yqdash/pkg/yqdash/logger"
	"github.com/komsit37/yqdash/pkg/yqdash/metrics"
)

// Manager keeps the server's sessions keyed by an opaque id.
type Manager struct {
	dispatcher *dispatch.Dispatcher
	factory    handle.Factory
	stores     StoreFactory
	idle       time.Duration
	logger     *logger.Logger
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager returns a manager expiring sessions idle for longer than idle.
// A nil stores factory uses a MemoryStore per session.
func NewManager(d *dispatch.Dispatcher, f handle.Factory, stores StoreFactory, idle time.Duration, l *logger.Logger) *Manager {
	if l == nil {
		l = logger.Nop()
	}
	if stores == nil {
		stores = func(string) Store { return NewMemoryStore(idle, 256) }
	}
	return &Manager{
		dispatcher: d,
		factory:    f,
		stores:     stores,
		idle:       idle,
		logger:     l.With(logger.String("component", "session")),
		now:        time.Now,
		sessions:   make(map[string]*Session),
	}
}

// Get returns the session for id, creating a fresh one with a new id when id
// is empty or unknown. The bool reports whether a session was created.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok && id != "" {
		s.touch(m.now())
		return s, false
	}
	id = uuid.NewString()
	s := New(id, m.dispatcher, m.factory, m.stores(id), m.logger)
	m.sessions[id] = s
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.logger.Debug("session created", logger.String("session", id))
	return s, true
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than the manager's idle limit and
// clears their memo. It returns how many were dropped.
func (m *Manager) Sweep(ctx context.Context) int {
	if m.idle <= 0 {
		return 0
	}
	now := m.now()
	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.idleSince(now) > m.idle {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	for _, s := range expired {
		if err := s.store.Clear(ctx); err != nil {
			m.logger.Warn("clear expired session", logger.String("session", s.ID), logger.Error(err))
		}
	}
	if len(expired) > 0 {
		m.logger.Info("expired idle sessions", logger.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep(ctx)
		}
	}
}
