package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/lookahead/internal/logging"
	"github.com/aretw0/lookahead/pkg/domain"
	"github.com/aretw0/lookahead/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold an agent.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates plan access, ensuring one writer per agent.
// It uses reference counting to garbage collect unused locks.
// Manager itself implements ports.PlanStore, each call taking the agent lock.
type Manager struct {
	store ports.PlanStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

var _ ports.PlanStore = (*Manager)(nil)

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the lease of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a new Manager with the given persistence store.
func NewManager(store ports.PlanStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(agentID) after unlocking.
func (m *Manager) acquire(agentID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[agentID]
	if !exists {
		entry = &lockEntry{}
		m.locks[agentID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(agentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[agentID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, agentID)
	}
}

// Load retrieves an agent's plan from the store.
func (m *Manager) Load(ctx context.Context, agentID string) (*domain.PlanRecord, error) {
	var rec *domain.PlanRecord
	err := m.WithLock(ctx, agentID, func(ctx context.Context) error {
		var err error
		rec, err = m.store.Load(ctx, agentID)
		return err
	})
	return rec, err
}

// Save persists an agent's plan.
func (m *Manager) Save(ctx context.Context, agentID string, rec *domain.PlanRecord) error {
	return m.WithLock(ctx, agentID, func(ctx context.Context) error {
		return m.store.Save(ctx, agentID, rec)
	})
}

// Delete removes an agent's plan from the store.
func (m *Manager) Delete(ctx context.Context, agentID string) error {
	return m.WithLock(ctx, agentID, func(ctx context.Context) error {
		return m.store.Delete(ctx, agentID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying plan store.
func (m *Manager) Store() ports.PlanStore {
	return m.store
}

// WithLock executes fn while holding the lock for the agent.
//
// The local lock is not reentrant: fn must use the underlying Store, not
// the Manager, for persistence.
func (m *Manager) WithLock(ctx context.Context, agentID string, fn func(context.Context) error) error {
	entry := m.acquire(agentID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(agentID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, agentID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"agent", agentID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
