package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// DefaultIdleTTL is how long a session may sit without activity before
// the janitor closes it.
const DefaultIdleTTL = 30 * time.Minute

// Manager tracks open editing sessions and reaps the ones their users
// abandoned. Abandonment is the only way a browser-driven session ends
// without an explicit close, so the janitor is what keeps the session
// table from growing forever.
type Manager struct {
	flows  FlowService
	logger *slog.Logger
	ttl    time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
	cron     *cron.Cron
}

// NewManager creates a session manager. Sessions idle longer than ttl
// are closed by Sweep; a non-positive ttl selects DefaultIdleTTL.
func NewManager(flows FlowService, logger *slog.Logger, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}

	return &Manager{
		flows:    flows,
		logger:   logger.With("module", "session_manager"),
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Open creates a session bound to the flow and loads it. The session is
// registered before the load starts, so it can be closed while the load
// is still in flight; the load result is then discarded.
func (m *Manager) Open(ctx context.Context, flowID string) (*Session, error) {
	sess := NewSession(uuid.New().String(), m.flows, m.logger)

	m.mu.Lock()
	m.sessions[sess.ID()] = sess
	m.mu.Unlock()

	if err := m.loadAndRegister(ctx, sess, flowID); err != nil {
		return nil, err
	}

	return sess, nil
}

func (m *Manager) loadAndRegister(ctx context.Context, sess *Session, flowID string) error {
	err := sess.Load(ctx, flowID)
	if err == nil {
		m.logger.Info("opened editing session", "session_id", sess.ID(), "flow_id", flowID)

		return nil
	}

	m.mu.Lock()
	delete(m.sessions, sess.ID())
	m.mu.Unlock()

	sess.Close()

	return err
}

// Get returns the open session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return sess, nil
}

// Close closes the session and removes it from the manager.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]

	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	sess.Close()
	m.logger.Info("closed editing session", "session_id", id, "flow_id", sess.FlowID())

	return nil
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sessions)
}

// Sweep closes every session idle longer than the manager's TTL.
func (m *Manager) Sweep() {
	cutoff := time.Now().UTC().Add(-m.ttl)

	m.mu.Lock()

	var expired []*Session

	for id, sess := range m.sessions {
		if sess.LastActivity().Before(cutoff) {
			delete(m.sessions, id)
			expired = append(expired, sess)
		}
	}
	m.mu.Unlock()

	for _, sess := range expired {
		sess.Close()
		m.logger.Info("closed idle editing session", "session_id", sess.ID(), "flow_id", sess.FlowID())
	}
}

// StartJanitor schedules Sweep on the given cron expression, for example
// "@every 1m".
func (m *Manager) StartJanitor(schedule string) error {
	scheduler := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	if _, err := scheduler.AddFunc(schedule, m.Sweep); err != nil {
		return fmt.Errorf("failed to schedule session janitor: %w", err)
	}

	scheduler.Start()

	m.mu.Lock()
	m.cron = scheduler
	m.mu.Unlock()

	m.logger.Info("session janitor started", "schedule", schedule, "ttl", m.ttl.String())

	return nil
}

// StopJanitor stops the janitor scheduler. Safe to call when the janitor
// was never started.
func (m *Manager) StopJanitor() {
	m.mu.Lock()
	scheduler := m.cron
	m.cron = nil
	m.mu.Unlock()

	if scheduler != nil {
		scheduler.Stop()
	}
}
