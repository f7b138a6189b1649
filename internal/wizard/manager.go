package wizard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/club-checkout/internal/metrics"
)

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Manager хранит активные сессии в памяти и удаляет неактивные по TTL.
type Manager struct {
	plans    PlanSource
	payments PaymentInitiator
	log      *slog.Logger
	cfg      Config
	ttl      time.Duration

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewManager создаёт менеджер сессий.
func NewManager(plans PlanSource, payments PaymentInitiator, log *slog.Logger, cfg Config, ttl time.Duration) *Manager {
	cfg = cfg.withDefaults()
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Manager{
		plans:    plans,
		payments: payments,
		log:      log,
		cfg:      cfg,
		ttl:      ttl,
		sessions: make(map[string]*entry),
	}
}

// Start открывает новую сессию оформления.
func (m *Manager) Start() *Session {
	id := uuid.NewString()
	s := New(id, m.plans, m.payments, m.log, m.cfg)

	m.mu.Lock()
	m.sessions[id] = &entry{session: s, lastSeen: m.cfg.Now()}
	metrics.CheckoutSessionsActive.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	m.log.Debug("checkout session started", slog.String("session_id", id))
	return s
}

// Get возвращает сессию и продлевает её жизнь.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.lastSeen = m.cfg.Now()
	return e.session, nil
}

// Finish удаляет сессию после успешной отправки.
func (m *Manager) Finish(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	metrics.CheckoutSessionsActive.Set(float64(len(m.sessions)))
	m.mu.Unlock()
}

// Len возвращает количество активных сессий.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep удаляет сессии, неактивные дольше TTL, и возвращает их количество.
// Сессия с незавершённой отправкой не удаляется.
func (m *Manager) Sweep() int {
	now := m.cfg.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, e := range m.sessions {
		if now.Sub(e.lastSeen) < m.ttl || e.session.Submitting() {
			continue
		}
		delete(m.sessions, id)
		removed++
	}
	metrics.CheckoutSessionsActive.Set(float64(len(m.sessions)))
	return removed
}

// Run периодически вызывает Sweep до отмены ctx.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.log.Info("expired checkout sessions removed", slog.Int("count", n))
			}
		}
	}
}
