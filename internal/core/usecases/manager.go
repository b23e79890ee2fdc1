package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/samirrijal/mapbridge/internal/core/domain"
	"github.com/samirrijal/mapbridge/internal/core/ports"
	"github.com/samirrijal/mapbridge/internal/pkg/metrics"
)

// ManagerConfig holds defaults applied to new sessions.
type ManagerConfig struct {
	DefaultProvider domain.ProviderID
	Viewport        Viewport
	EqualityMode    domain.EqualityMode
	Debug           bool
}

// CreateSessionRequest describes a new session. Zero fields take the manager
// defaults.
type CreateSessionRequest struct {
	ID       string            `json:"id,omitempty"`
	Provider domain.ProviderID `json:"provider,omitempty"`
	Element  string            `json:"element,omitempty"`
	Width    int               `json:"width,omitempty"`
	Height   int               `json:"height,omitempty"`
	Debug    *bool             `json:"debug,omitempty"`
}

type managedSession struct {
	mu sync.Mutex
	s  *Session
}

// Manager owns every live session. Do serializes all access to one session,
// standing in for the single control thread of a map widget.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*managedSession
	registry  ports.ProviderRegistry
	publisher ports.EventPublisher
	cfg       ManagerConfig
	logger    *slog.Logger
}

// NewManager creates a manager. publisher may be nil.
func NewManager(registry ports.ProviderRegistry, publisher ports.EventPublisher, cfg ManagerConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions:  make(map[string]*managedSession),
		registry:  registry,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// Create builds a session and selects its first provider. A provider that
// fails to initialize fails the whole call and no session is kept.
func (m *Manager) Create(ctx context.Context, req CreateSessionRequest) (SessionInfo, error) {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	provider := req.Provider
	if provider == "" {
		provider = m.cfg.DefaultProvider
	}
	vp := m.cfg.Viewport
	if req.Width > 0 && req.Height > 0 {
		vp = Viewport{Width: req.Width, Height: req.Height}
	}
	debug := m.cfg.Debug
	if req.Debug != nil {
		debug = *req.Debug
	}

	m.mu.Lock()
	if _, exists := m.sessions[id]; exists {
		m.mu.Unlock()
		return SessionInfo{}, fmt.Errorf("session %s: %w", id, domain.ErrDuplicateEntity)
	}
	ms := &managedSession{}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	m.sessions[id] = ms
	m.mu.Unlock()

	s := NewSession(id, m.registry, SessionOptions{
		Element:      req.Element,
		Viewport:     vp,
		EqualityMode: m.cfg.EqualityMode,
		Debug:        debug,
		Logger:       m.logger,
	})
	if err := s.Swap(ctx, provider); err != nil {
		s.Teardown()
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return SessionInfo{}, fmt.Errorf("create session: %w", err)
	}
	if m.publisher != nil {
		m.relayEvents(s)
	}
	ms.s = s

	metrics.SessionsActive.Inc()
	m.logger.Info("session created", "session", id, "provider", provider)
	return s.Info(ctx), nil
}

// relayEvents forwards the session's map events to the publisher.
func (m *Manager) relayEvents(s *Session) {
	id := s.ID()
	relay := func(ev domain.Event) error {
		return m.publisher.PublishMapEvent(context.Background(), id, ev)
	}
	s.Events().AddListener(domain.EventClick, relay, nil)
	s.Events().AddListener(domain.EventMoveEnd, relay, nil)
}

// Do runs fn with exclusive access to the session.
func (m *Manager) Do(id string, fn func(s *Session) error) error {
	m.mu.RLock()
	ms, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, domain.ErrEntityNotFound)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.s == nil {
		// creation failed while we waited
		return fmt.Errorf("session %s: %w", id, domain.ErrEntityNotFound)
	}
	return fn(ms.s)
}

// sessionForgetter is implemented by publishers that keep per-session state.
type sessionForgetter interface {
	ForgetSession(session string)
}

// Delete tears the session down and forgets it.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	ms, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %s: %w", id, domain.ErrEntityNotFound)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.s != nil {
		ms.s.Teardown()
		metrics.SessionsActive.Dec()
	}
	if f, ok := m.publisher.(sessionForgetter); ok {
		f.ForgetSession(id)
	}
	m.logger.Info("session deleted", "session", id)
	return nil
}

// List returns the ids of all sessions, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Providers lists the providers sessions can select.
func (m *Manager) Providers() []domain.ProviderID {
	return m.registry.Available()
}

// Close tears down every session.
func (m *Manager) Close() {
	for _, id := range m.List() {
		_ = m.Delete(id)
	}
}

// HandleHost routes a host notification to its session.
func (m *Manager) HandleHost(ctx context.Context, n ports.HostNotification) error {
	return m.Do(n.Session, func(s *Session) error {
		switch n.Kind {
		case "ready":
			return s.MarkReady(ctx, n.Provider)
		case "click":
			if n.Location == nil {
				return fmt.Errorf("click from %s: %w: missing location", n.Provider, domain.ErrInvalidCoordinate)
			}
			_, err := s.HandleClick(ctx, n.Provider, *n.Location)
			return err
		case "moveend":
			_, err := s.HandleMoveEnd(ctx, n.Provider, n.Native, n.NativeZoom)
			return err
		}
		return fmt.Errorf("unknown host notification %q", n.Kind)
	})
}
