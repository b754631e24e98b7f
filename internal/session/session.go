// Package session owns the lifecycle of wizard sessions: create, look up,
// mutate through the owned ledger, dispose.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/susu3304/partypay/internal/export"
	"github.com/susu3304/partypay/internal/ledger"
	"github.com/susu3304/partypay/internal/metrics"
	"github.com/susu3304/partypay/internal/render"
	"github.com/susu3304/partypay/internal/settlement"
	"github.com/susu3304/partypay/internal/wizard"
)

var ErrNotFound = errors.New("session not found")

// Session is one wizard run. The ledger is injected into the wizard and
// the calculation; nothing else holds it.
type Session struct {
	ID        string
	Key       string
	CreatedAt time.Time

	Ledger *ledger.Store
	Wizard *wizard.Controller
	Calc   *settlement.Calculation
	Export *export.Pipeline

	mu       sync.Mutex
	lang     language.Tag
	lastSeen time.Time
}

func (s *Session) Language() language.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lang
}

func (s *Session) SetLanguage(tag language.Tag) {
	s.mu.Lock()
	s.lang = tag
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// Result is the latest successful calculation, or nil.
func (s *Session) Result() *settlement.Result {
	return s.Calc.State().Result
}

// dispose clears the session contents.
func (s *Session) dispose() {
	s.Calc.Reset()
	s.Wizard.Reset()
	s.Ledger.Reset()
}

type Manager struct {
	calc     settlement.Calculator
	renderer *render.Renderer
	logger   *zap.Logger
	now      func() time.Time

	mu    sync.Mutex
	byID  map[string]*Session
	byKey map[string]*Session
}

func NewManager(calc settlement.Calculator, renderer *render.Renderer, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = render.New(render.DefaultScale)
	}
	return &Manager{
		calc:     calc,
		renderer: renderer,
		logger:   logger,
		now:      time.Now,
		byID:     make(map[string]*Session),
		byKey:    make(map[string]*Session),
	}
}

// Create starts a session. With a non-empty key, such as a channel id, an
// existing session for that key is returned instead and created is false.
func (m *Manager) Create(key string, lang language.Tag) (sess *Session, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if key != "" {
		if s, ok := m.byKey[key]; ok {
			s.touch(now)
			return s, false
		}
	}

	store := ledger.NewStore()
	id := uuid.NewString()
	s := &Session{
		ID:        id,
		Key:       key,
		CreatedAt: now,
		Ledger:    store,
		Wizard:    wizard.New(store),
		Calc:      settlement.NewCalculation(m.calc, m.logger.With(zap.String("session", id))),
		lang:      lang,
		lastSeen:  now,
	}
	s.Export = export.New(m.renderer.View(s.Result), m.logger.With(zap.String("session", id)))

	m.byID[id] = s
	if key != "" {
		m.byKey[key] = s
	}
	metrics.SessionsActive.Set(float64(len(m.byID)))
	m.logger.Info("session created", zap.String("session", id), zap.String("key", key))
	return s, true
}

// Get looks a session up by id and marks it used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.byID[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(m.now())
	return s, nil
}

// ByKey looks a session up by its front end key and marks it used.
func (m *Manager) ByKey(key string) (*Session, error) {
	m.mu.Lock()
	s, ok := m.byKey[key]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(m.now())
	return s, nil
}

// Dispose removes the session and clears its ledger.
func (m *Manager) Dispose(id string) error {
	m.mu.Lock()
	s, ok := m.byID[id]
	if ok {
		m.remove(s)
	}
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.dispose()
	m.logger.Info("session disposed", zap.String("session", id))
	return nil
}

// remove must be called with m.mu held.
func (m *Manager) remove(s *Session) {
	delete(m.byID, s.ID)
	if s.Key != "" && m.byKey[s.Key] == s {
		delete(m.byKey, s.Key)
	}
	metrics.SessionsActive.Set(float64(len(m.byID)))
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// Reap disposes every session idle for longer than ttl and returns them.
// Sessions with a calculation or export in progress are kept.
func (m *Manager) Reap(now time.Time, ttl time.Duration) []*Session {
	m.mu.Lock()
	var expired []*Session
	for _, s := range m.byID {
		if s.Calc.State().Busy() || s.Export.Capturing() {
			continue
		}
		if now.Sub(s.LastSeen()) > ttl {
			expired = append(expired, s)
			m.remove(s)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.dispose()
		m.logger.Info("session expired", zap.String("session", s.ID), zap.String("key", s.Key))
	}
	return expired
}
