package gate

import (
	"context"
	"sync"
	"time"
)

// Manager keeps one gate per workflow transition surface. The gate's subject
// record follows whatever the caller is currently looking at; requesting a
// different record re-points the gate and triggers a fresh check.
type Manager struct {
	ctx       context.Context
	validate  Validator
	hideAfter time.Duration
	titles    *Titles
	cb        Callbacks
	auditor   Auditor

	mu    sync.Mutex
	gates map[string]*Gate
}

func NewManager(ctx context.Context, validate Validator, hideAfter time.Duration) *Manager {
	return &Manager{
		ctx:       ctx,
		validate:  validate,
		hideAfter: hideAfter,
		titles:    DefaultTitles(),
		gates:     map[string]*Gate{},
	}
}

func (m *Manager) WithCallbacks(cb Callbacks) *Manager { m.cb = cb; return m }
func (m *Manager) WithAuditor(a Auditor) *Manager      { m.auditor = a; return m }
func (m *Manager) WithTitles(t *Titles) *Manager {
	if t != nil {
		m.titles = t
	}
	return m
}

// Ensure returns the gate for a transition type, pointed at recordID. Creating
// the gate, or changing its subject, starts a check.
func (m *Manager) Ensure(transitionType, recordID string) *Gate {
	m.mu.Lock()
	g, ok := m.gates[transitionType]
	if !ok {
		g = New(m.ctx, m.validate, m.hideAfter).
			WithCallbacks(m.cb).
			WithAuditor(m.auditor).
			WithTitles(m.titles)
		m.gates[transitionType] = g
	}
	m.mu.Unlock()

	g.SetSubject(transitionType, recordID)
	return g
}

// Lookup returns the gate for a transition type without side effects.
func (m *Manager) Lookup(transitionType string) (*Gate, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.gates[transitionType]
	return g, ok
}
