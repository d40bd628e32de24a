package db

import (
	"context"
	"sync"

	"arogya-intake/pkg"
)

// MemoryStore keeps everything in process memory.  It is used for local
// development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]pkg.Session
	messages map[string][]pkg.Message
	guides   map[string][]pkg.HealthGuide
	feedback []pkg.Feedback
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]pkg.Session),
		messages: make(map[string][]pkg.Message),
		guides:   make(map[string][]pkg.HealthGuide),
	}
}

func (m *MemoryStore) CreateSession(_ context.Context, s *pkg.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *s
	c.Symptoms = append([]string(nil), s.Symptoms...)
	m.sessions[s.ID] = c
	return nil
}

func (m *MemoryStore) GetSession(_ context.Context, id string) (*pkg.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.Symptoms = append([]string(nil), s.Symptoms...)
	return &s, nil
}

func (m *MemoryStore) UpdateSession(_ context.Context, id string, u pkg.SessionUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	u.Apply(&s)
	m.sessions[id] = s
	return nil
}

func (m *MemoryStore) InsertMessage(_ context.Context, msg *pkg.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], *msg)
	return nil
}

func (m *MemoryStore) CountMessages(_ context.Context, sessionID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages[sessionID]), nil
}

func (m *MemoryStore) ListMessages(_ context.Context, sessionID string) ([]pkg.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]pkg.Message(nil), m.messages[sessionID]...), nil
}

func (m *MemoryStore) InsertGuide(_ context.Context, g *pkg.HealthGuide) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guides[g.SessionID] = append(m.guides[g.SessionID], *g)
	return nil
}

func (m *MemoryStore) GetGuide(_ context.Context, sessionID string) (*pkg.HealthGuide, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	gs := m.guides[sessionID]
	if len(gs) == 0 {
		return nil, ErrNotFound
	}
	g := gs[len(gs)-1]
	return &g, nil
}

func (m *MemoryStore) InsertFeedback(_ context.Context, f *pkg.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feedback = append(m.feedback, *f)
	return nil
}

// Feedback returns the feedback stored for a session.
func (m *MemoryStore) Feedback(sessionID string) []pkg.Feedback {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []pkg.Feedback
	for _, f := range m.feedback {
		if f.SessionID == sessionID {
			out = append(out, f)
		}
	}
	return out
}

func (m *MemoryStore) Close() error { return nil }
