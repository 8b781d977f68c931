package preview

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"resume-builder/internal/domain"
	"resume-builder/internal/pagination"
)

var ErrNotFound = errors.New("preview: session not found")

// Store owns the live sessions of one process. All sessions share one
// measurement surface; measurements are serialized across them.
type Store struct {
	cfg Config
	m   *measurer

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewStore(surface pagination.MeasurementSurface, cfg Config) *Store {
	return &Store{
		cfg:      cfg.withDefaults(),
		m:        &measurer{surface: surface},
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Open creates a session and measures it once before returning.
func (st *Store) Open(ctx context.Context, doc *domain.Document, viewportPx, zoom float64) (*Session, View) {
	s := newSession(uuid.New(), doc, viewportPx, zoom, st.cfg, st.m)
	st.mu.Lock()
	st.sessions[s.id] = s
	st.mu.Unlock()
	return s, s.Refresh(ctx)
}

func (st *Store) Get(id uuid.UUID) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Close closes and forgets one session.
func (st *Store) Close(id uuid.UUID) error {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Close()
	return nil
}

// Shutdown closes every session.
func (st *Store) Shutdown() {
	st.mu.Lock()
	all := st.sessions
	st.sessions = make(map[uuid.UUID]*Session)
	st.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
