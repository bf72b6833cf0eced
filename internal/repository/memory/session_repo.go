package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dom/crusadetome/internal/domain"
	"github.com/dom/crusadetome/internal/repository"
	"github.com/google/uuid"
)

// sessionRepository keeps editing sessions in process memory. Records are
// deep-copied on the way in and out so callers never share state with the store.
type sessionRepository struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.Session
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionRepository(ttl time.Duration) *sessionRepository {
	return &sessionRepository{
		sessions: make(map[uuid.UUID]*domain.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (r *sessionRepository) WithClock(now func() time.Time) *sessionRepository {
	r.now = now
	return r
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweep()

	if _, exists := r.sessions[session.ID]; exists {
		return fmt.Errorf("session %s already exists", session.ID)
	}

	now := r.now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	r.sessions[session.ID] = copySession(session)
	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.live(id)
	if err != nil {
		return nil, err
	}
	return copySession(session), nil
}

func (r *sessionRepository) Update(ctx context.Context, id uuid.UUID, fn repository.UpdateFunc) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.live(id)
	if err != nil {
		return nil, err
	}

	next, err := fn(session.Record.Clone())
	if err != nil {
		return nil, err
	}

	session.Record = next.Clone()
	session.UpdatedAt = r.now()
	return copySession(session), nil
}

func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (r *sessionRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// live returns a stored session, evicting it when it has expired.
// Callers hold r.mu.
func (r *sessionRepository) live(id uuid.UUID) (*domain.Session, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if session.ExpiredAt(r.now(), r.ttl) {
		delete(r.sessions, id)
		return nil, domain.ErrSessionExpired
	}
	return session, nil
}

// sweep drops every expired session. Callers hold r.mu.
func (r *sessionRepository) sweep() {
	now := r.now()
	for id, session := range r.sessions {
		if session.ExpiredAt(now, r.ttl) {
			delete(r.sessions, id)
		}
	}
}

func copySession(s *domain.Session) *domain.Session {
	out := *s
	out.Record = s.Record.Clone()
	return &out
}
