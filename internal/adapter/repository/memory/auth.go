package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/meeting-copilot/internal/domain/entities"
)

// UserRepository keeps users in a map
type UserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]entities.User
}

// NewUserRepository creates an empty user store
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[uuid.UUID]entities.User)}
}

func (r *UserRepository) Create(_ context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	return r.find(func(u entities.User) bool { return u.ID == id })
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	return r.find(func(u entities.User) bool { return u.Email == email })
}

func (r *UserRepository) FindByGoogleID(_ context.Context, googleID string) (*entities.User, error) {
	return r.find(func(u entities.User) bool { return u.GoogleID == googleID })
}

func (r *UserRepository) Update(_ context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return entities.ErrUserNotFound
	}
	r.users[user.ID] = *user
	return nil
}

func (r *UserRepository) UpdateGoogleToken(ctx context.Context, user *entities.User) error {
	return r.Update(ctx, user)
}

func (r *UserRepository) find(match func(entities.User) bool) (*entities.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

// SessionRepository keeps refresh sessions in a map
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]entities.Session
}

// NewSessionRepository creates an empty session store
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[uuid.UUID]entities.Session)}
}

func (r *SessionRepository) Create(_ context.Context, s *entities.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *SessionRepository) FindByTokenHash(_ context.Context, tokenHash string) (*entities.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.sessions {
		if s.RefreshToken == tokenHash && s.RevokedAt == nil {
			return &s, nil
		}
	}
	return nil, entities.ErrSessionNotFound
}

func (r *SessionRepository) UpdateLastUsed(_ context.Context, id uuid.UUID) error {
	return r.mutate(id, func(s *entities.Session) {
		now := time.Now()
		s.LastUsedAt = &now
	})
}

func (r *SessionRepository) Revoke(_ context.Context, id uuid.UUID) error {
	return r.mutate(id, func(s *entities.Session) { s.Revoke() })
}

func (r *SessionRepository) RevokeAllByUserID(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.UserID == userID && s.RevokedAt == nil {
			s.Revoke()
			r.sessions[id] = s
		}
	}
	return nil
}

func (r *SessionRepository) DeleteExpired(_ context.Context, before time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.ExpiresAt.Before(before) {
			delete(r.sessions, id)
		}
	}
	return nil
}

func (r *SessionRepository) mutate(id uuid.UUID, fn func(*entities.Session)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return entities.ErrSessionNotFound
	}
	fn(&s)
	r.sessions[id] = s
	return nil
}
