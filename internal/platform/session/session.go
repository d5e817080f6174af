// Package session replaces the portal's ambient token/user globals with
// an explicit session manager: load on startup, persist on login,
// clear on logout.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/carebridge/portal/internal/platform/kvstore"
)

// Session is the persisted portal session for one signed-in user.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Manager owns session persistence over a key-value store.
type Manager struct {
	store kvstore.Store
}

func NewManager(store kvstore.Store) *Manager {
	return &Manager{store: store}
}

func sessionKey(sid string) string {
	return "session:" + sid
}

// Load retrieves the session for the given id. A missing session
// returns ok=false with no error.
func (m *Manager) Load(ctx context.Context, sid string) (Session, bool, error) {
	var s Session
	ok, err := m.store.Get(ctx, sessionKey(sid), &s)
	if err != nil {
		return Session{}, ok, fmt.Errorf("load session: %w", err)
	}
	return s, ok, nil
}

// Persist stores the session under its user id.
func (m *Manager) Persist(ctx context.Context, s Session) error {
	if s.UserID == "" {
		return fmt.Errorf("session user_id is required")
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if err := m.store.Set(ctx, sessionKey(s.UserID), s); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Clear removes the session, e.g. on logout.
func (m *Manager) Clear(ctx context.Context, sid string) error {
	if err := m.store.Delete(ctx, sessionKey(sid)); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
