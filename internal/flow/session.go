package flow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
	"github.com/bilal1975873/DPL-RECEP-back/internal/store"
)

// SessionStore persists dialog state between turns for keyed deployments. The
// HTTP turn endpoint is stateless and does not use it; the CLI loop and any
// caller that cannot echo the state back does.
type SessionStore interface {
	// Load returns the stored state for key, or nil when none exists.
	Load(ctx context.Context, key string) (*models.DialogState, error)
	Save(ctx context.Context, key string, st *models.DialogState) error
	Delete(ctx context.Context, key string) error
}

// StoreSessionStore persists sessions through the visit store's session table.
type StoreSessionStore struct {
	store store.Store
}

func NewStoreSessionStore(s store.Store) *StoreSessionStore {
	return &StoreSessionStore{store: s}
}

func (s *StoreSessionStore) Load(ctx context.Context, key string) (*models.DialogState, error) {
	data, err := s.store.GetSession(key)
	if err != nil {
		slog.Error("Session load failed", "error", err, "key", key)
		return nil, fmt.Errorf("failed to load session %s: %w", key, err)
	}
	if data == "" {
		return nil, nil
	}
	var st models.DialogState
	if err := st.FromJSON(data); err != nil {
		slog.Error("Session decode failed", "error", err, "key", key)
		return nil, fmt.Errorf("failed to decode session %s: %w", key, err)
	}
	return &st, nil
}

func (s *StoreSessionStore) Save(ctx context.Context, key string, st *models.DialogState) error {
	data, err := st.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", key, err)
	}
	if err := s.store.SaveSession(key, data); err != nil {
		slog.Error("Session save failed", "error", err, "key", key)
		return fmt.Errorf("failed to save session %s: %w", key, err)
	}
	return nil
}

func (s *StoreSessionStore) Delete(ctx context.Context, key string) error {
	return s.store.DeleteSession(key)
}

// InMemorySessionStore keeps sessions in a map. Used by tests and the CLI.
type InMemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]string
}

func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]string)}
}

func (s *InMemorySessionStore) Load(ctx context.Context, key string) (*models.DialogState, error) {
	s.mu.Lock()
	data, ok := s.sessions[key]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var st models.DialogState
	if err := st.FromJSON(data); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *InMemorySessionStore) Save(ctx context.Context, key string, st *models.DialogState) error {
	data, err := st.ToJSON()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[key] = data
	s.mu.Unlock()
	return nil
}

func (s *InMemorySessionStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.sessions, key)
	s.mu.Unlock()
	return nil
}
