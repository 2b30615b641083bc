// Package store provides storage backends for the reception intake service.
//
// It includes an in-memory store for tests and development, plus SQLite and
// PostgreSQL backends for persistent deployments. All backends store completed
// visit records and serialized in-flight dialog sessions.
package store

import (
	"sync"

	"github.com/bilal1975873/DPL-RECEP-back/internal/models"
)

// Store defines the persistence operations used by the dialog engine and the
// HTTP API. The visit is considered durably recorded once AddVisit returns,
// before any notification is attempted.
type Store interface {
	AddVisit(v models.Visitor) error
	GetVisits() ([]models.Visitor, error)
	GetVisitByCNIC(cnic string) (*models.Visitor, error)
	UpdateVisit(cnic string, v models.Visitor) error
	DeleteVisit(cnic string) error

	SaveSession(key, state string) error
	GetSession(key string) (string, error)
	DeleteSession(key string) error

	Close() error
}

// InMemoryStore is a mutex-guarded in-memory Store used by tests and the CLI.
type InMemoryStore struct {
	mu       sync.Mutex
	visits   []models.Visitor
	sessions map[string]string
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]string)}
}

func (s *InMemoryStore) AddVisit(v models.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits = append(s.visits, v)
	return nil
}

func (s *InMemoryStore) GetVisits() ([]models.Visitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Visitor, len(s.visits))
	copy(out, s.visits)
	return out, nil
}

func (s *InMemoryStore) GetVisitByCNIC(cnic string) (*models.Visitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.visits {
		if s.visits[i].CNIC == cnic {
			v := s.visits[i]
			return &v, nil
		}
	}
	return nil, models.ErrVisitorNotFound
}

func (s *InMemoryStore) UpdateVisit(cnic string, v models.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.visits {
		if s.visits[i].CNIC == cnic {
			s.visits[i] = v
			return nil
		}
	}
	return models.ErrVisitorNotFound
}

func (s *InMemoryStore) DeleteVisit(cnic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.visits {
		if s.visits[i].CNIC == cnic {
			s.visits = append(s.visits[:i], s.visits[i+1:]...)
			return nil
		}
	}
	return models.ErrVisitorNotFound
}

func (s *InMemoryStore) SaveSession(key, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = state
	return nil
}

func (s *InMemoryStore) GetSession(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[key], nil
}

func (s *InMemoryStore) DeleteSession(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
