package university

import (
	"context"
	"sync"

	"github.com/agaskrobot/fenix-university-registry/internal/registry/models"
	"github.com/agaskrobot/fenix-university-registry/pkg/platform/sentinel"
)

// InMemory keeps both registry indexes in process memory. It is the default
// backend for tests and standalone runs.
//
// The store maintains the same two views as the durable backend: a primary
// index keyed by account ID and a secondary index grouping records by name.
// Both are updated under one lock so readers never observe a record in only
// one of them. The order slice preserves registry-wide insertion order for
// full listings.
type InMemory struct {
	mu          sync.RWMutex
	byAccountID map[string]models.University
	byName      map[string][]models.University
	order       []string
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{
		byAccountID: make(map[string]models.University),
		byName:      make(map[string][]models.University),
	}
}

// CreateIfAccountAvailable inserts the record into both indexes, or returns
// sentinel.ErrAlreadyExists without touching either when the account ID is
// taken. The duplicate check and the dual-index insert happen under one
// exclusive lock so concurrent readers see the write as a single step.
func (s *InMemory) CreateIfAccountAvailable(_ context.Context, u *models.University) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byAccountID[u.AccountID]; exists {
		return sentinel.ErrAlreadyExists
	}

	s.byAccountID[u.AccountID] = *u
	s.byName[u.Name] = append(s.byName[u.Name], *u)
	s.order = append(s.order, u.AccountID)
	return nil
}

// FindByAccountID returns the record for the given account ID or
// sentinel.ErrNotFound.
func (s *InMemory) FindByAccountID(_ context.Context, accountID string) (*models.University, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.byAccountID[accountID]; ok {
		return &u, nil
	}
	return nil, sentinel.ErrNotFound
}

// ListByName returns the name bucket in insertion order. Absence is an empty
// slice, never an error.
func (s *InMemory) ListByName(_ context.Context, name string) ([]models.University, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.University{}, s.byName[name]...), nil
}

// ListAll returns every record paired with its account ID, in registry-wide
// insertion order.
func (s *InMemory) ListAll(_ context.Context) ([]models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]models.Entry, 0, len(s.order))
	for _, accountID := range s.order {
		entries = append(entries, models.Entry{
			AccountID:  accountID,
			University: s.byAccountID[accountID],
		})
	}
	return entries, nil
}

// Count returns the number of registered universities.
func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.byAccountID), nil
}
