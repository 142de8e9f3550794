package store

import (
	"context"
	"slices"
	"sync"

	"obligo/internal/publishing/models"
	id "obligo/pkg/domain"
)

type InMemoryStore struct {
	mu          sync.RWMutex
	obligations map[id.ObligationID]models.Obligation
	approved    map[id.ObligationID]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		obligations: make(map[id.ObligationID]models.Obligation),
		approved:    make(map[id.ObligationID]bool),
	}
}

// Put stores o with the given approval state.
func (s *InMemoryStore) Put(o models.Obligation, approved bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.obligations[o.ID] = o
	s.approved[o.ID] = approved
}

func (s *InMemoryStore) GetApprovedObligations(_ context.Context, ids []id.ObligationID) ([]models.Obligation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Obligation
	seen := make(map[id.ObligationID]struct{}, len(ids))
	for _, oid := range ids {
		if _, dup := seen[oid]; dup {
			continue
		}
		seen[oid] = struct{}{}
		if o, ok := s.obligations[oid]; ok && s.approved[oid] {
			out = append(out, o)
		}
	}
	slices.SortFunc(out, func(a, b models.Obligation) int {
		return a.ID.Compare(b.ID)
	})
	return out, nil
}
