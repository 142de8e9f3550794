package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"obligo/internal/publishing/models"
	id "obligo/pkg/domain"
)

type InMemoryStore struct {
	mu   sync.RWMutex
	orgs map[id.OrganizationID]models.Organization
	// lists counts ListOrganizations calls so cache tests can assert pass-through.
	lists int
}

func NewInMemoryStore(orgs ...models.Organization) *InMemoryStore {
	s := &InMemoryStore{orgs: make(map[id.OrganizationID]models.Organization, len(orgs))}
	for _, o := range orgs {
		s.orgs[o.ID] = o
	}
	return s
}

func (s *InMemoryStore) Put(o models.Organization) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[o.ID] = o
}

func (s *InMemoryStore) ListOrganizations(_ context.Context, filter models.OrganizationFilter) ([]models.Organization, error) {
	s.mu.Lock()
	s.lists++
	s.mu.Unlock()

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Organization
	for _, o := range s.orgs {
		if filter.IsZero() || slices.Contains(filter.CountryCodes, o.CountryCode) {
			out = append(out, o)
		}
	}
	sortByName(out)
	return out, nil
}

func (s *InMemoryStore) GetByIDs(_ context.Context, ids []id.OrganizationID) ([]models.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Organization
	seen := make(map[id.OrganizationID]struct{}, len(ids))
	for _, oid := range ids {
		if _, dup := seen[oid]; dup {
			continue
		}
		seen[oid] = struct{}{}
		if o, ok := s.orgs[oid]; ok {
			out = append(out, o)
		}
	}
	sortByName(out)
	return out, nil
}

// ListCalls reports how many times ListOrganizations was called.
func (s *InMemoryStore) ListCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lists
}

func sortByName(orgs []models.Organization) {
	slices.SortFunc(orgs, func(a, b models.Organization) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID.String(), b.ID.String()))
	})
}
