package preview

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obligo/internal/publishing/models"
	id "obligo/pkg/domain"
)

// countingLookup records how often it is called so tests can assert batching.
type countingLookup struct {
	published *models.PairSet
	calls     int
	lastSize  int
	err       error
}

func (l *countingLookup) PublishedPairs(_ context.Context, pairs []models.Pair) (*models.PairSet, error) {
	l.calls++
	l.lastSize = len(pairs)
	if l.err != nil {
		return nil, l.err
	}
	out := models.NewPairSet(0)
	for _, p := range pairs {
		if l.published.Has(p) {
			out.Add(p)
		}
	}
	return out, nil
}

func newOrg(name string) models.Organization {
	return models.Organization{ID: id.OrganizationID(uuid.New()), Name: name, CUI: "RO" + name, CountryCode: "RO"}
}

func TestDecorate(t *testing.T) {
	ctx := context.Background()
	obl := id.ObligationID(uuid.New())
	zeta, alpha := newOrg("Zeta"), newOrg("Alpha")
	directory := map[id.OrganizationID]models.Organization{zeta.ID: zeta, alpha.ID: alpha}

	candidates := []models.MatchCandidate{
		{Pair: models.NewPair(obl, zeta.ID), MatchType: models.MatchTypeCountry, MatchReason: "country"},
		{Pair: models.NewPair(obl, alpha.ID), MatchType: models.MatchTypeCountry, MatchReason: "country"},
	}

	t.Run("marks already published pairs with one batched lookup", func(t *testing.T) {
		lookup := &countingLookup{published: models.PairSetOf(models.NewPair(obl, zeta.ID))}
		rows, err := NewBuilder(lookup).Decorate(ctx, candidates, directory)
		require.NoError(t, err)

		assert.Equal(t, 1, lookup.calls)
		assert.Equal(t, 2, lookup.lastSize)
		require.Len(t, rows, 2)
		assert.Equal(t, "Alpha", rows[0].OrgName, "rows are ordered by organization name within an obligation")
		assert.False(t, rows[0].AlreadyPublished)
		assert.Equal(t, "Zeta", rows[1].OrgName)
		assert.True(t, rows[1].AlreadyPublished)
		assert.Equal(t, "ROZeta", rows[1].OrgCUI)
		assert.Equal(t, "RO", rows[1].OrgCountryCode)
	})

	t.Run("drops candidates for unknown organizations", func(t *testing.T) {
		lookup := &countingLookup{}
		ghost := models.MatchCandidate{Pair: models.NewPair(obl, id.OrganizationID(uuid.New()))}
		rows, err := NewBuilder(lookup).Decorate(ctx, append(candidates, ghost), directory)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("no candidates skips the lookup", func(t *testing.T) {
		lookup := &countingLookup{}
		rows, err := NewBuilder(lookup).Decorate(ctx, nil, directory)
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.Zero(t, lookup.calls)
	})

	t.Run("lookup failure is returned", func(t *testing.T) {
		lookup := &countingLookup{err: errors.New("db down")}
		_, err := NewBuilder(lookup).Decorate(ctx, candidates, directory)
		require.Error(t, err)
	})
}
