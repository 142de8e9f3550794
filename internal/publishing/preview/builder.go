// Package preview decorates match candidates with organization details and
// whether each pair has already been published.
package preview

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"obligo/internal/publishing/models"
	id "obligo/pkg/domain"
)

// PublishedLookup answers which of the given pairs already have an assignment.
// Implementations must resolve the whole slice in a bounded number of
// set-oriented queries, never one query per pair.
type PublishedLookup interface {
	PublishedPairs(ctx context.Context, pairs []models.Pair) (*models.PairSet, error)
}

// Builder is read-only: Decorate never writes.
type Builder struct {
	lookup PublishedLookup
}

func NewBuilder(lookup PublishedLookup) *Builder {
	return &Builder{lookup: lookup}
}

// Decorate returns one row per candidate whose organization is present in
// directory, sorted by obligation then organization name. Candidates for
// organizations missing from directory are dropped.
func (b *Builder) Decorate(ctx context.Context, candidates []models.MatchCandidate, directory map[id.OrganizationID]models.Organization) ([]models.PreviewRow, error) {
	if len(candidates) == 0 {
		return []models.PreviewRow{}, nil
	}

	pairs := make([]models.Pair, 0, len(candidates))
	for _, c := range candidates {
		pairs = append(pairs, c.Pair)
	}
	published, err := b.lookup.PublishedPairs(ctx, pairs)
	if err != nil {
		return nil, fmt.Errorf("lookup published pairs: %w", err)
	}

	rows := make([]models.PreviewRow, 0, len(candidates))
	for _, c := range candidates {
		org, ok := directory[c.OrganizationID]
		if !ok {
			continue
		}
		rows = append(rows, models.PreviewRow{
			MatchCandidate:   c,
			OrgName:          org.Name,
			OrgCUI:           org.CUI,
			OrgCountryCode:   org.CountryCode,
			AlreadyPublished: published.Has(c.Pair),
		})
	}

	slices.SortStableFunc(rows, func(a, b models.PreviewRow) int {
		if c := cmp.Compare(a.ObligationID.String(), b.ObligationID.String()); c != 0 {
			return c
		}
		if c := cmp.Compare(a.OrgName, b.OrgName); c != 0 {
			return c
		}
		return cmp.Compare(a.OrganizationID.String(), b.OrganizationID.String())
	})
	return rows, nil
}
