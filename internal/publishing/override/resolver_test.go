package override

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obligo/internal/publishing/models"
	id "obligo/pkg/domain"
)

func pair() models.Pair {
	return models.NewPair(id.ObligationID(uuid.New()), id.OrganizationID(uuid.New()))
}

func row(p models.Pair, published bool) models.PreviewRow {
	return models.PreviewRow{
		MatchCandidate:   models.MatchCandidate{Pair: p, MatchType: models.MatchTypeCountry},
		AlreadyPublished: published,
	}
}

func pairsOf(drafts []models.AssignmentDraft) []models.Pair {
	out := make([]models.Pair, 0, len(drafts))
	for _, d := range drafts {
		out = append(out, d.Pair)
	}
	return out
}

func TestResolve(t *testing.T) {
	p1, p2, p3 := pair(), pair(), pair()
	preview := []models.PreviewRow{row(p1, false), row(p2, false), row(p3, true)}

	t.Run("already published rows are never offered", func(t *testing.T) {
		res := Resolve(Input{Preview: preview})
		assert.Equal(t, []models.Pair{p1, p2}, pairsOf(res.Assignments))
		for _, a := range res.Assignments {
			assert.Equal(t, models.MatchTypeCountry, a.MatchType)
			assert.Equal(t, models.DefaultMatchConfidence, a.MatchConfidence)
		}
	})

	t.Run("exclusions remove offered rows", func(t *testing.T) {
		res := Resolve(Input{Preview: preview, Excluded: []models.Pair{p2}})
		assert.Equal(t, []models.Pair{p1}, pairsOf(res.Assignments))
		assert.Equal(t, 1, res.ExcludedCount)
		assert.Empty(t, res.IgnoredExclusions)
	})

	t.Run("excluding an already published pair is a no-op", func(t *testing.T) {
		res := Resolve(Input{Preview: preview, Excluded: []models.Pair{p3}})
		assert.Equal(t, []models.Pair{p1, p2}, pairsOf(res.Assignments))
		assert.Zero(t, res.ExcludedCount)
		assert.Equal(t, []models.Pair{p3}, res.IgnoredExclusions)
	})

	t.Run("manual additions are appended as manual", func(t *testing.T) {
		extra := pair()
		res := Resolve(Input{Preview: preview, Additions: []models.ManualAddition{{Pair: extra}}})
		require.Len(t, res.Assignments, 3)
		assert.Equal(t, extra, res.Assignments[2].Pair)
		assert.Equal(t, models.MatchTypeManual, res.Assignments[2].MatchType)
		assert.Equal(t, models.DefaultMatchConfidence, res.Assignments[2].MatchConfidence)
	})

	t.Run("match reasons are carried onto the final set", func(t *testing.T) {
		extra := pair()
		offered := row(p1, false)
		offered.MatchReason = "organization country RO matches legal act country"
		res := Resolve(Input{
			Preview:   []models.PreviewRow{offered},
			Additions: []models.ManualAddition{{Pair: extra, MatchReason: "group subsidiary"}},
		})
		require.Len(t, res.Assignments, 2)
		assert.Equal(t, offered.MatchReason, res.Assignments[0].MatchReason)
		assert.Equal(t, "group subsidiary", res.Assignments[1].MatchReason)
	})

	t.Run("additions duplicating the preview or each other are rejected", func(t *testing.T) {
		extra := pair()
		res := Resolve(Input{
			Preview: preview,
			Additions: []models.ManualAddition{
				{Pair: p1},
				{Pair: p3},
				{Pair: extra},
				{Pair: extra},
			},
		})
		assert.Equal(t, []models.Pair{p1, p2, extra}, pairsOf(res.Assignments))
		assert.Equal(t, []RejectedAddition{
			{Pair: p1, Reason: RejectInPreview},
			{Pair: p3, Reason: RejectInPreview},
			{Pair: extra, Reason: RejectDuplicateAddition},
		}, res.Rejected)
	})

	t.Run("additions already published outside the preview are rejected", func(t *testing.T) {
		elsewhere := pair()
		res := Resolve(Input{
			Preview:   preview,
			Additions: []models.ManualAddition{{Pair: elsewhere}},
			Published: models.PairSetOf(elsewhere),
		})
		assert.Equal(t, []RejectedAddition{{Pair: elsewhere, Reason: RejectAlreadyPublished}}, res.Rejected)
	})

	t.Run("additions for unknown references are rejected", func(t *testing.T) {
		ghost := pair()
		res := Resolve(Input{
			Preview:   preview,
			Additions: []models.ManualAddition{{Pair: ghost}},
			Known:     func(p models.Pair) bool { return p != ghost },
		})
		assert.Equal(t, []RejectedAddition{{Pair: ghost, Reason: RejectNotFound}}, res.Rejected)
	})

	t.Run("an addition excluded in the same request is still added", func(t *testing.T) {
		extra := pair()
		res := Resolve(Input{Preview: preview, Excluded: []models.Pair{extra}, Additions: []models.ManualAddition{{Pair: extra}}})
		assert.Contains(t, pairsOf(res.Assignments), extra)
		assert.Equal(t, []models.Pair{extra}, res.IgnoredExclusions)
	})
}

// TestResolve_FinalSetIsPairUnique checks the algebra on random inputs:
// final = (P \ published \ E) ∪ M never repeats a pair and never contains a
// published or excluded preview pair.
func TestResolve_FinalSetIsPairUnique(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 50; round++ {
		pool := make([]models.Pair, 20)
		for i := range pool {
			pool[i] = pair()
		}

		var preview []models.PreviewRow
		for i := 0; i < 12; i++ {
			preview = append(preview, row(pool[rng.Intn(len(pool))], rng.Intn(4) == 0))
		}
		var excluded []models.Pair
		for i := 0; i < rng.Intn(6); i++ {
			excluded = append(excluded, preview[rng.Intn(len(preview))].Pair)
		}
		var additions []models.ManualAddition
		for i := 0; i < rng.Intn(8); i++ {
			additions = append(additions, models.ManualAddition{Pair: pool[rng.Intn(len(pool))]})
		}

		res := Resolve(Input{Preview: preview, Excluded: excluded, Additions: additions})

		excludedSet := models.PairSetOf(excluded...)
		published := models.NewPairSet(0)
		inPreview := models.NewPairSet(0)
		for _, r := range preview {
			inPreview.Add(r.Pair)
			if r.AlreadyPublished {
				published.Add(r.Pair)
			}
		}

		seen := models.NewPairSet(len(res.Assignments))
		for _, a := range res.Assignments {
			require.True(t, seen.Add(a.Pair), "duplicate pair in final set")
			assert.False(t, published.Has(a.Pair), "published pair re-offered")
			if a.MatchType != models.MatchTypeManual {
				assert.True(t, inPreview.Has(a.Pair))
				assert.False(t, excludedSet.Has(a.Pair), "excluded preview pair kept")
			} else {
				assert.False(t, inPreview.Has(a.Pair), "manual addition overlaps preview")
			}
		}
	}
}
