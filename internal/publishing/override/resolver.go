// Package override applies operator exclusions and manual additions to a preview.
//
//	final = (preview \ already_published \ excluded) ∪ additions
//
// Additions must be new pairs: a pair already in the preview, already added,
// or already published is rejected so the final set is pair-unique before it
// reaches the publisher.
package override

import (
	"obligo/internal/publishing/models"
)

// RejectReason explains why a manual addition was not accepted.
type RejectReason string

const (
	RejectInPreview         RejectReason = "in_preview"
	RejectDuplicateAddition RejectReason = "duplicate_addition"
	RejectAlreadyPublished  RejectReason = "already_published"
	RejectNotFound          RejectReason = "not_found"
)

type RejectedAddition struct {
	models.Pair
	Reason RejectReason
}

// Input is everything the resolver needs. Published holds pairs known to be
// published that may lie outside the preview; preview rows carry their own flag.
// Known, when set, reports whether both sides of a pair exist.
type Input struct {
	Preview   []models.PreviewRow
	Excluded  []models.Pair
	Additions []models.ManualAddition
	Published *models.PairSet
	Known     func(models.Pair) bool
}

type Resolution struct {
	Assignments []models.AssignmentDraft
	// ExcludedCount is the number of offered preview rows removed by exclusions.
	ExcludedCount int
	// IgnoredExclusions are exclusions that matched no offered row: pairs outside
	// the preview and already-published pairs.
	IgnoredExclusions []models.Pair
	Rejected          []RejectedAddition
}

// Resolve computes the final assignment set. It is deterministic: preview order
// is kept, followed by accepted additions in request order.
func Resolve(in Input) Resolution {
	previewPairs := models.NewPairSet(len(in.Preview))
	publishedInPreview := models.NewPairSet(0)
	candidates := make(map[models.Pair]models.MatchCandidate, len(in.Preview))
	for _, row := range in.Preview {
		if row.AlreadyPublished {
			publishedInPreview.Add(row.Pair)
		}
		if previewPairs.Add(row.Pair) {
			candidates[row.Pair] = row.MatchCandidate
		}
	}
	offered := models.NewPairSet(previewPairs.Len())
	for _, p := range previewPairs.Pairs() {
		if publishedInPreview.Has(p) || in.Published.Has(p) {
			continue
		}
		offered.Add(p)
	}

	excluded := models.NewPairSet(len(in.Excluded))
	var res Resolution
	for _, p := range in.Excluded {
		if !excluded.Add(p) {
			continue
		}
		if offered.Has(p) {
			res.ExcludedCount++
		} else {
			res.IgnoredExclusions = append(res.IgnoredExclusions, p)
		}
	}

	for _, p := range offered.Pairs() {
		if excluded.Has(p) {
			continue
		}
		res.Assignments = append(res.Assignments, models.AssignmentDraft{
			Pair:            p,
			MatchType:       candidates[p].MatchType,
			MatchConfidence: models.DefaultMatchConfidence,
			MatchReason:     candidates[p].MatchReason,
		})
	}

	added := models.NewPairSet(len(in.Additions))
	for _, add := range in.Additions {
		if reason, rejected := rejectAddition(in, add.Pair, previewPairs, added); rejected {
			res.Rejected = append(res.Rejected, RejectedAddition{Pair: add.Pair, Reason: reason})
			continue
		}
		added.Add(add.Pair)
		res.Assignments = append(res.Assignments, models.AssignmentDraft{
			Pair:            add.Pair,
			MatchType:       models.MatchTypeManual,
			MatchConfidence: models.DefaultMatchConfidence,
			MatchReason:     add.MatchReason,
		})
	}
	return res
}

func rejectAddition(in Input, p models.Pair, previewPairs, added *models.PairSet) (RejectReason, bool) {
	switch {
	case previewPairs.Has(p):
		return RejectInPreview, true
	case added.Has(p):
		return RejectDuplicateAddition, true
	case in.Published.Has(p):
		return RejectAlreadyPublished, true
	case in.Known != nil && !in.Known(p):
		return RejectNotFound, true
	}
	return "", false
}
