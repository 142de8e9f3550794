// Package matcher computes which organizations an obligation targets under a match mode.
//
// Match is pure: callers load obligations and organizations and pass them in.
// The result is a set of candidates with each (obligation, organization) pair
// appearing at most once.
package matcher

import (
	"fmt"

	"obligo/internal/publishing/models"
	id "obligo/pkg/domain"
	dErrors "obligo/pkg/domain-errors"
)

// Match returns the candidates produced by mode. Repeated obligations or
// organizations in the inputs never yield repeated pairs.
func Match(mode models.MatchMode, obligations []models.Obligation, organizations []models.Organization) ([]models.MatchCandidate, error) {
	if !mode.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unsupported mode %q", mode))
	}
	if len(obligations) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "at least one obligation is required")
	}

	obligations = uniqueObligations(obligations)
	organizations = uniqueOrganizations(organizations)

	switch mode {
	case models.ModeBroadcast:
		return broadcast(obligations, organizations), nil
	case models.ModeDomain:
		return byCountry(obligations, indexByCountry(organizations), true), nil
	default:
		return byCountry(obligations, indexByCountry(organizations), false), nil
	}
}

func broadcast(obligations []models.Obligation, organizations []models.Organization) []models.MatchCandidate {
	out := make([]models.MatchCandidate, 0, len(obligations)*len(organizations))
	for _, obl := range obligations {
		for _, org := range organizations {
			out = append(out, models.MatchCandidate{
				Pair:        models.NewPair(obl.ID, org.ID),
				MatchType:   models.MatchTypeBroadcast,
				MatchReason: "broadcast to all organizations",
			})
		}
	}
	return out
}

// byCountry applies the country rule and, when requireDomain is set, the domain
// rule on top of it. Organizations without an industry domain never match the
// domain rule.
func byCountry(obligations []models.Obligation, orgsByCountry map[string][]models.Organization, requireDomain bool) []models.MatchCandidate {
	var out []models.MatchCandidate
	for _, obl := range obligations {
		for _, org := range orgsByCountry[obl.CountryCode] {
			if !requireDomain {
				out = append(out, models.MatchCandidate{
					Pair:        models.NewPair(obl.ID, org.ID),
					MatchType:   models.MatchTypeCountry,
					MatchReason: fmt.Sprintf("organization country %s matches legal act country", org.CountryCode),
				})
				continue
			}
			if obl.Domain == "" || !org.HasIndustryDomain() || org.IndustryDomain != obl.Domain {
				continue
			}
			out = append(out, models.MatchCandidate{
				Pair:        models.NewPair(obl.ID, org.ID),
				MatchType:   models.MatchTypeDomain,
				MatchReason: fmt.Sprintf("organization country %s and domain %q match legal act", org.CountryCode, org.IndustryDomain),
			})
		}
	}
	return out
}

func indexByCountry(organizations []models.Organization) map[string][]models.Organization {
	idx := make(map[string][]models.Organization)
	for _, org := range organizations {
		if org.CountryCode == "" {
			continue
		}
		idx[org.CountryCode] = append(idx[org.CountryCode], org)
	}
	return idx
}

func uniqueObligations(in []models.Obligation) []models.Obligation {
	seen := make(map[id.ObligationID]struct{}, len(in))
	out := make([]models.Obligation, 0, len(in))
	for _, o := range in {
		if _, ok := seen[o.ID]; ok {
			continue
		}
		seen[o.ID] = struct{}{}
		out = append(out, o)
	}
	return out
}

func uniqueOrganizations(in []models.Organization) []models.Organization {
	seen := make(map[id.OrganizationID]struct{}, len(in))
	out := make([]models.Organization, 0, len(in))
	for _, o := range in {
		if _, ok := seen[o.ID]; ok {
			continue
		}
		seen[o.ID] = struct{}{}
		out = append(out, o)
	}
	return out
}
