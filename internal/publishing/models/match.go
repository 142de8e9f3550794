package models

import (
	"fmt"
	"strings"

	dErrors "obligo/pkg/domain-errors"
)

// MatchMode selects the rule used to target organizations.
type MatchMode string

const (
	ModeCountry   MatchMode = "country"
	ModeDomain    MatchMode = "domain"
	ModeBroadcast MatchMode = "broadcast"
)

// ParseMatchMode validates a mode string from the transport layer.
func ParseMatchMode(s string) (MatchMode, error) {
	switch mode := MatchMode(strings.TrimSpace(s)); mode {
	case ModeCountry, ModeDomain, ModeBroadcast:
		return mode, nil
	case "":
		return "", dErrors.New(dErrors.CodeInvalidInput, "mode is required")
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unsupported mode %q", s))
	}
}

func (m MatchMode) IsValid() bool {
	_, err := ParseMatchMode(string(m))
	return err == nil
}

// MatchType records which rule produced a pair. Manual pairs come from operator additions.
type MatchType string

const (
	MatchTypeCountry   MatchType = "country"
	MatchTypeDomain    MatchType = "domain"
	MatchTypeBroadcast MatchType = "broadcast"
	MatchTypeManual    MatchType = "manual"
)

func ParseMatchType(s string) (MatchType, error) {
	switch mt := MatchType(strings.TrimSpace(s)); mt {
	case MatchTypeCountry, MatchTypeDomain, MatchTypeBroadcast, MatchTypeManual:
		return mt, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unsupported match_type %q", s))
	}
}

// DefaultMatchConfidence is used on every path today; the field is reserved for weighting.
const DefaultMatchConfidence = 1.0

// MatchCandidate is an ephemeral (obligation, organization) pairing produced by the matcher.
type MatchCandidate struct {
	Pair
	MatchType   MatchType
	MatchReason string
}

// PreviewRow is a candidate decorated with organization details and publication status.
type PreviewRow struct {
	MatchCandidate
	OrgName          string
	OrgCUI           string
	OrgCountryCode   string
	AlreadyPublished bool
}

// ManualAddition is an operator-specified pair outside the computed preview.
type ManualAddition struct {
	Pair
	MatchReason string
}
