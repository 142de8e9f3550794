package models

import (
	id "obligo/pkg/domain"
)

// PreviewRequest asks for the candidates of mode over the given obligations.
type PreviewRequest struct {
	Mode          MatchMode
	ObligationIDs []id.ObligationID
}

// ResolveRequest applies operator overrides to a freshly computed preview.
type ResolveRequest struct {
	PreviewRequest
	Excluded  []Pair
	Additions []ManualAddition
}

// PublishRequest carries the final assignment set and batch metadata.
type PublishRequest struct {
	Assignments []AssignmentDraft
	Options     PublishOptions
}
