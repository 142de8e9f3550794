package models

import (
	"time"

	id "obligo/pkg/domain"
)

// AssignmentDraft is a row of the final set handed to the publisher.
type AssignmentDraft struct {
	Pair
	MatchType       MatchType
	MatchConfidence float64
	// MatchReason explains the pairing to the operator. It is not persisted.
	MatchReason string
}

// Assignment is a persisted publication of an obligation to an organization.
// At most one exists per Pair; rows are append-only.
type Assignment struct {
	ID id.AssignmentID
	Pair
	MatchType       MatchType
	MatchConfidence float64
	BatchID         id.BatchID
	CreatedAt       time.Time
}

// PublishBatch is the receipt of one publish call.
type PublishBatch struct {
	ID                 id.BatchID
	Title              string
	DueDate            *time.Time
	TotalObligations   int
	TotalOrganizations int
	TotalAssignments   int
	Message            string
	PublishedAt        time.Time
	CreatedBy          string
}

// PublishOptions carries the optional batch metadata of a publish request.
type PublishOptions struct {
	Title   string
	DueDate *time.Time
	// Dropped counts rows filtered out before publishing because they referenced
	// unknown obligations or organizations. It is kept on the receipt.
	Dropped int
}

// PublishResult reports what one publish call did.
type PublishResult struct {
	Batch    *PublishBatch
	Inserted int
	Skipped  int
	// Dropped counts rows referencing unknown obligations or organizations.
	Dropped int
}
