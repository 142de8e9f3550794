package handler

import (
	"time"

	"obligo/internal/publishing/models"
	"obligo/internal/publishing/override"
)

type PreviewRowResponse struct {
	ObligationID     string `json:"obligation_id"`
	OrganizationID   string `json:"organization_id"`
	OrgName          string `json:"org_name"`
	OrgCUI           string `json:"org_cui"`
	OrgCountryCode   string `json:"org_country_code"`
	MatchType        string `json:"match_type"`
	MatchReason      string `json:"match_reason"`
	AlreadyPublished bool   `json:"already_published"`
}

// PreviewResponse is the HTTP response for GET /legal-publish.
type PreviewResponse struct {
	Preview []PreviewRowResponse `json:"preview"`
}

func FromPreview(rows []models.PreviewRow) *PreviewResponse {
	out := make([]PreviewRowResponse, len(rows))
	for i, r := range rows {
		out[i] = PreviewRowResponse{
			ObligationID:     r.ObligationID.String(),
			OrganizationID:   r.OrganizationID.String(),
			OrgName:          r.OrgName,
			OrgCUI:           r.OrgCUI,
			OrgCountryCode:   r.OrgCountryCode,
			MatchType:        string(r.MatchType),
			MatchReason:      r.MatchReason,
			AlreadyPublished: r.AlreadyPublished,
		}
	}
	return &PreviewResponse{Preview: out}
}

type AssignmentResponse struct {
	ObligationID    string  `json:"obligation_id"`
	OrganizationID  string  `json:"organization_id"`
	MatchType       string  `json:"match_type"`
	MatchConfidence float64 `json:"match_confidence"`
	MatchReason     string  `json:"match_reason,omitempty"`
}

type RejectedAdditionResponse struct {
	ObligationID   string `json:"obligation_id"`
	OrganizationID string `json:"organization_id"`
	Reason         string `json:"reason"`
}

// ResolveResponse is the HTTP response for POST /legal-publish/resolve. The
// assignments slice is ready to be posted to POST /legal-publish unchanged.
type ResolveResponse struct {
	Assignments       []AssignmentResponse       `json:"assignments"`
	ExcludedCount     int                        `json:"excluded_count"`
	IgnoredExclusions []PairRequest              `json:"ignored_exclusions"`
	RejectedAdditions []RejectedAdditionResponse `json:"rejected_additions"`
}

func FromResolution(res *override.Resolution) *ResolveResponse {
	out := &ResolveResponse{
		Assignments:       make([]AssignmentResponse, len(res.Assignments)),
		ExcludedCount:     res.ExcludedCount,
		IgnoredExclusions: make([]PairRequest, len(res.IgnoredExclusions)),
		RejectedAdditions: make([]RejectedAdditionResponse, len(res.Rejected)),
	}
	for i, a := range res.Assignments {
		out.Assignments[i] = AssignmentResponse{
			ObligationID:    a.ObligationID.String(),
			OrganizationID:  a.OrganizationID.String(),
			MatchType:       string(a.MatchType),
			MatchConfidence: a.MatchConfidence,
			MatchReason:     a.MatchReason,
		}
	}
	for i, p := range res.IgnoredExclusions {
		out.IgnoredExclusions[i] = pairResponse(p)
	}
	for i, r := range res.Rejected {
		out.RejectedAdditions[i] = RejectedAdditionResponse{
			ObligationID:   r.ObligationID.String(),
			OrganizationID: r.OrganizationID.String(),
			Reason:         string(r.Reason),
		}
	}
	return out
}

// PublishResponse is the HTTP response for POST /legal-publish.
type PublishResponse struct {
	Message  string `json:"message"`
	BatchID  string `json:"batch_id"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
	Dropped  int    `json:"dropped"`
}

func FromPublishResult(res *models.PublishResult) *PublishResponse {
	return &PublishResponse{
		Message:  res.Batch.Message,
		BatchID:  res.Batch.ID.String(),
		Inserted: res.Inserted,
		Skipped:  res.Skipped,
		Dropped:  res.Dropped,
	}
}

type BatchResponse struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title,omitempty"`
	DueDate            string    `json:"due_date,omitempty"`
	TotalObligations   int       `json:"total_obligations"`
	TotalOrganizations int       `json:"total_organizations"`
	TotalAssignments   int       `json:"total_assignments"`
	Message            string    `json:"message"`
	PublishedAt        time.Time `json:"published_at"`
	CreatedBy          string    `json:"created_by"`
}

func FromBatch(b *models.PublishBatch) BatchResponse {
	resp := BatchResponse{
		ID:                 b.ID.String(),
		Title:              b.Title,
		TotalObligations:   b.TotalObligations,
		TotalOrganizations: b.TotalOrganizations,
		TotalAssignments:   b.TotalAssignments,
		Message:            b.Message,
		PublishedAt:        b.PublishedAt,
		CreatedBy:          b.CreatedBy,
	}
	if b.DueDate != nil {
		resp.DueDate = b.DueDate.Format(dueDateLayout)
	}
	return resp
}

type BatchListResponse struct {
	Batches []BatchResponse `json:"batches"`
}

func FromBatches(batches []*models.PublishBatch) *BatchListResponse {
	out := make([]BatchResponse, len(batches))
	for i, b := range batches {
		out[i] = FromBatch(b)
	}
	return &BatchListResponse{Batches: out}
}

func pairResponse(p models.Pair) PairRequest {
	return PairRequest{ObligationID: p.ObligationID.String(), OrganizationID: p.OrganizationID.String()}
}
