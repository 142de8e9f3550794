package handler

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"obligo/internal/publishing/models"
	id "obligo/pkg/domain"
	dErrors "obligo/pkg/domain-errors"
	pstrings "obligo/pkg/platform/strings"
)

const (
	dueDateLayout  = "2006-01-02"
	maxTitleLength = 200
	maxReasonChars = 500
)

// PreviewQuery holds the query parameters of GET /legal-publish.
type PreviewQuery struct {
	Mode          string
	ObligationIDs string

	parsed models.PreviewRequest
}

func previewQueryFrom(values url.Values) *PreviewQuery {
	return &PreviewQuery{
		Mode:          values.Get("mode"),
		ObligationIDs: values.Get("obligation_ids"),
	}
}

// Validate parses mode and the comma separated obligation ids.
func (q *PreviewQuery) Validate() error {
	mode, err := models.ParseMatchMode(q.Mode)
	if err != nil {
		return err
	}
	ids, err := parseObligationIDs(pstrings.SplitCSV(q.ObligationIDs))
	if err != nil {
		return err
	}
	q.parsed = models.PreviewRequest{Mode: mode, ObligationIDs: ids}
	return nil
}

func (q *PreviewQuery) ToModel() models.PreviewRequest {
	return q.parsed
}

// PairRequest identifies one (obligation, organization) pair.
type PairRequest struct {
	ObligationID   string `json:"obligation_id"`
	OrganizationID string `json:"organization_id"`
}

func (p PairRequest) parse() (models.Pair, error) {
	obligationID, err := id.ParseObligationID(p.ObligationID)
	if err != nil {
		return models.Pair{}, err
	}
	organizationID, err := id.ParseOrganizationID(p.OrganizationID)
	if err != nil {
		return models.Pair{}, err
	}
	return models.NewPair(obligationID, organizationID), nil
}

// AdditionRequest is a manual addition in POST /legal-publish/resolve.
type AdditionRequest struct {
	PairRequest
	MatchReason string `json:"match_reason,omitempty"`
}

// ResolveRequest is the body of POST /legal-publish/resolve.
type ResolveRequest struct {
	Mode          string            `json:"mode"`
	ObligationIDs []string          `json:"obligation_ids"`
	Excluded      []PairRequest     `json:"excluded"`
	Additions     []AdditionRequest `json:"additions"`

	parsed models.ResolveRequest
}

// Validate implements httputil.Validatable.
func (r *ResolveRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	mode, err := models.ParseMatchMode(r.Mode)
	if err != nil {
		return err
	}
	ids, err := parseObligationIDs(pstrings.DedupeAndTrim(r.ObligationIDs))
	if err != nil {
		return err
	}

	excluded := make([]models.Pair, 0, len(r.Excluded))
	for i, e := range r.Excluded {
		p, err := e.parse()
		if err != nil {
			return rowError(fmt.Sprintf("excluded[%d]: %s", i, messageOf(err)))
		}
		excluded = append(excluded, p)
	}

	additions := make([]models.ManualAddition, 0, len(r.Additions))
	for i, a := range r.Additions {
		p, err := a.parse()
		if err != nil {
			return rowError(fmt.Sprintf("additions[%d]: %s", i, messageOf(err)))
		}
		reason := strings.TrimSpace(a.MatchReason)
		if len(reason) > maxReasonChars {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("additions[%d]: match_reason must be at most %d characters", i, maxReasonChars))
		}
		additions = append(additions, models.ManualAddition{Pair: p, MatchReason: reason})
	}

	r.parsed = models.ResolveRequest{
		PreviewRequest: models.PreviewRequest{Mode: mode, ObligationIDs: ids},
		Excluded:       excluded,
		Additions:      additions,
	}
	return nil
}

func (r *ResolveRequest) ToModel() models.ResolveRequest {
	return r.parsed
}

// AssignmentRequest is one row of POST /legal-publish.
type AssignmentRequest struct {
	PairRequest
	MatchType       string  `json:"match_type"`
	MatchConfidence float64 `json:"match_confidence,omitempty"`
}

// PublishRequest is the body of POST /legal-publish.
type PublishRequest struct {
	Assignments []AssignmentRequest `json:"assignments"`
	Title       string              `json:"title,omitempty"`
	DueDate     string              `json:"due_date,omitempty"`

	parsed models.PublishRequest
}

// Validate implements httputil.Validatable. Rows are parsed in order and the
// first bad row is reported by index.
func (r *PublishRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Assignments) == 0 {
		return dErrors.New(dErrors.CodeEmptyAssignmentSet, "assignments must not be empty")
	}

	r.Title = strings.TrimSpace(r.Title)
	if len(r.Title) > maxTitleLength {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	}
	var dueDate *time.Time
	if d := strings.TrimSpace(r.DueDate); d != "" {
		parsed, err := time.Parse(dueDateLayout, d)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "due_date must be a date in YYYY-MM-DD format")
		}
		dueDate = &parsed
	}

	drafts := make([]models.AssignmentDraft, 0, len(r.Assignments))
	for i, a := range r.Assignments {
		p, err := a.parse()
		if err != nil {
			return rowError(fmt.Sprintf("assignments[%d]: %s", i, messageOf(err)))
		}
		matchType, err := models.ParseMatchType(a.MatchType)
		if err != nil {
			return rowError(fmt.Sprintf("assignments[%d]: %s", i, messageOf(err)))
		}
		confidence := a.MatchConfidence
		if confidence == 0 {
			confidence = models.DefaultMatchConfidence
		}
		if confidence < 0 || confidence > 1 {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("assignments[%d]: match_confidence must be between 0 and 1", i))
		}
		drafts = append(drafts, models.AssignmentDraft{Pair: p, MatchType: matchType, MatchConfidence: confidence})
	}

	r.parsed = models.PublishRequest{
		Assignments: drafts,
		Options:     models.PublishOptions{Title: r.Title, DueDate: dueDate},
	}
	return nil
}

func (r *PublishRequest) ToModel() models.PublishRequest {
	return r.parsed
}

func parseObligationIDs(raw []string) ([]id.ObligationID, error) {
	if len(raw) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "obligation_ids must not be empty")
	}
	ids := make([]id.ObligationID, 0, len(raw))
	for _, s := range raw {
		oid, err := id.ParseObligationID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, oid)
	}
	return ids, nil
}

func rowError(msg string) error {
	return dErrors.New(dErrors.CodeValidation, msg)
}

func messageOf(err error) string {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
