// Package publisher commits a resolved assignment set as one batch.
//
// Every row is insert-or-skip: a pair that already exists in the assignment
// store is counted as skipped and never aborts the transaction. The batch
// receipt and its compliance audit event commit in the same transaction as
// the rows, so a failure leaves nothing behind.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"obligo/internal/publishing/metrics"
	"obligo/internal/publishing/models"
	id "obligo/pkg/domain"
	dErrors "obligo/pkg/domain-errors"
	audit "obligo/pkg/platform/audit"
	"obligo/pkg/requestcontext"
)

// systemOperator is recorded as created_by when no operator is in context.
const systemOperator = "system"

// Store persists assignments and batches. Implementations must enforce
// uniqueness of (obligation_id, organization_id) themselves.
type Store interface {
	// InsertAssignments inserts drafts under batchID, skipping pairs that
	// already exist, and returns the pairs that actually landed.
	InsertAssignments(ctx context.Context, batchID id.BatchID, drafts []models.AssignmentDraft, createdAt time.Time) ([]models.Pair, error)
	CreateBatch(ctx context.Context, batch *models.PublishBatch) error
}

// Tx provides the transactional boundary for one publish. The ctx passed to
// fn carries the transaction so other stores (the audit outbox) can join it.
type Tx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, store Store) error) error
}

// AuditPublisher emits compliance events. Emit failures abort the publish.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.ComplianceEvent) error
}

type Publisher struct {
	tx      Tx
	auditor AuditPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

func WithAuditPublisher(a AuditPublisher) Option {
	return func(p *Publisher) { p.auditor = a }
}

func New(tx Tx, opts ...Option) *Publisher {
	p := &Publisher{
		tx:     tx,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish inserts drafts as new assignments and records one batch.
// Duplicate pairs within drafts are collapsed and counted as skipped.
func (p *Publisher) Publish(ctx context.Context, drafts []models.AssignmentDraft, opts models.PublishOptions) (*models.PublishResult, error) {
	if len(drafts) == 0 && opts.Dropped == 0 {
		return nil, dErrors.New(dErrors.CodeEmptyAssignmentSet, "assignments must not be empty")
	}

	start := time.Now()
	unique := Dedupe(drafts)
	batchID := id.NewBatchID()
	now := requestcontext.Now(ctx).UTC()
	createdBy := requestcontext.OperatorID(ctx)
	if createdBy == "" {
		createdBy = systemOperator
	}

	var result *models.PublishResult
	err := p.tx.RunInTx(ctx, func(ctx context.Context, store Store) error {
		landed, err := store.InsertAssignments(ctx, batchID, unique, now)
		if err != nil {
			return fmt.Errorf("insert assignments: %w", err)
		}

		batch := summarize(landed)
		batch.ID = batchID
		batch.Title = opts.Title
		batch.DueDate = opts.DueDate
		batch.PublishedAt = now
		batch.CreatedBy = createdBy
		skipped := len(drafts) - len(landed)
		batch.Message = receiptMessage(len(landed), skipped, opts.Dropped)

		if err := store.CreateBatch(ctx, batch); err != nil {
			return fmt.Errorf("create batch: %w", err)
		}
		if err := p.emitAudit(ctx, batch, skipped, opts.Dropped); err != nil {
			return err
		}
		result = &models.PublishResult{Batch: batch, Inserted: len(landed), Skipped: skipped, Dropped: opts.Dropped}
		return nil
	})
	if err != nil {
		p.metrics.IncrementPublishFailure()
		p.logger.ErrorContext(ctx, "publish failed",
			"batch_id", batchID.String(),
			"assignments", len(drafts),
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, publishFailure(err)
	}

	p.metrics.RecordPublish(result.Inserted, result.Skipped, time.Since(start))
	p.logger.InfoContext(ctx, "assignments published",
		"batch_id", batchID.String(),
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"created_by", createdBy,
		"request_id", requestcontext.RequestID(ctx),
	)
	return result, nil
}

func (p *Publisher) emitAudit(ctx context.Context, batch *models.PublishBatch, skipped, dropped int) error {
	if p.auditor == nil {
		return nil
	}
	action := audit.EventObligationsPublished
	if batch.TotalAssignments == 0 {
		action = audit.EventPublishNoop
	}
	return p.auditor.Emit(ctx, audit.ComplianceEvent{
		Timestamp: batch.PublishedAt,
		Action:    action,
		Subject:   batch.ID.String(),
		ActorID:   batch.CreatedBy,
		RequestID: requestcontext.RequestID(ctx),
		Details: map[string]any{
			"inserted":            batch.TotalAssignments,
			"skipped":             skipped,
			"dropped":             dropped,
			"total_obligations":   batch.TotalObligations,
			"total_organizations": batch.TotalOrganizations,
			"title":               batch.Title,
		},
	})
}

// Dedupe keeps the first draft for every pair, preserving order.
func Dedupe(drafts []models.AssignmentDraft) []models.AssignmentDraft {
	seen := models.NewPairSet(len(drafts))
	out := make([]models.AssignmentDraft, 0, len(drafts))
	for _, d := range drafts {
		if seen.Add(d.Pair) {
			out = append(out, d)
		}
	}
	return out
}

// summarize counts distinct obligations and organizations among landed pairs.
func summarize(landed []models.Pair) *models.PublishBatch {
	obligations := make(map[id.ObligationID]struct{})
	organizations := make(map[id.OrganizationID]struct{})
	for _, pair := range landed {
		obligations[pair.ObligationID] = struct{}{}
		organizations[pair.OrganizationID] = struct{}{}
	}
	return &models.PublishBatch{
		TotalObligations:   len(obligations),
		TotalOrganizations: len(organizations),
		TotalAssignments:   len(landed),
	}
}

func receiptMessage(inserted, skipped, dropped int) string {
	var msg string
	switch {
	case inserted == 0 && skipped == 0:
		msg = "No new assignments"
	case inserted == 0:
		msg = fmt.Sprintf("No new assignments: all %d were already published", skipped)
	case skipped == 0:
		msg = fmt.Sprintf("Published %d assignments", inserted)
	default:
		msg = fmt.Sprintf("Published %d assignments, %d already published were skipped", inserted, skipped)
	}
	if dropped > 0 {
		msg += fmt.Sprintf("; %d referencing unknown obligations or organizations were dropped", dropped)
	}
	return msg
}

func publishFailure(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || dErrors.HasCode(err, dErrors.CodeTimeout) {
		return dErrors.Wrap(err, dErrors.CodePublishFailed, "publish timed out; no assignments were recorded, retry is safe")
	}
	return dErrors.Wrap(err, dErrors.CodePublishFailed, "publish failed; no assignments were recorded, retry is safe")
}
