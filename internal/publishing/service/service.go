// Package service orchestrates the publishing pipeline: it loads obligations
// and organizations from their stores, runs matcher and preview builder,
// resolves operator overrides, and hands the final set to the publisher.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"obligo/internal/publishing/matcher"
	"obligo/internal/publishing/metrics"
	"obligo/internal/publishing/models"
	"obligo/internal/publishing/override"
	"obligo/internal/publishing/preview"
	id "obligo/pkg/domain"
	dErrors "obligo/pkg/domain-errors"
	"obligo/pkg/platform/sentinel"
	"obligo/pkg/requestcontext"
)

const (
	DefaultBatchListLimit = 20
	MaxBatchListLimit     = 100
)

var tracer = otel.Tracer("obligo/publishing")

type ObligationStore interface {
	GetApprovedObligations(ctx context.Context, ids []id.ObligationID) ([]models.Obligation, error)
}

type OrganizationStore interface {
	ListOrganizations(ctx context.Context, filter models.OrganizationFilter) ([]models.Organization, error)
	GetByIDs(ctx context.Context, ids []id.OrganizationID) ([]models.Organization, error)
}

type AssignmentStore interface {
	PublishedPairs(ctx context.Context, pairs []models.Pair) (*models.PairSet, error)
	GetBatch(ctx context.Context, batchID id.BatchID) (*models.PublishBatch, error)
	ListBatches(ctx context.Context, limit int) ([]*models.PublishBatch, error)
}

type Publisher interface {
	Publish(ctx context.Context, drafts []models.AssignmentDraft, opts models.PublishOptions) (*models.PublishResult, error)
}

// Service exposes preview, resolve, publish and batch receipts.
type Service struct {
	obligations   ObligationStore
	organizations OrganizationStore
	assignments   AssignmentStore
	publisher     Publisher
	builder       *preview.Builder
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service. All four collaborators are required.
func New(obligations ObligationStore, organizations OrganizationStore, assignments AssignmentStore, publisher Publisher, opts ...Option) (*Service, error) {
	switch {
	case obligations == nil:
		return nil, errors.New("obligation store is required")
	case organizations == nil:
		return nil, errors.New("organization store is required")
	case assignments == nil:
		return nil, errors.New("assignment store is required")
	case publisher == nil:
		return nil, errors.New("publisher is required")
	}
	s := &Service{
		obligations:   obligations,
		organizations: organizations,
		assignments:   assignments,
		publisher:     publisher,
		builder:       preview.NewBuilder(assignments),
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Preview computes the decorated candidate set for req. Obligations that are
// unknown or not approved are dropped, not reported as errors.
func (s *Service) Preview(ctx context.Context, req models.PreviewRequest) ([]models.PreviewRow, error) {
	if err := validatePreview(req); err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "publishing.Preview",
		trace.WithAttributes(
			attribute.String("mode", string(req.Mode)),
			attribute.Int("obligations.requested", len(req.ObligationIDs)),
		),
	)
	defer span.End()
	start := time.Now()

	rows, err := s.preview(ctx, req)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("preview.rows", len(rows)))
	s.metrics.ObservePreviewLatency(string(req.Mode), time.Since(start))
	return rows, nil
}

func (s *Service) preview(ctx context.Context, req models.PreviewRequest) ([]models.PreviewRow, error) {
	obligations, err := s.obligations.GetApprovedObligations(ctx, req.ObligationIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load obligations")
	}
	if dropped := len(uniqueObligationIDs(req.ObligationIDs)) - len(obligations); dropped > 0 {
		s.logger.InfoContext(ctx, "preview dropped unknown or unapproved obligations",
			"dropped", dropped,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if len(obligations) == 0 {
		return []models.PreviewRow{}, nil
	}

	organizations, err := s.organizations.ListOrganizations(ctx, organizationFilter(req.Mode, obligations))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load organizations")
	}

	candidates, err := matcher.Match(req.Mode, obligations, organizations)
	if err != nil {
		return nil, err
	}
	s.metrics.AddCandidates(string(req.Mode), len(candidates))

	rows, err := s.builder.Decorate(ctx, candidates, directoryOf(organizations))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up published assignments")
	}
	return rows, nil
}

// Resolve recomputes the preview and applies the operator's exclusions and
// manual additions to it.
func (s *Service) Resolve(ctx context.Context, req models.ResolveRequest) (*override.Resolution, error) {
	if err := validatePreview(req.PreviewRequest); err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "publishing.Resolve",
		trace.WithAttributes(
			attribute.String("mode", string(req.Mode)),
			attribute.Int("excluded", len(req.Excluded)),
			attribute.Int("additions", len(req.Additions)),
		),
	)
	defer span.End()

	rows, err := s.preview(ctx, req.PreviewRequest)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	additionPairs := make([]models.Pair, len(req.Additions))
	for i, a := range req.Additions {
		additionPairs[i] = a.Pair
	}

	published := models.NewPairSet(0)
	known := newReferenceSet()
	if len(additionPairs) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			published, err = s.assignments.PublishedPairs(gctx, additionPairs)
			return err
		})
		g.Go(func() error {
			var err error
			known, err = s.loadReferences(gctx, additionPairs)
			return err
		})
		if err := g.Wait(); err != nil {
			recordSpanError(span, err)
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to validate manual additions")
		}
	}

	resolution := override.Resolve(override.Input{
		Preview:   rows,
		Excluded:  req.Excluded,
		Additions: req.Additions,
		Published: published,
		Known:     known.has,
	})
	span.SetAttributes(attribute.Int("assignments", len(resolution.Assignments)))
	return &resolution, nil
}

// Publish filters out rows referencing unknown obligations or organizations
// and commits the rest as one batch. Dropped rows are counted on the receipt.
func (s *Service) Publish(ctx context.Context, req models.PublishRequest) (*models.PublishResult, error) {
	if len(req.Assignments) == 0 {
		return nil, dErrors.New(dErrors.CodeEmptyAssignmentSet, "assignments must not be empty")
	}
	ctx, span := tracer.Start(ctx, "publishing.Publish",
		trace.WithAttributes(attribute.Int("assignments.requested", len(req.Assignments))),
	)
	defer span.End()

	pairs := make([]models.Pair, len(req.Assignments))
	for i, a := range req.Assignments {
		pairs[i] = a.Pair
	}
	known, err := s.loadReferences(ctx, pairs)
	if err != nil {
		recordSpanError(span, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to validate assignment references")
	}

	kept := make([]models.AssignmentDraft, 0, len(req.Assignments))
	for _, a := range req.Assignments {
		if known.has(a.Pair) {
			kept = append(kept, a)
		}
	}
	dropped := len(req.Assignments) - len(kept)
	if dropped > 0 {
		s.metrics.AddDropped(dropped)
		s.logger.InfoContext(ctx, "publish dropped rows with unknown references",
			"dropped", dropped,
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	// A request whose rows were all dropped still gets a zero-insert receipt.
	opts := req.Options
	opts.Dropped = dropped
	result, err := s.publisher.Publish(ctx, kept, opts)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("batch_id", result.Batch.ID.String()),
		attribute.Int("inserted", result.Inserted),
		attribute.Int("skipped", result.Skipped),
		attribute.Int("dropped", dropped),
	)
	return result, nil
}

func (s *Service) GetBatch(ctx context.Context, batchID id.BatchID) (*models.PublishBatch, error) {
	batch, err := s.assignments.GetBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "batch not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load batch")
	}
	return batch, nil
}

// ListBatches returns recent batches, newest first. limit is clamped to
// [1, MaxBatchListLimit]; zero selects the default.
func (s *Service) ListBatches(ctx context.Context, limit int) ([]*models.PublishBatch, error) {
	switch {
	case limit <= 0:
		limit = DefaultBatchListLimit
	case limit > MaxBatchListLimit:
		limit = MaxBatchListLimit
	}
	batches, err := s.assignments.ListBatches(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list batches")
	}
	if batches == nil {
		batches = []*models.PublishBatch{}
	}
	return batches, nil
}

// referenceSet holds the approved obligations and existing organizations
// referenced by a pair list.
type referenceSet struct {
	obligations   map[id.ObligationID]struct{}
	organizations map[id.OrganizationID]struct{}
}

func newReferenceSet() *referenceSet {
	return &referenceSet{
		obligations:   make(map[id.ObligationID]struct{}),
		organizations: make(map[id.OrganizationID]struct{}),
	}
}

func (r *referenceSet) has(p models.Pair) bool {
	_, okObligation := r.obligations[p.ObligationID]
	_, okOrganization := r.organizations[p.OrganizationID]
	return okObligation && okOrganization
}

// loadReferences looks up both sides of pairs in parallel, one query each.
func (s *Service) loadReferences(ctx context.Context, pairs []models.Pair) (*referenceSet, error) {
	refs := newReferenceSet()
	if len(pairs) == 0 {
		return refs, nil
	}
	obligationIDs, organizationIDs := splitPairs(pairs)

	var (
		obligations   []models.Obligation
		organizations []models.Organization
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		obligations, err = s.obligations.GetApprovedObligations(gctx, obligationIDs)
		return err
	})
	g.Go(func() error {
		var err error
		organizations, err = s.organizations.GetByIDs(gctx, organizationIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, o := range obligations {
		refs.obligations[o.ID] = struct{}{}
	}
	for _, o := range organizations {
		refs.organizations[o.ID] = struct{}{}
	}
	return refs, nil
}

func validatePreview(req models.PreviewRequest) error {
	if !req.Mode.IsValid() {
		_, err := models.ParseMatchMode(string(req.Mode))
		return err
	}
	if len(req.ObligationIDs) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "obligation_ids must not be empty")
	}
	return nil
}

// organizationFilter narrows the organization load to the obligations'
// countries unless the mode is broadcast.
func organizationFilter(mode models.MatchMode, obligations []models.Obligation) models.OrganizationFilter {
	if mode == models.ModeBroadcast {
		return models.OrganizationFilter{}
	}
	seen := make(map[string]struct{}, len(obligations))
	var countries []string
	for _, o := range obligations {
		if _, ok := seen[o.CountryCode]; ok {
			continue
		}
		seen[o.CountryCode] = struct{}{}
		countries = append(countries, o.CountryCode)
	}
	return models.OrganizationFilter{CountryCodes: countries}
}

func directoryOf(organizations []models.Organization) map[id.OrganizationID]models.Organization {
	dir := make(map[id.OrganizationID]models.Organization, len(organizations))
	for _, o := range organizations {
		dir[o.ID] = o
	}
	return dir
}

func splitPairs(pairs []models.Pair) ([]id.ObligationID, []id.OrganizationID) {
	obligations := make([]id.ObligationID, 0, len(pairs))
	organizations := make([]id.OrganizationID, 0, len(pairs))
	seenObligations := make(map[id.ObligationID]struct{}, len(pairs))
	seenOrganizations := make(map[id.OrganizationID]struct{}, len(pairs))
	for _, p := range pairs {
		if _, ok := seenObligations[p.ObligationID]; !ok {
			seenObligations[p.ObligationID] = struct{}{}
			obligations = append(obligations, p.ObligationID)
		}
		if _, ok := seenOrganizations[p.OrganizationID]; !ok {
			seenOrganizations[p.OrganizationID] = struct{}{}
			organizations = append(organizations, p.OrganizationID)
		}
	}
	return obligations, organizations
}

func uniqueObligationIDs(ids []id.ObligationID) map[id.ObligationID]struct{} {
	out := make(map[id.ObligationID]struct{}, len(ids))
	for _, oid := range ids {
		out[oid] = struct{}{}
	}
	return out
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
