package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"obligo/internal/publishing/models"
	"obligo/internal/publishing/override"
	"obligo/internal/publishing/service/mocks"
	id "obligo/pkg/domain"
	dErrors "obligo/pkg/domain-errors"
	"obligo/pkg/platform/sentinel"
)

// =============================================================================
// Publishing Service Test Suite
// =============================================================================
// The service owns input validation, NotFound filtering and the wiring between
// matcher, preview builder, override resolver and publisher. Stores and the
// publisher are mocked so each test states exactly which I/O happens.

type ServiceSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	obligations   *mocks.MockObligationStore
	organizations *mocks.MockOrganizationStore
	assignments   *mocks.MockAssignmentStore
	publisher     *mocks.MockPublisher
	service       *Service
	ctx           context.Context

	o1               models.Obligation
	orgA, orgB, orgC models.Organization
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.obligations = mocks.NewMockObligationStore(s.ctrl)
	s.organizations = mocks.NewMockOrganizationStore(s.ctrl)
	s.assignments = mocks.NewMockAssignmentStore(s.ctrl)
	s.publisher = mocks.NewMockPublisher(s.ctrl)
	var err error
	s.service, err = New(s.obligations, s.organizations, s.assignments, s.publisher,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)
	s.ctx = context.Background()

	s.o1 = models.Obligation{ID: id.ObligationID(uuid.New()), CountryCode: "RO", Domain: "construcții"}
	s.orgA = models.Organization{ID: id.OrganizationID(uuid.New()), Name: "Org A", CountryCode: "RO", IndustryDomain: "construcții"}
	s.orgB = models.Organization{ID: id.OrganizationID(uuid.New()), Name: "Org B", CountryCode: "RO", IndustryDomain: "IT"}
	s.orgC = models.Organization{ID: id.OrganizationID(uuid.New()), Name: "Org C", CountryCode: "BG", IndustryDomain: "construcții"}
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) pair(org models.Organization) models.Pair {
	return models.NewPair(s.o1.ID, org.ID)
}

// =============================================================================
// Constructor
// =============================================================================

func (s *ServiceSuite) TestNew() {
	s.Run("nil collaborators are rejected", func() {
		_, err := New(nil, s.organizations, s.assignments, s.publisher)
		s.ErrorContains(err, "obligation store is required")
		_, err = New(s.obligations, nil, s.assignments, s.publisher)
		s.ErrorContains(err, "organization store is required")
		_, err = New(s.obligations, s.organizations, nil, s.publisher)
		s.ErrorContains(err, "assignment store is required")
		_, err = New(s.obligations, s.organizations, s.assignments, nil)
		s.ErrorContains(err, "publisher is required")
	})
}

// =============================================================================
// Preview
// =============================================================================

func (s *ServiceSuite) TestPreviewRejectsInvalidInputBeforeIO() {
	s.Run("unknown mode", func() {
		_, err := s.service.Preview(s.ctx, models.PreviewRequest{Mode: "everyone", ObligationIDs: []id.ObligationID{s.o1.ID}})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
	s.Run("missing mode", func() {
		_, err := s.service.Preview(s.ctx, models.PreviewRequest{ObligationIDs: []id.ObligationID{s.o1.ID}})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
	s.Run("empty obligation set", func() {
		_, err := s.service.Preview(s.ctx, models.PreviewRequest{Mode: models.ModeCountry})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *ServiceSuite) TestPreviewCountryModeDecoratesPublishedPairs() {
	s.obligations.EXPECT().GetApprovedObligations(gomock.Any(), []id.ObligationID{s.o1.ID}).
		Return([]models.Obligation{s.o1}, nil)
	s.organizations.EXPECT().ListOrganizations(gomock.Any(), models.OrganizationFilter{CountryCodes: []string{"RO"}}).
		Return([]models.Organization{s.orgA, s.orgB}, nil)
	s.assignments.EXPECT().PublishedPairs(gomock.Any(), gomock.Len(2)).
		Return(models.PairSetOf(s.pair(s.orgB)), nil)

	rows, err := s.service.Preview(s.ctx, models.PreviewRequest{Mode: models.ModeCountry, ObligationIDs: []id.ObligationID{s.o1.ID}})
	s.Require().NoError(err)
	s.Require().Len(rows, 2)
	s.Equal("Org A", rows[0].OrgName)
	s.False(rows[0].AlreadyPublished)
	s.Equal("Org B", rows[1].OrgName)
	s.True(rows[1].AlreadyPublished)
	s.Equal(models.MatchTypeCountry, rows[0].MatchType)
}

// Organizations without an industry domain are never matched in domain mode.
func (s *ServiceSuite) TestPreviewDomainModeExcludesOrganizationsWithoutDomain() {
	noDomain := models.Organization{ID: id.OrganizationID(uuid.New()), Name: "Org D", CountryCode: "RO"}
	s.obligations.EXPECT().GetApprovedObligations(gomock.Any(), gomock.Any()).Return([]models.Obligation{s.o1}, nil)
	s.organizations.EXPECT().ListOrganizations(gomock.Any(), gomock.Any()).
		Return([]models.Organization{s.orgA, s.orgB, noDomain}, nil)
	s.assignments.EXPECT().PublishedPairs(gomock.Any(), gomock.Len(1)).Return(models.NewPairSet(0), nil)

	rows, err := s.service.Preview(s.ctx, models.PreviewRequest{Mode: models.ModeDomain, ObligationIDs: []id.ObligationID{s.o1.ID}})
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal(s.orgA.ID, rows[0].OrganizationID)
}

func (s *ServiceSuite) TestPreviewBroadcastLoadsAllOrganizations() {
	s.obligations.EXPECT().GetApprovedObligations(gomock.Any(), gomock.Any()).Return([]models.Obligation{s.o1}, nil)
	s.organizations.EXPECT().ListOrganizations(gomock.Any(), models.OrganizationFilter{}).
		Return([]models.Organization{s.orgA, s.orgB, s.orgC}, nil)
	s.assignments.EXPECT().PublishedPairs(gomock.Any(), gomock.Len(3)).Return(models.NewPairSet(0), nil)

	rows, err := s.service.Preview(s.ctx, models.PreviewRequest{Mode: models.ModeBroadcast, ObligationIDs: []id.ObligationID{s.o1.ID}})
	s.Require().NoError(err)
	s.Len(rows, 3)
}

func (s *ServiceSuite) TestPreviewDropsUnknownObligations() {
	s.obligations.EXPECT().GetApprovedObligations(gomock.Any(), gomock.Any()).Return(nil, nil)

	rows, err := s.service.Preview(s.ctx, models.PreviewRequest{Mode: models.ModeCountry, ObligationIDs: []id.ObligationID{s.o1.ID}})
	s.Require().NoError(err)
	s.NotNil(rows)
	s.Empty(rows)
}

func (s *ServiceSuite) TestPreviewStoreFailureIsInternal() {
	s.obligations.EXPECT().GetApprovedObligations(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

	_, err := s.service.Preview(s.ctx, models.PreviewRequest{Mode: models.ModeCountry, ObligationIDs: []id.ObligationID{s.o1.ID}})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

// =============================================================================
// Resolve
// =============================================================================

func (s *ServiceSuite) TestResolveAppliesExclusionsAndAdditions() {
	s.obligations.EXPECT().GetApprovedObligations(gomock.Any(), []id.ObligationID{s.o1.ID}).
		Return([]models.Obligation{s.o1}, nil).Times(2)
	s.organizations.EXPECT().ListOrganizations(gomock.Any(), gomock.Any()).
		Return([]models.Organization{s.orgA, s.orgB}, nil)
	// Preview lookup, then the additions lookup.
	s.assignments.EXPECT().PublishedPairs(gomock.Any(), gomock.Len(2)).Return(models.NewPairSet(0), nil)
	s.assignments.EXPECT().PublishedPairs(gomock.Any(), gomock.Len(2)).Return(models.NewPairSet(0), nil)
	unknownOrg := id.OrganizationID(uuid.New())
	s.organizations.EXPECT().GetByIDs(gomock.Any(), gomock.Any()).Return([]models.Organization{s.orgC}, nil)

	res, err := s.service.Resolve(s.ctx, models.ResolveRequest{
		PreviewRequest: models.PreviewRequest{Mode: models.ModeCountry, ObligationIDs: []id.ObligationID{s.o1.ID}},
		Excluded:       []models.Pair{s.pair(s.orgB)},
		Additions: []models.ManualAddition{
			{Pair: s.pair(s.orgC), MatchReason: "subsidiary operates in RO"},
			{Pair: models.NewPair(s.o1.ID, unknownOrg)},
		},
	})
	s.Require().NoError(err)
	s.Equal(1, res.ExcludedCount)
	s.Require().Len(res.Assignments, 2)
	s.Equal(s.pair(s.orgA), res.Assignments[0].Pair)
	s.Equal(s.pair(s.orgC), res.Assignments[1].Pair)
	s.Equal(models.MatchTypeManual, res.Assignments[1].MatchType)
	s.Equal("subsidiary operates in RO", res.Assignments[1].MatchReason)
	s.Contains(res.Assignments[0].MatchReason, "matches legal act country")
	s.Require().Len(res.Rejected, 1)
	s.Equal(override.RejectNotFound, res.Rejected[0].Reason)
}

func (s *ServiceSuite) TestResolveWithoutAdditionsSkipsReferenceLookups() {
	s.obligations.EXPECT().GetApprovedObligations(gomock.Any(), gomock.Any()).Return([]models.Obligation{s.o1}, nil)
	s.organizations.EXPECT().ListOrganizations(gomock.Any(), gomock.Any()).Return([]models.Organization{s.orgA}, nil)
	s.assignments.EXPECT().PublishedPairs(gomock.Any(), gomock.Len(1)).Return(models.NewPairSet(0), nil)

	res, err := s.service.Resolve(s.ctx, models.ResolveRequest{
		PreviewRequest: models.PreviewRequest{Mode: models.ModeCountry, ObligationIDs: []id.ObligationID{s.o1.ID}},
	})
	s.Require().NoError(err)
	s.Len(res.Assignments, 1)
}

// =============================================================================
// Publish
// =============================================================================

func drafts(pairs ...models.Pair) []models.AssignmentDraft {
	out := make([]models.AssignmentDraft, len(pairs))
	for i, p := range pairs {
		out[i] = models.AssignmentDraft{Pair: p, MatchType: models.MatchTypeCountry, MatchConfidence: 1}
	}
	return out
}

func (s *ServiceSuite) TestPublishEmptySetBeforeIO() {
	_, err := s.service.Publish(s.ctx, models.PublishRequest{})
	s.True(dErrors.HasCode(err, dErrors.CodeEmptyAssignmentSet))
}

func (s *ServiceSuite) TestPublishDropsUnknownReferences() {
	unknownOrg := id.OrganizationID(uuid.New())
	input := drafts(s.pair(s.orgA), models.NewPair(s.o1.ID, unknownOrg))

	s.obligations.EXPECT().GetApprovedObligations(gomock.Any(), []id.ObligationID{s.o1.ID}).
		Return([]models.Obligation{s.o1}, nil)
	s.organizations.EXPECT().GetByIDs(gomock.Any(), []id.OrganizationID{s.orgA.ID, unknownOrg}).
		Return([]models.Organization{s.orgA}, nil)
	s.publisher.EXPECT().Publish(gomock.Any(), drafts(s.pair(s.orgA)), models.PublishOptions{Title: "t", Dropped: 1}).
		Return(&models.PublishResult{Batch: &models.PublishBatch{ID: id.NewBatchID()}, Inserted: 1, Dropped: 1}, nil)

	res, err := s.service.Publish(s.ctx, models.PublishRequest{Assignments: input, Options: models.PublishOptions{Title: "t"}})
	s.Require().NoError(err)
	s.Equal(1, res.Inserted)
	s.Equal(1, res.Dropped)
}

// Stale references are dropped rather than failing the request, so a publish
// whose every row is stale still produces a receipt.
func (s *ServiceSuite) TestPublishAllDroppedStillRecordsReceipt() {
	s.obligations.EXPECT().GetApprovedObligations(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.organizations.EXPECT().GetByIDs(gomock.Any(), gomock.Any()).Return([]models.Organization{s.orgA}, nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Len(0), models.PublishOptions{Dropped: 1}).
		Return(&models.PublishResult{Batch: &models.PublishBatch{ID: id.NewBatchID()}, Dropped: 1}, nil)

	res, err := s.service.Publish(s.ctx, models.PublishRequest{Assignments: drafts(s.pair(s.orgA))})
	s.Require().NoError(err)
	s.Equal(0, res.Inserted)
	s.Equal(1, res.Dropped)
}

func (s *ServiceSuite) TestPublishPropagatesPublisherFailure() {
	s.obligations.EXPECT().GetApprovedObligations(gomock.Any(), gomock.Any()).Return([]models.Obligation{s.o1}, nil)
	s.organizations.EXPECT().GetByIDs(gomock.Any(), gomock.Any()).Return([]models.Organization{s.orgA}, nil)
	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodePublishFailed, "publish failed"))

	_, err := s.service.Publish(s.ctx, models.PublishRequest{Assignments: drafts(s.pair(s.orgA))})
	s.True(dErrors.HasCode(err, dErrors.CodePublishFailed))
}

func (s *ServiceSuite) TestPublishReferenceLookupFailure() {
	s.obligations.EXPECT().GetApprovedObligations(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))
	s.organizations.EXPECT().GetByIDs(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	_, err := s.service.Publish(s.ctx, models.PublishRequest{Assignments: drafts(s.pair(s.orgA))})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

// =============================================================================
// Batches
// =============================================================================

func (s *ServiceSuite) TestGetBatch() {
	s.Run("not found", func() {
		s.assignments.EXPECT().GetBatch(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
		_, err := s.service.GetBatch(s.ctx, id.NewBatchID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
	s.Run("found", func() {
		batchID := id.NewBatchID()
		s.assignments.EXPECT().GetBatch(gomock.Any(), batchID).Return(&models.PublishBatch{ID: batchID}, nil)
		batch, err := s.service.GetBatch(s.ctx, batchID)
		s.Require().NoError(err)
		s.Equal(batchID, batch.ID)
	})
}

func (s *ServiceSuite) TestListBatchesClampsLimit() {
	s.assignments.EXPECT().ListBatches(gomock.Any(), DefaultBatchListLimit).Return(nil, nil)
	s.assignments.EXPECT().ListBatches(gomock.Any(), MaxBatchListLimit).Return(nil, nil)
	s.assignments.EXPECT().ListBatches(gomock.Any(), 5).Return(nil, nil)

	batches, err := s.service.ListBatches(s.ctx, 0)
	s.Require().NoError(err)
	s.NotNil(batches)
	_, err = s.service.ListBatches(s.ctx, 1000)
	s.Require().NoError(err)
	_, err = s.service.ListBatches(s.ctx, 5)
	s.Require().NoError(err)
}
