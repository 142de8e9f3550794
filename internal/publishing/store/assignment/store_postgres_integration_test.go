//go:build integration

package assignment_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"obligo/internal/publishing/models"
	"obligo/internal/publishing/publisher"
	"obligo/internal/publishing/store/assignment"
	id "obligo/pkg/domain"
	dErrors "obligo/pkg/domain-errors"
	"obligo/pkg/platform/audit/publishers/compliance"
	auditpostgres "obligo/pkg/platform/audit/store/postgres"
	"obligo/pkg/requestcontext"
	"obligo/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	store     *assignment.PostgresStore
	publisher *publisher.Publisher
	ctx       context.Context
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	// Small chunks so multi-statement inserts are exercised.
	s.store = assignment.NewPostgres(s.postgres.DB, assignment.WithInsertChunk(7), assignment.WithLookupChunk(5))
	s.publisher = publisher.New(
		assignment.NewPostgresTx(s.postgres.DB, s.store, 10*time.Second),
		publisher.WithAuditPublisher(compliance.New(auditpostgres.New(s.postgres.DB))),
	)
	s.ctx = requestcontext.WithOperatorID(context.Background(), "ops@example.com")
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "obligation_assignments", "publish_batches", "outbox")
	s.Require().NoError(err)
}

func newDrafts(n int) ([]models.AssignmentDraft, []models.Pair) {
	o := id.ObligationID(uuid.New())
	drafts := make([]models.AssignmentDraft, n)
	pairs := make([]models.Pair, n)
	for i := range drafts {
		pairs[i] = models.NewPair(o, id.OrganizationID(uuid.New()))
		drafts[i] = models.AssignmentDraft{Pair: pairs[i], MatchType: models.MatchTypeBroadcast, MatchConfidence: 1}
	}
	return drafts, pairs
}

func (s *PostgresStoreSuite) countRows(query string, args ...any) int {
	var n int
	s.Require().NoError(s.postgres.DB.QueryRowContext(context.Background(), query, args...).Scan(&n))
	return n
}

func (s *PostgresStoreSuite) TestRepublishIsIdempotent() {
	drafts, pairs := newDrafts(20)

	first, err := s.publisher.Publish(s.ctx, drafts, models.PublishOptions{Title: "first"})
	s.Require().NoError(err)
	s.Equal(20, first.Inserted)
	s.Equal(0, first.Skipped)

	second, err := s.publisher.Publish(s.ctx, drafts, models.PublishOptions{Title: "retry"})
	s.Require().NoError(err)
	s.Equal(0, second.Inserted)
	s.Equal(20, second.Skipped)

	published, err := s.store.PublishedPairs(context.Background(), pairs)
	s.Require().NoError(err)
	s.Equal(20, published.Len())
	s.Equal(20, s.countRows(`SELECT count(*) FROM obligation_assignments`))
	s.Equal(2, s.countRows(`SELECT count(*) FROM publish_batches`))
	s.Equal(2, s.countRows(`SELECT count(*) FROM outbox WHERE aggregate_type = 'publish_batch'`))

	batch, err := s.store.GetBatch(context.Background(), second.Batch.ID)
	s.Require().NoError(err)
	s.Zero(batch.TotalAssignments)
	s.Equal("retry", batch.Title)
}

// A pre-existing pair in the middle of the set must not abort the statement.
func (s *PostgresStoreSuite) TestPartialConflictCommitsTheRest() {
	drafts, _ := newDrafts(10)
	_, err := s.publisher.Publish(s.ctx, drafts[4:5], models.PublishOptions{})
	s.Require().NoError(err)

	result, err := s.publisher.Publish(s.ctx, drafts, models.PublishOptions{})
	s.Require().NoError(err)
	s.Equal(9, result.Inserted)
	s.Equal(1, result.Skipped)
	s.Equal(10, s.countRows(`SELECT count(*) FROM obligation_assignments`))
}

func (s *PostgresStoreSuite) TestConcurrentOverlappingPublishes() {
	drafts, _ := newDrafts(50)
	const goroutines = 8

	var wg sync.WaitGroup
	var inserted, failures atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			// Overlapping windows over the same pairs.
			window := drafts[offset*3 : offset*3+26]
			res, err := s.publisher.Publish(s.ctx, window, models.PublishOptions{})
			if err != nil {
				failures.Add(1)
				return
			}
			inserted.Add(int32(res.Inserted))
		}(i)
	}
	wg.Wait()

	s.Zero(failures.Load(), "no publish may fail because of a race")
	rows := s.countRows(`SELECT count(*) FROM obligation_assignments`)
	s.Equal(int(inserted.Load()), rows)
	s.Equal(s.countRows(`SELECT count(DISTINCT (obligation_id, organization_id)) FROM obligation_assignments`), rows)
	s.Equal(goroutines, s.countRows(`SELECT count(*) FROM publish_batches`))
}

func (s *PostgresStoreSuite) TestTimeoutLeavesNoRows() {
	drafts, _ := newDrafts(5)
	ctx, cancel := context.WithTimeout(s.ctx, time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := s.publisher.Publish(ctx, drafts, models.PublishOptions{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodePublishFailed))
	s.Zero(s.countRows(`SELECT count(*) FROM obligation_assignments`))
	s.Zero(s.countRows(`SELECT count(*) FROM publish_batches`))
}

func (s *PostgresStoreSuite) TestListBatchesNewestFirst() {
	for i := 0; i < 3; i++ {
		drafts, _ := newDrafts(1)
		ctx := requestcontext.WithTime(s.ctx, time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC))
		_, err := s.publisher.Publish(ctx, drafts, models.PublishOptions{})
		s.Require().NoError(err)
	}

	batches, err := s.store.ListBatches(context.Background(), 2)
	s.Require().NoError(err)
	s.Require().Len(batches, 2)
	s.True(batches[0].PublishedAt.After(batches[1].PublishedAt))
}
