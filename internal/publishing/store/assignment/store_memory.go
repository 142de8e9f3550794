package assignment

import (
	"context"
	"slices"
	"sync"
	"time"

	"obligo/internal/publishing/models"
	"obligo/internal/publishing/publisher"
	id "obligo/pkg/domain"
	dErrors "obligo/pkg/domain-errors"
	"obligo/pkg/platform/sentinel"
)

const defaultTxTimeout = 30 * time.Second

// InMemoryStore keeps assignments and batches in process memory. RunInTx
// stages writes and applies them only when fn succeeds, so it shares the
// all-or-nothing behavior of the Postgres store.
type InMemoryStore struct {
	// txMu serializes transactions; mu guards the maps.
	txMu sync.Mutex
	mu   sync.RWMutex

	assignments map[models.Pair]models.Assignment
	batches     map[id.BatchID]models.PublishBatch
	batchOrder  []id.BatchID
	timeout     time.Duration
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		assignments: make(map[models.Pair]models.Assignment),
		batches:     make(map[id.BatchID]models.PublishBatch),
		timeout:     defaultTxTimeout,
	}
}

// RunInTx runs fn against a staging view and commits its writes if fn and
// ctx both succeed.
func (s *InMemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, store publisher.Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	staged := &stagedStore{parent: s, assignments: make(map[models.Pair]models.Assignment)}
	if err := fn(ctx, staged); err != nil {
		return err
	}
	// Check again before commit
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for pair, a := range staged.assignments {
		s.assignments[pair] = a
	}
	for _, b := range staged.batches {
		s.batches[b.ID] = b
		s.batchOrder = append(s.batchOrder, b.ID)
	}
	return nil
}

// InsertAssignments commits immediately when called outside RunInTx.
func (s *InMemoryStore) InsertAssignments(ctx context.Context, batchID id.BatchID, drafts []models.AssignmentDraft, createdAt time.Time) ([]models.Pair, error) {
	var landed []models.Pair
	err := s.RunInTx(ctx, func(ctx context.Context, store publisher.Store) error {
		var err error
		landed, err = store.InsertAssignments(ctx, batchID, drafts, createdAt)
		return err
	})
	return landed, err
}

// CreateBatch commits immediately when called outside RunInTx.
func (s *InMemoryStore) CreateBatch(ctx context.Context, batch *models.PublishBatch) error {
	return s.RunInTx(ctx, func(ctx context.Context, store publisher.Store) error {
		return store.CreateBatch(ctx, batch)
	})
}

func (s *InMemoryStore) PublishedPairs(_ context.Context, pairs []models.Pair) (*models.PairSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	published := models.NewPairSet(0)
	for _, p := range pairs {
		if _, ok := s.assignments[p]; ok {
			published.Add(p)
		}
	}
	return published, nil
}

func (s *InMemoryStore) GetBatch(_ context.Context, batchID id.BatchID) (*models.PublishBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.batches[batchID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &b, nil
}

func (s *InMemoryStore) ListBatches(_ context.Context, limit int) ([]*models.PublishBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.PublishBatch, 0, min(limit, len(s.batchOrder)))
	for i := len(s.batchOrder) - 1; i >= 0 && len(out) < limit; i-- {
		b := s.batches[s.batchOrder[i]]
		out = append(out, &b)
	}
	return out, nil
}

// Assignments returns all stored assignments ordered by pair.
func (s *InMemoryStore) Assignments() []models.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b models.Assignment) int { return a.Pair.Compare(b.Pair) })
	return out
}

// BatchCount returns the number of committed batches.
func (s *InMemoryStore) BatchCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.batches)
}

// stagedStore buffers one transaction's writes on top of the committed state.
type stagedStore struct {
	parent      *InMemoryStore
	assignments map[models.Pair]models.Assignment
	batches     []models.PublishBatch
}

func (t *stagedStore) InsertAssignments(ctx context.Context, batchID id.BatchID, drafts []models.AssignmentDraft, createdAt time.Time) ([]models.Pair, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.parent.mu.RLock()
	defer t.parent.mu.RUnlock()

	landed := make([]models.Pair, 0, len(drafts))
	for _, d := range drafts {
		if _, ok := t.parent.assignments[d.Pair]; ok {
			continue
		}
		if _, ok := t.assignments[d.Pair]; ok {
			continue
		}
		t.assignments[d.Pair] = models.Assignment{
			ID:              id.NewAssignmentID(),
			Pair:            d.Pair,
			MatchType:       d.MatchType,
			MatchConfidence: d.MatchConfidence,
			BatchID:         batchID,
			CreatedAt:       createdAt,
		}
		landed = append(landed, d.Pair)
	}
	return landed, nil
}

func (t *stagedStore) CreateBatch(ctx context.Context, batch *models.PublishBatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.parent.mu.RLock()
	_, exists := t.parent.batches[batch.ID]
	t.parent.mu.RUnlock()
	if exists {
		return sentinel.ErrConflict
	}
	t.batches = append(t.batches, *batch)
	return nil
}
