package assignment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"obligo/internal/publishing/models"
	id "obligo/pkg/domain"
	"obligo/pkg/platform/sentinel"
	txcontext "obligo/pkg/platform/tx"
)

const (
	DefaultInsertChunk = 1000
	DefaultLookupChunk = 5000
)

// PostgresStore persists assignments and batches in PostgreSQL. Every method
// runs on the transaction carried by ctx when there is one.
type PostgresStore struct {
	db          *sql.DB
	insertChunk int
	lookupChunk int
}

type PostgresOption func(*PostgresStore)

// WithInsertChunk bounds the rows sent in one INSERT statement.
func WithInsertChunk(n int) PostgresOption {
	return func(s *PostgresStore) {
		if n > 0 {
			s.insertChunk = n
		}
	}
}

// WithLookupChunk bounds the pairs sent in one published-pairs query.
func WithLookupChunk(n int) PostgresOption {
	return func(s *PostgresStore) {
		if n > 0 {
			s.lookupChunk = n
		}
	}
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db, insertChunk: DefaultInsertChunk, lookupChunk: DefaultLookupChunk}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InsertAssignments inserts drafts with ON CONFLICT DO NOTHING on the pair
// key, so an existing pair is skipped without aborting the transaction.
// Rows are sent in pair order so concurrent publishes lock in the same order.
func (s *PostgresStore) InsertAssignments(ctx context.Context, batchID id.BatchID, drafts []models.AssignmentDraft, createdAt time.Time) ([]models.Pair, error) {
	sorted := slices.Clone(drafts)
	slices.SortFunc(sorted, func(a, b models.AssignmentDraft) int { return a.Pair.Compare(b.Pair) })

	query := `
		INSERT INTO obligation_assignments (
			id, obligation_id, organization_id, match_type, match_confidence, batch_id, created_at
		)
		SELECT t.id, t.obligation_id, t.organization_id, t.match_type, t.match_confidence, $6, $7
		FROM unnest($1::uuid[], $2::uuid[], $3::uuid[], $4::text[], $5::float8[])
			AS t(id, obligation_id, organization_id, match_type, match_confidence)
		ON CONFLICT (obligation_id, organization_id) DO NOTHING
		RETURNING obligation_id, organization_id
	`
	exec := txcontext.Pick(ctx, s.db)
	landed := make([]models.Pair, 0, len(sorted))
	for chunk := range slices.Chunk(sorted, s.insertChunk) {
		ids := make([]string, len(chunk))
		obligations := make([]string, len(chunk))
		organizations := make([]string, len(chunk))
		matchTypes := make([]string, len(chunk))
		confidences := make([]float64, len(chunk))
		for i, d := range chunk {
			ids[i] = id.NewAssignmentID().String()
			obligations[i] = d.ObligationID.String()
			organizations[i] = d.OrganizationID.String()
			matchTypes[i] = string(d.MatchType)
			confidences[i] = d.MatchConfidence
		}

		rows, err := exec.QueryContext(ctx, query,
			pq.Array(ids),
			pq.Array(obligations),
			pq.Array(organizations),
			pq.Array(matchTypes),
			pq.Array(confidences),
			uuid.UUID(batchID),
			createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("insert assignments: %w", err)
		}
		pairs, err := scanPairs(rows)
		if err != nil {
			return nil, fmt.Errorf("insert assignments: %w", err)
		}
		landed = append(landed, pairs...)
	}
	return landed, nil
}

// PublishedPairs returns the subset of pairs that already have an assignment,
// in one query per lookup chunk.
func (s *PostgresStore) PublishedPairs(ctx context.Context, pairs []models.Pair) (*models.PairSet, error) {
	query := `
		SELECT a.obligation_id, a.organization_id
		FROM obligation_assignments a
		WHERE (a.obligation_id, a.organization_id) IN (
			SELECT p.obligation_id, p.organization_id
			FROM unnest($1::uuid[], $2::uuid[]) AS p(obligation_id, organization_id)
		)
	`
	exec := txcontext.Pick(ctx, s.db)
	published := models.NewPairSet(0)
	for chunk := range slices.Chunk(pairs, s.lookupChunk) {
		obligations := make([]string, len(chunk))
		organizations := make([]string, len(chunk))
		for i, p := range chunk {
			obligations[i] = p.ObligationID.String()
			organizations[i] = p.OrganizationID.String()
		}
		rows, err := exec.QueryContext(ctx, query, pq.Array(obligations), pq.Array(organizations))
		if err != nil {
			return nil, fmt.Errorf("lookup published pairs: %w", err)
		}
		found, err := scanPairs(rows)
		if err != nil {
			return nil, fmt.Errorf("lookup published pairs: %w", err)
		}
		for _, p := range found {
			published.Add(p)
		}
	}
	return published, nil
}

// CreateBatch inserts the batch receipt. The assignment FK to publish_batches
// is deferred, so the batch may be written after its rows.
func (s *PostgresStore) CreateBatch(ctx context.Context, batch *models.PublishBatch) error {
	if batch == nil {
		return fmt.Errorf("batch is required")
	}
	query := `
		INSERT INTO publish_batches (
			id, title, due_date, total_obligations, total_organizations,
			total_assignments, message, published_at, created_by
		)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(batch.ID),
		batch.Title,
		batch.DueDate,
		batch.TotalObligations,
		batch.TotalOrganizations,
		batch.TotalAssignments,
		batch.Message,
		batch.PublishedAt,
		batch.CreatedBy,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

const batchColumns = `id, title, due_date, total_obligations, total_organizations,
	total_assignments, message, published_at, created_by`

func (s *PostgresStore) GetBatch(ctx context.Context, batchID id.BatchID) (*models.PublishBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM publish_batches WHERE id = $1`
	row := txcontext.Pick(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(batchID))
	batch, err := scanBatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return batch, nil
}

// ListBatches returns the most recent batches, newest first.
func (s *PostgresStore) ListBatches(ctx context.Context, limit int) ([]*models.PublishBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM publish_batches ORDER BY published_at DESC, id DESC LIMIT $1`
	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []*models.PublishBatch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return batches, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBatch(row scanner) (*models.PublishBatch, error) {
	var (
		batchID uuid.UUID
		title   sql.NullString
		dueDate sql.NullTime
		batch   models.PublishBatch
	)
	err := row.Scan(
		&batchID,
		&title,
		&dueDate,
		&batch.TotalObligations,
		&batch.TotalOrganizations,
		&batch.TotalAssignments,
		&batch.Message,
		&batch.PublishedAt,
		&batch.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	batch.ID = id.BatchID(batchID)
	batch.Title = title.String
	if dueDate.Valid {
		d := dueDate.Time
		batch.DueDate = &d
	}
	return &batch, nil
}

func scanPairs(rows *sql.Rows) ([]models.Pair, error) {
	defer rows.Close()
	var pairs []models.Pair
	for rows.Next() {
		var obligationID, organizationID uuid.UUID
		if err := rows.Scan(&obligationID, &organizationID); err != nil {
			return nil, err
		}
		pairs = append(pairs, models.NewPair(id.ObligationID(obligationID), id.OrganizationID(organizationID)))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pairs, nil
}
