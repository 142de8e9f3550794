// Package store reads approved obligations together with the country and
// domain of their legal act. The tables are owned upstream; nothing here writes.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"obligo/internal/publishing/models"
	id "obligo/pkg/domain"
	txcontext "obligo/pkg/platform/tx"
)

const statusApproved = "approved"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetApprovedObligations returns the approved obligations among ids. Unknown or
// unapproved ids are silently absent from the result.
func (s *PostgresStore) GetApprovedObligations(ctx context.Context, ids []id.ObligationID) ([]models.Obligation, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]string, len(ids))
	for i, oid := range ids {
		raw[i] = oid.String()
	}

	query := `
		SELECT o.id, o.legal_act_id, o.title, la.country_code, COALESCE(la.industry_domain, '')
		FROM obligations o
		JOIN legal_acts la ON la.id = o.legal_act_id
		WHERE o.status = $1 AND o.id = ANY($2::uuid[])
		ORDER BY o.id
	`
	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx, query, statusApproved, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("query approved obligations: %w", err)
	}
	defer rows.Close()

	var out []models.Obligation
	for rows.Next() {
		var (
			obligationID, legalActID uuid.UUID
			o                        models.Obligation
		)
		if err := rows.Scan(&obligationID, &legalActID, &o.Title, &o.CountryCode, &o.Domain); err != nil {
			return nil, fmt.Errorf("scan obligation: %w", err)
		}
		o.ID = id.ObligationID(obligationID)
		o.LegalActID = id.LegalActID(legalActID)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate obligations: %w", err)
	}
	return out, nil
}
