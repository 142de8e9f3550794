// Package store reads the client organization directory. Organizations are
// managed elsewhere; this package only lists and looks them up.
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

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const orgColumns = `id, name, cui, country_code, COALESCE(industry_domain, '')`

// ListOrganizations returns organizations matching filter ordered by name.
func (s *PostgresStore) ListOrganizations(ctx context.Context, filter models.OrganizationFilter) ([]models.Organization, error) {
	query := `SELECT ` + orgColumns + ` FROM organizations`
	var args []any
	if !filter.IsZero() {
		query += ` WHERE country_code = ANY($1::text[])`
		args = append(args, pq.Array(filter.CountryCodes))
	}
	query += ` ORDER BY name, id`

	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return scanOrganizations(rows)
}

// GetByIDs returns the organizations among ids that exist.
func (s *PostgresStore) GetByIDs(ctx context.Context, ids []id.OrganizationID) ([]models.Organization, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]string, len(ids))
	for i, oid := range ids {
		raw[i] = oid.String()
	}
	query := `SELECT ` + orgColumns + ` FROM organizations WHERE id = ANY($1::uuid[]) ORDER BY name, id`
	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx, query, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("get organizations: %w", err)
	}
	return scanOrganizations(rows)
}

func scanOrganizations(rows *sql.Rows) ([]models.Organization, error) {
	defer rows.Close()
	var out []models.Organization
	for rows.Next() {
		var (
			orgID uuid.UUID
			org   models.Organization
		)
		if err := rows.Scan(&orgID, &org.Name, &org.CUI, &org.CountryCode, &org.IndustryDomain); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		org.ID = id.OrganizationID(orgID)
		out = append(out, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate organizations: %w", err)
	}
	return out, nil
}
