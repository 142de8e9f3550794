package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obligo/internal/publishing/models"
	id "obligo/pkg/domain"
)

func TestPostgresGetApprovedObligations(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	oid, actID := uuid.New(), uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE o.status = $1 AND o.id = ANY($2::uuid[])")).
		WithArgs("approved", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "legal_act_id", "title", "country_code", "industry_domain"}).
			AddRow(oid.String(), actID.String(), "Fire safety register", "RO", ""))

	got, err := NewPostgres(db).GetApprovedObligations(context.Background(),
		[]id.ObligationID{id.ObligationID(oid), id.ObligationID(uuid.New())})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id.ObligationID(oid), got[0].ID)
	assert.Equal(t, id.LegalActID(actID), got[0].LegalActID)
	assert.Equal(t, "RO", got[0].CountryCode)
	assert.Empty(t, got[0].Domain)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSkipsQueryForNoIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	got, err := NewPostgres(db).GetApprovedObligations(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInMemoryReturnsOnlyApproved(t *testing.T) {
	s := NewInMemoryStore()
	approved := models.Obligation{ID: id.ObligationID(uuid.New()), CountryCode: "RO"}
	draft := models.Obligation{ID: id.ObligationID(uuid.New()), CountryCode: "RO"}
	s.Put(approved, true)
	s.Put(draft, false)

	got, err := s.GetApprovedObligations(context.Background(),
		[]id.ObligationID{approved.ID, draft.ID, approved.ID, id.ObligationID(uuid.New())})
	require.NoError(t, err)
	assert.Equal(t, []models.Obligation{approved}, got)
}
