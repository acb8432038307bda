package store

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/msp-research-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS companies`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertCompanies(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO companies .*ON CONFLICT \(name_norm\)`).
		WithArgs(pgxmock.AnyArg(), "Acme IT", "acme it",
			"https://acme.example", "", "", "", "", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	loaded, err := s.UpsertCompanies(context.Background(), []model.CompanyRow{
		{Name: "Acme IT", Website: "https://acme.example"},
		{Name: " "}, // skipped, no statement expected
	})
	require.NoError(t, err)
	assert.Equal(t, 1, loaded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertPeople_ResolvesLink(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT name_norm, id FROM companies`).
		WillReturnRows(pgxmock.NewRows([]string{"name_norm", "id"}).
			AddRow("acme it", "company-1"))
	mock.ExpectExec(`INSERT INTO people .*ON CONFLICT \(profile_url\)`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "ACME It",
			"https://linkedin.com/in/ann", "CTO", "", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	loaded, unlinked, err := s.UpsertPeople(context.Background(), []model.PersonRow{
		{Company: "ACME It", ProfileURL: "https://linkedin.com/in/ann", Title: "CTO"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, loaded)
	assert.Equal(t, 0, unlinked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertPeople_OrphanCounted(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT name_norm, id FROM companies`).
		WillReturnRows(pgxmock.NewRows([]string{"name_norm", "id"}))
	mock.ExpectExec(`INSERT INTO people`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "Ghost LLC",
			"https://linkedin.com/in/bob", "", "", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	loaded, unlinked, err := s.UpsertPeople(context.Background(), []model.PersonRow{
		{Company: "Ghost LLC", ProfileURL: "https://linkedin.com/in/bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, loaded)
	assert.Equal(t, 1, unlinked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertPeople_ExistingProfileIsNoOp(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT name_norm, id FROM companies`).
		WillReturnRows(pgxmock.NewRows([]string{"name_norm", "id"}))
	// Conflict on profile_url affects zero rows, so nothing is counted.
	mock.ExpectExec(`INSERT INTO people .*ON CONFLICT \(profile_url\) DO NOTHING`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "Ghost LLC",
			"https://linkedin.com/in/bob", "", "", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	loaded, unlinked, err := s.UpsertPeople(context.Background(), []model.PersonRow{
		{Company: "Ghost LLC", ProfileURL: "https://linkedin.com/in/bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, loaded)
	assert.Equal(t, 0, unlinked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertPeople_BatchDuplicateFirstWins(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT name_norm, id FROM companies`).
		WillReturnRows(pgxmock.NewRows([]string{"name_norm", "id"}).
			AddRow("acme it", "company-1"))
	// One statement for the pair: the second batch row is dropped.
	mock.ExpectExec(`INSERT INTO people`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), "Acme IT",
			"https://linkedin.com/in/ann", "First", "", "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	loaded, unlinked, err := s.UpsertPeople(context.Background(), []model.PersonRow{
		{Company: "Acme IT", ProfileURL: "https://linkedin.com/in/ann", Title: "First"},
		{Company: "Acme IT", ProfileURL: "https://linkedin.com/in/ann", Title: "Second"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, loaded)
	assert.Equal(t, 0, unlinked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetCompany_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT .* FROM companies WHERE name_norm = \$1`).
		WithArgs("nobody").
		WillReturnError(pgx.ErrNoRows)

	c, err := s.GetCompany(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.NoError(t, mock.ExpectationsWereMet())
}
