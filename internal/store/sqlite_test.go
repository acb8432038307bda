package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/msp-research-cli/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "research.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteStore_MigrateIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestSQLiteStore_UpsertCompanies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	loaded, err := s.UpsertCompanies(ctx, []model.CompanyRow{
		{Name: "Acme IT", Website: "https://acme.example"},
		{Name: "Beta LLC"},
		{Name: "   "}, // canonicalizes to empty, skipped
	})
	require.NoError(t, err)
	assert.Equal(t, 2, loaded)

	companies, err := s.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 2)
	assert.Equal(t, "acme it", companies[0].NameNorm)
	assert.Equal(t, "Acme IT", companies[0].Name)
	assert.NotEmpty(t, companies[0].ID)
}

func TestSQLiteStore_UpsertCompanies_NameVariantsCollapse(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertCompanies(ctx, []model.CompanyRow{
		{Name: "Acme IT", Website: "https://old.example"},
	})
	require.NoError(t, err)

	_, err = s.UpsertCompanies(ctx, []model.CompanyRow{
		{Name: "ACME   it", Website: "https://new.example"},
	})
	require.NoError(t, err)

	companies, err := s.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 1)
	// Display name stays as first loaded; other fields refresh.
	assert.Equal(t, "Acme IT", companies[0].Name)
	assert.Equal(t, "https://new.example", companies[0].Website)
}

func TestSQLiteStore_ReloadIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows := []model.CompanyRow{
		{Name: "Acme IT", Summary: "An MSP"},
		{Name: "Beta LLC"},
	}
	people := []model.PersonRow{
		{Company: "Acme IT", ProfileURL: "https://linkedin.com/in/ann", Title: "CTO"},
	}

	for i := range 2 {
		loaded, err := s.UpsertCompanies(ctx, rows)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded)

		loadedPeople, unlinked, err := s.UpsertPeople(ctx, people)
		require.NoError(t, err)
		if i == 0 {
			assert.Equal(t, 1, loadedPeople)
		} else {
			// Known profiles are not re-inserted and not counted.
			assert.Equal(t, 0, loadedPeople)
		}
		assert.Equal(t, 0, unlinked)
	}

	companies, err := s.ListCompanies(ctx)
	require.NoError(t, err)
	assert.Len(t, companies, 2)

	acme, err := s.GetCompany(ctx, "acme it")
	require.NoError(t, err)
	require.NotNil(t, acme)
	found, err := s.ListPeople(ctx, acme.ID)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestSQLiteStore_UpsertPeople_LinksByCanonicalName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertCompanies(ctx, []model.CompanyRow{{Name: "Acme IT "}})
	require.NoError(t, err)

	loaded, unlinked, err := s.UpsertPeople(ctx, []model.PersonRow{
		{Company: "acme   IT", ProfileURL: "https://linkedin.com/in/ann", Title: "CTO"},
		{Company: "Ghost LLC", ProfileURL: "https://linkedin.com/in/bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, loaded)
	assert.Equal(t, 1, unlinked)

	acme, err := s.GetCompany(ctx, "acme it")
	require.NoError(t, err)
	require.NotNil(t, acme)

	people, err := s.ListPeople(ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "https://linkedin.com/in/ann", people[0].ProfileURL)
	assert.Equal(t, acme.ID, people[0].CompanyID)
}

func TestSQLiteStore_UpsertPeople_ExistingProfileIsNoOp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertCompanies(ctx, []model.CompanyRow{{Name: "Acme IT"}})
	require.NoError(t, err)

	loaded, _, err := s.UpsertPeople(ctx, []model.PersonRow{
		{Company: "Acme IT", ProfileURL: "https://linkedin.com/in/ann", Title: "Engineer"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, loaded)

	loaded, _, err = s.UpsertPeople(ctx, []model.PersonRow{
		{Company: "Acme IT", ProfileURL: "https://linkedin.com/in/ann", Title: "CTO"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, loaded)

	acme, err := s.GetCompany(ctx, "acme it")
	require.NoError(t, err)
	require.NotNil(t, acme)

	people, err := s.ListPeople(ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "Engineer", people[0].Title)
}

func TestSQLiteStore_UpsertPeople_BatchDuplicateFirstWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertCompanies(ctx, []model.CompanyRow{{Name: "Acme IT"}})
	require.NoError(t, err)

	loaded, unlinked, err := s.UpsertPeople(ctx, []model.PersonRow{
		{Company: "Acme IT", ProfileURL: "https://linkedin.com/in/ann", Title: "First"},
		{Company: "Acme IT", ProfileURL: "https://linkedin.com/in/ann", Title: "Second"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, loaded)
	assert.Equal(t, 0, unlinked)

	acme, err := s.GetCompany(ctx, "acme it")
	require.NoError(t, err)
	people, err := s.ListPeople(ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, "First", people[0].Title)
}

func TestSQLiteStore_UpsertPeople_LinkNotReResolved(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows := []model.PersonRow{
		{Company: "Acme IT", ProfileURL: "https://linkedin.com/in/ann", Title: "Engineer"},
	}

	loaded, unlinked, err := s.UpsertPeople(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded)
	assert.Equal(t, 1, unlinked)

	// The company arrives later; re-ingesting the same profile must not
	// backfill the link or touch any field.
	_, err = s.UpsertCompanies(ctx, []model.CompanyRow{{Name: "Acme IT"}})
	require.NoError(t, err)

	loaded, unlinked, err = s.UpsertPeople(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded)
	assert.Equal(t, 0, unlinked)

	var companyID sql.NullString
	err = s.db.QueryRowContext(ctx,
		`SELECT company_id FROM people WHERE profile_url = ?`,
		"https://linkedin.com/in/ann").Scan(&companyID)
	require.NoError(t, err)
	assert.False(t, companyID.Valid)
}

func TestSQLiteStore_UpsertPeople_ZeroDiscoveredAtFilled(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertCompanies(ctx, []model.CompanyRow{{Name: "Acme IT"}})
	require.NoError(t, err)

	before := time.Now().UTC().Add(-time.Minute)
	_, _, err = s.UpsertPeople(ctx, []model.PersonRow{
		{Company: "Acme IT", ProfileURL: "https://linkedin.com/in/ann"},
	})
	require.NoError(t, err)

	acme, err := s.GetCompany(ctx, "acme it")
	require.NoError(t, err)
	people, err := s.ListPeople(ctx, acme.ID)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.True(t, people[0].DiscoveredAt.After(before))
}

func TestSQLiteStore_GetCompany_NotFound(t *testing.T) {
	s := newTestStore(t)

	c, err := s.GetCompany(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, c)
}
