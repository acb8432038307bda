package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/msp-research-cli/internal/identity"
	"github.com/sells-group/msp-research-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	name_norm  TEXT NOT NULL UNIQUE,
	website    TEXT NOT NULL DEFAULT '',
	linkedin   TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL DEFAULT '',
	summary    TEXT NOT NULL DEFAULT '',
	top_urls   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS people (
	id            TEXT PRIMARY KEY,
	company_id    TEXT REFERENCES companies(id),
	company_name  TEXT NOT NULL,
	profile_url   TEXT NOT NULL UNIQUE,
	title         TEXT NOT NULL DEFAULT '',
	snippet       TEXT NOT NULL DEFAULT '',
	source_query  TEXT NOT NULL DEFAULT '',
	discovered_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_people_company_id ON people(company_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// The display name is set on first insert and never overwritten; later
// loads of the same canonical name refresh every other field.
const sqliteUpsertCompany = `
INSERT INTO companies (id, name, name_norm, website, linkedin, phone, address, summary, top_urls, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(name_norm) DO UPDATE SET
	website    = excluded.website,
	linkedin   = excluded.linkedin,
	phone      = excluded.phone,
	address    = excluded.address,
	summary    = excluded.summary,
	top_urls   = excluded.top_urls,
	updated_at = excluded.updated_at`

func (s *SQLiteStore) UpsertCompanies(ctx context.Context, rows []model.CompanyRow) (int, error) {
	loaded := 0
	for _, r := range rows {
		nameNorm := identity.Canonicalize(r.Name)
		if nameNorm == "" {
			continue
		}
		_, err := s.db.ExecContext(ctx, sqliteUpsertCompany,
			uuid.New().String(), r.Name, nameNorm,
			r.Website, r.LinkedIn, r.Phone, r.Address, r.Summary, r.TopURLs,
			time.Now().UTC(),
		)
		if err != nil {
			return loaded, eris.Wrapf(err, "sqlite: upsert company %s", nameNorm)
		}
		loaded++
	}
	return loaded, nil
}

// A person's company link is resolved when the row is first inserted
// and never re-resolved: re-ingest of a known profile is a no-op.
const sqliteInsertPerson = `
INSERT INTO people (id, company_id, company_name, profile_url, title, snippet, source_query, discovered_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(profile_url) DO NOTHING`

func (s *SQLiteStore) UpsertPeople(ctx context.Context, rows []model.PersonRow) (int, int, error) {
	companyIDs, err := s.companyIDsByNorm(ctx)
	if err != nil {
		return 0, 0, err
	}

	loaded, unlinked := 0, 0
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r.ProfileURL == "" {
			continue
		}
		// Within-batch duplicates: first row wins.
		if _, dup := seen[r.ProfileURL]; dup {
			continue
		}
		seen[r.ProfileURL] = struct{}{}

		var companyID sql.NullString
		id, linked := companyIDs[identity.Canonicalize(r.Company)]
		if linked {
			companyID = sql.NullString{String: id, Valid: true}
		}

		discovered := r.DiscoveredAt
		if discovered.IsZero() {
			discovered = time.Now().UTC()
		}

		res, err := s.db.ExecContext(ctx, sqliteInsertPerson,
			uuid.New().String(), companyID, r.Company, r.ProfileURL,
			r.Title, r.Snippet, r.SourceQuery, discovered,
		)
		if err != nil {
			return loaded, unlinked, eris.Wrapf(err, "sqlite: upsert person %s", r.ProfileURL)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return loaded, unlinked, eris.Wrap(err, "sqlite: rows affected")
		}
		if n == 0 {
			continue // profile already stored
		}
		loaded++
		if !linked {
			unlinked++
			zap.L().Warn("store: no company match for person",
				zap.String("company", r.Company),
				zap.String("profile_url", r.ProfileURL))
		}
	}
	return loaded, unlinked, nil
}

func (s *SQLiteStore) companyIDsByNorm(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name_norm, id FROM companies`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load company ids")
	}
	defer rows.Close()

	ids := make(map[string]string)
	for rows.Next() {
		var norm, id string
		if err := rows.Scan(&norm, &id); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company id")
		}
		ids[norm] = id
	}
	return ids, eris.Wrap(rows.Err(), "sqlite: iterate company ids")
}

const companyColumns = `id, name, name_norm, website, linkedin, phone, address, summary, top_urls, updated_at`

func (s *SQLiteStore) ListCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+companyColumns+` FROM companies ORDER BY name_norm`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.NameNorm, &c.Website, &c.LinkedIn,
			&c.Phone, &c.Address, &c.Summary, &c.TopURLs, &c.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company")
		}
		companies = append(companies, c)
	}
	return companies, eris.Wrap(rows.Err(), "sqlite: list companies iterate")
}

func (s *SQLiteStore) GetCompany(ctx context.Context, nameNorm string) (*model.Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE name_norm = ?`, nameNorm)

	var c model.Company
	err := row.Scan(&c.ID, &c.Name, &c.NameNorm, &c.Website, &c.LinkedIn,
		&c.Phone, &c.Address, &c.Summary, &c.TopURLs, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get company %s", nameNorm)
	}
	return &c, nil
}

const personColumns = `id, company_id, company_name, profile_url, title, snippet, source_query, discovered_at`

func (s *SQLiteStore) ListPeople(ctx context.Context, companyID string) ([]model.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+personColumns+` FROM people WHERE company_id = ? ORDER BY discovered_at, profile_url`,
		companyID)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list people for %s", companyID)
	}
	defer rows.Close()

	var people []model.Person
	for rows.Next() {
		p, err := scanPersonSQL(rows)
		if err != nil {
			return nil, err
		}
		people = append(people, *p)
	}
	return people, eris.Wrap(rows.Err(), "sqlite: list people iterate")
}

func scanPersonSQL(rows *sql.Rows) (*model.Person, error) {
	var p model.Person
	var companyID sql.NullString
	err := rows.Scan(&p.ID, &companyID, &p.CompanyName, &p.ProfileURL,
		&p.Title, &p.Snippet, &p.SourceQuery, &p.DiscoveredAt)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan person")
	}
	p.CompanyID = companyID.String
	return &p, nil
}
