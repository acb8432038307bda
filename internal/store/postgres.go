package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/msp-research-cli/internal/identity"
	"github.com/sells-group/msp-research-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
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
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS people (
	id            TEXT PRIMARY KEY,
	company_id    TEXT REFERENCES companies(id),
	company_name  TEXT NOT NULL,
	profile_url   TEXT NOT NULL UNIQUE,
	title         TEXT NOT NULL DEFAULT '',
	snippet       TEXT NOT NULL DEFAULT '',
	source_query  TEXT NOT NULL DEFAULT '',
	discovered_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_people_company_id ON people(company_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

const pgUpsertCompany = `
INSERT INTO companies (id, name, name_norm, website, linkedin, phone, address, summary, top_urls, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (name_norm) DO UPDATE SET
	website    = excluded.website,
	linkedin   = excluded.linkedin,
	phone      = excluded.phone,
	address    = excluded.address,
	summary    = excluded.summary,
	top_urls   = excluded.top_urls,
	updated_at = excluded.updated_at`

func (s *PostgresStore) UpsertCompanies(ctx context.Context, rows []model.CompanyRow) (int, error) {
	loaded := 0
	for _, r := range rows {
		nameNorm := identity.Canonicalize(r.Name)
		if nameNorm == "" {
			continue
		}
		_, err := s.pool.Exec(ctx, pgUpsertCompany,
			uuid.New().String(), r.Name, nameNorm,
			r.Website, r.LinkedIn, r.Phone, r.Address, r.Summary, r.TopURLs,
			time.Now().UTC(),
		)
		if err != nil {
			return loaded, eris.Wrapf(err, "postgres: upsert company %s", nameNorm)
		}
		loaded++
	}
	return loaded, nil
}

// A person's company link is resolved when the row is first inserted
// and never re-resolved: re-ingest of a known profile is a no-op.
const pgInsertPerson = `
INSERT INTO people (id, company_id, company_name, profile_url, title, snippet, source_query, discovered_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (profile_url) DO NOTHING`

func (s *PostgresStore) UpsertPeople(ctx context.Context, rows []model.PersonRow) (int, int, error) {
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

		var companyID *string
		id, linked := companyIDs[identity.Canonicalize(r.Company)]
		if linked {
			companyID = &id
		}

		discovered := r.DiscoveredAt
		if discovered.IsZero() {
			discovered = time.Now().UTC()
		}

		tag, err := s.pool.Exec(ctx, pgInsertPerson,
			uuid.New().String(), companyID, r.Company, r.ProfileURL,
			r.Title, r.Snippet, r.SourceQuery, discovered,
		)
		if err != nil {
			return loaded, unlinked, eris.Wrapf(err, "postgres: upsert person %s", r.ProfileURL)
		}
		if tag.RowsAffected() == 0 {
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

func (s *PostgresStore) companyIDsByNorm(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name_norm, id FROM companies`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load company ids")
	}
	defer rows.Close()

	ids := make(map[string]string)
	for rows.Next() {
		var norm, id string
		if err := rows.Scan(&norm, &id); err != nil {
			return nil, eris.Wrap(err, "postgres: scan company id")
		}
		ids[norm] = id
	}
	return ids, eris.Wrap(rows.Err(), "postgres: iterate company ids")
}

func (s *PostgresStore) ListCompanies(ctx context.Context) ([]model.Company, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+companyColumns+` FROM companies ORDER BY name_norm`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()

	var companies []model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.NameNorm, &c.Website, &c.LinkedIn,
			&c.Phone, &c.Address, &c.Summary, &c.TopURLs, &c.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		companies = append(companies, c)
	}
	return companies, eris.Wrap(rows.Err(), "postgres: list companies iterate")
}

func (s *PostgresStore) GetCompany(ctx context.Context, nameNorm string) (*model.Company, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE name_norm = $1`, nameNorm)

	var c model.Company
	err := row.Scan(&c.ID, &c.Name, &c.NameNorm, &c.Website, &c.LinkedIn,
		&c.Phone, &c.Address, &c.Summary, &c.TopURLs, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get company %s", nameNorm)
	}
	return &c, nil
}

func (s *PostgresStore) ListPeople(ctx context.Context, companyID string) ([]model.Person, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+personColumns+` FROM people WHERE company_id = $1 ORDER BY discovered_at, profile_url`,
		companyID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list people for %s", companyID)
	}
	defer rows.Close()

	var people []model.Person
	for rows.Next() {
		var p model.Person
		var cid sql.NullString
		if err := rows.Scan(&p.ID, &cid, &p.CompanyName, &p.ProfileURL,
			&p.Title, &p.Snippet, &p.SourceQuery, &p.DiscoveredAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan person")
		}
		p.CompanyID = cid.String
		people = append(people, p)
	}
	return people, eris.Wrap(rows.Err(), "postgres: list people iterate")
}
