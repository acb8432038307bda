// Package store persists the research output as a small relational
// model: companies unique on their canonical name, people unique on
// their profile URL, linked by a foreign key resolved once at load
// time. Two drivers share the same semantics, SQLite for local runs
// and Postgres for shared deployments.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sells-group/msp-research-cli/internal/model"
)

// Store defines the persistence interface for research results.
type Store interface {
	// UpsertCompanies loads company rows keyed on the canonical name.
	// Rows whose name canonicalizes to empty are skipped. Returns the
	// number of rows written.
	UpsertCompanies(ctx context.Context, rows []model.CompanyRow) (loaded int, err error)

	// UpsertPeople loads person rows keyed on profile URL, resolving
	// each row's company link by canonical name. Known profiles are
	// skipped, duplicate URLs within the batch keep the first row, and
	// loaded counts actual inserts only. Rows whose company is unknown
	// are inserted without a link and counted in unlinked.
	UpsertPeople(ctx context.Context, rows []model.PersonRow) (loaded, unlinked int, err error)

	// ListCompanies returns all companies ordered by canonical name.
	ListCompanies(ctx context.Context) ([]model.Company, error)

	// GetCompany looks a company up by canonical name. Returns
	// (nil, nil) when no company matches.
	GetCompany(ctx context.Context, nameNorm string) (*model.Company, error)

	// ListPeople returns the people linked to a company, oldest first.
	ListPeople(ctx context.Context, companyID string) ([]model.Person, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Pool is the subset of pgxpool.Pool the Postgres driver uses. It is
// satisfied by pgxmock in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}
