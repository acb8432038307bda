package main

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/msp-research-cli/internal/dedupe"
	"github.com/sells-group/msp-research-cli/internal/identity"
	"github.com/sells-group/msp-research-cli/internal/ingest"
	"github.com/sells-group/msp-research-cli/internal/model"
	"github.com/sells-group/msp-research-cli/internal/store"
)

var (
	loadCompanies string
	loadPeople    string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load research tables into the relational store",
	Long: `Upserts company and people tables into the configured store.
Companies are keyed on canonicalized name, people on profile URL, and
each person is linked to its company at load time. Reloading the same
tables is a no-op.

Example:
  msp-research load --companies companies_summarized.csv --people people.csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if loadCompanies == "" && loadPeople == "" {
			return eris.New("load: at least one of --companies or --people is required")
		}

		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return eris.Wrap(err, "load: init store")
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "load: migrate")
		}

		if loadCompanies != "" {
			if err := runLoadCompanies(ctx, st, loadCompanies); err != nil {
				return err
			}
		}
		if loadPeople != "" {
			if err := runLoadPeople(ctx, st, loadPeople); err != nil {
				return err
			}
		}
		return nil
	},
}

func runLoadCompanies(ctx context.Context, st store.Store, path string) error {
	rows, err := ingest.ReadCompanies(path)
	if err != nil {
		return eris.Wrap(err, "load: read companies")
	}

	res := dedupe.ByKey(rows, func(r model.CompanyRow) string {
		return identity.Canonicalize(r.Name)
	}, dedupe.First)

	loaded, err := st.UpsertCompanies(ctx, res.Rows())
	if err != nil {
		return eris.Wrap(err, "load: upsert companies")
	}

	zap.L().Info("load: companies loaded",
		zap.Int("seen", res.Total),
		zap.Int("loaded", loaded),
	)
	return nil
}

func runLoadPeople(ctx context.Context, st store.Store, path string) error {
	rows, err := ingest.ReadPeople(path)
	if err != nil {
		return eris.Wrap(err, "load: read people")
	}

	res := dedupe.ByKey(rows, func(r model.PersonRow) string {
		return strings.TrimSpace(r.ProfileURL)
	}, dedupe.First)

	loaded, unlinked, err := st.UpsertPeople(ctx, res.Rows())
	if err != nil {
		return eris.Wrap(err, "load: upsert people")
	}

	zap.L().Info("load: people loaded",
		zap.Int("seen", res.Total),
		zap.Int("loaded", loaded),
		zap.Int("unlinked", unlinked),
	)
	return nil
}

func init() {
	loadCmd.Flags().StringVar(&loadCompanies, "companies", "", "company table to load")
	loadCmd.Flags().StringVar(&loadPeople, "people", "", "people table to load")
	rootCmd.AddCommand(loadCmd)
}
