package main

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/msp-research-cli/internal/dedupe"
	"github.com/sells-group/msp-research-cli/internal/identity"
	"github.com/sells-group/msp-research-cli/internal/ingest"
	"github.com/sells-group/msp-research-cli/internal/model"
)

var (
	dedupeInput  string
	dedupeOutput string
	dedupeKind   string
	dedupeKeep   string
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Remove duplicate rows by identity key",
	Long: `Deduplicates a table on its identity key: companies by
canonicalized name, people by profile URL. The keep policy decides
which duplicate survives.

Example:
  msp-research dedupe --input people.csv --output people_unique.csv --kind people --keep first`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		policy := dedupe.Policy(dedupeKeep)
		if !policy.Valid() {
			return eris.Errorf("dedupe: invalid keep policy %q (want first or last)", dedupeKeep)
		}

		var total, unique int
		switch dedupeKind {
		case "companies":
			rows, err := ingest.ReadCompanies(dedupeInput)
			if err != nil {
				return eris.Wrap(err, "dedupe: read input")
			}
			res := dedupe.ByKey(rows, func(r model.CompanyRow) string {
				return identity.Canonicalize(r.Name)
			}, policy)
			if err := ingest.WriteCompanies(dedupeOutput, res.Rows()); err != nil {
				return eris.Wrap(err, "dedupe: write output")
			}
			total, unique = res.Total, len(res.Keys)
		case "people":
			rows, err := ingest.ReadPeople(dedupeInput)
			if err != nil {
				return eris.Wrap(err, "dedupe: read input")
			}
			res := dedupe.ByKey(rows, func(r model.PersonRow) string {
				return strings.TrimSpace(r.ProfileURL)
			}, policy)
			if err := ingest.WritePeople(dedupeOutput, res.Rows()); err != nil {
				return eris.Wrap(err, "dedupe: write output")
			}
			total, unique = res.Total, len(res.Keys)
		default:
			return eris.Errorf("dedupe: invalid kind %q (want companies or people)", dedupeKind)
		}

		zap.L().Info("dedupe: done",
			zap.Int("total", total),
			zap.Int("unique", unique),
			zap.String("output", dedupeOutput),
		)
		return nil
	},
}

func init() {
	dedupeCmd.Flags().StringVar(&dedupeInput, "input", "", "input table (.csv or .xlsx)")
	dedupeCmd.Flags().StringVar(&dedupeOutput, "output", "", "output CSV path")
	dedupeCmd.Flags().StringVar(&dedupeKind, "kind", "people", "table kind: companies or people")
	dedupeCmd.Flags().StringVar(&dedupeKeep, "keep", "first", "which duplicate to keep: first or last")
	dedupeCmd.MarkFlagRequired("input")
	dedupeCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(dedupeCmd)
}
