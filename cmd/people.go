package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/msp-research-cli/internal/ingest"
	"github.com/sells-group/msp-research-cli/internal/pipeline"
)

var (
	peopleInput      string
	peopleOutput     string
	peopleLimit      int
	peoplePerCompany int
)

var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "Discover public employee profiles for each company",
	Long: `Reads a company table (.csv or .xlsx), searches for public
LinkedIn profile pages tied to each company, and writes one row per
discovered profile.

Example:
  msp-research people --input companies.csv --output people.csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		rows, err := ingest.ReadCompanies(peopleInput)
		if err != nil {
			return eris.Wrap(err, "people: read input")
		}
		zap.L().Info("people: input parsed", zap.Int("rows", len(rows)))

		if peopleLimit > 0 && peopleLimit < len(rows) {
			rows = rows[:peopleLimit]
		}

		collector, err := newCollector(cfg.People.CacheDir)
		if err != nil {
			return eris.Wrap(err, "people: init collector")
		}

		perCompany := peoplePerCompany
		if perCompany <= 0 {
			perCompany = cfg.People.PerCompany
		}

		discovery := pipeline.NewDiscovery(collector, perCompany)
		out, skipped, err := discovery.Run(ctx, rows)
		if err != nil {
			return eris.Wrap(err, "people: run")
		}

		if err := ingest.WritePeople(peopleOutput, out); err != nil {
			return eris.Wrap(err, "people: write output")
		}

		zap.L().Info("people: done",
			zap.Int("profiles", len(out)),
			zap.Int("skipped", skipped),
			zap.String("output", peopleOutput),
		)
		return nil
	},
}

func init() {
	peopleCmd.Flags().StringVar(&peopleInput, "input", "", "company table (.csv or .xlsx)")
	peopleCmd.Flags().StringVar(&peopleOutput, "output", "people.csv", "output CSV path")
	peopleCmd.Flags().IntVar(&peopleLimit, "limit", 0, "process at most this many rows (0 = all)")
	peopleCmd.Flags().IntVar(&peoplePerCompany, "per-company", 0, "max profiles per company (default from config)")
	peopleCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(peopleCmd)
}
