package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/msp-research-cli/internal/ingest"
	"github.com/sells-group/msp-research-cli/internal/pipeline"
)

var (
	summarizeInput  string
	summarizeOutput string
	summarizeLimit  int
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Collect web evidence and summarize each company",
	Long: `Reads a company table (.csv or .xlsx), gathers bounded search
evidence per company, produces a grounded summary, and writes the
enriched table.

Example:
  msp-research summarize --input companies.csv --output companies_summarized.csv`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		rows, err := ingest.ReadCompanies(summarizeInput)
		if err != nil {
			return eris.Wrap(err, "summarize: read input")
		}
		zap.L().Info("summarize: input parsed", zap.Int("rows", len(rows)))

		if summarizeLimit > 0 && summarizeLimit < len(rows) {
			rows = rows[:summarizeLimit]
		}

		collector, err := newCollector(cfg.Search.CacheDir)
		if err != nil {
			return eris.Wrap(err, "summarize: init collector")
		}

		research := pipeline.NewResearch(collector, newSummarizer(), cfg.Search.MaxItems)
		out, skipped, err := research.Run(ctx, rows)
		if err != nil {
			return eris.Wrap(err, "summarize: run")
		}

		if err := ingest.WriteCompanies(summarizeOutput, out); err != nil {
			return eris.Wrap(err, "summarize: write output")
		}

		zap.L().Info("summarize: done",
			zap.Int("written", len(out)),
			zap.Int("skipped", skipped),
			zap.String("output", summarizeOutput),
		)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizeInput, "input", "", "company table (.csv or .xlsx)")
	summarizeCmd.Flags().StringVar(&summarizeOutput, "output", "companies_summarized.csv", "output CSV path")
	summarizeCmd.Flags().IntVar(&summarizeLimit, "limit", 0, "process at most this many rows (0 = all)")
	summarizeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(summarizeCmd)
}
