// Package pipeline orchestrates evidence collection, summarization,
// and profile discovery over a batch of companies. Batches run
// sequentially so the provider politeness delay and cache behave
// deterministically.
package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/msp-research-cli/internal/model"
	"github.com/sells-group/msp-research-cli/internal/search"
	"github.com/sells-group/msp-research-cli/internal/summarize"
)

const topURLCount = 5

// Research enriches company rows with an evidence-backed summary.
type Research struct {
	collector  *search.Collector
	summarizer *summarize.Summarizer
	maxItems   int
}

// NewResearch creates a Research pipeline. maxItems bounds the evidence
// gathered per company.
func NewResearch(collector *search.Collector, summarizer *summarize.Summarizer, maxItems int) *Research {
	if maxItems <= 0 {
		maxItems = 10
	}
	return &Research{collector: collector, summarizer: summarizer, maxItems: maxItems}
}

// Run processes each input row in order. Rows whose name is blank are
// skipped and counted; all other columns pass through unchanged.
func (r *Research) Run(ctx context.Context, rows []model.CompanyRow) ([]model.CompanyRow, int, error) {
	out := make([]model.CompanyRow, 0, len(rows))
	skipped := 0

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return out, skipped, err
		}
		if strings.TrimSpace(row.Name) == "" {
			skipped++
			continue
		}

		log := zap.L().With(zap.String("company", row.Name))
		log.Info("pipeline: researching company", zap.Int("index", i+1), zap.Int("of", len(rows)))

		evidence := r.collector.CollectCompany(ctx, row.Name, row.Website, r.maxItems)
		row.Summary = r.summarizer.Summarize(ctx, row.Name, evidence)
		row.TopURLs = topURLs(evidence)
		out = append(out, row)

		log.Info("pipeline: company done", zap.Int("evidence", len(evidence)))
	}
	return out, skipped, nil
}

// topURLs joins the first few evidence URLs for the output row.
func topURLs(evidence []model.Evidence) string {
	urls := make([]string, 0, topURLCount)
	for _, ev := range evidence {
		if len(urls) >= topURLCount {
			break
		}
		urls = append(urls, ev.URL)
	}
	return strings.Join(urls, "; ")
}
