package pipeline

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/msp-research-cli/internal/model"
	"github.com/sells-group/msp-research-cli/internal/search"
)

// Discovery finds public employee profiles for a batch of companies.
type Discovery struct {
	collector  *search.Collector
	perCompany int
	now        func() time.Time
}

// NewDiscovery creates a Discovery pipeline. perCompany bounds the
// profiles kept per company.
func NewDiscovery(collector *search.Collector, perCompany int) *Discovery {
	if perCompany <= 0 {
		perCompany = 25
	}
	return &Discovery{
		collector:  collector,
		perCompany: perCompany,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run processes each input row in order, emitting one person row per
// accepted profile. Rows whose name is blank are skipped and counted.
func (d *Discovery) Run(ctx context.Context, rows []model.CompanyRow) ([]model.PersonRow, int, error) {
	var out []model.PersonRow
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
		log.Info("pipeline: discovering people", zap.Int("index", i+1), zap.Int("of", len(rows)))

		discovered := d.now()
		evidence := d.collector.CollectPeople(ctx, row.Name, row.Website, d.perCompany)
		for _, ev := range evidence {
			out = append(out, model.PersonRow{
				Company:      row.Name,
				Website:      row.Website,
				ProfileURL:   ev.URL,
				Title:        ev.Title,
				Snippet:      ev.Snippet,
				SourceQuery:  ev.SourceQuery,
				DiscoveredAt: discovered,
			})
		}

		log.Info("pipeline: company done", zap.Int("profiles", len(evidence)))
	}
	return out, skipped, nil
}
