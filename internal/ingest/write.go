package ingest

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/msp-research-cli/internal/model"
)

var companyHeader = []string{"name", "website", "linkedin", "phone", "address", "summary", "top_urls"}

var peopleHeader = []string{"company", "website", "profile_url", "title", "snippet", "source_query", "discovered_at"}

// WriteCompanies writes the company output table. The header is always
// written so the file stays readable by ReadCompanies even when empty.
func WriteCompanies(path string, rows []model.CompanyRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{r.Name, r.Website, r.LinkedIn, r.Phone, r.Address, r.Summary, r.TopURLs})
	}
	return writeCSV(path, companyHeader, records)
}

// WritePeople writes the people output table.
func WritePeople(path string, rows []model.PersonRow) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		discovered := ""
		if !r.DiscoveredAt.IsZero() {
			discovered = r.DiscoveredAt.UTC().Format(time.RFC3339)
		}
		records = append(records, []string{r.Company, r.Website, r.ProfileURL, r.Title, r.Snippet, r.SourceQuery, discovered})
	}
	return writeCSV(path, peopleHeader, records)
}

func writeCSV(path string, header []string, records [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "ingest: create dir %s", dir)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "ingest: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return eris.Wrapf(err, "ingest: write header %s", path)
	}
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return eris.Wrapf(err, "ingest: write row %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "ingest: flush %s", path)
	}
	return f.Close()
}
