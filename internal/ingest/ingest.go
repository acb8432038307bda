// Package ingest maps raw tabular input onto the canonical row shapes.
// Column aliases are resolved once at the boundary so the rest of the
// pipeline only ever sees canonical fields. Unmapped columns are
// ignored; missing optional columns yield empty strings.
package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/msp-research-cli/internal/model"
)

// companyAliases maps accepted raw column names to canonical company
// fields. Several historical export formats are covered.
var companyAliases = map[string]string{
	"name":         "name",
	"company":      "name",
	"company name": "name",
	"website":      "website",
	"url":          "website",
	"web site":     "website",
	"linkedin":     "linkedin",
	"linkedin url": "linkedin",
	"phone":        "phone",
	"phone number": "phone",
	"address":      "address",
	"location":     "address",
	"summary":      "summary",
	"description":  "summary",
	"top_urls":     "top_urls",
	"top urls":     "top_urls",
	"evidence":     "top_urls",
}

// peopleAliases maps accepted raw column names to canonical person
// fields. "company" is the source-form company name, not the key.
var peopleAliases = map[string]string{
	"company":       "company",
	"company name":  "company",
	"name":          "company",
	"website":       "website",
	"profile_url":   "profile_url",
	"profile url":   "profile_url",
	"profile":       "profile_url",
	"title":         "title",
	"snippet":       "snippet",
	"source_query":  "source_query",
	"query":         "source_query",
	"query_used":    "source_query",
	"discovered_at": "discovered_at",
	"crawled_at":    "discovered_at",
}

// headerIndex maps canonical field names to column positions.
type headerIndex map[string]int

func indexHeader(header []string, aliases map[string]string) headerIndex {
	idx := make(headerIndex)
	for i, raw := range header {
		canonical, ok := aliases[strings.ToLower(strings.TrimSpace(raw))]
		if !ok {
			continue
		}
		if _, dup := idx[canonical]; dup {
			continue
		}
		idx[canonical] = i
	}
	return idx
}

func (h headerIndex) get(row []string, field string) string {
	i, ok := h[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ReadCompanies reads a company table from a .csv or .xlsx file.
// A missing file or a table with no data rows is an error: there is no
// meaningful partial result to continue with.
func ReadCompanies(path string) ([]model.CompanyRow, error) {
	header, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	idx := indexHeader(header, companyAliases)

	out := make([]model.CompanyRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.CompanyRow{
			Name:     idx.get(row, "name"),
			Website:  idx.get(row, "website"),
			LinkedIn: idx.get(row, "linkedin"),
			Phone:    idx.get(row, "phone"),
			Address:  idx.get(row, "address"),
			Summary:  idx.get(row, "summary"),
			TopURLs:  idx.get(row, "top_urls"),
		})
	}
	return out, nil
}

// ReadPeople reads a people table from a .csv or .xlsx file.
func ReadPeople(path string) ([]model.PersonRow, error) {
	header, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	idx := indexHeader(header, peopleAliases)

	out := make([]model.PersonRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.PersonRow{
			Company:      idx.get(row, "company"),
			Website:      idx.get(row, "website"),
			ProfileURL:   idx.get(row, "profile_url"),
			Title:        idx.get(row, "title"),
			Snippet:      idx.get(row, "snippet"),
			SourceQuery:  idx.get(row, "source_query"),
			DiscoveredAt: parseTime(idx.get(row, "discovered_at")),
		})
	}
	return out, nil
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// readTable returns the header row and all data rows of a CSV or XLSX
// file, erroring on a missing file or an empty table.
func readTable(path string) ([]string, [][]string, error) {
	var (
		records [][]string
		err     error
	)
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		records, err = readXLSX(path)
	} else {
		records, err = readCSV(path)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return nil, nil, eris.Errorf("ingest: no data rows in %s", path)
	}
	return records[0], records[1:], nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // allow variable fields
	reader.LazyQuotes = true

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: read %s", path)
		}
		records = append(records, record)
	}
	return records, nil
}
