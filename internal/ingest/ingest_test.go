package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/msp-research-cli/internal/model"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCompanies_CanonicalHeader(t *testing.T) {
	path := writeTempCSV(t, "name,website,linkedin,phone,address,summary,top_urls\n"+
		"Acme IT,https://acme.example,https://linkedin.com/company/acme,555-0100,1 Main St,An MSP,https://acme.example/about\n")

	rows, err := ReadCompanies(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.CompanyRow{
		Name:     "Acme IT",
		Website:  "https://acme.example",
		LinkedIn: "https://linkedin.com/company/acme",
		Phone:    "555-0100",
		Address:  "1 Main St",
		Summary:  "An MSP",
		TopURLs:  "https://acme.example/about",
	}, rows[0])
}

func TestReadCompanies_AliasHeader(t *testing.T) {
	path := writeTempCSV(t, "Company Name,URL,Description,ignored\n"+
		"Acme IT,https://acme.example,An MSP,zzz\n")

	rows, err := ReadCompanies(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme IT", rows[0].Name)
	assert.Equal(t, "https://acme.example", rows[0].Website)
	assert.Equal(t, "An MSP", rows[0].Summary)
	// Unmapped columns ignored, missing optional columns empty.
	assert.Empty(t, rows[0].Phone)
}

func TestReadCompanies_RaggedRows(t *testing.T) {
	path := writeTempCSV(t, "name,website,phone\nAcme IT\n")

	rows, err := ReadCompanies(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme IT", rows[0].Name)
	assert.Empty(t, rows[0].Website)
}

func TestReadCompanies_MissingFile(t *testing.T) {
	_, err := ReadCompanies(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestReadCompanies_EmptyTable(t *testing.T) {
	path := writeTempCSV(t, "name,website\n")
	_, err := ReadCompanies(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data rows")
}

func TestReadPeople(t *testing.T) {
	path := writeTempCSV(t, "company,website,profile_url,title,snippet,query_used,crawled_at\n"+
		"Acme IT,https://acme.example,https://linkedin.com/in/ann,CTO at Acme,snippet text,q1,2026-08-01T10:00:00Z\n")

	rows, err := ReadPeople(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme IT", rows[0].Company)
	assert.Equal(t, "https://linkedin.com/in/ann", rows[0].ProfileURL)
	assert.Equal(t, "q1", rows[0].SourceQuery)
	assert.Equal(t, time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC), rows[0].DiscoveredAt)
}

func TestReadPeople_UnparseableTimestampIsZero(t *testing.T) {
	path := writeTempCSV(t, "company,profile_url,discovered_at\nAcme,https://linkedin.com/in/ann,yesterday\n")

	rows, err := ReadPeople(path)
	require.NoError(t, err)
	assert.True(t, rows[0].DiscoveredAt.IsZero())
}

func TestWriteReadCompanies_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "companies.csv")
	in := []model.CompanyRow{
		{Name: "Acme IT", Website: "https://acme.example", Summary: "line one\nline two"},
		{Name: "Beta LLC"},
	}
	require.NoError(t, WriteCompanies(path, in))

	out, err := ReadCompanies(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestWritePeople_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "people.csv")
	discovered := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	in := []model.PersonRow{
		{Company: "Acme IT", ProfileURL: "https://linkedin.com/in/ann", Title: "CTO", DiscoveredAt: discovered},
	}
	require.NoError(t, WritePeople(path, in))

	out, err := ReadPeople(path)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, in[0], out[0])
}

func TestWriteCompanies_EmptyKeepsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companies.csv")
	require.NoError(t, WriteCompanies(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name,website")

	_, err = ReadCompanies(path)
	require.Error(t, err) // header-only table still has no data rows
}

func TestReadCompanies_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "companies.xlsx")

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Companies")
	require.NoError(t, err)
	header := sheet.AddRow()
	for _, h := range []string{"Company Name", "Website"} {
		header.AddCell().Value = h
	}
	row := sheet.AddRow()
	row.AddCell().Value = "Acme IT"
	row.AddCell().Value = "https://acme.example"
	require.NoError(t, f.Save(path))

	rows, err := ReadCompanies(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme IT", rows[0].Name)
	assert.Equal(t, "https://acme.example", rows[0].Website)
}

func TestReadCompanies_CSVAndXLSXAgree(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "c.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name,website\nAcme IT,https://acme.example\n"), 0o644))

	xlsxPath := filepath.Join(dir, "c.xlsx")
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	h := sheet.AddRow()
	h.AddCell().Value = "name"
	h.AddCell().Value = "website"
	r := sheet.AddRow()
	r.AddCell().Value = "Acme IT"
	r.AddCell().Value = "https://acme.example"
	require.NoError(t, f.Save(xlsxPath))

	fromCSV, err := ReadCompanies(csvPath)
	require.NoError(t, err)
	fromXLSX, err := ReadCompanies(xlsxPath)
	require.NoError(t, err)
	assert.Equal(t, fromCSV, fromXLSX)
}
