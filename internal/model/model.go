// Package model defines the shared data types for the MSP research pipeline.
package model

import "time"

// Evidence is a single search result. Evidence lives only within a
// collection run; it is consumed into a company summary or a person row
// and never persisted directly.
type Evidence struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	SourceQuery string `json:"source_query,omitempty"`
}

// CompanyRow is the canonical shape of a company input or output row.
// Ingestion maps raw column names onto this shape once, at the boundary.
type CompanyRow struct {
	Name     string `json:"name"`
	Website  string `json:"website"`
	LinkedIn string `json:"linkedin"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Summary  string `json:"summary"`
	TopURLs  string `json:"top_urls"`
}

// PersonRow is the canonical shape of a discovered-profile row. Company
// holds the source-form company name; the identity key is derived at
// load time.
type PersonRow struct {
	Company      string    `json:"company"`
	Website      string    `json:"website"`
	ProfileURL   string    `json:"profile_url"`
	Title        string    `json:"title"`
	Snippet      string    `json:"snippet"`
	SourceQuery  string    `json:"source_query"`
	DiscoveredAt time.Time `json:"discovered_at"`
}

// Company is a persisted company record, unique on NameNorm.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	NameNorm  string    `json:"name_norm"`
	Website   string    `json:"website"`
	LinkedIn  string    `json:"linkedin"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Summary   string    `json:"summary"`
	TopURLs   string    `json:"top_urls"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Person is a persisted person record, unique on ProfileURL. CompanyID
// is empty when the owning company could not be resolved at load time;
// the link is resolved once and never re-resolved.
type Person struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"company_id,omitempty"`
	CompanyName  string    `json:"company_name"`
	ProfileURL   string    `json:"profile_url"`
	Title        string    `json:"title"`
	Snippet      string    `json:"snippet"`
	SourceQuery  string    `json:"source_query,omitempty"`
	DiscoveredAt time.Time `json:"discovered_at"`
}
