package search

import (
	"regexp"
	"strings"

	"github.com/sells-group/msp-research-cli/internal/model"
)

// profilePattern matches public LinkedIn member profile URLs.
var profilePattern = regexp.MustCompile(`(?i)^https?://(?:www\.)?linkedin\.com/in/[^/?#]+`)

// excludePattern matches LinkedIn paths that are not member profiles.
var excludePattern = regexp.MustCompile(`(?i)/pub/|/jobs/|/posts/|/events/|/learning/|/pulse/|/company/|/school/`)

// isProfileURL reports whether a URL has the member-profile shape.
func isProfileURL(url string) bool {
	if url == "" || excludePattern.MatchString(url) {
		return false
	}
	return profilePattern.MatchString(url)
}

// likelyEmployee reports whether the company name appears in the
// result's combined title and snippet, case-insensitively. Search
// results for a profile query often surface unrelated people; this is
// the cheap heuristic that keeps only plausible employees.
func likelyEmployee(item model.Evidence, company string) bool {
	if company == "" {
		return false
	}
	blob := strings.ToLower(item.Title + " " + item.Snippet)
	return strings.Contains(blob, strings.ToLower(company))
}
