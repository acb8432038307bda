// Package identity derives stable company identity keys from display
// names. Identity equivalence across the whole pipeline is defined by
// Canonicalize and nothing else: the deduplicator, the loader, and the
// people join all key on its output.
package identity

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

var domainPattern = regexp.MustCompile(`(?i)^https?://(?:www\.)?([^/]+)`)

// Canonicalize maps a raw display name to its identity key: leading and
// trailing whitespace stripped, Unicode case-folded, internal whitespace
// runs collapsed to a single ASCII space. It is total, deterministic,
// and idempotent. An empty result means "identity unknown".
func Canonicalize(raw string) string {
	folded := cases.Fold().String(raw)
	return strings.Join(strings.Fields(folded), " ")
}

// Domain extracts the host from a website URL, lowercased with any
// leading "www." stripped. Returns "" when the value is not an
// http(s) URL.
func Domain(website string) string {
	m := domainPattern.FindStringSubmatch(strings.TrimSpace(website))
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}
