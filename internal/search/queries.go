package search

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Templates holds the query templates for both collection modes.
// Placeholders {name} and {domain} are substituted per company; a
// template whose placeholder has no value is skipped.
type Templates struct {
	Company []string `yaml:"company"`
	People  []string `yaml:"people"`
}

// DefaultTemplates returns the built-in query set.
func DefaultTemplates() *Templates {
	return &Templates{
		Company: []string{
			`"{name}" managed services`,
			`"{name}" IT services`,
			`"{name}" cloud services`,
			`"{name}" company profile`,
			`site:{domain} about`,
			`site:{domain} services`,
			`site:{domain} solutions`,
		},
		People: []string{
			`site:linkedin.com/in "{name}"`,
			`site:linkedin.com/in "{domain}"`,
			`site:linkedin.com/in {name} -jobs -job -hiring`,
		},
	}
}

// LoadTemplates reads template overrides from a YAML file. The file has
// a top-level "queries" key with "company" and "people" lists; an empty
// list falls back to the defaults.
func LoadTemplates(path string) (*Templates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "search: read templates %s", path)
	}

	var wrapper struct {
		Queries Templates `yaml:"queries"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "search: parse templates")
	}

	t := wrapper.Queries
	defaults := DefaultTemplates()
	if len(t.Company) == 0 {
		t.Company = defaults.Company
	}
	if len(t.People) == 0 {
		t.People = defaults.People
	}
	return &t, nil
}

// expand substitutes name/domain into the templates, drops templates
// with missing values, dedupes, and caps the list.
func expand(templates []string, name, domain string, limit int) []string {
	seen := make(map[string]struct{}, len(templates))
	var out []string
	for _, tmpl := range templates {
		if strings.Contains(tmpl, "{name}") && name == "" {
			continue
		}
		if strings.Contains(tmpl, "{domain}") && domain == "" {
			continue
		}
		q := strings.ReplaceAll(tmpl, "{name}", name)
		q = strings.ReplaceAll(q, "{domain}", domain)
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
