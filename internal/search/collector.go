// Package search collects web evidence for companies via the
// cache-then-provider path, with URL dedup, bounded accumulation, and a
// politeness delay between provider calls.
package search

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/msp-research-cli/internal/cache"
	"github.com/sells-group/msp-research-cli/internal/identity"
	"github.com/sells-group/msp-research-cli/internal/model"
	"github.com/sells-group/msp-research-cli/pkg/cse"
)

const (
	defaultPerQuery        = 5
	defaultCompanyQueryCap = 6
	defaultPeopleQueryCap  = 3
)

// Options configures a Collector.
type Options struct {
	// Provider is the evidence provider; nil means no credentials are
	// configured and every uncached query yields no results.
	Provider cse.Client
	Cache    cache.Cache
	// Pause is the politeness delay between provider calls. Zero
	// disables throttling (tests).
	Pause time.Duration
	// PerQuery bounds how many raw results of a single query are
	// considered in company mode.
	PerQuery        int
	CompanyQueryCap int
	PeopleQueryCap  int
	Templates       *Templates
}

// Collector fetches, filters, and bounds evidence for one company at a
// time. Collection never fails: provider errors degrade to empty
// results.
type Collector struct {
	provider        cse.Client
	cache           cache.Cache
	limiter         *rate.Limiter
	perQuery        int
	companyQueryCap int
	peopleQueryCap  int
	templates       *Templates
}

// New builds a Collector, applying defaults for unset options.
func New(opts Options) *Collector {
	c := &Collector{
		provider:        opts.Provider,
		cache:           opts.Cache,
		perQuery:        opts.PerQuery,
		companyQueryCap: opts.CompanyQueryCap,
		peopleQueryCap:  opts.PeopleQueryCap,
		templates:       opts.Templates,
	}
	if c.cache == nil {
		c.cache = cache.NewMemory()
	}
	if c.perQuery <= 0 {
		c.perQuery = defaultPerQuery
	}
	if c.companyQueryCap <= 0 {
		c.companyQueryCap = defaultCompanyQueryCap
	}
	if c.peopleQueryCap <= 0 {
		c.peopleQueryCap = defaultPeopleQueryCap
	}
	if c.templates == nil {
		c.templates = DefaultTemplates()
	}
	// rate.Every(0) is Inf, so a zero pause never blocks.
	c.limiter = rate.NewLimiter(rate.Every(opts.Pause), 1)
	return c
}

// CollectCompany gathers general evidence about a company: name-based
// and domain-based queries, any non-empty URL accepted, deduplicated,
// at most maxItems.
func (c *Collector) CollectCompany(ctx context.Context, name, website string, maxItems int) []model.Evidence {
	name = trimQuotes(name)
	queries := expand(c.templates.Company, name, identity.Domain(website), c.companyQueryCap)
	return c.collect(ctx, queries, maxItems, c.perQuery, func(item model.Evidence) bool {
		return item.URL != ""
	})
}

// CollectPeople gathers public profile evidence for likely employees:
// profile-shaped URLs only, company name required in title+snippet.
func (c *Collector) CollectPeople(ctx context.Context, name, website string, maxItems int) []model.Evidence {
	name = trimQuotes(name)
	queries := expand(c.templates.People, name, identity.Domain(website), c.peopleQueryCap)
	return c.collect(ctx, queries, maxItems, 0, func(item model.Evidence) bool {
		return isProfileURL(item.URL) && likelyEmployee(item, name)
	})
}

// collect runs the shared query loop: per query fetch via cache or
// provider, consider at most perQuery raw results (0 = all), accept by
// filter, dedupe by exact URL (first occurrence wins), stop at
// maxItems. Remaining queries are skipped once the cap is reached.
func (c *Collector) collect(ctx context.Context, queries []string, maxItems, perQuery int, accept func(model.Evidence) bool) []model.Evidence {
	if maxItems <= 0 {
		return nil
	}

	var out []model.Evidence
	seen := make(map[string]struct{})

	for _, query := range queries {
		if len(out) >= maxItems {
			break
		}
		for i, item := range c.fetch(ctx, query) {
			if perQuery > 0 && i >= perQuery {
				break
			}
			if !accept(item) {
				continue
			}
			if _, dup := seen[item.URL]; dup {
				continue
			}
			seen[item.URL] = struct{}{}
			out = append(out, item)
			if len(out) >= maxItems {
				break
			}
		}
	}
	return out
}

// fetch returns the evidence for one query, consulting the cache first.
// Only results from a consulted provider are written back, empty
// included, so known-empty queries are not re-fetched; a missing
// provider caches nothing, leaving the query fetchable once credentials
// exist. Provider errors are absorbed as empty.
func (c *Collector) fetch(ctx context.Context, query string) []model.Evidence {
	key := cache.Key(query)
	if items, ok := c.cache.Get(key); ok {
		return items
	}
	if c.provider == nil {
		return nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		// Caller-level interrupt: stop at this iteration boundary.
		return nil
	}
	results, err := c.provider.Search(ctx, query)
	if err != nil {
		zap.L().Warn("search: provider failed, treating as no results",
			zap.String("query", query),
			zap.Error(err),
		)
		results = nil
	}
	items := make([]model.Evidence, 0, len(results))
	for _, r := range results {
		items = append(items, model.Evidence{
			URL:         r.URL,
			Title:       r.Title,
			Snippet:     r.Snippet,
			SourceQuery: query,
		})
	}

	c.cache.Put(key, items)
	return items
}

func trimQuotes(name string) string {
	return strings.Trim(strings.TrimSpace(name), `"'`)
}
