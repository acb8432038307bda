// Package summarize turns collected evidence into a bounded company
// description. Summarization failure is data, not an error: every
// outcome is a string that ends up in the company record.
package summarize

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/sells-group/msp-research-cli/internal/model"
	"github.com/sells-group/msp-research-cli/pkg/anthropic"
)

const (
	// SentinelNoCredential is written when no summarizer credential is
	// configured.
	SentinelNoCredential = "Missing summarizer credential; cannot summarize."

	// sentinelNoSummary is written when the provider answers with no
	// usable text.
	sentinelNoSummary = "No summary generated."

	maxSourceItems = 5
	titleBudget    = 160
	snippetBudget  = 300

	systemPrompt = "You are a precise research assistant. Summarize only from given evidence. " +
		"Include focus areas, core services, notable technology/partner ecosystems (e.g., Azure/AWS/GCP), " +
		"and typical customer segments/regions. Keep it concise (120-180 words)."
)

// Summarizer produces company descriptions via the Anthropic API.
type Summarizer struct {
	client    anthropic.Client // nil when no credential is configured
	model     string
	maxTokens int64
}

// New builds a Summarizer. A nil client is valid and yields the
// no-credential sentinel for every call.
func New(client anthropic.Client, model string, maxTokens int64) *Summarizer {
	if maxTokens <= 0 {
		maxTokens = 300
	}
	return &Summarizer{client: client, model: model, maxTokens: maxTokens}
}

type promptItem struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

type promptPayload struct {
	Company  string       `json:"company"`
	Evidence []promptItem `json:"evidence"`
}

// Summarize builds one request from the top evidence items and returns
// the provider's text, or a sentinel describing why no summary exists.
// The evidence order is the collector's; no re-ranking happens here.
func (s *Summarizer) Summarize(ctx context.Context, company string, evidence []model.Evidence) string {
	if s.client == nil {
		return SentinelNoCredential
	}

	items := make([]promptItem, 0, maxSourceItems)
	for _, ev := range evidence {
		if len(items) >= maxSourceItems {
			break
		}
		items = append(items, promptItem{
			Title:   truncate(ev.Title, titleBudget),
			Snippet: truncate(ev.Snippet, snippetBudget),
			URL:     ev.URL,
		})
	}

	payload, err := json.Marshal(promptPayload{Company: company, Evidence: items})
	if err != nil {
		return "Summarization failed: " + err.Error()
	}

	temp := 0.2
	resp, err := s.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       s.model,
		MaxTokens:   s.maxTokens,
		System:      systemPrompt,
		Messages:    []anthropic.Message{{Role: "user", Content: string(payload)}},
		Temperature: &temp,
	})
	if err != nil {
		zap.L().Warn("summarize: provider call failed",
			zap.String("company", company),
			zap.Error(err),
		)
		return "Summarization failed: " + err.Error()
	}

	text := resp.Text()
	if text == "" {
		return sentinelNoSummary
	}
	return text
}

// truncate bounds s to limit characters without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
