// Package ingest delivers validated crawl payloads to the streaming
// backbone, falling back to direct in-process hand-off when the backbone is
// unreachable.
package ingest

import (
	"net/url"
	"time"
)

// MaxHTMLBytes caps the HTML carried on the wire record.
const MaxHTMLBytes = 200000

// AgentType identifies the crawler generation on every record.
const AgentType = "HunterDrone-V1"

// Payload is the wire record derived from one successful crawl. Built once,
// immutable, delivered through exactly one of the two paths.
type Payload struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	HTML      string `json:"html"`
	CrawledAt int64  `json:"crawled_at"`
	Source    string `json:"source"`
	Intent    string `json:"intent"`
	AgentType string `json:"agent_type"`
}

// NewPayload builds the record for a captured page, capping the HTML and
// stamping the source domain.
func NewPayload(pageURL, title, html, intent string, capturedAt time.Time) Payload {
	if len(html) > MaxHTMLBytes {
		html = html[:MaxHTMLBytes]
	}
	return Payload{
		URL:       pageURL,
		Title:     title,
		HTML:      html,
		CrawledAt: capturedAt.Unix(),
		Source:    extractDomain(pageURL),
		Intent:    intent,
		AgentType: AgentType,
	}
}

func extractDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}
