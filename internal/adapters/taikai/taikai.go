// Package taikai extracts hackathon listings from taikai.network, which
// hydrates its pages through a Next.js __NEXT_DATA__ JSON blob.
package taikai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// ListingURL is the public hackathon index page.
const ListingURL = "https://taikai.network/hackathons"

// Fetcher is the single crawl primitive the adapter needs.
type Fetcher interface {
	FetchContent(ctx context.Context, rawURL string) (string, error)
}

// Event is one raw hackathon record as found in the hydration blob. The
// shape is site-defined and passed through untyped.
type Event map[string]any

// Adapter scrapes taikai listings through a stealth fetcher.
type Adapter struct {
	fetcher Fetcher
	logger  *zap.Logger
}

func New(fetcher Fetcher, logger *zap.Logger) *Adapter {
	return &Adapter{fetcher: fetcher, logger: logger}
}

// FetchEvents loads the listing page and walks the hydration blob. The
// blob's shape has changed across site deploys, so several known layouts
// are tried in order before giving up.
func (a *Adapter) FetchEvents(ctx context.Context) ([]Event, error) {
	html, err := a.fetcher.FetchContent(ctx, ListingURL)
	if err != nil {
		return nil, fmt.Errorf("fetch taikai listing: %w", err)
	}

	events, err := ParseEvents(html)
	if err != nil {
		return nil, err
	}
	a.logger.Info("TAIKAI scrape complete", zap.Int("count", len(events)))
	return events, nil
}

// ParseEvents extracts hackathon records from a taikai listing page.
func ParseEvents(html string) ([]Event, error) {
	pageProps, err := nextDataPageProps(html)
	if err != nil {
		return nil, err
	}

	if events := asEvents(pageProps["challenges"]); len(events) > 0 {
		return events, nil
	}
	if state, ok := pageProps["initialState"].(map[string]any); ok {
		if challenges, ok := state["challenges"].(map[string]any); ok {
			if events := asEvents(challenges["list"]); len(events) > 0 {
				return events, nil
			}
		}
	}
	if events := dehydratedEvents(pageProps); len(events) > 0 {
		return events, nil
	}
	if events := apolloEvents(pageProps); len(events) > 0 {
		return events, nil
	}
	return nil, nil
}

// nextDataPageProps locates the __NEXT_DATA__ script and returns
// props.pageProps.
func nextDataPageProps(html string) (map[string]any, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse listing html: %w", err)
	}
	blob := doc.Find(`script#__NEXT_DATA__`).First().Text()
	if blob == "" {
		return nil, fmt.Errorf("no __NEXT_DATA__ script in page")
	}

	var data struct {
		Props struct {
			PageProps map[string]any `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		return nil, fmt.Errorf("decode __NEXT_DATA__: %w", err)
	}
	if data.Props.PageProps == nil {
		return map[string]any{}, nil
	}
	return data.Props.PageProps, nil
}

// dehydratedEvents searches React Query's dehydratedState for a query
// whose data carries the challenge list.
func dehydratedEvents(pageProps map[string]any) []Event {
	dehydrated, ok := pageProps["dehydratedState"].(map[string]any)
	if !ok {
		return nil
	}
	queries, ok := dehydrated["queries"].([]any)
	if !ok {
		return nil
	}
	for _, q := range queries {
		query, ok := q.(map[string]any)
		if !ok {
			continue
		}
		state, ok := query["state"].(map[string]any)
		if !ok {
			continue
		}
		switch data := state["data"].(type) {
		case []any:
			if events := asEvents(data); len(events) > 0 {
				return events
			}
		case map[string]any:
			if events := asEvents(data["items"]); len(events) > 0 {
				return events
			}
			if events := asEvents(data["challenges"]); len(events) > 0 {
				return events
			}
		}
	}
	return nil
}

// apolloEvents pulls full Challenge objects out of a normalized Apollo
// cache. Entries missing prize or description fields are bare references,
// not records.
func apolloEvents(pageProps map[string]any) []Event {
	apollo, ok := pageProps["apolloState"].(map[string]any)
	if !ok {
		return nil
	}
	var events []Event
	for key, raw := range apollo {
		if !strings.HasPrefix(key, "Challenge:") {
			continue
		}
		value, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := value["name"]; !ok {
			continue
		}
		if _, ok := value["slug"]; !ok {
			continue
		}
		_, hasPrize := value["prize"]
		_, hasDesc := value["shortDescription"]
		if hasPrize || hasDesc {
			events = append(events, Event(value))
		}
	}
	return events
}

func asEvents(raw any) []Event {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	events := make([]Event, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			events = append(events, Event(m))
		}
	}
	return events
}

// EventURL builds the canonical event page URL from an event's
// organization and slug, falling back to the listing page.
func EventURL(event Event) string {
	slug, _ := event["slug"].(string)
	if slug == "" {
		return ListingURL
	}
	orgSlug := "taikai"
	if org, ok := event["organization"].(map[string]any); ok {
		if s, _ := org["slug"].(string); s != "" {
			orgSlug = s
		}
	}
	return fmt.Sprintf("https://taikai.network/%s/hackathons/%s", orgSlug, slug)
}
