// Package mlh pulls the Major League Hacking season event list. MLH has
// no public API; the season page embeds its data in a Next.js blob, and a
// small static seed list covers the case where the page yields nothing.
package mlh

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// SeasonURL is the event listing for the current season.
const SeasonURL = "https://mlh.io/seasons/2026/events"

type Fetcher interface {
	FetchContent(ctx context.Context, rawURL string) (string, error)
}

// Event is one raw MLH event record.
type Event map[string]any

type Adapter struct {
	fetcher Fetcher
	logger  *zap.Logger
}

func New(fetcher Fetcher, logger *zap.Logger) *Adapter {
	return &Adapter{fetcher: fetcher, logger: logger}
}

// FetchEvents loads the season page and extracts its event list. When the
// page cannot be fetched or carries no recognizable data, the static seed
// list is returned so downstream consumers always have something to work
// with.
func (a *Adapter) FetchEvents(ctx context.Context) []Event {
	html, err := a.fetcher.FetchContent(ctx, SeasonURL)
	if err != nil {
		a.logger.Warn("MLH season page unavailable, using static event data", zap.Error(err))
		return StaticEvents()
	}

	events, err := ParseEvents(html)
	if err != nil || len(events) == 0 {
		a.logger.Info("MLH page carried no event data, using static event data",
			zap.Error(err),
		)
		return StaticEvents()
	}

	a.logger.Info("MLH scrape complete", zap.Int("count", len(events)))
	return events
}

// ParseEvents extracts the event list from a season page's Next.js blob.
func ParseEvents(html string) ([]Event, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse season html: %w", err)
	}
	blob := doc.Find(`script#__NEXT_DATA__`).First().Text()
	if blob == "" {
		return nil, fmt.Errorf("no __NEXT_DATA__ script in page")
	}

	var data struct {
		Props struct {
			PageProps struct {
				Events []map[string]any `json:"events"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		return nil, fmt.Errorf("decode __NEXT_DATA__: %w", err)
	}

	events := make([]Event, 0, len(data.Props.PageProps.Events))
	for _, e := range data.Props.PageProps.Events {
		events = append(events, Event(e))
	}
	return events, nil
}

// StaticEvents is the fallback seed list of flagship season events.
func StaticEvents() []Event {
	return []Event{
		{"name": "HackMIT", "url": "https://hackmit.org/", "location": "Cambridge, MA", "is_online": false},
		{"name": "HackGT", "url": "https://hackgt.org/", "location": "Atlanta, GA", "is_online": false},
		{"name": "PennApps", "url": "https://pennapps.com/", "location": "Philadelphia, PA", "is_online": false},
		{"name": "TreeHacks", "url": "https://www.treehacks.com/", "location": "Stanford, CA", "is_online": false},
		{"name": "HackNYU", "url": "https://hacknyu.org/", "location": "New York, NY", "is_online": false},
		{"name": "Local Hack Day", "url": "https://localhackday.mlh.io/", "location": "Various Locations", "is_online": true},
		{"name": "Global Hack Week", "url": "https://ghw.mlh.io/", "location": "Online", "is_online": true},
	}
}
