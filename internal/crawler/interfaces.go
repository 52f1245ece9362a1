package crawler

import (
	"context"

	"github.com/huntstack/drone-crawler/internal/ingest"
)

// PageFetcher runs the browser half of the single-target pipeline: open an
// isolated session, attach the request policy, walk the navigation ladder,
// simulate presence, and extract the page. Every session it opens is closed
// before it returns, on success and on failure alike.
type PageFetcher interface {
	// FetchPage performs the full stealth crawl of one URL.
	FetchPage(ctx context.Context, url string) (Page, error)
	// FetchQuick is the direct single-URL path: simpler block policy,
	// two-step navigation, raw HTML back.
	FetchQuick(ctx context.Context, url string) (string, error)
}

// Deliverer hands a validated payload to downstream processing through
// exactly one delivery path.
type Deliverer interface {
	Deliver(ctx context.Context, payload ingest.Payload) error
}
