package crawler

import (
	"net/url"
	"time"
)

// Target is one URL to crawl plus an opaque intent label. Immutable once
// enqueued; the intent is forwarded unchanged to the payload and never
// affects crawl behavior.
type Target struct {
	URL    string
	Intent string
}

// Status is the terminal state of one target.
type Status string

// Status values. Every target reaches exactly one of these; outcomes are
// not retried automatically across batches.
const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// SkipReason explains a Skipped outcome.
type SkipReason string

// Skip reasons.
const (
	SkipBlacklisted SkipReason = "blacklisted"
	SkipNotFound    SkipReason = "not_found"
	SkipTooThin     SkipReason = "too_thin"
)

// Page is the raw capture returned by a fetcher: the extracted title and
// serialized DOM of a loaded page.
type Page struct {
	URL        string
	Title      string
	HTML       string
	CapturedAt time.Time
}

// Outcome is the terminal result of one target.
type Outcome struct {
	Target       Target
	Status       Status
	Reason       SkipReason
	Err          error
	Title        string
	HTML         string
	CapturedAt   time.Time
	SourceDomain string
}

func successOutcome(target Target, page Page) Outcome {
	return Outcome{
		Target:       target,
		Status:       StatusSuccess,
		Title:        page.Title,
		HTML:         page.HTML,
		CapturedAt:   page.CapturedAt,
		SourceDomain: hostOf(page.URL),
	}
}

func skippedOutcome(target Target, reason SkipReason) Outcome {
	return Outcome{Target: target, Status: StatusSkipped, Reason: reason}
}

func failedOutcome(target Target, err error) Outcome {
	return Outcome{Target: target, Status: StatusFailed, Err: err}
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}
