// Package guard rejects error pages and under-loaded shell pages before
// they are transmitted downstream.
package guard

import "strings"

// MinContentBytes is the smallest HTML size accepted. Loading shells and
// SPA placeholders are indistinguishable from genuine empty pages except by
// size.
const MinContentBytes = 5000

// Reason explains why a page was rejected.
type Reason string

// Rejection reasons.
const (
	ReasonNotFound Reason = "not_found"
	ReasonTooThin  Reason = "too_thin"
)

// Verdict is the guard's decision for one extracted page.
type Verdict struct {
	OK     bool
	Reason Reason
}

var notFoundMarkers = []string{"Page Not Found", "404"}

// Check inspects the extracted title and HTML. A rejection is a skip, not
// an error: the navigation succeeded, the content just isn't worth sending.
func Check(title, html string) Verdict {
	for _, marker := range notFoundMarkers {
		if strings.Contains(title, marker) {
			return Verdict{Reason: ReasonNotFound}
		}
	}
	if len(html) < MinContentBytes {
		return Verdict{Reason: ReasonTooThin}
	}
	return Verdict{OK: true}
}
