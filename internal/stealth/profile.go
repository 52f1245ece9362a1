// Package stealth generates randomized, internally consistent browser
// identities for crawl sessions.
package stealth

import (
	"math/rand/v2"
	"net/http"
	"strings"
)

// Viewport is a browser window dimension pair.
type Viewport struct {
	Width  int64
	Height int64
}

// Profile bundles the identity signals presented to a target site. A fresh
// profile is generated for every session and never reused, so fingerprints
// do not correlate across contexts.
type Profile struct {
	UserAgent  string
	Viewport   Viewport
	Locale     string
	TimezoneID string
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

var viewports = []Viewport{
	{Width: 1920, Height: 1080},
	{Width: 1536, Height: 864},
	{Width: 1440, Height: 900},
	{Width: 1366, Height: 768},
}

var timezones = []string{
	"America/New_York",
	"America/Los_Angeles",
	"Europe/London",
}

// NewProfile samples a user agent, viewport, and timezone from the fixed
// candidate sets. Locale is fixed. Pure generation; it cannot fail.
func NewProfile() Profile {
	return Profile{
		UserAgent:  userAgents[rand.IntN(len(userAgents))],
		Viewport:   viewports[rand.IntN(len(viewports))],
		Locale:     "en-US",
		TimezoneID: timezones[rand.IntN(len(timezones))],
	}
}

// Headers returns the realistic request headers for this identity. The
// client-hint platform is derived from the sampled user agent so the
// profile stays consistent under header inspection.
func (p Profile) Headers() http.Header {
	h := http.Header{}
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	h.Set("Sec-Ch-Ua", `"Not_A Brand";v="8", "Chromium";v="120", "Google Chrome";v="120"`)
	h.Set("Sec-Ch-Ua-Mobile", "?0")
	h.Set("Sec-Ch-Ua-Platform", p.platformHint())
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "none")
	h.Set("Sec-Fetch-User", "?1")
	h.Set("Upgrade-Insecure-Requests", "1")
	return h
}

func (p Profile) platformHint() string {
	switch {
	case strings.Contains(p.UserAgent, "Macintosh"):
		return `"macOS"`
	case strings.Contains(p.UserAgent, "X11; Linux"):
		return `"Linux"`
	default:
		return `"Windows"`
	}
}
