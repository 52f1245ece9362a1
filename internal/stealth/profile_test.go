package stealth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProfileSamplesFromCandidateSets(t *testing.T) {
	for range 50 {
		p := NewProfile()
		require.Contains(t, userAgents, p.UserAgent)
		require.Contains(t, viewports, p.Viewport)
		require.Contains(t, timezones, p.TimezoneID)
		require.Equal(t, "en-US", p.Locale)
	}
}

func TestHeadersPlatformMatchesUserAgent(t *testing.T) {
	cases := []struct {
		ua       string
		platform string
	}{
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36", `"Windows"`},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15", `"macOS"`},
		{"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36", `"Linux"`},
	}
	for _, tc := range cases {
		p := Profile{UserAgent: tc.ua}
		require.Equal(t, tc.platform, p.Headers().Get("Sec-Ch-Ua-Platform"))
	}
}

func TestHeadersCarryNavigationHints(t *testing.T) {
	h := Profile{UserAgent: userAgents[0]}.Headers()
	require.Equal(t, "en-US,en;q=0.9", h.Get("Accept-Language"))
	require.Equal(t, "navigate", h.Get("Sec-Fetch-Mode"))
	require.Equal(t, "1", h.Get("Upgrade-Insecure-Requests"))
}

func TestOverrideScriptMasksKnownSignals(t *testing.T) {
	for _, signal := range []string{
		"webdriver",
		"plugins",
		"languages",
		"hardwareConcurrency",
		"deviceMemory",
		"permissions.query",
	} {
		require.Contains(t, OverrideScript, signal)
	}
}
