package crawler

import "strings"

// Blacklist is a static substring match against target URLs. Known-dead
// domains are skipped before any network call is made.
type Blacklist struct {
	substrings []string
}

// NewBlacklist builds a matcher from the configured substrings. Empty
// entries are dropped; matching is case-insensitive.
func NewBlacklist(substrings []string) *Blacklist {
	cleaned := make([]string, 0, len(substrings))
	for _, s := range substrings {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return &Blacklist{substrings: cleaned}
}

// Matches reports whether the URL contains any blacklisted substring.
func (b *Blacklist) Matches(rawURL string) bool {
	if b == nil {
		return false
	}
	lower := strings.ToLower(rawURL)
	for _, s := range b.substrings {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
