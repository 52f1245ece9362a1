// Package routing decides, per intercepted request, whether a session lets
// the request through or aborts it.
package routing

import (
	"strings"

	"github.com/chromedp/cdproto/network"
)

// Decision is the outcome of evaluating one request against a Policy.
type Decision int

// Decision values.
const (
	Allow Decision = iota
	Block
)

// Policy is an immutable description of which requests a session aborts.
// Resource-type blocks are unconditional; a blocked-domain match is
// overridden by a safe-domain match. Several target sites proxy essential
// data through hosts that otherwise look like tracking infrastructure, so
// the override ordering must not change.
type Policy struct {
	BlockedResourceTypes    []network.ResourceType
	BlockedDomainSubstrings []string
	SafeDomainSubstrings    []string
}

// DefaultPolicy returns the crawl policy: heavy resource classes and known
// tracking vendors are aborted, mission-critical API hosts are allowlisted.
func DefaultPolicy() Policy {
	return Policy{
		BlockedResourceTypes: []network.ResourceType{
			network.ResourceTypeImage,
			network.ResourceTypeMedia,
			network.ResourceTypeFont,
		},
		BlockedDomainSubstrings: []string{
			"google-analytics.com",
			"googletagmanager.com",
			"facebook.net",
			"clarity.ms",
			"hotjar.com",
			"linkedin.com",
			"doubleclick.net",
			"quantserve.com",
			"scorecardresearch.com",
			"intercom.io",
		},
		SafeDomainSubstrings: []string{
			"api.",
			"graphql",
			"cdn-cgi",
			"dorahacks.io",
			"hackquest.io",
			"superteam.fun",
			"taikai.network",
		},
	}
}

// FetchOnlyPolicy returns the simpler resource-type-only policy used by the
// direct single-URL fetch path. Stylesheets are also dropped there for speed.
func FetchOnlyPolicy() Policy {
	return Policy{
		BlockedResourceTypes: []network.ResourceType{
			network.ResourceTypeImage,
			network.ResourceTypeMedia,
			network.ResourceTypeFont,
			network.ResourceTypeStylesheet,
		},
	}
}

// Decide evaluates one request. Resource-type block first and
// unconditional, then blocked-domain substrings unless a safe-domain
// substring also matches.
func (p Policy) Decide(resourceType network.ResourceType, rawURL string) Decision {
	for _, rt := range p.BlockedResourceTypes {
		if resourceType == rt {
			return Block
		}
	}

	lower := strings.ToLower(rawURL)
	for _, blocked := range p.BlockedDomainSubstrings {
		if !strings.Contains(lower, blocked) {
			continue
		}
		for _, safe := range p.SafeDomainSubstrings {
			if strings.Contains(lower, safe) {
				return Allow
			}
		}
		return Block
	}
	return Allow
}
