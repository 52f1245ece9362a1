package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/huntstack/drone-crawler/internal/navigate"
	"github.com/huntstack/drone-crawler/internal/routing"
	"github.com/huntstack/drone-crawler/internal/session"
)

// directFetchPause lets scripts settle before the direct path extracts.
const directFetchPause = 2 * time.Second

// ChromeFetcher implements PageFetcher on the shared browser engine. One
// session per fetch, closed on every exit path.
type ChromeFetcher struct {
	sessions *session.Factory
	nav      *navigate.Navigator
	policy   routing.Policy
	logger   *zap.Logger
}

// NewChromeFetcher wires the session factory, navigator, and crawl policy.
func NewChromeFetcher(sessions *session.Factory, nav *navigate.Navigator, policy routing.Policy, logger *zap.Logger) *ChromeFetcher {
	return &ChromeFetcher{
		sessions: sessions,
		nav:      nav,
		policy:   policy,
		logger:   logger,
	}
}

// FetchPage performs the full stealth crawl of one URL: isolated session,
// policy filter, escalating navigation, presence simulation, extraction.
func (f *ChromeFetcher) FetchPage(ctx context.Context, url string) (Page, error) {
	sess, err := f.sessions.NewSession(ctx)
	if err != nil {
		return Page{}, fmt.Errorf("create session: %w", err)
	}
	defer sess.Close()

	if err := routing.Attach(sess.Context(), f.policy, f.logger); err != nil {
		return Page{}, fmt.Errorf("attach route policy: %w", err)
	}

	if err := f.nav.Load(sess.Context(), url); err != nil {
		return Page{}, err
	}
	f.nav.Settle(sess.Context(), url)

	title, html, err := f.nav.Extract(sess.Context())
	if err != nil {
		return Page{}, err
	}

	return Page{
		URL:        url,
		Title:      title,
		HTML:       html,
		CapturedAt: time.Now().UTC(),
	}, nil
}

// FetchQuick performs the direct fetch: resource-type-only blocking,
// two-step navigation, a short settle, raw HTML back.
func (f *ChromeFetcher) FetchQuick(ctx context.Context, url string) (string, error) {
	sess, err := f.sessions.NewSession(ctx)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	defer sess.Close()

	if err := routing.Attach(sess.Context(), routing.FetchOnlyPolicy(), f.logger); err != nil {
		return "", fmt.Errorf("attach route policy: %w", err)
	}

	if err := f.nav.LoadQuick(sess.Context(), url); err != nil {
		return "", err
	}
	if err := chromedp.Run(sess.Context(), chromedp.Sleep(directFetchPause)); err != nil {
		return "", fmt.Errorf("settle: %w", err)
	}

	_, html, err := f.nav.Extract(sess.Context())
	if err != nil {
		return "", err
	}
	return html, nil
}
