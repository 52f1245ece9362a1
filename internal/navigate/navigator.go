// Package navigate implements the escalating-patience page-load strategy
// and the lightweight human-interaction simulation that follows it.
package navigate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/huntstack/drone-crawler/internal/metrics"
)

// ErrNavigationFailed is returned once every rung of the retry ladder has
// been exhausted for a target.
var ErrNavigationFailed = errors.New("navigation failed on all strategies")

// Timeouts and pacing for the load ladder and the interaction layer.
const (
	domReadyPatientTimeout = 90 * time.Second
	domReadyRetryTimeout   = 60 * time.Second
	commitTimeout          = 60 * time.Second

	quickDOMReadyTimeout = 60 * time.Second
	quickFullLoadTimeout = 30 * time.Second

	scrollCycles   = 3
	scrollDistance = 1500
	scrollPause    = 1500 * time.Millisecond
	hydrationPause = 2 * time.Second
	quietTimeout   = 10 * time.Second
)

// Navigator drives page loads on a session context.
type Navigator struct {
	logger *zap.Logger
}

// New returns a Navigator.
func New(logger *zap.Logger) *Navigator {
	return &Navigator{logger: logger}
}

type loadStep struct {
	name    string
	timeout time.Duration
	action  func(url string) chromedp.Action
}

func loadLadder() []loadStep {
	return []loadStep{
		{"dom_ready_patient", domReadyPatientTimeout, navigateDOMReady},
		{"dom_ready_retry", domReadyRetryTimeout, navigateDOMReady},
		{"commit_only", commitTimeout, navigateCommit},
	}
}

// Load runs the escalating ladder: DOM-ready with a long timeout, DOM-ready
// with a shorter one, then commit-only as the weakest last resort. Any rung
// succeeding means "loaded"; exhausting all three is a navigation failure.
func (n *Navigator) Load(sessionCtx context.Context, url string) error {
	var lastErr error
	for _, step := range loadLadder() {
		if err := n.runStep(sessionCtx, url, step); err != nil {
			n.logger.Debug("Load attempt failed, escalating patience",
				zap.String("url", url),
				zap.String("strategy", step.name),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrNavigationFailed, url, lastErr)
}

// LoadQuick is the two-step strategy for the direct fetch path: DOM-ready,
// then full-load on failure.
func (n *Navigator) LoadQuick(sessionCtx context.Context, url string) error {
	if err := n.runStep(sessionCtx, url, loadStep{"dom_ready", quickDOMReadyTimeout, navigateDOMReady}); err != nil {
		n.logger.Warn("Direct fetch timeout, retrying with full load", zap.String("url", url))
		if err := n.runStep(sessionCtx, url, loadStep{"full_load", quickFullLoadTimeout, navigateFullLoad}); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrNavigationFailed, url, err)
		}
	}
	return nil
}

func (n *Navigator) runStep(sessionCtx context.Context, url string, step loadStep) error {
	metrics.ObserveNavAttempt(step.name)
	stepCtx, cancel := context.WithTimeout(sessionCtx, step.timeout)
	defer cancel()
	if err := chromedp.Run(stepCtx, step.action(url)); err != nil {
		return fmt.Errorf("%s: %w", step.name, err)
	}
	return nil
}

// navigateDOMReady commits the navigation and waits for the document body
// to be ready, without waiting for the full load event.
func navigateDOMReady(url string) chromedp.Action {
	return chromedp.Tasks{
		commitAction(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
}

// navigateCommit only waits for the navigation to be committed. Weakest
// guarantee; last resort.
func navigateCommit(url string) chromedp.Action {
	return commitAction(url)
}

// navigateFullLoad waits for the load event.
func navigateFullLoad(url string) chromedp.Action {
	return chromedp.Navigate(url)
}

func commitAction(url string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, _, errText, _, err := page.Navigate(url).Do(ctx)
		if err != nil {
			return err
		}
		if errText != "" {
			return fmt.Errorf("navigate: %s", errText)
		}
		return nil
	})
}

// Settle simulates presence after a load: a randomized pointer move and a
// short pause, three scroll cycles to trigger lazy-loaded sections, a
// hydration pause, and a best-effort wait for network quiescence. Many
// target sites poll continuously and never go quiet, so the quiescence
// timeout counts as success.
func (n *Navigator) Settle(sessionCtx context.Context, url string) {
	x := float64(100 + rand.IntN(401))
	y := float64(100 + rand.IntN(401))

	actions := chromedp.Tasks{
		chromedp.ActionFunc(func(ctx context.Context) error {
			return input.DispatchMouseEvent(input.MouseMoved, x, y).Do(ctx)
		}),
		chromedp.Sleep(randDuration(500*time.Millisecond, 1500*time.Millisecond)),
	}
	for range scrollCycles {
		actions = append(actions,
			chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", scrollDistance), nil),
			chromedp.Sleep(scrollPause),
		)
	}
	actions = append(actions, chromedp.Sleep(hydrationPause))

	if err := chromedp.Run(sessionCtx, actions); err != nil {
		n.logger.Debug("Presence simulation interrupted", zap.String("url", url), zap.Error(err))
		return
	}

	if err := waitQuiet(sessionCtx, quietTimeout); err != nil {
		n.logger.Debug("Network never went quiet, proceeding", zap.String("url", url))
	}
}

// Extract returns the page title and the full serialized DOM.
func (n *Navigator) Extract(sessionCtx context.Context) (title, html string, err error) {
	err = chromedp.Run(sessionCtx,
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", "", fmt.Errorf("extract content: %w", err)
	}
	return title, html, nil
}

func randDuration(min, max time.Duration) time.Duration {
	return min + time.Duration(rand.Int64N(int64(max-min)))
}
