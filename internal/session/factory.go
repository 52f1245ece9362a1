// Package session owns the single shared browser engine process and hands
// out isolated, stealth-configured browsing contexts.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/huntstack/drone-crawler/internal/stealth"
)

// ErrEngineStartup indicates the browser engine process could not be
// launched. This is fatal to the whole crawler: no sessions can be created.
var ErrEngineStartup = errors.New("browser engine startup failed")

// Factory lazily starts one browser engine process and opens isolated
// contexts on demand. Start is idempotent; a second process is never
// launched.
type Factory struct {
	logger *zap.Logger

	startOnce sync.Once
	startErr  error

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewFactory returns an unstarted Factory.
func NewFactory(logger *zap.Logger) *Factory {
	return &Factory{logger: logger}
}

// Start launches the engine process. Repeated calls are no-ops returning
// the first outcome.
func (f *Factory) Start(ctx context.Context) error {
	f.startOnce.Do(func() {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-setuid-sandbox", true),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.Flag("disable-infobars", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("window-size", "1920,1080"),
		)
		allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
		browserCtx, browserCancel := chromedp.NewContext(allocCtx)
		if err := chromedp.Run(browserCtx); err != nil {
			browserCancel()
			allocCancel()
			f.startErr = fmt.Errorf("%w: %v", ErrEngineStartup, err)
			return
		}
		f.allocCancel = allocCancel
		f.browserCtx = browserCtx
		f.browserCancel = browserCancel
		f.logger.Info("Browser engine started")
	})
	if f.startErr != nil {
		return f.startErr
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return nil
}

// Stop tears down the engine process and every context derived from it.
func (f *Factory) Stop() {
	if f.browserCancel != nil {
		f.browserCancel()
	}
	if f.allocCancel != nil {
		f.allocCancel()
	}
}

// Session is one isolated browsing context bound to a fresh stealth
// profile. It is owned exclusively by the crawl task that created it and
// must be closed on every exit path of that task.
type Session struct {
	ctx     context.Context
	cancel  context.CancelFunc
	profile stealth.Profile
}

// NewSession opens a fresh context configured with a new stealth profile.
// The automation-mask overrides are injected before any page script
// executes, so they apply to every page the context ever loads. A failure
// here is isolated to the caller.
func (f *Factory) NewSession(ctx context.Context) (*Session, error) {
	if err := f.Start(ctx); err != nil {
		return nil, err
	}

	profile := stealth.NewProfile()
	sessionCtx, cancel := chromedp.NewContext(f.browserCtx)

	configure := chromedp.Tasks{
		chromedp.ActionFunc(func(ctx context.Context) error {
			if _, err := page.AddScriptToEvaluateOnNewDocument(stealth.OverrideScript).Do(ctx); err != nil {
				return fmt.Errorf("inject overrides: %w", err)
			}
			return nil
		}),
		chromedp.EmulateViewport(profile.Viewport.Width, profile.Viewport.Height),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := network.Enable().Do(ctx); err != nil {
				return fmt.Errorf("enable network domain: %w", err)
			}
			if err := emulation.SetUserAgentOverride(profile.UserAgent).
				WithAcceptLanguage(profile.Locale).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
			if err := emulation.SetTimezoneOverride(profile.TimezoneID).Do(ctx); err != nil {
				return fmt.Errorf("set timezone: %w", err)
			}
			if err := network.SetExtraHTTPHeaders(toNetworkHeaders(profile.Headers())).Do(ctx); err != nil {
				return fmt.Errorf("set extra headers: %w", err)
			}
			return nil
		}),
	}
	if err := chromedp.Run(sessionCtx, configure); err != nil {
		cancel()
		return nil, fmt.Errorf("configure session: %w", err)
	}

	f.logger.Debug("Session opened",
		zap.String("user_agent", profile.UserAgent),
		zap.String("timezone", profile.TimezoneID),
	)
	return &Session{ctx: sessionCtx, cancel: cancel, profile: profile}, nil
}

// Context returns the chromedp context for this session. At most one page
// is active on it at a time.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Profile returns the identity this session presents.
func (s *Session) Profile() stealth.Profile {
	return s.profile
}

// Close destroys the browsing context. Safe to call exactly once from the
// owning task's exit path.
func (s *Session) Close() {
	s.cancel()
}

func toNetworkHeaders(h http.Header) network.Headers {
	headers := network.Headers{}
	for key, values := range h {
		if len(values) == 0 {
			continue
		}
		headers[key] = values[0]
	}
	return headers
}
