package routing

import (
	"context"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Attach enables request interception on the session context and services
// every paused request against the given policy. It must run before the
// first navigation. The policy value is captured immutably; no mutable
// state is shared across concurrent sessions.
func Attach(sessionCtx context.Context, policy Policy, logger *zap.Logger) error {
	target := chromedp.FromContext(sessionCtx).Target
	if target == nil {
		// Session not materialized yet; chromedp creates the target on the
		// first Run. Force it so the listener has an executor.
		if err := chromedp.Run(sessionCtx); err != nil {
			return err
		}
		target = chromedp.FromContext(sessionCtx).Target
	}

	chromedp.ListenTarget(sessionCtx, func(ev interface{}) {
		paused, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		// Resolution happens off the event goroutine: CDP commands cannot
		// be issued from inside the listener callback.
		go resolve(cdp.WithExecutor(sessionCtx, target), policy, paused, logger)
	})

	return chromedp.Run(sessionCtx, fetch.Enable())
}

func resolve(execCtx context.Context, policy Policy, paused *fetch.EventRequestPaused, logger *zap.Logger) {
	if policy.Decide(paused.ResourceType, paused.Request.URL) == Block {
		if err := fetch.FailRequest(paused.RequestID, network.ErrorReasonBlockedByClient).Do(execCtx); err != nil {
			logger.Debug("Failed to abort request", zap.String("url", paused.Request.URL), zap.Error(err))
		}
		return
	}
	if err := fetch.ContinueRequest(paused.RequestID).Do(execCtx); err != nil {
		logger.Debug("Failed to continue request", zap.String("url", paused.Request.URL), zap.Error(err))
	}
}
