package crawler

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/huntstack/drone-crawler/internal/guard"
	"github.com/huntstack/drone-crawler/internal/ingest"
	"github.com/huntstack/drone-crawler/internal/metrics"
)

// Engine batches targets, bounds concurrency, staggers batches, and
// isolates per-target failures. The fixed batch size plus the inter-batch
// stagger is the sole throttle; it is static, not adaptive.
type Engine struct {
	cfg       Config
	fetcher   PageFetcher
	deliverer Deliverer
	blacklist *Blacklist
	logger    *zap.Logger

	domainLimiters sync.Map
}

// NewEngine builds an orchestrator.
func NewEngine(cfg Config, fetcher PageFetcher, deliverer Deliverer, logger *zap.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		fetcher:   fetcher,
		deliverer: deliverer,
		blacklist: NewBlacklist(cfg.BlacklistPatterns),
		logger:    logger,
	}
}

// CrawlAndStream crawls the URLs in fixed-size batches, delivering every
// validated capture downstream. Batch k+1 never starts before every target
// in batch k has reached a terminal outcome. Exactly one Outcome is
// returned per target, in input order.
func (e *Engine) CrawlAndStream(ctx context.Context, urls []string, intent string) []Outcome {
	runLogger := e.logger.With(zap.String("run_id", uuid.NewString()))
	runLogger.Info("Deploying crawl run",
		zap.Int("target_count", len(urls)),
		zap.String("intent", intent),
	)

	outcomes := make([]Outcome, len(urls))
	for start := 0; start < len(urls); start += e.cfg.BatchSize {
		end := min(start+e.cfg.BatchSize, len(urls))
		batchStart := time.Now()

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				target := Target{URL: urls[idx], Intent: intent}
				outcomes[idx] = e.runTarget(ctx, runLogger, target)
			}(i)
		}
		wg.Wait()

		metrics.ObserveBatch(time.Since(batchStart).Seconds())
		if end < len(urls) {
			e.stagger(ctx)
		}
	}
	return outcomes
}

// runTarget is the target boundary: every failure inside the single-target
// pipeline is converted into an Outcome here and never reaches sibling
// targets or the batch loop.
func (e *Engine) runTarget(ctx context.Context, logger *zap.Logger, target Target) (outcome Outcome) {
	metrics.TargetStarted()
	defer metrics.TargetFinished()
	defer func() {
		if r := recover(); r != nil {
			outcome = failedOutcome(target, fmt.Errorf("target panicked: %v", r))
			logger.Error("Target crashed", zap.String("url", target.URL), zap.Any("panic", r))
		}
		e.observe(logger, outcome)
	}()

	if e.blacklist.Matches(target.URL) {
		logger.Warn("Ignoring dead target", zap.String("url", target.URL))
		return skippedOutcome(target, SkipBlacklisted)
	}

	if err := e.waitDomainBudget(ctx, target.URL); err != nil {
		return failedOutcome(target, fmt.Errorf("domain budget: %w", err))
	}

	logger.Info("Approaching target", zap.String("url", target.URL))
	page, err := e.fetcher.FetchPage(ctx, target.URL)
	if err != nil {
		return failedOutcome(target, err)
	}

	if verdict := guard.Check(page.Title, page.HTML); !verdict.OK {
		logger.Warn("Content rejected",
			zap.String("url", target.URL),
			zap.String("reason", string(verdict.Reason)),
			zap.String("title", page.Title),
			zap.Int("size", len(page.HTML)),
		)
		return skippedOutcome(target, SkipReason(verdict.Reason))
	}

	payload := ingest.NewPayload(page.URL, page.Title, page.HTML, target.Intent, page.CapturedAt)
	if err := e.deliverer.Deliver(ctx, payload); err != nil {
		// Both delivery paths failed; the capture would be lost silently if
		// this counted as success.
		return failedOutcome(target, fmt.Errorf("deliver payload: %w", err))
	}

	return successOutcome(target, page)
}

// FetchContent is the direct single-URL fetch: its own session, a
// resource-type-only block policy, two-step navigation, raw HTML back. No
// batching, no publish.
func (e *Engine) FetchContent(ctx context.Context, rawURL string) (string, error) {
	e.logger.Info("Direct fetch approaching", zap.String("url", rawURL))
	html, err := e.fetcher.FetchQuick(ctx, rawURL)
	if err != nil {
		e.logger.Error("Direct fetch failed", zap.String("url", rawURL), zap.Error(err))
		return "", err
	}
	return html, nil
}

func (e *Engine) observe(logger *zap.Logger, outcome Outcome) {
	switch outcome.Status {
	case StatusSuccess:
		metrics.ObserveOutcome(outcome.Target.URL, string(StatusSuccess), len(outcome.HTML))
	case StatusSkipped:
		metrics.ObserveOutcome(outcome.Target.URL, "skipped_"+string(outcome.Reason), 0)
	case StatusFailed:
		metrics.ObserveOutcome(outcome.Target.URL, string(StatusFailed), 0)
		logger.Error("Target failed",
			zap.String("url", outcome.Target.URL),
			zap.Error(outcome.Err),
		)
	}
}

func (e *Engine) stagger(ctx context.Context) {
	window := e.cfg.StaggerMax - e.cfg.StaggerMin
	pause := e.cfg.StaggerMin
	if window > 0 {
		pause += time.Duration(rand.Int64N(int64(window)))
	}
	select {
	case <-time.After(pause):
	case <-ctx.Done():
	}
}

func (e *Engine) waitDomainBudget(ctx context.Context, rawURL string) error {
	if e.cfg.DomainQPS <= 0 {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse target url: %w", err)
	}
	host := strings.ToLower(parsed.Host)
	val, _ := e.domainLimiters.LoadOrStore(host, rate.NewLimiter(rate.Limit(e.cfg.DomainQPS), 1))
	limiter, ok := val.(*rate.Limiter)
	if !ok {
		return fmt.Errorf("unexpected limiter type %T", val)
	}
	return limiter.Wait(ctx)
}
