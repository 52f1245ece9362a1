// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/huntstack/drone-crawler/internal/crawler"
	"github.com/huntstack/drone-crawler/internal/ingest"
	"github.com/huntstack/drone-crawler/internal/logging"
	"github.com/huntstack/drone-crawler/internal/metrics"
	"github.com/huntstack/drone-crawler/internal/navigate"
	"github.com/huntstack/drone-crawler/internal/routing"
	"github.com/huntstack/drone-crawler/internal/session"
)

// App holds all the shared, long-lived services for the application: the
// logger, the browser session factory, the page fetcher, and the payload
// deliverer. It is initialized once at startup and passed to the commands
// that need it.
type App struct {
	logger    *zap.Logger
	sessions  *session.Factory
	fetcher   *crawler.ChromeFetcher
	deliverer *ingest.Deliverer
	stream    *ingest.PubSubPublisher
	ops       *http.Server
}

// GetLogger returns the shared zap logger instance.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetFetcher exposes the stealth page fetcher backed by the warmed browser.
func (a *App) GetFetcher() *crawler.ChromeFetcher {
	return a.fetcher
}

// GetDeliverer returns the dual-path payload deliverer.
func (a *App) GetDeliverer() *ingest.Deliverer {
	return a.deliverer
}

// NewApp creates and initializes a new App struct based on the application's
// configuration. It reads values from Viper, brings up the browser engine,
// and wires the ingest path. Designed to fail fast: if the browser or the
// configured stream backbone cannot be initialized, startup aborts.
func NewApp(ctx context.Context) (*App, error) {
	l := logging.L
	l.Info("Initializing application services...")

	// 1. Browser engine. One allocator plus a warmed browser context; every
	// crawl task gets its own tab off this.
	sessions := session.NewFactory(l)
	if err := sessions.Start(ctx); err != nil {
		return nil, err
	}

	fetcher := crawler.NewChromeFetcher(sessions, navigate.New(l), routing.DefaultPolicy(), l)

	// 2. Ingest path. The stream backbone is optional: with the noop
	// provider every payload goes straight to the synchronous refinery.
	var stream *ingest.PubSubPublisher
	switch provider := viper.GetString("ingest.provider"); provider {
	case "pubsub":
		projectID := viper.GetString("ingest.gcp.project_id")
		topicID := viper.GetString("ingest.gcp.topic_id")
		if projectID == "" {
			return nil, fmt.Errorf("ingest provider is 'pubsub' but ingest.gcp.project_id is not set")
		}
		if topicID == "" {
			topicID = ingest.TopicRawHTML
		}
		l.Info("Connecting to GCP Pub/Sub", zap.String("topic", topicID))
		var err error
		stream, err = ingest.NewPubSubPublisher(ctx, projectID, topicID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize stream backbone: %w", err)
		}
	case "noop":
		l.Info("Using No-Op stream provider. Payloads go directly to the fallback refinery.")
	default:
		return nil, fmt.Errorf("unknown ingest provider: %s", provider)
	}

	refinery := ingest.NewLogRefinery(l)
	var deliverer *ingest.Deliverer
	if stream != nil {
		deliverer = ingest.NewDeliverer(stream, refinery, l)
	} else {
		deliverer = ingest.NewDeliverer(nil, refinery, l)
	}

	a := &App{
		logger:    l,
		sessions:  sessions,
		fetcher:   fetcher,
		deliverer: deliverer,
		stream:    stream,
	}
	a.startOpsServer(viper.GetString("ops.addr"))

	l.Info("Application services initialized successfully.")
	return a, nil
}

// startOpsServer serves health and metrics endpoints in the background.
func (a *App) startOpsServer(addr string) {
	r := chi.NewRouter()
	r.Handle("/metrics", metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	a.ops = &http.Server{Addr: addr, Handler: r}
	go func() {
		a.logger.Info("Starting ops server", zap.String("addr", addr))
		if err := a.ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Ops server failed", zap.Error(err))
		}
	}()
}

// Close gracefully shuts down all services in the App container.
// It is called by a Cobra hook after the command finishes execution.
func (a *App) Close() {
	a.logger.Info("Shutting down application services...")

	if a.ops != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.ops.Shutdown(ctx); err != nil {
			a.logger.Warn("Error shutting down ops server", zap.Error(err))
		}
		cancel()
	}

	if a.stream != nil {
		if err := a.stream.Close(); err != nil {
			a.logger.Warn("Error closing stream publisher", zap.Error(err))
		}
	}

	a.sessions.Stop()

	// Flush buffered log entries before the process exits.
	if err := a.logger.Sync(); err != nil {
		a.logger.Warn("Error syncing logger on shutdown", zap.Error(err))
	}
}
