package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/huntstack/drone-crawler/internal/metrics"
)

// StreamPublisher publishes one payload, keyed by URL, to the durable
// stream backbone.
type StreamPublisher interface {
	Publish(ctx context.Context, key string, payload Payload) (string, error)
}

// Refinery is the downstream collaborator's single-record entry point. It
// must treat records arriving here identically to records consumed from the
// stream.
type Refinery interface {
	ProcessRawEvent(ctx context.Context, key string, value Payload) error
}

// Deliverer routes each payload through exactly one delivery path: the
// stream when available, otherwise a synchronous hand-off to the refinery.
// The fallback trades the backbone's ordering and replay guarantees for
// delivery certainty.
type Deliverer struct {
	stream   StreamPublisher
	refinery Refinery
	logger   *zap.Logger
}

// NewDeliverer builds a Deliverer. A nil stream means the backbone was
// unavailable at startup; every payload then takes the fallback path.
func NewDeliverer(stream StreamPublisher, refinery Refinery, logger *zap.Logger) *Deliverer {
	return &Deliverer{stream: stream, refinery: refinery, logger: logger}
}

// Deliver sends one payload. The stream is never retried for a payload that
// already failed to publish; the identical key/value goes to the refinery
// instead, exactly once.
func (d *Deliverer) Deliver(ctx context.Context, payload Payload) error {
	if d.stream == nil {
		d.logger.Warn("Stream backbone offline, engaging heartbeat fallback",
			zap.String("url", payload.URL),
		)
		return d.fallback(ctx, payload)
	}

	id, err := d.stream.Publish(ctx, payload.URL, payload)
	if err != nil {
		d.logger.Error("Stream publish failed, engaging heartbeat fallback",
			zap.String("url", payload.URL),
			zap.Error(err),
		)
		return d.fallback(ctx, payload)
	}

	metrics.ObserveDelivery("stream")
	d.logger.Info("Payload transmitted to stream",
		zap.String("url", payload.URL),
		zap.String("message_id", id),
		zap.Int("html_bytes", len(payload.HTML)),
	)
	return nil
}

func (d *Deliverer) fallback(ctx context.Context, payload Payload) error {
	if err := d.refinery.ProcessRawEvent(ctx, payload.URL, payload); err != nil {
		return fmt.Errorf("heartbeat fallback: %w", err)
	}
	metrics.ObserveDelivery("fallback")
	d.logger.Info("Payload injected directly into refinery",
		zap.String("url", payload.URL),
	)
	return nil
}
