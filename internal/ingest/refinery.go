package ingest

import (
	"context"

	"go.uber.org/zap"
)

// LogRefinery is a stand-in refinery used when the crawler runs without the
// downstream processor wired in. Records are logged and dropped.
type LogRefinery struct {
	logger *zap.Logger
}

// NewLogRefinery returns a LogRefinery.
func NewLogRefinery(logger *zap.Logger) *LogRefinery {
	return &LogRefinery{logger: logger}
}

// ProcessRawEvent logs the record.
func (r *LogRefinery) ProcessRawEvent(_ context.Context, key string, value Payload) error {
	r.logger.Info("Refinery stub received record",
		zap.String("key", key),
		zap.String("source", value.Source),
		zap.Int("html_bytes", len(value.HTML)),
	)
	return nil
}
