package ingest_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/huntstack/drone-crawler/internal/ingest"
	"github.com/huntstack/drone-crawler/internal/ingest/memory"
)

func TestDeliverPrimaryPath(t *testing.T) {
	pub := memory.NewPublisher()
	ref := memory.NewRefinery()
	d := ingest.NewDeliverer(pub, ref, zap.NewNop())

	payload := ingest.NewPayload("https://taikai.network/hackathons", "Hackathons", strings.Repeat("x", 6000), "general", time.Now())
	require.NoError(t, d.Deliver(context.Background(), payload))

	require.Len(t, pub.Messages(), 1)
	require.Equal(t, payload.URL, pub.Messages()[0].Key)
	require.Empty(t, ref.Events(), "fallback must not run when the stream accepts the payload")
}

func TestDeliverFallbackOnPublishFailure(t *testing.T) {
	pub := memory.NewPublisher()
	pub.Err = errors.New("broker unreachable")
	ref := memory.NewRefinery()
	d := ingest.NewDeliverer(pub, ref, zap.NewNop())

	payload := ingest.NewPayload("https://dorahacks.io/hackathon/42", "BUIDL", strings.Repeat("y", 6000), "hackathons", time.Now())
	require.NoError(t, d.Deliver(context.Background(), payload))

	require.Empty(t, pub.Messages(), "stream must not be retried for a failed payload")
	events := ref.Events()
	require.Len(t, events, 1, "fallback must run exactly once")
	require.Equal(t, payload.URL, events[0].Key)
	require.Equal(t, payload, events[0].Payload, "fallback must carry the identical payload")
}

func TestDeliverFallbackWhenBackboneOffline(t *testing.T) {
	ref := memory.NewRefinery()
	d := ingest.NewDeliverer(nil, ref, zap.NewNop())

	payload := ingest.NewPayload("https://hackquest.io/events", "Quests", strings.Repeat("z", 6000), "general", time.Now())
	require.NoError(t, d.Deliver(context.Background(), payload))
	require.Len(t, ref.Events(), 1)
}

func TestDeliverSurfacesFallbackError(t *testing.T) {
	pub := memory.NewPublisher()
	pub.Err = errors.New("broker unreachable")
	ref := memory.NewRefinery()
	ref.Err = errors.New("refinery down")
	d := ingest.NewDeliverer(pub, ref, zap.NewNop())

	payload := ingest.NewPayload("https://example.com", "x", strings.Repeat("z", 6000), "general", time.Now())
	err := d.Deliver(context.Background(), payload)
	require.Error(t, err)
	require.Contains(t, err.Error(), "heartbeat fallback")
}

func TestNewPayload(t *testing.T) {
	t.Run("caps html", func(t *testing.T) {
		big := strings.Repeat("a", ingest.MaxHTMLBytes+5000)
		p := ingest.NewPayload("https://taikai.network/org/hackathons/x", "t", big, "general", time.Unix(1700000000, 0))
		require.Len(t, p.HTML, ingest.MaxHTMLBytes)
	})

	t.Run("keeps small html intact", func(t *testing.T) {
		p := ingest.NewPayload("https://example.com", "t", "<html></html>", "general", time.Now())
		require.Equal(t, "<html></html>", p.HTML)
	})

	t.Run("stamps source and agent", func(t *testing.T) {
		p := ingest.NewPayload("https://taikai.network/org/hackathons/x", "t", "h", "hackathons", time.Unix(1700000000, 0))
		require.Equal(t, "taikai.network", p.Source)
		require.Equal(t, ingest.AgentType, p.AgentType)
		require.Equal(t, int64(1700000000), p.CrawledAt)
		require.Equal(t, "hackathons", p.Intent)
	})
}
