package crawler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/huntstack/drone-crawler/internal/ingest"
)

// MockFetcher is a mock implementation of the PageFetcher interface.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchPage(ctx context.Context, url string) (Page, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(Page), args.Error(1)
}

func (m *MockFetcher) FetchQuick(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

// MockDeliverer is a mock implementation of the Deliverer interface.
type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) Deliver(ctx context.Context, payload ingest.Payload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func testConfig() Config {
	return Config{
		Intent:            "general",
		BatchSize:         5,
		StaggerMin:        time.Millisecond,
		StaggerMax:        2 * time.Millisecond,
		BlacklistPatterns: []string{"chegg.com"},
	}
}

func healthyPage(url string) Page {
	return Page{
		URL:        url,
		Title:      "Hackathons 2026",
		HTML:       strings.Repeat("<div>event</div>", 500),
		CapturedAt: time.Unix(1700000000, 0).UTC(),
	}
}

func TestRunTargetOutcomes(t *testing.T) {
	ctx := context.Background()

	t.Run("blacklisted target makes no fetch", func(t *testing.T) {
		fetcher := new(MockFetcher)
		deliverer := new(MockDeliverer)
		engine := NewEngine(testConfig(), fetcher, deliverer, zap.NewNop())

		outcomes := engine.CrawlAndStream(ctx, []string{"https://www.chegg.com/scholarships"}, "general")

		require.Len(t, outcomes, 1)
		require.Equal(t, StatusSkipped, outcomes[0].Status)
		require.Equal(t, SkipBlacklisted, outcomes[0].Reason)
		fetcher.AssertNotCalled(t, "FetchPage", mock.Anything, mock.Anything)
		deliverer.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
	})

	t.Run("not found title is skipped without payload", func(t *testing.T) {
		fetcher := new(MockFetcher)
		deliverer := new(MockDeliverer)
		engine := NewEngine(testConfig(), fetcher, deliverer, zap.NewNop())

		page := healthyPage("https://taikai.network/gone")
		page.Title = "404 Not Found"
		fetcher.On("FetchPage", mock.Anything, page.URL).Return(page, nil)

		outcomes := engine.CrawlAndStream(ctx, []string{page.URL}, "general")

		require.Equal(t, StatusSkipped, outcomes[0].Status)
		require.Equal(t, SkipNotFound, outcomes[0].Reason)
		deliverer.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
	})

	t.Run("thin shell page is skipped", func(t *testing.T) {
		fetcher := new(MockFetcher)
		deliverer := new(MockDeliverer)
		engine := NewEngine(testConfig(), fetcher, deliverer, zap.NewNop())

		page := healthyPage("https://taikai.network/shell")
		page.HTML = strings.Repeat("x", 3000)
		fetcher.On("FetchPage", mock.Anything, page.URL).Return(page, nil)

		outcomes := engine.CrawlAndStream(ctx, []string{page.URL}, "general")

		require.Equal(t, StatusSkipped, outcomes[0].Status)
		require.Equal(t, SkipTooThin, outcomes[0].Reason)
		deliverer.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
	})

	t.Run("success delivers payload", func(t *testing.T) {
		fetcher := new(MockFetcher)
		deliverer := new(MockDeliverer)
		engine := NewEngine(testConfig(), fetcher, deliverer, zap.NewNop())

		page := healthyPage("https://taikai.network/hackathons")
		fetcher.On("FetchPage", mock.Anything, page.URL).Return(page, nil)

		var delivered ingest.Payload
		deliverer.On("Deliver", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			delivered = args.Get(1).(ingest.Payload)
		}).Return(nil)

		outcomes := engine.CrawlAndStream(ctx, []string{page.URL}, "hackathons")

		require.Equal(t, StatusSuccess, outcomes[0].Status)
		require.Equal(t, "taikai.network", outcomes[0].SourceDomain)
		require.Equal(t, page.URL, delivered.URL)
		require.Equal(t, "hackathons", delivered.Intent)
		require.Equal(t, page.CapturedAt.Unix(), delivered.CrawledAt)
	})

	t.Run("delivery failure on both paths fails target", func(t *testing.T) {
		fetcher := new(MockFetcher)
		deliverer := new(MockDeliverer)
		engine := NewEngine(testConfig(), fetcher, deliverer, zap.NewNop())

		page := healthyPage("https://taikai.network/hackathons")
		fetcher.On("FetchPage", mock.Anything, page.URL).Return(page, nil)
		deliverer.On("Deliver", mock.Anything, mock.Anything).Return(errors.New("all paths down"))

		outcomes := engine.CrawlAndStream(ctx, []string{page.URL}, "general")

		require.Equal(t, StatusFailed, outcomes[0].Status)
		require.ErrorContains(t, outcomes[0].Err, "all paths down")
	})
}

func TestFailureIsolationWithinBatch(t *testing.T) {
	fetcher := new(MockFetcher)
	deliverer := new(MockDeliverer)
	engine := NewEngine(testConfig(), fetcher, deliverer, zap.NewNop())

	crashed := "https://dorahacks.io/crashes"
	healthy := "https://taikai.network/hackathons"
	fetcher.On("FetchPage", mock.Anything, crashed).Return(Page{}, errors.New("navigation failed on all strategies"))
	fetcher.On("FetchPage", mock.Anything, healthy).Return(healthyPage(healthy), nil)
	deliverer.On("Deliver", mock.Anything, mock.Anything).Return(nil)

	outcomes := engine.CrawlAndStream(context.Background(), []string{crashed, healthy}, "general")

	require.Equal(t, StatusFailed, outcomes[0].Status)
	require.Equal(t, StatusSuccess, outcomes[1].Status, "sibling targets must still reach their own outcomes")
}

// stubFetcher lets concurrency tests observe pipeline occupancy directly.
type stubFetcher struct {
	mu         sync.Mutex
	active     int64
	maxActive  int64
	perURLDone map[string]time.Time
}

func (s *stubFetcher) FetchPage(_ context.Context, url string) (Page, error) {
	cur := atomic.AddInt64(&s.active, 1)
	defer atomic.AddInt64(&s.active, -1)

	s.mu.Lock()
	if cur > s.maxActive {
		s.maxActive = cur
	}
	s.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	s.mu.Lock()
	s.perURLDone[url] = time.Now()
	s.mu.Unlock()
	return healthyPage(url), nil
}

func (s *stubFetcher) FetchQuick(context.Context, string) (string, error) {
	return "", errors.New("not used")
}

func TestBatchBoundsConcurrencyAndOrdering(t *testing.T) {
	fetcher := &stubFetcher{perURLDone: make(map[string]time.Time)}
	deliverer := new(MockDeliverer)
	deliverer.On("Deliver", mock.Anything, mock.Anything).Return(nil)
	engine := NewEngine(testConfig(), fetcher, deliverer, zap.NewNop())

	urls := make([]string, 12)
	for i := range urls {
		urls[i] = "https://taikai.network/hackathons/" + string(rune('a'+i))
	}

	outcomes := engine.CrawlAndStream(context.Background(), urls, "general")
	require.Len(t, outcomes, 12)
	for i, o := range outcomes {
		require.Equal(t, urls[i], o.Target.URL, "outcomes must stay in input order")
		require.Equal(t, StatusSuccess, o.Status)
	}

	require.LessOrEqual(t, fetcher.maxActive, int64(5), "never more than batch_size concurrent navigations")

	// Every target of batch 1 must finish before any target of batch 2 starts.
	lastOfFirst := time.Time{}
	for _, u := range urls[:5] {
		if done := fetcher.perURLDone[u]; done.After(lastOfFirst) {
			lastOfFirst = done
		}
	}
	for _, u := range urls[5:10] {
		started := fetcher.perURLDone[u].Add(-5 * time.Millisecond)
		require.False(t, started.Before(lastOfFirst), "batch 2 target %s started before batch 1 drained", u)
	}
}

func TestFetchContentDelegatesToQuickPath(t *testing.T) {
	fetcher := new(MockFetcher)
	deliverer := new(MockDeliverer)
	engine := NewEngine(testConfig(), fetcher, deliverer, zap.NewNop())

	fetcher.On("FetchQuick", mock.Anything, "https://mlh.io/seasons/2026/events").Return("<html>events</html>", nil)

	html, err := engine.FetchContent(context.Background(), "https://mlh.io/seasons/2026/events")
	require.NoError(t, err)
	require.Equal(t, "<html>events</html>", html)
	fetcher.AssertNotCalled(t, "FetchPage", mock.Anything, mock.Anything)
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.BatchSize = 0
	require.Error(t, bad.Validate())

	bad = cfg
	bad.StaggerMax = cfg.StaggerMin - time.Millisecond
	require.Error(t, bad.Validate())

	bad = cfg
	bad.Intent = ""
	require.Error(t, bad.Validate())
}
