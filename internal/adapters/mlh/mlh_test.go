package mlh

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fetcherFunc func(ctx context.Context, rawURL string) (string, error)

func (f fetcherFunc) FetchContent(ctx context.Context, rawURL string) (string, error) {
	return f(ctx, rawURL)
}

const seasonPage = `<html><body>
<script id="__NEXT_DATA__" type="application/json">{"props":{"pageProps":{"events":[
	{"name":"HackMIT","url":"https://hackmit.org/","location":"Cambridge, MA"},
	{"name":"Global Hack Week","url":"https://ghw.mlh.io/","location":"Online"}
]}}}</script>
</body></html>`

func TestParseEvents(t *testing.T) {
	events, err := ParseEvents(seasonPage)
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, "HackMIT", events[0]["name"])
	require.Equal(t, "https://ghw.mlh.io/", events[1]["url"])
}

func TestParseEventsNoBlob(t *testing.T) {
	_, err := ParseEvents(`<html><body><h1>Events</h1></body></html>`)
	require.Error(t, err)
}

func TestFetchEvents(t *testing.T) {
	t.Run("page data wins", func(t *testing.T) {
		adapter := New(fetcherFunc(func(_ context.Context, rawURL string) (string, error) {
			require.Equal(t, SeasonURL, rawURL)
			return seasonPage, nil
		}), zap.NewNop())

		events := adapter.FetchEvents(context.Background())
		require.Len(t, events, 2)
	})

	t.Run("fetch failure falls back to static list", func(t *testing.T) {
		adapter := New(fetcherFunc(func(context.Context, string) (string, error) {
			return "", errors.New("engine down")
		}), zap.NewNop())

		events := adapter.FetchEvents(context.Background())
		require.Equal(t, StaticEvents(), events)
	})

	t.Run("empty page falls back to static list", func(t *testing.T) {
		adapter := New(fetcherFunc(func(context.Context, string) (string, error) {
			return `<html><body>nothing here</body></html>`, nil
		}), zap.NewNop())

		events := adapter.FetchEvents(context.Background())
		require.Equal(t, StaticEvents(), events)
	})
}
