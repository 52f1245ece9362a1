package metrics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeSite(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://Taikai.Network/hackathons", "taikai.network"},
		{"mlh.io/seasons/2025/events", "mlh.io"},
		{"://bad", "unknown"},
		{"", "unknown"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, SanitizeSite(tc.in), "input %q", tc.in)
	}
}

func TestObserversDoNotPanicWithoutExplicitInit(t *testing.T) {
	require.NotPanics(t, func() {
		ObserveOutcome("https://example.com", "success", 1234)
		ObserveNavAttempt("dom_ready_patient")
		ObserveDelivery("fallback")
		ObserveBatch(12.5)
		TargetStarted()
		TargetFinished()
	})
}
