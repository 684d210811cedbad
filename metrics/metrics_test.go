package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// TestCounters verifies each recorder increments its labelled counter
func TestCounters(t *testing.T) {
	m := New()

	m.Fetch(PathRemote, OutcomeFallback)
	m.Fetch(PathDirect, OutcomeSuccess)
	m.Fetch(PathDirect, OutcomeSuccess)
	m.Scraped("Wired", 3)
	m.Translation(OutcomeFailure)
	m.Save(OutcomeSuccess)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues(PathRemote, OutcomeFallback)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetches.WithLabelValues(PathDirect, OutcomeSuccess)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.scraped.WithLabelValues("Wired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.translations.WithLabelValues(OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.saves.WithLabelValues(OutcomeSuccess)))
}

// TestNilMetrics verifies a nil *Metrics is a no-op
func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Fetch(PathDirect, OutcomeSuccess)
		m.Scraped("x", 1)
		m.Translation(OutcomeSuccess)
		m.Save(OutcomeFailure)
	})
}

// TestHandler verifies the exposition endpoint lists the counters
func TestHandler(t *testing.T) {
	m := New()
	m.Save(OutcomeSuccess)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `technews_saves_total{outcome="success"} 1`)
}
