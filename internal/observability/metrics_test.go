package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/reports", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/reports", "GET", 200, 20*time.Millisecond)
	m.RecordError("/reports", "POST", "DUPLICATE_PERIOD")
	m.RecordSubmission("D1")
	m.RecordRejection("UNSUPPORTED_FILE_TYPE")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestCount.WithLabelValues("/reports", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorCount.WithLabelValues("/reports", "POST", "DUPLICATE_PERIOD")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reportsSubmitted.WithLabelValues("D1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissionsDenied.WithLabelValues("UNSUPPORTED_FILE_TYPE")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordSubmission("D1")
		m.RecordRejection("X")
	})
}
