package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/magcalc/internal/logging"
	"github.com/agbru/magcalc/internal/metrics"
)

func TestNewMetricsSharesRegistry(t *testing.T) {
	ops := metrics.NewOperationMetrics()
	m := NewMetrics(ops)
	assert.Same(t, ops, m.Operations())

	ops.ObserveInvocation("add", time.Microsecond, nil)
	m.IncrementActiveRequests()
	defer m.DecrementActiveRequests()

	rec := httptest.NewRecorder()
	m.WritePrometheus(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	body := rec.Body.String()
	for _, want := range []string{"magcalc_active_requests 1", "magcalc_native_invocations_total", "go_goroutines"} {
		assert.Contains(t, body, want)
	}

	assert.NotNil(t, NewMetrics(nil).Operations(), "nil ops gets a private registry")
}

func TestMetricsMiddleware(t *testing.T) {
	m := NewMetrics(nil)
	s := &Server{metrics: m}

	var activeDuring float64
	handler := s.metricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
		activeDuring = testutil.ToFloat64(m.activeRequests)
		w.WriteHeader(http.StatusTeapot)
	})
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/probe", http.NoBody))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1.0, activeDuring)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeRequests))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/probe", "418")))

	// A handler that never calls WriteHeader is counted as 200.
	s.metricsMiddleware(func(http.ResponseWriter, *http.Request) {})(httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/probe", http.NoBody))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/probe", "200")))
}

func TestHandleMetricsMethods(t *testing.T) {
	s := &Server{metrics: NewMetrics(nil), logger: newTestLogger()}
	tests := []struct {
		method string
		code   int
	}{
		{http.MethodGet, http.StatusOK},
		{http.MethodPost, http.StatusMethodNotAllowed},
		{http.MethodPut, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.handleMetrics(rec, httptest.NewRequest(tt.method, "/metrics", http.NoBody))
			require.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusOK {
				assert.Contains(t, rec.Body.String(), "magcalc_")
			}
		})
	}
}

// testLogger discards everything.
type testLogger struct{}

func newTestLogger() *testLogger                                  { return &testLogger{} }
func (l *testLogger) Info(_ string, _ ...logging.Field)           {}
func (l *testLogger) Error(_ string, _ error, _ ...logging.Field) {}
func (l *testLogger) Debug(_ string, _ ...logging.Field)          {}
func (l *testLogger) Printf(_ string, _ ...any)                   {}
func (l *testLogger) Println(_ ...any)                            {}
