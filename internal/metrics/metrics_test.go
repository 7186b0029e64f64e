package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSearch_Prometheus(t *testing.T) {
	p := NewPrometheus()

	done := TimeSearch(p)
	done("fulltext", true)
	TimeSearch(p)("phone", false)
	TimeSearch(p)("fulltext", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.searchTotal.WithLabelValues("fulltext", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.searchTotal.WithLabelValues("phone", "false")))
	assert.Equal(t, 2, testutil.CollectAndCount(p.searchSeconds))
}

func TestPrometheus_Handler(t *testing.T) {
	p := NewPrometheus()
	p.IncRequestTotal("/api/v1/search", 200)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `finder_http_requests_total{route="/api/v1/search",status="200"} 1`)
}

func TestOrNoop(t *testing.T) {
	r := OrNoop(nil)
	require.NotNil(t, r)
	assert.NotPanics(t, func() {
		TimeSearch(r)("unfiltered", true)
		r.IncRequestTotal("/x", 500)
	})

	p := NewPrometheus()
	assert.Same(t, p, OrNoop(p))
}
