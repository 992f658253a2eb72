package metrics

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRenderLabeledCounters(t *testing.T) {
	before := requestsTotal.Get(RequestCover)
	IncRequest(RequestCover)
	IncFailure(StageParse)

	if got := requestsTotal.Get(RequestCover); got != before+1 {
		t.Fatalf("expected counter to grow by one, got %d -> %d", before, got)
	}
	out := Render()
	if !strings.Contains(out, `bot_requests_total{type="cover"}`) {
		t.Fatalf("missing request counter in %s", out)
	}
	if !strings.Contains(out, `bot_failures_total{stage="parse"}`) {
		t.Fatalf("missing failure counter in %s", out)
	}
}

func TestHistogramIsCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	if snap.count != 3 || snap.sum != 555 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	var buf bytes.Buffer
	writeHistogram(&buf, "x", "help", snap)
	out := buf.String()
	for _, want := range []string{`x_bucket{le="10"} 1`, `x_bucket{le="100"} 2`, `x_bucket{le="+Inf"} 3`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %s", want, out)
		}
	}
}

func TestHandlerServesText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ObserveLLMLatency(1500 * time.Millisecond)

	router := gin.New()
	router.GET("/metrics", Handler())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "llm_latency_ms_count") {
		t.Fatalf("missing histogram in body")
	}
}
