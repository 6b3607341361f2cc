package observability_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/adapters/observability"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so the vectors are exported
	observability.ObserveHTTP("/reviews", "GET", 200, 12*time.Millisecond)
	observability.ObserveStore("mysql", "get", domain.NewStoreError("get", domain.KindNotFound, domain.ErrNotFound), time.Millisecond)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	if !strings.Contains(out, "reviews_http_requests_total") {
		t.Fatalf("expected reviews_http_requests_total in output")
	}
	if !strings.Contains(out, `reviews_store_queries_total{op="get",result="not_found",store="mysql"}`) {
		t.Fatalf("expected labelled store counter in output:\n%s", out)
	}
}

func TestLabelErr(t *testing.T) {
	cases := map[string]error{
		"ok":          nil,
		"internal":    errors.New("boom"),
		"conflict":    domain.NewStoreError("create", domain.KindConflict, errors.New("dup")),
		"unavailable": domain.NewStoreError("list", domain.KindUnavailable, errors.New("conn")),
		"not_found":   domain.ErrNotFound,
	}
	for want, err := range cases {
		if got := observability.LabelErr(err); got != want {
			t.Errorf("LabelErr(%v) = %q, want %q", err, got, want)
		}
	}
}
