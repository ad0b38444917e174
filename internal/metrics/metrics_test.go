package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestClaimsSubmittedCounter(t *testing.T) {
	before := testutil.ToFloat64(ClaimsSubmitted.WithLabelValues("PoA Act, 1989"))
	ClaimsSubmitted.WithLabelValues("PoA Act, 1989").Inc()
	after := testutil.ToFloat64(ClaimsSubmitted.WithLabelValues("PoA Act, 1989"))

	if after-before != 1 {
		t.Errorf("expected counter to increase by 1, got %v", after-before)
	}
}

func TestHandler(t *testing.T) {
	GrievancesLodged.Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "reliefdesk_grievances_lodged_total") {
		t.Error("expected grievance counter in exposition output")
	}
}
