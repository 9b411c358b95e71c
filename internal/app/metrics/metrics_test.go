package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                  "/",
		"/":                 "/",
		"/book":             "/book",
		"/book/42":          "/book/:id",
		"/member/7/":        "/member/:id",
		"/issuance":         "/issuance",
		"/issuance/pending": "/issuance/pending",
		"/healthz":          "/healthz",
		"/wp-admin/x":       "/other",
	}
	for in, want := range cases {
		if got := canonicalPath(in); got != want {
			t.Errorf("canonicalPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInstrumentHandlerCountsStatus(t *testing.T) {
	h := InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/book/:id", "404"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/book/99", nil))
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/book/:id", "404"))
	if after-before != 1 {
		t.Fatalf("expected counter to grow by 1, got %v", after-before)
	}
}

func TestHandlerExposesPendingGauge(t *testing.T) {
	SetPendingReturns(3)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "library_issuance_pending_returns 3") {
		t.Fatalf("gauge missing from exposition")
	}
}

func TestRecordIssueAttempt(t *testing.T) {
	before := testutil.ToFloat64(issueAttempts.WithLabelValues(OutcomeConflict))
	RecordIssueAttempt(OutcomeConflict, 3*time.Millisecond)
	if got := testutil.ToFloat64(issueAttempts.WithLabelValues(OutcomeConflict)) - before; got != 1 {
		t.Fatalf("expected one conflict, got %v", got)
	}

	before = testutil.ToFloat64(issueAttempts.WithLabelValues(OutcomeError))
	RecordIssueAttempt("", 0)
	if got := testutil.ToFloat64(issueAttempts.WithLabelValues(OutcomeError)) - before; got != 1 {
		t.Fatalf("empty outcome should count as error, got %v", got)
	}
}

func TestInstrumentHandlerDefaultsToOK(t *testing.T) {
	h := InstrumentHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/healthz", "200"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if got := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/healthz", "200")) - before; got != 1 {
		t.Fatalf("expected 200 to be recorded, got %v", got)
	}
}
