package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/bft-labs/pkfit/internal/domain"
)

func TestRecorder_ObserveFit(t *testing.T) {
	r := NewRecorder()
	r.ObserveFit("1", 625, 3*time.Millisecond, "")
	r.ObserveFit("2", 625, time.Millisecond, "DegenerateGridError")
	r.ObserveFit(domain.PooledID, 900, 10*time.Millisecond, "")

	if got := testutil.ToFloat64(r.fits.WithLabelValues("subject", "ok")); got != 1 {
		t.Errorf("subject ok fits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.fits.WithLabelValues("subject", "DegenerateGridError")); got != 1 {
		t.Errorf("subject degenerate fits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.candidates.WithLabelValues("subject")); got != 1250 {
		t.Errorf("subject candidates = %v, want 1250", got)
	}
	if got := testutil.ToFloat64(r.candidates.WithLabelValues("pooled")); got != 900 {
		t.Errorf("pooled candidates = %v, want 900", got)
	}
}

func TestRecorder_Gatherer(t *testing.T) {
	r := NewRecorder()
	r.ObserveFit("1", 25, time.Millisecond, "")
	r.ObserveFit("2", 25, time.Millisecond, "InsufficientDataError")
	r.ObserveFit(domain.PooledID, 25, time.Millisecond, "")

	expected := `
# HELP pkfit_fits_total Total number of grid-search fits by scope and outcome
# TYPE pkfit_fits_total counter
pkfit_fits_total{outcome="InsufficientDataError",scope="subject"} 1
pkfit_fits_total{outcome="ok",scope="pooled"} 1
pkfit_fits_total{outcome="ok",scope="subject"} 1
# HELP pkfit_candidates_evaluated_total Total number of (CL, V) candidates evaluated
# TYPE pkfit_candidates_evaluated_total counter
pkfit_candidates_evaluated_total{scope="pooled"} 25
pkfit_candidates_evaluated_total{scope="subject"} 50
`
	if err := testutil.GatherAndCompare(r.Gatherer(), strings.NewReader(expected),
		"pkfit_fits_total", "pkfit_candidates_evaluated_total"); err != nil {
		t.Error(err)
	}
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveFit("1", 10, time.Millisecond, "")
	r.MarkRun(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "pkfit.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		`pkfit_fits_total{outcome="ok",scope="subject"} 1`,
		"pkfit_last_run_timestamp_seconds 1.7e+09",
		"pkfit_fit_duration_seconds_bucket",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q\n%s", want, out)
		}
	}
}
