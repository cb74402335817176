package pk

import (
	"math"
	"testing"

	"github.com/bft-labs/pkfit/internal/domain"
)

var paramSets = []struct{ cl, v float64 }{
	{0.5, 1}, {1, 10}, {5, 20}, {10, 50}, {2.5, 300}, {50, 3},
}

func TestPredict_DuringInfusionNonDecreasing(t *testing.T) {
	const dose, tinf = 100.0, 2.0
	for _, p := range paramSets {
		prev := Predict(0, dose, tinf, p.cl, p.v)
		if prev != 0 {
			t.Errorf("CL=%v V=%v: C(0) = %v, want 0", p.cl, p.v, prev)
		}
		for i := 1; i <= 200; i++ {
			tt := tinf * float64(i) / 200
			c := Predict(tt, dose, tinf, p.cl, p.v)
			if c < 0 {
				t.Fatalf("CL=%v V=%v: C(%v) = %v is negative", p.cl, p.v, tt, c)
			}
			if c < prev {
				t.Fatalf("CL=%v V=%v: C(%v) = %v < previous %v", p.cl, p.v, tt, c, prev)
			}
			prev = c
		}
	}
}

func TestPredict_AfterInfusionStrictlyDecreasing(t *testing.T) {
	const dose, tinf = 100.0, 1.0
	for _, p := range []struct{ cl, v float64 }{{1, 10}, {5, 20}, {10, 50}, {2.5, 300}} {
		prev := Predict(tinf, dose, tinf, p.cl, p.v)
		for i := 1; i <= 100; i++ {
			tt := tinf + 0.5*float64(i)
			c := Predict(tt, dose, tinf, p.cl, p.v)
			if !(c < prev) {
				t.Fatalf("CL=%v V=%v: C(%v) = %v not below %v", p.cl, p.v, tt, c, prev)
			}
			prev = c
		}
		if far := Predict(1e4, dose, tinf, p.cl, p.v); far > 1e-9 {
			t.Errorf("CL=%v V=%v: C(1e4) = %v, want ~0", p.cl, p.v, far)
		}
	}
}

func TestPredict_ContinuousAtInfusionEnd(t *testing.T) {
	const dose = 250.0
	for _, tinf := range []float64{0.25, 1, 3.5} {
		for _, p := range paramSets {
			at := Predict(tinf, dose, tinf, p.cl, p.v)
			after := Predict(math.Nextafter(tinf, math.Inf(1)), dose, tinf, p.cl, p.v)
			if diff := math.Abs(at - after); diff > 1e-9*math.Max(1, at) {
				t.Errorf("tinf=%v CL=%v V=%v: jump %v at infusion end", tinf, p.cl, p.v, diff)
			}
		}
	}
}

func TestPredict_KnownValues(t *testing.T) {
	// R0/CL = 100/1/5 = 20, k = 0.25
	got := Predict(1, 100, 1, 5, 20)
	want := 20 * (1 - math.Exp(-0.25))
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Predict(1) = %v, want %v", got, want)
	}

	got = Predict(3, 100, 1, 5, 20)
	want = 20 * (1 - math.Exp(-0.25)) * math.Exp(-0.5)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Predict(3) = %v, want %v", got, want)
	}

	got = Predict(2, 100, 0, 5, 20)
	want = 5 * math.Exp(-0.5)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("bolus Predict(2) = %v, want %v", got, want)
	}
}

func TestPredict_InvalidParameters(t *testing.T) {
	for _, p := range []struct{ cl, v float64 }{{0, 1}, {-1, 1}, {1, 0}, {1, -5}} {
		if c := Predict(1, 100, 1, p.cl, p.v); !math.IsNaN(c) {
			t.Errorf("Predict(CL=%v, V=%v) = %v, want NaN", p.cl, p.v, c)
		}
	}
}

func TestSSE(t *testing.T) {
	c := domain.Candidate{CL: 5, V: 20}
	obs := []domain.Observation{
		{SubjectID: "1", Time: 0.5, Dose: 100, InfusionDuration: 1},
		{SubjectID: "1", Time: 4, Dose: 100, InfusionDuration: 1},
	}
	for i := range obs {
		obs[i].Conc = PredictObservation(obs[i], c)
	}
	if sse := SSE(obs, c); sse != 0 {
		t.Errorf("SSE at true parameters = %v, want 0", sse)
	}

	obs[0].Conc += 2
	if sse := SSE(obs, c); math.Abs(sse-4) > 1e-12 {
		t.Errorf("SSE with offset 2 = %v, want 4", sse)
	}

	if sse := SSE(obs, domain.Candidate{CL: 0, V: 20}); !math.IsInf(sse, 1) {
		t.Errorf("SSE for invalid candidate = %v, want +Inf", sse)
	}
}

func TestRMSE(t *testing.T) {
	if got := RMSE(8, 2); got != 2 {
		t.Errorf("RMSE(8, 2) = %v, want 2", got)
	}
	if got := RMSE(1, 0); !math.IsNaN(got) {
		t.Errorf("RMSE(1, 0) = %v, want NaN", got)
	}
}

func TestResiduals(t *testing.T) {
	c := domain.Candidate{CL: 5, V: 20}
	obs := []domain.Observation{{SubjectID: "9", Time: 1, Conc: 10, Dose: 100, InfusionDuration: 1}}
	res := Residuals(obs, c)
	if len(res) != 1 {
		t.Fatalf("len = %d, want 1", len(res))
	}
	r := res[0]
	if r.SubjectID != "9" || r.Observed != 10 {
		t.Errorf("unexpected residual %+v", r)
	}
	if math.Abs(r.Residual-(10-r.Predicted)) > 1e-15 {
		t.Errorf("Residual = %v, want %v", r.Residual, 10-r.Predicted)
	}
}
