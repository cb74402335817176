// Package pk implements the one-compartment intravenous infusion model with
// first-order elimination and the least-squares objective used to fit it.
package pk

import (
	"math"

	"github.com/bft-labs/pkfit/internal/domain"
)

// Predict returns the plasma concentration at time t after a dose infused
// at constant rate over tinf, for clearance cl and volume v.
//
// With R0 = dose/tinf and k = cl/v:
//
//	t <= tinf: C = R0/cl * (1 - exp(-k t))
//	t >  tinf: C = R0/cl * (1 - exp(-k tinf)) * exp(-k (t - tinf))
//
// A non-positive tinf is a bolus: C = dose/v * exp(-k t).
// Predict returns NaN when cl or v is not positive.
func Predict(t, dose, tinf, cl, v float64) float64 {
	if cl <= 0 || v <= 0 {
		return math.NaN()
	}
	k := cl / v
	if tinf <= 0 {
		return dose / v * math.Exp(-k*t)
	}
	css := dose / tinf / cl
	if t <= tinf {
		return css * -math.Expm1(-k*t)
	}
	return css * -math.Expm1(-k*tinf) * math.Exp(-k*(t-tinf))
}

// PredictObservation evaluates the model at an observation's time using
// that observation's own dose and infusion duration.
func PredictObservation(o domain.Observation, c domain.Candidate) float64 {
	return Predict(o.Time, o.Dose, o.InfusionDuration, c.CL, c.V)
}

// SSE returns the sum of squared errors between observed and predicted
// concentrations. An invalid candidate costs +Inf.
func SSE(obs []domain.Observation, c domain.Candidate) float64 {
	if !c.Valid() {
		return math.Inf(1)
	}
	var sse float64
	for _, o := range obs {
		d := o.Conc - PredictObservation(o, c)
		sse += d * d
	}
	return sse
}

// RMSE returns sqrt(sse/n).
func RMSE(sse float64, n int) float64 {
	if n <= 0 {
		return math.NaN()
	}
	return math.Sqrt(sse / float64(n))
}

// Residual pairs an observation with its model prediction.
type Residual struct {
	SubjectID string
	Time      float64
	Observed  float64
	Predicted float64
	Residual  float64
}

// Residuals evaluates c at every observation.
func Residuals(obs []domain.Observation, c domain.Candidate) []Residual {
	out := make([]Residual, 0, len(obs))
	for _, o := range obs {
		pred := PredictObservation(o, c)
		out = append(out, Residual{
			SubjectID: o.SubjectID,
			Time:      o.Time,
			Observed:  o.Conc,
			Predicted: pred,
			Residual:  o.Conc - pred,
		})
	}
	return out
}
