package domain

import (
	"sort"
	"time"
)

// PooledID is the subject id reported for the pooled fit.
const PooledID = "pooled"

// FitResult is the best candidate found for one observation set.
type FitResult struct {
	// SubjectID is the subject id, or PooledID for the pooled fit
	SubjectID string `json:"id"`

	CL   float64 `json:"cl"`
	V    float64 `json:"v"`
	SSE  float64 `json:"sse"`
	RMSE float64 `json:"rmse"`

	// N is the number of observations fitted
	N int `json:"n"`

	// GridIndex is the enumeration index of the winning candidate
	GridIndex int `json:"grid_index"`

	// Candidates is the number of grid candidates evaluated
	Candidates int `json:"candidates"`
}

// K returns the elimination rate constant of the fitted parameters.
func (r FitResult) K() float64 {
	return r.CL / r.V
}

// SubjectFailure records a subject that could not be fit.
type SubjectFailure struct {
	SubjectID string `json:"id"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
}

// DatasetStats summarizes the observations a run consumed.
type DatasetStats struct {
	Subjects          int       `json:"subjects"`
	Observations      int       `json:"observations"`
	MinTime           float64   `json:"min_time"`
	MaxTime           float64   `json:"max_time"`
	Doses             []float64 `json:"doses"`
	InfusionDurations []float64 `json:"infusion_durations"`
}

// Describe computes dataset statistics for the given series.
func Describe(all []SubjectSeries) DatasetStats {
	st := DatasetStats{Subjects: len(all)}
	doses := map[float64]struct{}{}
	tinfs := map[float64]struct{}{}
	first := true
	for _, s := range all {
		for _, o := range s.Observations {
			st.Observations++
			if first || o.Time < st.MinTime {
				st.MinTime = o.Time
			}
			if first || o.Time > st.MaxTime {
				st.MaxTime = o.Time
			}
			first = false
			doses[o.Dose] = struct{}{}
			tinfs[o.InfusionDuration] = struct{}{}
		}
	}
	st.Doses = sortedKeys(doses)
	st.InfusionDurations = sortedKeys(tinfs)
	return st
}

// RunSummary is everything a fitting run produced.
type RunSummary struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	Duration   time.Duration    `json:"duration_ns"`
	Grid       GridSpec         `json:"grid"`
	PooledGrid GridSpec         `json:"pooled_grid"`
	Dataset    DatasetStats     `json:"dataset"`
	Metadata   StudyMetadata    `json:"metadata"`
	Subjects   []FitResult      `json:"subjects"`
	Failures   []SubjectFailure `json:"failures,omitempty"`
	Pooled     *FitResult       `json:"pooled,omitempty"`
}

// BestByRMSE returns up to n subject results with the lowest RMSE.
func (s RunSummary) BestByRMSE(n int) []FitResult {
	out := make([]FitResult, len(s.Subjects))
	copy(out, s.Subjects)
	sort.SliceStable(out, func(i, j int) bool { return out[i].RMSE < out[j].RMSE })
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// TotalSubjectSSE sums the best SSE over all fitted subjects.
func (s RunSummary) TotalSubjectSSE() float64 {
	var total float64
	for _, r := range s.Subjects {
		total += r.SSE
	}
	return total
}

func sortedKeys(m map[float64]struct{}) []float64 {
	out := make([]float64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Float64s(out)
	return out
}
