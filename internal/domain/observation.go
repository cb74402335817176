package domain

import (
	"fmt"
	"math"
	"sort"
)

// Observation is a single timed concentration sample.
type Observation struct {
	// SubjectID identifies the subject the sample was drawn from
	SubjectID string

	// Time is the sampling time since the start of the infusion
	Time float64

	// Conc is the observed plasma concentration
	Conc float64

	// Dose is the total administered dose
	Dose float64

	// InfusionDuration is the length of the constant-rate infusion.
	// Zero means the dose was given as a bolus.
	InfusionDuration float64

	// Condition is the raw study condition the duration was parsed from
	Condition string
}

// Validate checks the observation invariants.
func (o Observation) Validate() error {
	switch {
	case o.SubjectID == "":
		return fmt.Errorf("subject id is required")
	case !finite(o.Time) || o.Time < 0:
		return fmt.Errorf("time must be a non-negative number, got %v", o.Time)
	case !finite(o.Conc) || o.Conc < 0:
		return fmt.Errorf("concentration must be a non-negative number, got %v", o.Conc)
	case !finite(o.Dose) || o.Dose <= 0:
		return fmt.Errorf("dose must be positive, got %v", o.Dose)
	case !finite(o.InfusionDuration) || o.InfusionDuration < 0:
		return fmt.Errorf("infusion duration must be non-negative, got %v", o.InfusionDuration)
	}
	return nil
}

// SubjectSeries is a subject's observations ordered by time.
// Construct it with NewSubjectSeries.
type SubjectSeries struct {
	ID           string
	Observations []Observation
}

// NewSubjectSeries builds a series for id, ordering the observations by time.
// The input slice is not modified. Every observation must carry id.
func NewSubjectSeries(id string, obs []Observation) (SubjectSeries, error) {
	sorted := make([]Observation, len(obs))
	copy(sorted, obs)
	for _, o := range sorted {
		if o.SubjectID != id {
			return SubjectSeries{}, fmt.Errorf("observation for subject %q in series %q", o.SubjectID, id)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return SubjectSeries{ID: id, Observations: sorted}, nil
}

// Len returns the number of observations in the series.
func (s SubjectSeries) Len() int {
	return len(s.Observations)
}

// GroupBySubject splits observations into one series per subject,
// ordered by subject id.
func GroupBySubject(obs []Observation) []SubjectSeries {
	byID := make(map[string][]Observation)
	var ids []string
	for _, o := range obs {
		if _, ok := byID[o.SubjectID]; !ok {
			ids = append(ids, o.SubjectID)
		}
		byID[o.SubjectID] = append(byID[o.SubjectID], o)
	}
	sort.Strings(ids)

	out := make([]SubjectSeries, 0, len(ids))
	for _, id := range ids {
		// ids come from the observations themselves, so this cannot fail
		s, _ := NewSubjectSeries(id, byID[id])
		out = append(out, s)
	}
	return out
}

// Pool concatenates the observations of all series in order.
func Pool(all []SubjectSeries) []Observation {
	n := 0
	for _, s := range all {
		n += s.Len()
	}
	out := make([]Observation, 0, n)
	for _, s := range all {
		out = append(out, s.Observations...)
	}
	return out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
