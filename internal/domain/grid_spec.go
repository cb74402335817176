package domain

import "math"

// Spacing selects how grid axis values are distributed between the bounds.
type Spacing string

const (
	// SpacingLinear places values evenly between min and max.
	SpacingLinear Spacing = "linear"

	// SpacingLog places values evenly in log10 space; min must be positive.
	SpacingLog Spacing = "log"
)

// Candidate is a (CL, V) parameter pair.
type Candidate struct {
	CL float64
	V  float64
}

// K returns the elimination rate constant CL / V.
func (c Candidate) K() float64 {
	return c.CL / c.V
}

// Valid reports whether both parameters are positive.
func (c Candidate) Valid() bool {
	return c.CL > 0 && c.V > 0
}

// GridSpec bounds the (CL, V) search space and sets its resolution.
// Both bounds are inclusive.
type GridSpec struct {
	CLMin   float64 `json:"cl_min" toml:"cl_min"`
	CLMax   float64 `json:"cl_max" toml:"cl_max"`
	CLSteps int     `json:"cl_steps" toml:"cl_steps"`
	VMin    float64 `json:"v_min" toml:"v_min"`
	VMax    float64 `json:"v_max" toml:"v_max"`
	VSteps  int     `json:"v_steps" toml:"v_steps"`
	Spacing Spacing `json:"spacing" toml:"spacing"`
}

// Size returns the number of candidates the grid enumerates.
func (g GridSpec) Size() int {
	return g.CLSteps * g.VSteps
}

// Validate checks the bounds and resolution.
// An empty Spacing is treated as linear.
func (g GridSpec) Validate() error {
	if err := validateAxis("cl", g.CLMin, g.CLMax, g.CLSteps); err != nil {
		return err
	}
	if err := validateAxis("v", g.VMin, g.VMax, g.VSteps); err != nil {
		return err
	}

	switch g.Spacing {
	case "", SpacingLinear:
	case SpacingLog:
		if g.CLMin <= 0 {
			return &ConfigurationError{Field: "cl_min", Reason: "log spacing requires a positive lower bound"}
		}
		if g.VMin <= 0 {
			return &ConfigurationError{Field: "v_min", Reason: "log spacing requires a positive lower bound"}
		}
	default:
		return &ConfigurationError{Field: "spacing", Reason: "must be linear or log, got " + string(g.Spacing)}
	}
	return nil
}

func validateAxis(name string, lo, hi float64, steps int) error {
	if math.IsNaN(lo) || math.IsInf(lo, 0) {
		return &ConfigurationError{Field: name + "_min", Reason: "must be finite"}
	}
	if math.IsNaN(hi) || math.IsInf(hi, 0) {
		return &ConfigurationError{Field: name + "_max", Reason: "must be finite"}
	}
	if lo > hi {
		return &ConfigurationError{Field: name + "_min", Reason: "must not exceed " + name + "_max"}
	}
	if steps <= 0 {
		return &ConfigurationError{Field: name + "_steps", Reason: "must be positive"}
	}
	return nil
}
