package pkfit

import (
	"github.com/bft-labs/pkfit/internal/domain"
	"github.com/bft-labs/pkfit/internal/fit"
	"github.com/bft-labs/pkfit/internal/pk"
	"github.com/bft-labs/pkfit/internal/ports"
)

type (
	Observation    = domain.Observation
	SubjectSeries  = domain.SubjectSeries
	Candidate      = domain.Candidate
	GridSpec       = domain.GridSpec
	Spacing        = domain.Spacing
	FitResult      = domain.FitResult
	SubjectFailure = domain.SubjectFailure

	// Results holds the outcome of FitAll.
	Results = fit.Results

	// Fitter runs grid searches with a configurable number of workers.
	Fitter = fit.Fitter

	// Option configures a Fitter.
	Option = fit.Option

	// Logger is the structured logging interface accepted by WithLogger.
	Logger = ports.Logger

	// LogField is a structured log field.
	LogField = ports.Field

	// FitRecorder receives one observation per completed or failed fit.
	FitRecorder = ports.FitRecorder
)

const (
	SpacingLinear = domain.SpacingLinear
	SpacingLog    = domain.SpacingLog

	// PooledID is the subject id reported for the pooled fit.
	PooledID = domain.PooledID
)

var (
	ErrConfiguration    = domain.ErrConfiguration
	ErrInsufficientData = domain.ErrInsufficientData
	ErrDegenerateGrid   = domain.ErrDegenerateGrid
)

// Predict returns the model concentration at time t after a dose infused
// over tinf. tinf <= 0 is treated as a bolus. Invalid CL or V yield NaN.
func Predict(t, dose, tinf, cl, v float64) float64 {
	return pk.Predict(t, dose, tinf, cl, v)
}

// SSE returns the sum of squared residuals of obs under c.
func SSE(obs []Observation, c Candidate) float64 {
	return pk.SSE(obs, c)
}

// NewSubjectSeries builds a time-ordered series for one subject.
func NewSubjectSeries(id string, obs []Observation) (SubjectSeries, error) {
	return domain.NewSubjectSeries(id, obs)
}

// GroupBySubject splits observations into series ordered by subject id.
func GroupBySubject(obs []Observation) []SubjectSeries {
	return domain.GroupBySubject(obs)
}

// FitSubject fits one subject sequentially.
func FitSubject(series SubjectSeries, spec GridSpec) (FitResult, error) {
	return fit.FitSubject(series, spec)
}

// FitPooled fits one parameter set to all observations of all subjects.
func FitPooled(all []SubjectSeries, spec GridSpec) (FitResult, error) {
	return fit.FitPooled(all, spec)
}

// New creates a Fitter.
func New(opts ...Option) *Fitter {
	return fit.New(opts...)
}

// WithWorkers sets the number of parallel workers.
func WithWorkers(n int) Option { return fit.WithWorkers(n) }

// WithLogger sets the logger.
func WithLogger(l Logger) Option { return fit.WithLogger(l) }

// WithRecorder sets a recorder notified after every fit.
func WithRecorder(r FitRecorder) Option { return fit.WithRecorder(r) }
