package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	adapterlog "github.com/bft-labs/pkfit/internal/adapters/log"
	"github.com/bft-labs/pkfit/internal/domain"
	"github.com/bft-labs/pkfit/internal/fit"
	"github.com/bft-labs/pkfit/internal/ports"
)

// RunConfig contains the grid settings for a run.
type RunConfig struct {
	Grid domain.GridSpec

	// PooledGrid is used for the pooled fit. Zero value means Grid.
	PooledGrid domain.GridSpec
}

// pooledGrid returns the effective pooled grid.
func (c RunConfig) pooledGrid() domain.GridSpec {
	if c.PooledGrid == (domain.GridSpec{}) {
		return c.Grid
	}
	return c.PooledGrid
}

// RunCompleter is notified after every successful run.
type RunCompleter interface {
	OnRunComplete(summary domain.RunSummary)
}

// Runner loads observations, fits every subject and the pooled set, and
// hands the summary to the sink.
type Runner struct {
	config   RunConfig
	source   ports.ObservationSource
	metadata ports.MetadataSource
	sink     ports.ResultSink
	fitter   *fit.Fitter
	logger   ports.Logger
	onDone   RunCompleter
	now      func() time.Time
}

// RunnerOption configures optional behavior of a Runner.
type RunnerOption func(*Runner)

// WithMetadata sets the study metadata source.
func WithMetadata(m ports.MetadataSource) RunnerOption {
	return func(r *Runner) { r.metadata = m }
}

// WithRunLogger sets the logger.
func WithRunLogger(l ports.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRunCompleter registers a callback for completed runs.
func WithRunCompleter(c RunCompleter) RunnerOption {
	return func(r *Runner) { r.onDone = c }
}

// NewRunner creates a runner with the given dependencies.
func NewRunner(config RunConfig, source ports.ObservationSource, sink ports.ResultSink, fitter *fit.Fitter, opts ...RunnerOption) *Runner {
	r := &Runner{
		config: config,
		source: source,
		sink:   sink,
		fitter: fitter,
		logger: adapterlog.NewNoopLogger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one complete fitting run.
// Subjects that cannot be fit are reported in the summary and do not fail
// the run. The run fails on invalid grids, unreadable input, an empty
// dataset, a sink error, or cancellation.
func (r *Runner) Run(ctx context.Context) (domain.RunSummary, error) {
	started := r.now()
	summary := domain.RunSummary{
		RunID:      uuid.NewString(),
		StartedAt:  started,
		Grid:       r.config.Grid,
		PooledGrid: r.config.pooledGrid(),
	}

	obs, err := r.source.Load(ctx)
	if err != nil {
		return summary, fmt.Errorf("load observations: %w", err)
	}
	if len(obs) == 0 {
		return summary, &domain.InsufficientDataError{SubjectID: domain.PooledID}
	}

	if r.metadata != nil {
		md, err := r.metadata.LoadMetadata(ctx)
		if err != nil {
			r.logger.Warn("failed to load metadata", ports.Err(err))
		}
		summary.Metadata = md
	}

	series := domain.GroupBySubject(obs)
	summary.Dataset = domain.Describe(series)
	r.logger.Info("fitting",
		ports.String("run", summary.RunID),
		ports.Int("subjects", summary.Dataset.Subjects),
		ports.Int("observations", summary.Dataset.Observations),
		ports.Int("candidates", summary.Grid.Size()),
	)

	res, err := r.fitter.FitAll(ctx, series, summary.Grid, summary.PooledGrid)
	if err != nil {
		return summary, fmt.Errorf("fit: %w", err)
	}
	summary.Subjects = res.Subjects
	summary.Failures = res.Failures
	summary.Pooled = res.Pooled
	summary.Duration = r.now().Sub(started)

	if err := r.sink.Write(ctx, summary, series); err != nil {
		return summary, fmt.Errorf("write results: %w", err)
	}

	fields := []ports.Field{
		ports.String("run", summary.RunID),
		ports.Int("fitted", len(summary.Subjects)),
		ports.Int("failed", len(summary.Failures)),
		ports.Duration("duration", summary.Duration),
	}
	if summary.Pooled != nil {
		fields = append(fields,
			ports.Float64("pooled_cl", summary.Pooled.CL),
			ports.Float64("pooled_v", summary.Pooled.V),
			ports.Float64("pooled_rmse", summary.Pooled.RMSE),
		)
	}
	r.logger.Info("run complete", fields...)

	if r.onDone != nil {
		r.onDone.OnRunComplete(summary)
	}
	return summary, nil
}
