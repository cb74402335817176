package fit

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	adapterlog "github.com/bft-labs/pkfit/internal/adapters/log"
	"github.com/bft-labs/pkfit/internal/domain"
	"github.com/bft-labs/pkfit/internal/grid"
	"github.com/bft-labs/pkfit/internal/pk"
	"github.com/bft-labs/pkfit/internal/ports"
)

// cancelCheckInterval is how many candidates a worker evaluates between
// context checks.
const cancelCheckInterval = 256

// Fitter runs grid searches. The zero value scans sequentially and logs
// nothing. A Fitter holds no per-fit state and is safe for concurrent use.
type Fitter struct {
	workers  int
	logger   ports.Logger
	recorder ports.FitRecorder
}

// Option configures optional behavior of a Fitter.
type Option func(*Fitter)

// WithWorkers sets how many goroutines scan a grid (or fit subjects in
// FitAll). Values below 1 are treated as 1.
func WithWorkers(n int) Option {
	return func(f *Fitter) {
		f.workers = max(n, 1)
	}
}

// WithLogger sets the logger used for per-fit debug output.
func WithLogger(l ports.Logger) Option {
	return func(f *Fitter) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithRecorder sets a recorder notified after every fit.
func WithRecorder(r ports.FitRecorder) Option {
	return func(f *Fitter) {
		f.recorder = r
	}
}

// New creates a Fitter. Without options it scans sequentially and logs nothing.
func New(opts ...Option) *Fitter {
	f := &Fitter{
		workers: 1,
		logger:  adapterlog.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fitter) workerCount() int {
	return max(f.workers, 1)
}

func (f *Fitter) log() ports.Logger {
	if f.logger == nil {
		return adapterlog.NewNoopLogger()
	}
	return f.logger
}

// FitSubject fits one subject's series sequentially.
func FitSubject(series domain.SubjectSeries, spec domain.GridSpec) (domain.FitResult, error) {
	return New().FitSubject(context.Background(), series, spec)
}

// FitPooled fits a single (CL, V) to the union of all series sequentially.
func FitPooled(all []domain.SubjectSeries, spec domain.GridSpec) (domain.FitResult, error) {
	return New().FitPooled(context.Background(), all, spec)
}

// FitSubject returns the candidate minimizing the SSE over series.
func (f *Fitter) FitSubject(ctx context.Context, series domain.SubjectSeries, spec domain.GridSpec) (domain.FitResult, error) {
	return f.fit(ctx, series.ID, series.Observations, spec)
}

// FitPooled returns the candidate minimizing the SSE over the observations
// of every series. Each observation is predicted with its own dose and
// infusion duration.
func (f *Fitter) FitPooled(ctx context.Context, all []domain.SubjectSeries, spec domain.GridSpec) (domain.FitResult, error) {
	return f.fit(ctx, domain.PooledID, domain.Pool(all), spec)
}

func (f *Fitter) fit(ctx context.Context, id string, obs []domain.Observation, spec domain.GridSpec) (res domain.FitResult, err error) {
	start := time.Now()
	candidates := 0
	defer func() {
		if f.recorder != nil {
			f.recorder.ObserveFit(id, candidates, time.Since(start), domain.Kind(err))
		}
	}()

	g, err := grid.New(spec)
	if err != nil {
		return domain.FitResult{}, err
	}
	if len(obs) == 0 {
		return domain.FitResult{}, &domain.InsufficientDataError{SubjectID: id}
	}

	b, err := f.scan(ctx, g, obs)
	if err != nil {
		return domain.FitResult{}, err
	}
	candidates = g.Len()
	if !b.found {
		return domain.FitResult{}, &domain.DegenerateGridError{SubjectID: id, Candidates: g.Len()}
	}

	c := g.At(b.index)
	res = domain.FitResult{
		SubjectID:  id,
		CL:         c.CL,
		V:          c.V,
		SSE:        b.sse,
		RMSE:       pk.RMSE(b.sse, len(obs)),
		N:          len(obs),
		GridIndex:  b.index,
		Candidates: g.Len(),
	}

	f.log().Debug("fit complete",
		ports.String("subject", id),
		ports.Float64("cl", res.CL),
		ports.Float64("v", res.V),
		ports.Float64("sse", res.SSE),
		ports.Int("n", res.N),
		ports.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// best is the running minimum of a scan.
type best struct {
	sse   float64
	index int
	found bool
}

// merge returns the better of a and b by (SSE, enumeration index).
func merge(a, b best) best {
	switch {
	case !b.found:
		return a
	case !a.found:
		return b
	case b.sse < a.sse, b.sse == a.sse && b.index < a.index:
		return b
	default:
		return a
	}
}

func (f *Fitter) scan(ctx context.Context, g grid.Grid, obs []domain.Observation) (best, error) {
	spans := g.Partition(f.workerCount())
	if len(spans) == 1 {
		return scanSpan(ctx, g, obs, 0, g.Len())
	}

	local := make([]best, len(spans))
	eg, egctx := errgroup.WithContext(ctx)
	for i, s := range spans {
		eg.Go(func() error {
			b, err := scanSpan(egctx, g, obs, s[0], s[1])
			local[i] = b
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return best{}, err
	}

	var out best
	for _, b := range local {
		out = merge(out, b)
	}
	return out, nil
}

// scanSpan evaluates candidates [lo, hi) in enumeration order. A strictly
// smaller SSE is required to replace the current best, so the first
// candidate wins ties.
func scanSpan(ctx context.Context, g grid.Grid, obs []domain.Observation, lo, hi int) (best, error) {
	var b best
	for i, c := range g.Span(lo, hi) {
		if (i-lo)%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return best{}, err
			}
		}
		sse := pk.SSE(obs, c)
		if math.IsNaN(sse) || math.IsInf(sse, 0) {
			continue
		}
		if !b.found || sse < b.sse {
			b = best{sse: sse, index: i, found: true}
		}
	}
	return b, nil
}
