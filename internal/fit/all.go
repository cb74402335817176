package fit

import (
	"context"
	"errors"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/pkfit/internal/domain"
	"github.com/bft-labs/pkfit/internal/ports"
)

// Results bundles the per-subject fits with the pooled fit.
type Results struct {
	// Subjects holds one result per successfully fit subject, ordered by id
	Subjects []domain.FitResult

	// Failures holds subjects (and possibly the pooled set) that could not be fit
	Failures []domain.SubjectFailure

	// Pooled is nil when the pooled fit failed
	Pooled *domain.FitResult
}

// FitAll fits every series and then the pooled set.
//
// Subjects are fit concurrently, up to the configured worker count, each
// with a sequential scan. A subject that cannot be fit is recorded in
// Failures and does not stop the others. The pooled fit uses pooledSpec
// and the parallel scan.
//
// FitAll returns an error only when a grid spec is invalid or ctx is done.
func (f *Fitter) FitAll(ctx context.Context, all []domain.SubjectSeries, spec, pooledSpec domain.GridSpec) (Results, error) {
	if err := spec.Validate(); err != nil {
		return Results{}, err
	}
	if err := pooledSpec.Validate(); err != nil {
		return Results{}, err
	}

	sequential := &Fitter{workers: 1, logger: f.log(), recorder: f.recorder}

	var (
		mu  sync.Mutex
		out Results
	)
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(f.workerCount())
	for _, s := range all {
		eg.Go(func() error {
			res, err := sequential.FitSubject(egctx, s, spec)
			if err != nil {
				if isContextErr(err) {
					return err
				}
				f.log().Warn("subject fit failed",
					ports.String("subject", s.ID),
					ports.String("kind", domain.Kind(err)),
					ports.Err(err),
				)
				mu.Lock()
				out.Failures = append(out.Failures, failure(s.ID, err))
				mu.Unlock()
				return nil
			}
			mu.Lock()
			out.Subjects = append(out.Subjects, res)
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Results{}, err
	}

	sort.Slice(out.Subjects, func(i, j int) bool { return out.Subjects[i].SubjectID < out.Subjects[j].SubjectID })
	sort.Slice(out.Failures, func(i, j int) bool { return out.Failures[i].SubjectID < out.Failures[j].SubjectID })

	pooled, err := f.FitPooled(ctx, all, pooledSpec)
	switch {
	case err == nil:
		out.Pooled = &pooled
	case isContextErr(err):
		return Results{}, err
	default:
		f.log().Warn("pooled fit failed", ports.String("kind", domain.Kind(err)), ports.Err(err))
		out.Failures = append(out.Failures, failure(domain.PooledID, err))
	}
	return out, nil
}

func failure(id string, err error) domain.SubjectFailure {
	return domain.SubjectFailure{SubjectID: id, Kind: domain.Kind(err), Message: err.Error()}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
