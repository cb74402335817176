// Package fit estimates (CL, V) by exhaustive grid search.
//
// Every candidate of the grid is evaluated against the observation set and
// the candidate with the smallest sum of squared errors wins. Ties go to the
// candidate that comes first in enumeration order (ascending CL, then
// ascending V). Candidates with a non-positive parameter, or whose objective
// is not finite, are skipped.
//
// # Parallelism
//
// A Fitter configured with more than one worker splits the enumeration into
// contiguous spans, scans them concurrently, and merges the span winners by
// (SSE, enumeration index). The merged result is bit-identical to a
// sequential scan. FitAll fits subjects concurrently instead and scans each
// subject's grid sequentially.
//
// # Usage
//
//	res, err := fit.FitSubject(series, spec)
//
// or, with options and cancellation:
//
//	f := fit.New(fit.WithWorkers(runtime.NumCPU()), fit.WithLogger(logger))
//	res, err := f.FitPooled(ctx, all, spec)
package fit
