// Package pkfit provides embeddable one-compartment IV infusion fitting.
//
// It exposes the forward model and the grid-search fitter used by the pkfit
// CLI so other Go programs can fit concentration-time data directly.
//
// # Basic Usage
//
//	spec := pkfit.GridSpec{
//	    CLMin: 0.1, CLMax: 50, CLSteps: 25,
//	    VMin: 1, VMax: 300, VSteps: 25,
//	    Spacing: pkfit.SpacingLog,
//	}
//
//	series, err := pkfit.NewSubjectSeries("101", observations)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := pkfit.FitSubject(series, spec)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.CL, res.V, res.RMSE)
//
// # Parallel Fitting
//
// [New] returns a [Fitter] that splits the grid over several workers. Results
// are identical to the sequential scan, including tie-breaking:
//
//	f := pkfit.New(pkfit.WithWorkers(runtime.NumCPU()))
//	res, err := f.FitAll(ctx, pkfit.GroupBySubject(observations), spec, spec)
//
// # Errors
//
// Failures match [ErrConfiguration], [ErrInsufficientData] or
// [ErrDegenerateGrid] with errors.Is.
package pkfit
