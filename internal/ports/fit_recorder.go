package ports

import "time"

// FitRecorder receives a measurement for every completed or failed fit.
type FitRecorder interface {
	// ObserveFit is called once per fit. kind is empty on success and the
	// error class name otherwise.
	ObserveFit(subjectID string, candidates int, elapsed time.Duration, kind string)
}
