package ports

import (
	"context"

	"github.com/bft-labs/pkfit/internal/domain"
)

// ResultSink persists the outcome of a fitting run.
type ResultSink interface {
	// Write stores the summary together with the series it was fit on.
	// Implementations should write atomically so a crash never leaves a
	// half-written result behind.
	Write(ctx context.Context, summary domain.RunSummary, series []domain.SubjectSeries) error
}
