package ports

import (
	"context"

	"github.com/bft-labs/pkfit/internal/domain"
)

// ObservationSource supplies the observations a run fits.
// Implementations validate every observation before returning it.
type ObservationSource interface {
	// Load returns all observations, in source order.
	Load(ctx context.Context) ([]domain.Observation, error)
}

// MetadataSource supplies optional study metadata.
type MetadataSource interface {
	// LoadMetadata returns empty metadata and nil error when none exists.
	LoadMetadata(ctx context.Context) (domain.StudyMetadata, error)
}
