package providers

import (
	"context"

	"research-pilot/models"
)

// Provider is the interface every bibliographic search backend implements.
type Provider interface {
	// Search runs one query against the backend and returns standardized
	// Paper records. An empty slice is a valid, non-error result.
	Search(ctx context.Context, query string) ([]*models.Paper, error)

	// Name returns the unique provider name (e.g. "arxiv").
	Name() string
}
