package storage

import (
	"context"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
)

// RunStore persists single-portfolio analyses.
type RunStore interface {
	// Insert adds a new run. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, r *domain.RunRecord) error

	// GetByID retrieves a run by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.RunRecord, error)

	// List returns up to limit runs ordered by timestamp DESC, ID ASC.
	// limit <= 0 returns all runs.
	List(ctx context.Context, limit int) ([]*domain.RunRecord, error)

	// Delete removes a run. Returns ErrNotFound if not exists.
	Delete(ctx context.Context, id string) error
}

// GridAnalysisStore persists grid analyses.
type GridAnalysisStore interface {
	// Insert adds a new analysis. Returns ErrDuplicateKey if the ID exists.
	Insert(ctx context.Context, g *domain.GridAnalysisRecord) error

	// GetByID retrieves an analysis by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.GridAnalysisRecord, error)

	// List returns up to limit analyses ordered by timestamp DESC, ID ASC.
	// limit <= 0 returns all analyses.
	List(ctx context.Context, limit int) ([]*domain.GridAnalysisRecord, error)

	// Delete removes an analysis. Returns ErrNotFound if not exists.
	Delete(ctx context.Context, id string) error
}

// TimelineBandStore persists per-year DPI/RVPI/TVPI bands of a run.
type TimelineBandStore interface {
	// InsertBulk stores all bands of a run. Returns ErrDuplicateKey if the run already has bands.
	InsertBulk(ctx context.Context, runID string, bands []domain.YearlyMetricsBand) error

	// GetByRunID returns a run's bands ordered by year ASC. Returns ErrNotFound if none exist.
	GetByRunID(ctx context.Context, runID string) ([]domain.YearlyMetricsBand, error)
}
