package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/storage"
)

// TimelineBandStore implements storage.TimelineBandStore using ClickHouse.
type TimelineBandStore struct {
	conn *Conn
}

// NewTimelineBandStore creates a new TimelineBandStore.
func NewTimelineBandStore(conn *Conn) *TimelineBandStore {
	return &TimelineBandStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TimelineBandStore = (*TimelineBandStore)(nil)

// InsertBulk stores all bands of a run in one batch.
// ReplacingMergeTree would silently merge a second write, so existing runs are rejected up front.
func (s *TimelineBandStore) InsertBulk(ctx context.Context, runID string, bands []domain.YearlyMetricsBand) (err error) {
	defer func(start time.Time) { observe("insert_bands", start, err) }(time.Now())

	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(bands) == 0 {
		return nil
	}

	exists, err := s.exists(ctx, runID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO timeline_bands (
			run_id, year,
			dpi_p10, dpi_p50, dpi_p90,
			rvpi_p10, rvpi_p50, rvpi_p90,
			tvpi_p10, tvpi_p50, tvpi_p90
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, b := range bands {
		if err := batch.Append(
			runID, uint16(b.Year),
			b.DPIP10, b.DPIP50, b.DPIP90,
			b.RVPIP10, b.RVPIP50, b.RVPIP90,
			b.TVPIP10, b.TVPIP50, b.TVPIP90,
		); err != nil {
			return fmt.Errorf("append band: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByRunID returns a run's bands ordered by year ASC.
func (s *TimelineBandStore) GetByRunID(ctx context.Context, runID string) (_ []domain.YearlyMetricsBand, err error) {
	defer func(start time.Time) { observe("get_bands", start, err) }(time.Now())

	rows, err := s.conn.Query(ctx, `
		SELECT
			year,
			dpi_p10, dpi_p50, dpi_p90,
			rvpi_p10, rvpi_p50, rvpi_p90,
			tvpi_p10, tvpi_p50, tvpi_p90
		FROM timeline_bands FINAL
		WHERE run_id = ?
		ORDER BY year ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query bands: %w", err)
	}
	defer rows.Close()

	var result []domain.YearlyMetricsBand
	for rows.Next() {
		var (
			year uint16
			b    domain.YearlyMetricsBand
		)
		if err := rows.Scan(
			&year,
			&b.DPIP10, &b.DPIP50, &b.DPIP90,
			&b.RVPIP10, &b.RVPIP50, &b.RVPIP90,
			&b.TVPIP10, &b.TVPIP50, &b.TVPIP90,
		); err != nil {
			return nil, fmt.Errorf("scan band: %w", err)
		}
		b.Year = int(year)
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bands: %w", err)
	}

	if len(result) == 0 {
		return nil, storage.ErrNotFound
	}
	return result, nil
}

func (s *TimelineBandStore) exists(ctx context.Context, runID string) (bool, error) {
	var count uint64
	row := s.conn.QueryRow(ctx, `SELECT count() FROM timeline_bands WHERE run_id = ?`, runID)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
