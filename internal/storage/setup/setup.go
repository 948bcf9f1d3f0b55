// Package setup opens the configured storage backend.
package setup

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Psymen/fundsimulation-sub000/internal/config"
	"github.com/Psymen/fundsimulation-sub000/internal/storage"
	"github.com/Psymen/fundsimulation-sub000/internal/storage/clickhouse"
	"github.com/Psymen/fundsimulation-sub000/internal/storage/memory"
	"github.com/Psymen/fundsimulation-sub000/internal/storage/migrations"
	"github.com/Psymen/fundsimulation-sub000/internal/storage/postgres"
	"github.com/Psymen/fundsimulation-sub000/internal/storage/redis"
)

// Stores holds all storage implementations.
type Stores struct {
	Runs  storage.RunStore
	Grids storage.GridAnalysisStore
	Bands storage.TimelineBandStore

	closers []func()
}

// Close releases backend connections in reverse open order.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// Open connects the record stores to cfg.Backend and the band store to
// ClickHouse when a DSN is set. Without one, bands stay in memory.
func Open(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (*Stores, error) {
	s := &Stores{}

	switch cfg.Backend {
	case config.BackendMemory, "":
		s.Runs = memory.NewRunStore()
		s.Grids = memory.NewGridAnalysisStore()

	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			s.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		s.Runs = postgres.NewRunStore(pool)
		s.Grids = postgres.NewGridAnalysisStore(pool)

	case config.BackendRedis:
		client, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		s.Runs = redis.NewRunStore(client, cfg.RedisPrefix)
		s.Grids = redis.NewGridAnalysisStore(client, cfg.RedisPrefix)

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	if cfg.ClickHouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("clickhouse: %w", err)
		}
		s.closers = append(s.closers, func() { _ = conn.Close() })
		s.Bands = clickhouse.NewTimelineBandStore(conn)
	} else {
		logger.Info().Msg("no clickhouse dsn, timeline bands kept in memory")
		s.Bands = memory.NewTimelineBandStore()
	}

	logger.Info().
		Str("backend", cfg.Backend).
		Bool("clickhouse", cfg.ClickHouseDSN != "").
		Msg("storage ready")
	return s, nil
}
