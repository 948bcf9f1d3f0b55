// Package config loads service configuration from an optional YAML file,
// a .env file and FUNDSIM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FUNDSIM_SERVER_HTTP_ADDR.
const EnvPrefix = "FUNDSIM"

// Storage backends
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

type ServerConfig struct {
	HTTPAddr    string   `mapstructure:"http_addr"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | console
}

type StorageConfig struct {
	Backend       string `mapstructure:"backend"`
	PostgresDSN   string `mapstructure:"postgres_dsn"`
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
	RedisPrefix   string `mapstructure:"redis_prefix"`
	ClickHouseDSN string `mapstructure:"clickhouse_dsn"` // optional, enables timeline band analytics
}

type SimulationConfig struct {
	Workers     int    `mapstructure:"workers"` // 0 = GOMAXPROCS
	GridWorkers int    `mapstructure:"grid_workers"`
	Seed        uint64 `mapstructure:"seed"` // 0 = time-derived per run

	// MaxWorkload caps companies x simulations per request, summed over
	// every cell for a grid analysis. 0 disables the ceiling.
	MaxWorkload int64 `mapstructure:"max_workload"`
}

// DefaultMaxWorkload allows e.g. 5000 simulations of 1000 companies.
const DefaultMaxWorkload = 5_000_000

// Load reads configuration. An empty path skips the YAML file and uses
// defaults plus environment. A .env file in the working directory is loaded
// first when present and never overrides variables already set.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("storage.backend", BackendMemory)
	v.SetDefault("storage.postgres_dsn", "")
	v.SetDefault("storage.redis_addr", "localhost:6379")
	v.SetDefault("storage.redis_password", "")
	v.SetDefault("storage.redis_db", 0)
	v.SetDefault("storage.redis_prefix", "fundsim")
	v.SetDefault("storage.clickhouse_dsn", "")
	v.SetDefault("simulation.workers", 0)
	v.SetDefault("simulation.grid_workers", 0)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.max_workload", DefaultMaxWorkload)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("storage.postgres_dsn is required for the postgres backend")
		}
	case BackendRedis:
		if c.Storage.RedisAddr == "" {
			return errors.New("storage.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Simulation.Workers < 0 || c.Simulation.GridWorkers < 0 {
		return errors.New("simulation worker counts must be >= 0")
	}
	if c.Simulation.MaxWorkload < 0 {
		return errors.New("simulation.max_workload must be >= 0")
	}
	return nil
}
