package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Psymen/fundsimulation-sub000/internal/config"
)

func TestLoadConfig_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadConfig("", ":9090", config.BackendMemory)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.HTTPAddr)
	assert.Equal(t, config.BackendMemory, cfg.Storage.Backend)

	_, err = loadConfig("", "", "sqlite")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage backend")

	_, err = loadConfig("missing.yaml", "", "")
	require.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadConfig("", "127.0.0.1:0", "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, run(ctx, cfg))
}
