package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5250", cfg.Server.Port)
	assert.Equal(t, "database/sales.db", cfg.Database.Path)
	assert.Equal(t, 10000, cfg.Database.ChunkSize)
	assert.Equal(t, 2001, cfg.Analysis.StartYear)
	assert.Equal(t, 2, cfg.BatchProcessing.ProcessorCount)
	assert.Equal(t, 3, cfg.BatchProcessing.MaxRetries)
	assert.Equal(t, 2, cfg.Scheduler.Hour)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_CHUNK_SIZE", "250")
	t.Setenv("ANALYSIS_START_YEAR", "2010")
	t.Setenv("SCHEDULER_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Database.ChunkSize)
	assert.Equal(t, 2010, cfg.Analysis.StartYear)
	assert.False(t, cfg.Scheduler.Enabled)
}
