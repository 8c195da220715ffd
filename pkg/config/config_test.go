package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, EnvDevelopment, cfg.Env)
	require.Equal(t, "/api/v1", cfg.APIPrefix)
	require.True(t, cfg.Statistics.CacheEnabled)
	require.Equal(t, 10*time.Minute, cfg.Statistics.CacheTTL)
	require.Equal(t, "@every 30m", cfg.Statistics.RefreshSchedule)
	require.Equal(t, int64(10*1024*1024), cfg.Import.MaxFileSizeBytes)
	require.Equal(t, 20, cfg.Import.AcademicGroups)
	require.Equal(t, 1, cfg.Jobs.Workers)
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("STATISTICS_CACHE_TTL", "90s")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("IMPORT_SHEET_NAME", "Students")
	t.Setenv("JOBS_RETRY_DELAY", "not-a-duration")
	t.Setenv("STATISTICS_REFRESH_SCHEDULE", "OFF")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 90*time.Second, cfg.Statistics.CacheTTL)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	require.Equal(t, "Students", cfg.Import.SheetName)
	require.Equal(t, 2*time.Second, cfg.Jobs.RetryDelay)
	require.Empty(t, cfg.Statistics.RefreshSchedule)
}
