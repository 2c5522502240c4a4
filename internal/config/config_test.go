package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "matcat/internal/core/numerator"
)

// chdirTemp runs the test in an empty directory so no stray config.yaml or .env is read.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "matcat", cfg.App.Name)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 100, cfg.HTTP.MaxPageSize)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "lenient", cfg.Numerator.Strategy)
	assert.Equal(t, 4, cfg.Numerator.PadWidth)
	assert.Equal(t, "CAT", cfg.Seed.DefaultPrefix)
	assert.Equal(t, DefaultCategoryPrefixes(), cfg.Seed.CategoryPrefixes)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.True(t, cfg.IsDevelopment())

	// No database URL configured.
	assert.Error(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("MATCAT_DATABASE_URL", "postgres://u:p@localhost:5432/matcat")
	t.Setenv("MATCAT_NUMERATOR_STRATEGY", "serialized")
	t.Setenv("MATCAT_HTTP_MAX_PAGE_SIZE", "50")
	t.Setenv("MATCAT_SEED_CATEGORY_PREFIXES", "1:STL, 9:WOD")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "postgres://u:p@localhost:5432/matcat", cfg.Database.URL)
	assert.Equal(t, 50, cfg.HTTP.MaxPageSize)
	assert.Equal(t, map[int64]string{1: "STL", 9: "WOD"}, cfg.Seed.CategoryPrefixes)

	opts, err := cfg.NumeratorOptions()
	require.NoError(t, err)
	assert.Equal(t, corenumerator.StrategySerialized, opts.Strategy)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := chdirTemp(t)
	yaml := `
app:
  port: "9090"
database:
  url: postgres://localhost/matcat
seed:
  enabled: true
  category_prefixes:
    1: MTL
    5: WOD
`
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.True(t, cfg.Seed.Enabled)
	assert.Equal(t, map[int64]string{1: "MTL", 5: "WOD"}, cfg.Seed.CategoryPrefixes)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	chdirTemp(t)
	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdirTemp(t)
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Database.URL = "postgres://localhost/matcat"
	require.NoError(t, cfg.Validate())

	cfg.Numerator.Strategy = "optimistic"
	assert.Error(t, cfg.Validate())
}

func TestParseCategoryPrefixes_Invalid(t *testing.T) {
	for _, raw := range []any{"x:MTL", "1", "1:", 42} {
		_, err := parseCategoryPrefixes(raw)
		assert.Error(t, err, "%v", raw)
	}
}

func TestConfig_PoolAndLoggerConfig(t *testing.T) {
	chdirTemp(t)
	t.Setenv("MATCAT_DATABASE_URL", "postgres://localhost/matcat")
	t.Setenv("MATCAT_DATABASE_MAX_CONNS", "7")
	t.Setenv("MATCAT_APP_ENV", "production")
	t.Setenv("MATCAT_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	pc := cfg.PoolConfig()
	assert.Equal(t, "postgres://localhost/matcat", pc.DSN)
	assert.Equal(t, "matcat", pc.ApplicationName)
	assert.Equal(t, int32(7), pc.MaxConns)
	assert.Equal(t, time.Hour, pc.MaxConnLifetime)

	lc := cfg.LoggerConfig()
	assert.Equal(t, "warn", lc.Level)
	assert.False(t, lc.Development)
}
