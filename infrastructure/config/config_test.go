package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.KVDriver)
	assert.Equal(t, 30*time.Second, cfg.UploadTimeout)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, "@daily", cfg.CleanupSchedule)
	assert.Equal(t, TracingNone, cfg.TracingExporter)
}

func TestLoadConfig_TracingFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TRACING_EXPORTER", "OTLP")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("TRACE_SAMPLE_RATE", "0.25")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, TracingOTLP, cfg.TracingExporter)
	assert.Equal(t, "collector:4317", cfg.OTLPEndpoint)
	assert.Equal(t, 0.25, cfg.TraceSampleRate)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memebase.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logLevel: debug
kvDriver: sqlite
sqlitePath: /tmp/from-file.db
uploadTimeout: 5s
timezone: UTC
`), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SQLITE_PATH", "/tmp/from-env.db")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, DriverSQLite, cfg.KVDriver)
	assert.Equal(t, "/tmp/from-env.db", cfg.SQLitePath)
	assert.Equal(t, 5*time.Second, cfg.UploadTimeout)
	assert.Equal(t, path, cfg.ConfigFile)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "unknown kv driver", mutate: func(c *Config) { c.KVDriver = "redis" }},
		{name: "sqlite without path", mutate: func(c *Config) { c.KVDriver = DriverSQLite; c.SQLitePath = "" }},
		{name: "supabase without credentials", mutate: func(c *Config) { c.CatalogDriver = DriverSupabase }},
		{name: "unknown object store", mutate: func(c *Config) { c.ObjectStoreDriver = "s3" }},
		{name: "zero timeout", mutate: func(c *Config) { c.UploadTimeout = 0 }},
		{name: "bad timezone", mutate: func(c *Config) { c.Timezone = "Mars/Olympus" }},
		{name: "unknown trace exporter", mutate: func(c *Config) { c.TracingExporter = "jaeger" }},
		{name: "sample rate above one", mutate: func(c *Config) { c.TraceSampleRate = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memebase.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logLevel: info\n"), 0o644))
	t.Setenv("LOG_LEVEL", "")

	initial, err := ReadFile(path)
	require.NoError(t, err)

	w, err := NewWatcher(path, initial, zap.NewNop())
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond

	changed := make(chan *Config, 1)
	w.OnChange(func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	})
	w.Start()
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("logLevel: debug\n"), 0o644))

	select {
	case c := <-changed:
		assert.Equal(t, "debug", c.LogLevel)
		assert.Equal(t, "debug", w.Current().LogLevel)
	case <-time.After(5 * time.Second):
		t.Fatal("configuration was not reloaded")
	}
}
