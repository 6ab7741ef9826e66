package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfs4d/internal/bytesize"
	"github.com/marmos91/nfs4d/pkg/metadata/store/instrumented"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, GetDefaultConfig(), cfg)
	assert.Equal(t, "0.0.0.0", cfg.Server.BindAddr)
	assert.Equal(t, 2049, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "memory", cfg.Backend.Type)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.True(t, cfg.Telemetry.Insecure)
	assert.True(t, cfg.API.Enabled)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
server:
  bind_addr: 127.0.0.1
  port: 12049
  max_connections: 16
  timeouts:
    read: 90s
    write: 2s
  shutdown_timeout: 5s
backend:
  type: badger
  badger:
    path: /var/lib/nfs4d
    block_cache_size: 64MiB
    index_cache_size: 1048576
metrics:
  enabled: true
  port: 9100
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "127.0.0.1", cfg.Server.BindAddr)
	assert.Equal(t, 12049, cfg.Server.Port)
	assert.Equal(t, 16, cfg.Server.MaxConnections)
	assert.Equal(t, 90*time.Second, cfg.Server.Timeouts.Read)
	assert.Equal(t, 2*time.Second, cfg.Server.Timeouts.Write)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "badger", cfg.Backend.Type)
	assert.Equal(t, "/var/lib/nfs4d", cfg.Backend.Badger.Path)
	assert.Equal(t, 64*bytesize.MiB, cfg.Backend.Badger.BlockCacheSize)
	assert.Equal(t, bytesize.MiB, cfg.Backend.Badger.IndexCacheSize)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9100, cfg.Metrics.Port)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Run("PrefixedKeys", func(t *testing.T) {
		t.Setenv("NFS4D_LOGGING_LEVEL", "warn")
		t.Setenv("NFS4D_SERVER_MAX_CONNECTIONS", "3")
		t.Setenv("NFS4D_API_ENABLED", "false")
		t.Setenv("NFS4D_TELEMETRY_PROFILING_PROFILE_TYPES", "cpu,goroutines")

		cfg, err := Load(writeConfig(t, "server:\n  max_connections: 10\n"))
		require.NoError(t, err)
		assert.Equal(t, "WARN", cfg.Logging.Level)
		assert.Equal(t, 3, cfg.Server.MaxConnections)
		assert.False(t, cfg.API.Enabled)
		assert.Equal(t, []string{"cpu", "goroutines"}, cfg.Telemetry.Profiling.ProfileTypes)
	})

	t.Run("ShortAliases", func(t *testing.T) {
		t.Setenv("NFS_BIND_ADDR", "10.1.2.3")
		t.Setenv("NFS_PORT", "20490")

		cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "10.1.2.3", cfg.Server.BindAddr)
		assert.Equal(t, 20490, cfg.Server.Port)
	})

	t.Run("PrefixedWinsOverAlias", func(t *testing.T) {
		t.Setenv("NFS4D_SERVER_PORT", "3049")
		t.Setenv("NFS_PORT", "4049")

		cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 3049, cfg.Server.Port)
	})
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"BadLevel", "logging:\n  level: loud\n"},
		{"BadFormat", "logging:\n  format: xml\n"},
		{"BadBackend", "backend:\n  type: postgres\n"},
		{"BadgerWithoutPath", "backend:\n  type: badger\n"},
		{"BadBindAddr", "server:\n  bind_addr: not-an-ip\n"},
		{"PortOutOfRange", "server:\n  port: 70000\n"},
		{"BadSampleRate", "telemetry:\n  sample_rate: 2\n"},
		{"BadProfileType", "telemetry:\n  profiling:\n    profile_types: [heap]\n"},
		{"BadDuration", "server:\n  shutdown_timeout: soon\n"},
		{"BadByteSize", "backend:\n  badger:\n    block_cache_size: lots\n"},
		{"PortCollision", "server:\n  port: 8080\n"},
		{"MalformedYAML", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestBadgerInMemoryNeedsNoPath(t *testing.T) {
	cfg, err := Load(writeConfig(t, "backend:\n  type: badger\n  badger:\n    in_memory: true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Backend.Badger.InMemory)
}

func TestPortCollisionIgnoresDisabledServers(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Port = cfg.API.Port
	assert.NoError(t, Validate(cfg))

	cfg.Metrics.Enabled = true
	assert.Error(t, Validate(cfg))
}

func TestMustLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, err := MustLoad("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nfs4d config init")

	_, err = MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")

	require.NoError(t, SaveConfig(GetDefaultConfig(), GetDefaultConfigPath()))
	assert.True(t, DefaultConfigExists())
	cfg, err := MustLoad("")
	require.NoError(t, err)
	assert.Equal(t, 2049, cfg.Server.Port)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Server.Port = 3049
	cfg.Server.Timeouts.Read = 45 * time.Second
	cfg.Backend.Type = "badger"
	cfg.Backend.Badger.Path = "/data/nfs4d"
	cfg.Backend.Badger.BlockCacheSize = 32 * bytesize.MiB
	cfg.API.Enabled = false
	cfg.Telemetry.Insecure = false

	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	require.NoError(t, SaveConfig(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestGetConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "nfs4d"), GetConfigDir())
	assert.Equal(t, filepath.Join(dir, "nfs4d", "config.yaml"), GetDefaultConfigPath())
}

func TestGenerateSchema(t *testing.T) {
	out, err := GenerateSchema()
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(out, &schema))
	assert.Equal(t, "nfs4d Configuration", schema["title"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{"logging", "telemetry", "server", "backend", "metrics", "api"} {
		assert.Contains(t, props, key)
	}
}

func TestInitializeMetricsDisabled(t *testing.T) {
	res := InitializeMetrics(GetDefaultConfig())
	assert.Nil(t, res.Server)
	assert.Nil(t, res.StoreMetrics)
	assert.NotNil(t, res.NFSMetrics)
}

func TestCreateMetadataStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory", func(t *testing.T) {
		store, err := CreateMetadataStore(ctx, BackendConfig{Type: "memory"}, nil)
		require.NoError(t, err)
		defer store.Close()

		_, ok := store.(*instrumented.Store)
		assert.True(t, ok)
		require.NoError(t, store.CreateFile(ctx, "/f", 1))
	})

	t.Run("Badger", func(t *testing.T) {
		store, err := CreateMetadataStore(ctx, BackendConfig{
			Type:   "badger",
			Badger: BadgerConfig{Path: t.TempDir(), BlockCacheSize: 8 * bytesize.MiB},
		}, nil)
		require.NoError(t, err)
		defer store.Close()
		require.NoError(t, store.Healthcheck(ctx))
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := CreateMetadataStore(ctx, BackendConfig{Type: "nfs"}, nil)
		assert.Error(t, err)
	})
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, func(c *Config) { changes <- c }) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0600))

	select {
	case cfg := <-changes:
		assert.Equal(t, "DEBUG", cfg.Logging.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("config change not observed")
	}

	cancel()
	require.NoError(t, <-done)
}
