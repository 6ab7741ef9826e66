package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/nfs4d/internal/bytesize"
)

// EnvPrefix is prepended to every environment override, e.g.
// NFS4D_LOGGING_LEVEL=DEBUG.
const EnvPrefix = "NFS4D"

// Config represents the nfs4d configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (NFS4D_*, plus NFS_BIND_ADDR and NFS_PORT)
//  2. Configuration file (YAML)
//  3. Default values
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry tracing and Pyroscope profiling
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// Server configures the NFSv4 listener
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Backend selects the metadata store answering GETATTR and friends
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// API configures the HTTP health and stats endpoints
	API APIConfig `mapstructure:"api" yaml:"api"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	// Enabled controls whether spans are exported
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint (host:port)
	// Default: "localhost:4317"
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure disables TLS towards the collector
	// Default: true
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate controls the trace sampling rate (0.0 to 1.0)
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	// Enabled controls whether continuous profiling is enabled
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server URL
	// Default: "http://localhost:4040"
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url" yaml:"endpoint"`

	// ProfileTypes selects which profiles to collect
	// Default: ["cpu", "alloc_space", "inuse_space"]
	ProfileTypes []string `mapstructure:"profile_types" validate:"dive,oneof=cpu alloc_objects alloc_space inuse_objects inuse_space goroutines mutex_count mutex_duration block_count block_duration" yaml:"profile_types"`
}

// ServerConfig configures the NFSv4 TCP listener.
type ServerConfig struct {
	// BindAddr is the IP address to listen on
	// Default: "0.0.0.0". Also settable via NFS_BIND_ADDR.
	BindAddr string `mapstructure:"bind_addr" validate:"required,ip" yaml:"bind_addr"`

	// Port is the TCP port for NFS traffic
	// Default: 2049. Also settable via NFS_PORT.
	Port int `mapstructure:"port" validate:"min=0,max=65535" yaml:"port"`

	// MaxConnections bounds concurrently served connections. 0 means unlimited.
	MaxConnections int `mapstructure:"max_connections" validate:"min=0" yaml:"max_connections"`

	// Timeouts holds per-connection I/O deadlines
	Timeouts TimeoutsConfig `mapstructure:"timeouts" yaml:"timeouts"`

	// ShutdownTimeout is the maximum time to wait for connections to drain
	// Default: 30s
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0" yaml:"shutdown_timeout"`

	// MetricsLogInterval periodically logs connection counts. 0 disables it.
	MetricsLogInterval time.Duration `mapstructure:"metrics_log_interval" validate:"min=0" yaml:"metrics_log_interval"`
}

// TimeoutsConfig holds connection read and write deadlines.
type TimeoutsConfig struct {
	// Read bounds the wait for the next record. 0 disables it.
	// Default: 5m
	Read time.Duration `mapstructure:"read" validate:"min=0" yaml:"read"`

	// Write bounds sending one reply. 0 disables it.
	// Default: 30s
	Write time.Duration `mapstructure:"write" validate:"min=0" yaml:"write"`
}

// BackendConfig selects the metadata store.
type BackendConfig struct {
	// Type is "memory" or "badger"
	// Default: "memory"
	Type string `mapstructure:"type" validate:"required,oneof=memory badger" yaml:"type"`

	// Badger configures the persistent store. Ignored for "memory".
	Badger BadgerConfig `mapstructure:"badger" yaml:"badger"`
}

// BadgerConfig configures the BadgerDB backed store.
type BadgerConfig struct {
	// Path is the database directory. Required unless InMemory is set.
	Path string `mapstructure:"path" yaml:"path,omitempty"`

	// InMemory keeps the database off disk
	InMemory bool `mapstructure:"in_memory" yaml:"in_memory"`

	// BlockCacheSize sizes Badger's block cache, e.g. "64MiB". 0 keeps Badger's default.
	BlockCacheSize bytesize.ByteSize `mapstructure:"block_cache_size" yaml:"block_cache_size,omitempty"`

	// IndexCacheSize sizes Badger's index cache. 0 keeps Badger's default.
	IndexCacheSize bytesize.ByteSize `mapstructure:"index_cache_size" yaml:"index_cache_size,omitempty"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
// When Enabled is false, no metrics are collected.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP server are enabled
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint
	// Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// APIConfig configures the health and stats HTTP server.
type APIConfig struct {
	// Enabled controls whether the API server runs
	// Default: true
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the API
	// Default: 8080
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`

	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"min=0" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"min=0" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" validate:"min=0" yaml:"idle_timeout"`
}

// Load loads configuration from file, environment, and defaults.
//
// An empty configPath searches $XDG_CONFIG_HOME/nfs4d/config.yaml and then
// ./config.yaml. A missing file is not an error: environment variables and
// defaults still apply.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages.
// Unlike Load it requires the config file to exist.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  nfs4d config init\n\n"+
				"Or specify a custom config file:\n"+
				"  nfs4d <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s\n\n"+
			"Please create the configuration file:\n"+
			"  nfs4d config init --config %s",
			configPath, configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to path in YAML format.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	v.AddConfigPath(getConfigDir())
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

// bindEnv registers every config key with viper so environment overrides
// apply even when no config file sets the key. AutomaticEnv alone only
// consults the environment for keys viper already knows about.
func bindEnv(v *viper.Viper) error {
	for _, key := range configKeys(reflect.TypeOf(Config{}), "") {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	// Short aliases used by container deployments.
	if err := v.BindEnv("server.bind_addr", EnvPrefix+"_SERVER_BIND_ADDR", "NFS_BIND_ADDR"); err != nil {
		return err
	}
	if err := v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "NFS_PORT"); err != nil {
		return err
	}

	// Defaults that are true can't be told apart from an unset bool later.
	v.SetDefault("telemetry.insecure", true)
	v.SetDefault("api.enabled", true)
	return nil
}

// configKeys lists the dotted mapstructure keys of every leaf field in t.
func configKeys(t reflect.Type, prefix string) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := strings.Split(f.Tag.Get("mapstructure"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct && f.Type != reflect.TypeOf(time.Duration(0)) {
			keys = append(keys, configKeys(f.Type, key)...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks converts config strings into sizes, durations and lists.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// byteSizeDecodeHook converts strings like "64MiB" and plain numbers to
// bytesize.ByteSize.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook converts strings like "30s" to time.Duration.
// Raw integers are nanoseconds.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns $XDG_CONFIG_HOME/nfs4d, ~/.config/nfs4d, or "."
// when no home directory is known.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "nfs4d")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "nfs4d")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}
