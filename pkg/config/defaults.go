package config

import (
	"strings"
	"time"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
// Zero values are replaced; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyServerDefaults(&cfg.Server)
	applyBackendDefaults(&cfg.Backend)
	applyMetricsDefaults(&cfg.Metrics)
	applyAPIDefaults(&cfg.API)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{"cpu", "alloc_space", "inuse_space"}
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.BindAddr == "" {
		cfg.BindAddr = "0.0.0.0"
	}
	if cfg.Port == 0 {
		cfg.Port = 2049
	}
	if cfg.Timeouts.Read == 0 {
		cfg.Timeouts.Read = 5 * time.Minute
	}
	if cfg.Timeouts.Write == 0 {
		cfg.Timeouts.Write = 30 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

func applyBackendDefaults(cfg *BackendConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}
	cfg.Type = strings.ToLower(cfg.Type)
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyAPIDefaults(cfg *APIConfig) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
}

// GetDefaultConfig returns a configuration with every default applied.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Telemetry: TelemetryConfig{Insecure: true},
		API:       APIConfig{Enabled: true},
	}
	ApplyDefaults(cfg)
	return cfg
}
