package telemetry

// Config holds OpenTelemetry tracing configuration.
type Config struct {
	// Enabled turns on span export. When false every span is a no-op.
	Enabled bool

	// ServiceName is reported as service.name.
	ServiceName string

	// ServiceVersion is reported as service.version.
	ServiceVersion string

	// Endpoint is the OTLP gRPC collector address (e.g., "localhost:4317").
	Endpoint string

	// Insecure disables TLS towards the collector.
	Insecure bool

	// SampleRate is the fraction of traces kept, 0.0 to 1.0.
	SampleRate float64
}

// DefaultConfig returns tracing disabled, pointed at a local collector.
func DefaultConfig() Config {
	return Config{
		Enabled:        false,
		ServiceName:    "nfs4d",
		ServiceVersion: "dev",
		Endpoint:       "localhost:4317",
		Insecure:       true,
		SampleRate:     1.0,
	}
}

// ProfilingConfig configures Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string

	// Endpoint is the Pyroscope server URL (e.g., "http://localhost:4040").
	Endpoint string

	// ProfileTypes selects what to collect. Valid values: cpu,
	// alloc_objects, alloc_space, inuse_objects, inuse_space, goroutines,
	// mutex_count, mutex_duration, block_count, block_duration.
	ProfileTypes []string
}

// DefaultProfilingConfig returns profiling disabled with CPU and heap profiles selected.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		ServiceName:    "nfs4d",
		ServiceVersion: "dev",
		Endpoint:       "http://localhost:4040",
		ProfileTypes:   []string{"cpu", "alloc_space", "inuse_space"},
	}
}
