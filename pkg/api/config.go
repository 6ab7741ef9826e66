package api

import "time"

// Config configures the API HTTP server.
type Config struct {
	// Port is the HTTP port for the API endpoints.
	// Default: 8080
	Port int

	// ReadTimeout, WriteTimeout and IdleTimeout feed the matching
	// http.Server fields. Defaults: 10s, 10s, 60s.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// applyDefaults fills in zero values so servers built directly in tests
// behave like those built from a loaded config.
func (c *Config) applyDefaults() {
	if c.Port <= 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
}
