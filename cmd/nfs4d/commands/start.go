package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/marmos91/nfs4d/internal/logger"
	"github.com/marmos91/nfs4d/internal/telemetry"
	"github.com/marmos91/nfs4d/pkg/adapter"
	"github.com/marmos91/nfs4d/pkg/adapter/nfs"
	"github.com/marmos91/nfs4d/pkg/api"
	"github.com/marmos91/nfs4d/pkg/config"
)

var watchConfig bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the NFSv4 server",
	Long: `Start the nfs4d server in the foreground.

Configuration is read from --config, $XDG_CONFIG_HOME/nfs4d/config.yaml or
./config.yaml. Without a file the defaults apply, overridable through
NFS4D_* environment variables (NFS_BIND_ADDR and NFS_PORT are accepted too).

Examples:
  # Start with defaults on 0.0.0.0:2049
  nfs4d start

  # Start from a config file and reload the log level when it changes
  nfs4d start --config /etc/nfs4d/config.yaml --watch

  # Override the port from the environment
  NFS_PORT=12049 nfs4d start`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&watchConfig, "watch", "w", false, "Reload the log level when the config file changes")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	telemetryShutdown, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "nfs4d",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		// ctx is cancelled by now; the exporter still gets to flush
		if err := telemetryShutdown(context.Background()); err != nil {
			logger.Error("Telemetry shutdown error", logger.Err(err))
		}
	}()

	profilingStop, err := telemetry.InitProfiling(telemetry.ProfilingConfig{
		Enabled:        cfg.Telemetry.Profiling.Enabled,
		ServiceName:    "nfs4d",
		ServiceVersion: Version,
		Endpoint:       cfg.Telemetry.Profiling.Endpoint,
		ProfileTypes:   cfg.Telemetry.Profiling.ProfileTypes,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize profiling: %w", err)
	}
	defer func() {
		if err := profilingStop(); err != nil {
			logger.Error("Profiling shutdown error", logger.Err(err))
		}
	}()

	logger.Info("Configuration loaded", "source", getConfigSource(GetConfigFile()),
		"level", cfg.Logging.Level, "format", cfg.Logging.Format)
	if telemetry.IsEnabled() {
		logger.Info("Telemetry enabled", "endpoint", cfg.Telemetry.Endpoint, "sample_rate", cfg.Telemetry.SampleRate)
	}

	metricsResult := config.InitializeMetrics(cfg)

	store, err := config.CreateMetadataStore(ctx, cfg.Backend, metricsResult.StoreMetrics)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Metadata store close error", logger.Err(err))
		}
	}()

	nfsAdapter := nfs.New(nfs.NFSConfig{
		BaseConfig: adapter.BaseConfig{
			BindAddress:        cfg.Server.BindAddr,
			Port:               cfg.Server.Port,
			MaxConnections:     cfg.Server.MaxConnections,
			ShutdownTimeout:    cfg.Server.ShutdownTimeout,
			MetricsLogInterval: cfg.Server.MetricsLogInterval,
		},
		Timeouts: nfs.NFSTimeoutsConfig{
			Read:  cfg.Server.Timeouts.Read,
			Write: cfg.Server.Timeouts.Write,
		},
	}, store, metricsResult.NFSMetrics)

	// Auxiliary HTTP servers stop on their own when ctx is cancelled.
	aux, auxCtx := errgroup.WithContext(ctx)

	if metricsResult.Server != nil {
		logger.Info("Metrics enabled", "port", cfg.Metrics.Port)
		aux.Go(func() error { return metricsResult.Server.Start(auxCtx) })
	}

	if cfg.API.Enabled {
		apiServer := api.NewServer(api.Config{
			Port:         cfg.API.Port,
			ReadTimeout:  cfg.API.ReadTimeout,
			WriteTimeout: cfg.API.WriteTimeout,
			IdleTimeout:  cfg.API.IdleTimeout,
		}, store, nfsAdapter)
		aux.Go(func() error { return apiServer.Start(auxCtx) })
	}

	if watchConfig {
		startWatcher(auxCtx, aux)
	}

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- nfsAdapter.Serve(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("Server is running. Press Ctrl+C to stop.")

	var serveErr error
	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received, initiating graceful shutdown", "signal", sig.String())
		cancel()
		serveErr = <-serverDone

	case serveErr = <-serverDone:
		cancel()

	case <-auxCtx.Done():
		// An auxiliary server failed before shutdown was requested.
		cancel()
		serveErr = <-serverDone
	}

	auxErr := aux.Wait()

	if serveErr != nil {
		logger.Error("NFS server stopped with error", logger.Err(serveErr))
		return serveErr
	}
	if auxErr != nil {
		return auxErr
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// startWatcher reloads the log level whenever the config file changes.
func startWatcher(ctx context.Context, g *errgroup.Group) {
	path := GetConfigFile()
	if path == "" {
		if !config.DefaultConfigExists() {
			logger.Warn("Config watch requested but no config file is in use")
			return
		}
		path = config.GetDefaultConfigPath()
	}

	logger.Info("Watching config file", logger.Path(path))
	g.Go(func() error {
		err := config.Watch(ctx, path, func(c *config.Config) {
			logger.SetLevel(c.Logging.Level)
			logger.Info("Log level reloaded", "level", c.Logging.Level)
		})
		if err != nil {
			// Losing hot reload is not worth stopping the server for.
			logger.Warn("Config watcher stopped", logger.Err(err))
		}
		return nil
	})
}
