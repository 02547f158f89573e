package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/taskbroker/pkg/broker"
	"github.com/cuemby/taskbroker/pkg/config"
	"github.com/cuemby/taskbroker/pkg/log"
	"github.com/cuemby/taskbroker/pkg/metrics"
	"github.com/cuemby/taskbroker/pkg/queue"
	"github.com/cuemby/taskbroker/pkg/reaper"
	"github.com/cuemby/taskbroker/pkg/registry"
	"github.com/cuemby/taskbroker/pkg/security"
	"github.com/cuemby/taskbroker/pkg/stats"
	"github.com/cuemby/taskbroker/pkg/wire"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "taskbroker",
	Short:   "A priority task broker: workers pull tasks over an encrypted TCP protocol",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"taskbroker version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("taskbroker version %s\nCommit: %s\nBuilt: %s\n", Version, Commit, BuildTime)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the task broker",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("config", "", "Path to a YAML config file")
	serveCmd.Flags().String("host", "", "Override the bind host")
	serveCmd.Flags().Int("port", 0, "Override the bind port")
	serveCmd.Flags().String("persistence-path", "", "Override the task persistence file path")
	serveCmd.Flags().String("metrics-addr", "", "Override the metrics/health HTTP listen address")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeConfig(cmd)
	if err != nil {
		return err
	}

	secret, ok, err := security.LoadSecret()
	if err != nil {
		return fmt.Errorf("loading %s: %w", security.SecretEnvVar, err)
	}
	if !ok {
		secret, err = security.GenerateSecret()
		if err != nil {
			return fmt.Errorf("generating ephemeral secret: %w", err)
		}
		log.Logger.Warn().
			Str("env_var", security.SecretEnvVar).
			Msg("no shared secret provisioned; generated an ephemeral one for this run only, every client must be restarted with it or the broker will reject all traffic on restart")
	}

	cipher, err := security.NewCipher(secret)
	if err != nil {
		return fmt.Errorf("building cipher: %w", err)
	}

	q, err := queue.New(cfg.PersistencePath, log.WithComponent("queue"))
	if err != nil {
		return fmt.Errorf("loading persisted queue: %w", err)
	}

	reg := registry.New()
	counters := stats.New()
	collector := metrics.NewCollector(q, reg, counters)

	metrics.RegisterComponent("listener", false, "starting")
	metrics.RegisterComponent("queue", true, "ready")
	metrics.RegisterComponent("registry", true, "ready")
	metrics.SetVersion(Version)

	r := reaper.New(reaper.Config{
		HeartbeatInterval: time.Duration(cfg.HeartbeatIntervalSeconds) * time.Second,
		LivenessWindow:    time.Duration(cfg.LivenessWindowSeconds) * time.Second,
		StatsInterval:     time.Duration(cfg.StatsIntervalSeconds) * time.Second,
	}, reg, counters, log.WithComponent("reaper"),
		reaper.NewLogSink(log.WithComponent("stats")),
		reaper.NewMetricsSink(collector),
	)

	srv := broker.NewServer(broker.Config{
		Codec:    wire.NewCodec(cipher),
		Queue:    q,
		Registry: reg,
		Counters: counters,
		Reaper:   r,
		FrameCap: cfg.FrameCap,
		Logger:   log.WithComponent("broker"),
	})

	if err := srv.Start(cfg.Addr()); err != nil {
		return fmt.Errorf("starting broker: %w", err)
	}
	metrics.RegisterComponent("listener", true, "ready")
	log.Logger.Info().Str("address", cfg.Addr()).Msg("taskbroker serving")

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/health", metrics.HealthHandler())
	mux.Handle("/ready", metrics.ReadyHandler())
	mux.Handle("/live", metrics.LivenessHandler())
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}

	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Logger.Error().Err(err).Msg("metrics server error")
		}
	}()
	log.Logger.Info().Str("address", cfg.MetricsAddr).Msg("metrics endpoint listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownGraceSeconds)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Logger.Warn().Err(err).Msg("broker shutdown did not complete cleanly")
	}
	_ = metricsServer.Shutdown(ctx)

	log.Logger.Info().Msg("shutdown complete")
	return nil
}

func loadServeConfig(cmd *cobra.Command) (config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFile(config.Defaults(), configPath)
	if err != nil {
		return config.Config{}, err
	}

	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Port = port
	}
	if path, _ := cmd.Flags().GetString("persistence-path"); path != "" {
		cfg.PersistencePath = path
	}
	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		cfg.MetricsAddr = addr
	}
	return cfg, nil
}
