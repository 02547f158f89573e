package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cuemby/taskbroker/pkg/client"
	"github.com/cuemby/taskbroker/pkg/log"
	"github.com/cuemby/taskbroker/pkg/security"
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
	Use:     "taskworker",
	Short:   "A reference worker that pulls and completes tasks from a taskbroker",
	Version: Version,
	RunE:    runWork,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"taskworker version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	cobra.OnInitialize(initLogging)

	rootCmd.Flags().String("addr", "127.0.0.1:5000", "Broker address")
	rootCmd.Flags().String("worker-id", "", "Worker ID (generated if empty)")
	rootCmd.Flags().Duration("poll-interval", 5*time.Second, "How long to wait after an empty queue before polling again")
	rootCmd.Flags().Duration("heartbeat-interval", 10*time.Second, "How often to send a heartbeat while connected")
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

func runWork(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	workerID, _ := cmd.Flags().GetString("worker-id")
	pollInterval, _ := cmd.Flags().GetDuration("poll-interval")
	heartbeatInterval, _ := cmd.Flags().GetDuration("heartbeat-interval")

	if workerID == "" {
		workerID = "worker-" + uuid.NewString()
	}
	workerLog := log.WithWorkerID(workerID)

	secret, ok, err := security.LoadSecret()
	if err != nil {
		return fmt.Errorf("loading %s: %w", security.SecretEnvVar, err)
	}
	if !ok {
		return fmt.Errorf("%s must be set to the broker's shared secret", security.SecretEnvVar)
	}

	c, err := client.NewClient(addr, secret)
	if err != nil {
		return fmt.Errorf("connecting to broker: %w", err)
	}
	defer c.Close()
	workerLog.Info().Str("addr", addr).Msg("worker connected")

	stop := make(chan struct{})
	go heartbeatLoop(c, workerID, heartbeatInterval, workerLog, stop)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-sigCh:
			close(stop)
			workerLog.Info().Msg("shutting down")
			return nil
		default:
		}

		task, ok, err := c.GetTask(workerID)
		if err != nil {
			workerLog.Error().Err(err).Msg("get_task failed")
			time.Sleep(pollInterval)
			continue
		}
		if !ok {
			time.Sleep(pollInterval)
			continue
		}

		taskLog := log.WithTaskID(task.ID)
		taskLog.Info().Str("payload", task.Payload).Msg("performing task")
		result := processTask(task.Payload)

		if err := c.TaskCompleted(task.ID, workerID, result); err != nil {
			taskLog.Error().Err(err).Msg("task_completed failed")
			continue
		}
		taskLog.Info().Msg("task completed")
	}
}

// processTask simulates doing the work described by payload. A real
// worker would dispatch on the payload's contents; the reference worker
// just sleeps a random, bounded interval and reports completion.
func processTask(payload string) string {
	time.Sleep(time.Duration(1+rand.Intn(4)) * time.Second)
	return fmt.Sprintf("processed: %s", payload)
}

func heartbeatLoop(c *client.Client, workerID string, interval time.Duration, logger zerolog.Logger, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := c.Heartbeat(workerID); err != nil {
				logger.Error().Err(err).Msg("heartbeat failed")
			}
		}
	}
}
