package main

import (
	"fmt"
	"math/rand"
	"os"

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
	Use:     "taskproducer",
	Short:   "A reference client that submits tasks to a taskbroker",
	Version: Version,
	RunE:    runProduce,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"taskproducer version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	cobra.OnInitialize(initLogging)

	rootCmd.Flags().String("addr", "127.0.0.1:5000", "Broker address")
	rootCmd.Flags().Int("count", 10, "Number of tasks to submit")
	rootCmd.Flags().Int64("priority", -1, "Fixed priority for every task (-1 picks one at random from 0,1,2)")
	rootCmd.Flags().Int64("timeout", 300, "Task timeout in seconds")
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

func runProduce(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	count, _ := cmd.Flags().GetInt("count")
	priority, _ := cmd.Flags().GetInt64("priority")
	timeout, _ := cmd.Flags().GetInt64("timeout")

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

	priorities := []int64{0, 1, 2}
	for i := 0; i < count; i++ {
		p := priority
		if p < 0 {
			p = priorities[rand.Intn(len(priorities))]
		}

		taskID, err := c.AddTask(fmt.Sprintf("task %d", i+1), p, timeout)
		if err != nil {
			log.Logger.Error().Err(err).Int("index", i).Msg("add_task failed")
			continue
		}
		log.Logger.Info().Str("task_id", taskID).Int64("priority", p).Msg("task submitted")
	}

	return nil
}
