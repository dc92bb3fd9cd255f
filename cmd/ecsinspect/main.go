// Command ecsinspect builds a small sample pipeline and reports how the
// builder laid it out — phases, stages, and dispatcher wiring — useful
// while developing a host's system graph before wiring it into a real
// world.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	ecs "github.com/dangerosodavo/ecscore"
)

var (
	logLevel string
	runID    = uuid.NewString()
)

var rootCmd = &cobra.Command{
	Use:   "ecsinspect",
	Short: "Inspect and smoke-test ecscore pipeline plans",
}

func newLogger() ecs.Logger {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zl := zerolog.New(os.Stderr).With().Timestamp().Str("run_id", runID).Logger().Level(level)
	return ecs.NewZerologLogger(zl)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(tickCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
