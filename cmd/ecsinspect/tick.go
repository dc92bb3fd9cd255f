package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dangerosodavo/ecscore/pipeline"
)

var tickSteps int

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run the sample pipeline for a number of ticks",
	RunE: func(cmd *cobra.Command, args []string) error {
		world, builder, _, err := buildSamplePlan()
		if err != nil {
			return err
		}
		plan, err := builder.Build()
		if err != nil {
			return err
		}

		executor := pipeline.NewExecutor(world, plan, pipeline.WithLogger(newLogger()))
		if err := executor.Run(context.Background(), tickSteps, sampleTickInterval); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ran %d ticks, %d entities alive\n", tickSteps, world.Registry().Count())
		return nil
	},
}

func init() {
	tickCmd.Flags().IntVar(&tickSteps, "steps", 3, "number of ticks to run")
}
