package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dangerosodavo/ecscore/pipeline"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Build the sample pipeline and print its phase/stage layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, builder, _, err := buildSamplePlan()
		if err != nil {
			return err
		}
		plan, err := builder.Build()
		if err != nil {
			return err
		}
		printPlan(cmd, plan)
		return nil
	},
}

func printPlan(cmd *cobra.Command, plan *pipeline.Plan) {
	out := cmd.OutOrStdout()
	for _, phase := range plan.Phases {
		fmt.Fprintf(out, "phase %s\n", phase.Phase)
		for si, stage := range phase.Stages {
			fmt.Fprintf(out, "  stage %d:\n", si)
			for _, sys := range stage.Systems {
				tag := ""
				if sys.Temporary {
					tag = " (temporary)"
				}
				fmt.Fprintf(out, "    - %s%s\n", sys.Name, tag)
			}
		}
	}
	for name, sub := range plan.Dispatchers {
		fmt.Fprintf(out, "dispatcher %q:\n", name)
		printPlan(cmd, sub)
	}
	for kind, emitters := range plan.EmitterCache {
		fmt.Fprintf(out, "event %q emitters: %v\n", kind, emitters)
	}
}
