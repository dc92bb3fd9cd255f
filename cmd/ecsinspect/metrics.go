package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	ecs "github.com/dangerosodavo/ecscore"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print a synthetic work-group summary in Prometheus exposition format",
	RunE: func(cmd *cobra.Command, args []string) error {
		collector := ecs.NewPrometheusWorkGroupCollector(nil)
		collector.ObserveWorkGroup(ecs.WorkGroupSummary{
			WorkGroupID:     "sample",
			Tick:            1,
			Duration:        2 * time.Millisecond,
			SystemsTotal:    3,
			SystemsExecuted: 3,
		})
		impl, ok := collector.(*ecs.PrometheusWorkGroupCollector)
		if !ok {
			return nil
		}
		return impl.WriteMetrics(os.Stdout)
	},
}
