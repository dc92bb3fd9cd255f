package ecscore

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

type compositeObserver struct {
	observers []SchedulerObserver
}

func (c compositeObserver) WorkGroupCompleted(summary WorkGroupSummary) {
	for _, observer := range c.observers {
		observer.WorkGroupCompleted(summary)
	}
}

type loggingObserver struct {
	logger Logger
	format ObservationLogFormat
}

func newLoggingObserver(logger Logger, format ObservationLogFormat) SchedulerObserver {
	if logger == nil {
		return noopObserver{}
	}
	if format != ObservationLogFormatKeyValue {
		format = ObservationLogFormatJSON
	}
	return loggingObserver{logger: logger, format: format}
}

func (o loggingObserver) WorkGroupCompleted(summary WorkGroupSummary) {
	switch o.format {
	case ObservationLogFormatKeyValue:
		o.logKeyValue(summary)
	default:
		o.logJSON(summary)
	}
}

func (o loggingObserver) logJSON(summary WorkGroupSummary) {
	payload := map[string]any{
		"work_group_id":    summary.WorkGroupID,
		"mode":             summary.Mode,
		"async":            summary.Async,
		"tick":             summary.Tick,
		"duration_ms":      float64(summary.Duration) / float64(time.Millisecond),
		"systems_total":    summary.SystemsTotal,
		"systems_executed": summary.SystemsExecuted,
		"systems_skipped":  summary.SystemsSkipped,
		"component_reads":  summary.ComponentReads,
		"component_writes": summary.ComponentWrites,
		"resource_reads":   summary.ResourceReads,
		"resource_writes":  summary.ResourceWrites,
	}
	if summary.Error != nil {
		payload["error"] = summary.Error.Error()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		o.logger.With("work_group", summary.WorkGroupID).Error("workgroup summary marshal error", "err", err)
		return
	}
	o.logger.Info(string(data))
}

func (o loggingObserver) logKeyValue(summary WorkGroupSummary) {
	builder := o.logger.With("work_group", summary.WorkGroupID)
	args := []any{
		"mode", summary.Mode,
		"async", summary.Async,
		"tick", summary.Tick,
		"duration", summary.Duration,
		"systems_total", summary.SystemsTotal,
		"systems_executed", summary.SystemsExecuted,
		"systems_skipped", summary.SystemsSkipped,
		"component_reads", strings.Join(convertComponentTypes(summary.ComponentReads), ","),
		"component_writes", strings.Join(convertComponentTypes(summary.ComponentWrites), ","),
		"resource_reads", strings.Join(summary.ResourceReads, ","),
		"resource_writes", strings.Join(summary.ResourceWrites, ","),
	}
	if summary.Error != nil {
		args = append(args, "error", summary.Error.Error())
	}
	builder.Info("workgroup summary", args...)
}

type prometheusObserver struct {
	collector PrometheusCollector
}

func newPrometheusObserver(collector PrometheusCollector) SchedulerObserver {
	if collector == nil {
		return noopObserver{}
	}
	return prometheusObserver{collector: collector}
}

func (o prometheusObserver) WorkGroupCompleted(summary WorkGroupSummary) {
	o.collector.ObserveWorkGroup(summary)
}

type sigNozObserver struct {
	exporter SigNozExporter
}

func newSigNozObserver(exporter SigNozExporter) SchedulerObserver {
	if exporter == nil {
		return noopObserver{}
	}
	return sigNozObserver{exporter: exporter}
}

func (o sigNozObserver) WorkGroupCompleted(summary WorkGroupSummary) {
	o.exporter.ExportWorkGroup(summary)
}

func convertComponentTypes(types []ComponentType) []string {
	if len(types) == 0 {
		return nil
	}
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	sort.Strings(out)
	return out
}

func buildObserverChain(logger Logger, cfg InstrumentationConfig) SchedulerObserver {
	var observers []SchedulerObserver

	if cfg.Observer != nil {
		observers = append(observers, cfg.Observer)
	}

	obs := cfg.Observation

	if obs.EnableStructuredLogging {
		structuredLogger := obs.StructuredLogger
		if structuredLogger == nil {
			structuredLogger = logger
		}
		observers = append(observers, newLoggingObserver(structuredLogger, obs.LoggingFormat))
	}

	if obs.EnablePrometheus {
		collector := obs.PrometheusCollector
		if collector == nil {
			collector = NewPrometheusWorkGroupCollector(obs.PrometheusOptions)
		}
		if collector != nil {
			observers = append(observers, newPrometheusObserver(collector))
		}
	}

	if obs.EnableSigNoz {
		exporter := obs.SigNozExporter
		if exporter == nil {
			exporter = NewSigNozSpanExporter(obs.SigNozOptions)
		}
		if exporter != nil {
			observers = append(observers, newSigNozObserver(exporter))
		}
	}

	if len(observers) == 0 {
		return noopObserver{}
	}
	if len(observers) == 1 {
		return observers[0]
	}
	return compositeObserver{observers: observers}
}

// PrometheusWorkGroupCollector turns WorkGroupSummary callbacks into real
// client_golang vectors registered on their own Registry, so WriteMetrics
// can serve a dedicated /metrics endpoint independent of the process-wide
// default registry.
type PrometheusWorkGroupCollector struct {
	registry *prometheus.Registry
	duration prometheus.ObserverVec
	executed *prometheus.CounterVec
	skipped  *prometheus.CounterVec
	errors   *prometheus.CounterVec
	writer   io.Writer
}

var workGroupLabels = []string{"work_group_id", "mode", "async"}

func NewPrometheusWorkGroupCollector(opts *PrometheusCollectorOptions) PrometheusCollector {
	if opts == nil {
		opts = &PrometheusCollectorOptions{}
	}

	var duration prometheus.ObserverVec
	if len(opts.DurationBuckets) > 0 {
		buckets := make([]float64, len(opts.DurationBuckets))
		for i, d := range opts.DurationBuckets {
			buckets[i] = d.Seconds()
		}
		duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ecs_work_group_duration_seconds",
			Help:    "Work group execution duration.",
			Buckets: buckets,
		}, workGroupLabels)
	} else {
		duration = prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name:       "ecs_work_group_duration_seconds",
			Help:       "Work group execution duration.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}, workGroupLabels)
	}

	executed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ecs_work_group_systems_executed_total",
		Help: "Systems executed per work group.",
	}, workGroupLabels)
	skipped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ecs_work_group_systems_skipped_total",
		Help: "Systems skipped per work group.",
	}, workGroupLabels)
	errorsVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ecs_work_group_errors_total",
		Help: "Work group error count.",
	}, workGroupLabels)

	registry := prometheus.NewRegistry()
	registry.MustRegister(duration, executed, skipped, errorsVec)

	return &PrometheusWorkGroupCollector{
		registry: registry,
		duration: duration,
		executed: executed,
		skipped:  skipped,
		errors:   errorsVec,
		writer:   opts.Writer,
	}
}

func (c *PrometheusWorkGroupCollector) ObserveWorkGroup(summary WorkGroupSummary) {
	labels := prometheus.Labels{
		"work_group_id": string(summary.WorkGroupID),
		"mode":          modeLabel(summary.Mode),
		"async":         fmt.Sprintf("%t", summary.Async),
	}
	c.duration.With(labels).Observe(summary.Duration.Seconds())
	c.executed.With(labels).Add(float64(summary.SystemsExecuted))
	c.skipped.With(labels).Add(float64(summary.SystemsSkipped))
	if summary.Error != nil {
		c.errors.With(labels).Inc()
	}

	if c.writer != nil {
		_ = c.WriteMetrics(c.writer)
	}
}

// WriteMetrics gathers every registered family and renders it in the
// standard Prometheus text exposition format.
func (c *PrometheusWorkGroupCollector) WriteMetrics(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return err
	}
	encoder := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, family := range families {
		if err := encoder.Encode(family); err != nil {
			return err
		}
	}
	return nil
}

type SigNozSpanExporter struct {
	opts *SigNozOptions
	mu   sync.Mutex
}

func NewSigNozSpanExporter(opts *SigNozOptions) SigNozExporter {
	if opts == nil {
		opts = &SigNozOptions{}
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "ecs-scheduler"
	}
	return &SigNozSpanExporter{opts: opts}
}

func (e *SigNozSpanExporter) ExportWorkGroup(summary WorkGroupSummary) {
	if e.opts.Writer == nil {
		return
	}
	span := map[string]any{
		"service_name": e.opts.ServiceName,
		"name":         fmt.Sprintf("workgroup:%s", summary.WorkGroupID),
		"timestamp":    time.Now().UnixNano(),
		"duration_ms":  float64(summary.Duration) / float64(time.Millisecond),
		"attributes": map[string]any{
			"work_group_id":    summary.WorkGroupID,
			"mode":             modeLabel(summary.Mode),
			"async":            summary.Async,
			"tick":             summary.Tick,
			"systems_total":    summary.SystemsTotal,
			"systems_executed": summary.SystemsExecuted,
			"systems_skipped":  summary.SystemsSkipped,
			"component_reads":  summary.ComponentReads,
			"component_writes": summary.ComponentWrites,
			"resource_reads":   summary.ResourceReads,
			"resource_writes":  summary.ResourceWrites,
		},
	}
	if summary.Error != nil {
		span["error"] = summary.Error.Error()
	}
	payload, err := json.Marshal(span)
	if err != nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	_, _ = e.opts.Writer.Write(append(payload, '\n'))
}

func modeLabel(mode WorkGroupMode) string {
	if mode == WorkGroupModeAsync {
		return "async"
	}
	return "sync"
}
