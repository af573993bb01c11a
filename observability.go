package ecs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

type noopObserver struct{}

func (noopObserver) ProcessorCompleted(ProcessorSummary) {}

type compositeObserver struct {
	observers []ProcessorObserver
}

func (c compositeObserver) ProcessorCompleted(summary ProcessorSummary) {
	for _, observer := range c.observers {
		observer.ProcessorCompleted(summary)
	}
}

type loggingObserver struct {
	logger Logger
	format ObservationLogFormat
}

func newLoggingObserver(logger Logger, format ObservationLogFormat) ProcessorObserver {
	if logger == nil {
		return noopObserver{}
	}
	if format != ObservationLogFormatKeyValue {
		format = ObservationLogFormatJSON
	}
	return loggingObserver{logger: logger, format: format}
}

func (o loggingObserver) ProcessorCompleted(summary ProcessorSummary) {
	switch o.format {
	case ObservationLogFormatKeyValue:
		o.logKeyValue(summary)
	default:
		o.logJSON(summary)
	}
}

func (o loggingObserver) logJSON(summary ProcessorSummary) {
	payload := map[string]any{
		"processor":   summary.Processor,
		"tick":        summary.Tick,
		"delta":       summary.Delta,
		"matched":     summary.Matched,
		"skipped":     summary.Skipped,
		"commands":    summary.Commands,
		"duration_ms": float64(summary.Duration) / float64(time.Millisecond),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		o.logger.With("processor", summary.Processor).Error("processor summary marshal error", "err", err)
		return
	}
	o.logger.Info(string(data))
}

func (o loggingObserver) logKeyValue(summary ProcessorSummary) {
	o.logger.With("processor", summary.Processor).Info("processor summary",
		"tick", summary.Tick,
		"delta", summary.Delta,
		"matched", summary.Matched,
		"skipped", summary.Skipped,
		"commands", summary.Commands,
		"duration", summary.Duration,
	)
}

type metricsObserver struct {
	collector MetricsCollector
}

func (o metricsObserver) ProcessorCompleted(summary ProcessorSummary) {
	o.collector.ObserveProcessor(summary)
}

func buildObserverChain(logger Logger, cfg InstrumentationConfig) ProcessorObserver {
	var observers []ProcessorObserver

	if cfg.Observer != nil {
		observers = append(observers, cfg.Observer)
	}

	if cfg.EnableStructuredLogging {
		structuredLogger := cfg.StructuredLogger
		if structuredLogger == nil {
			structuredLogger = logger
		}
		observers = append(observers, newLoggingObserver(structuredLogger, cfg.LoggingFormat))
	}

	if cfg.EnableMetrics || cfg.MetricsCollector != nil {
		collector := cfg.MetricsCollector
		if collector == nil {
			collector = NewPrometheusProcessorCollector(cfg.MetricsOptions)
		}
		observers = append(observers, metricsObserver{collector: collector})
	}

	switch len(observers) {
	case 0:
		return noopObserver{}
	case 1:
		return observers[0]
	default:
		return compositeObserver{observers: observers}
	}
}

// PrometheusProcessorCollector aggregates processor summaries and renders them in the
// Prometheus text exposition format.
type PrometheusProcessorCollector struct {
	options *MetricsCollectorOptions
	mu      sync.Mutex
	samples map[string]*processorSample
}

type processorSample struct {
	durationSum   float64
	durationCount float64
	buckets       []float64
	runs          float64
	skipped       float64
	commands      float64
	matched       float64
}

func NewPrometheusProcessorCollector(opts *MetricsCollectorOptions) *PrometheusProcessorCollector {
	if opts == nil {
		opts = &MetricsCollectorOptions{}
	}
	return &PrometheusProcessorCollector{
		options: opts,
		samples: make(map[string]*processorSample),
	}
}

func (c *PrometheusProcessorCollector) ObserveProcessor(summary ProcessorSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sample, ok := c.samples[summary.Processor]
	if !ok {
		sample = &processorSample{}
		if buckets := c.options.DurationBuckets; len(buckets) > 0 {
			sample.buckets = make([]float64, len(buckets))
		}
		c.samples[summary.Processor] = sample
	}

	if summary.Skipped {
		sample.skipped++
	} else {
		durSeconds := summary.Duration.Seconds()
		sample.durationSum += durSeconds
		sample.durationCount++
		for i := range sample.buckets {
			if durSeconds <= c.options.DurationBuckets[i].Seconds() {
				sample.buckets[i]++
			}
		}
		sample.runs++
		sample.commands += float64(summary.Commands)
		sample.matched = float64(summary.Matched)
	}

	if writer := c.options.Writer; writer != nil {
		_ = c.writeMetricsLocked(writer)
	}
}

// WriteMetrics renders every metric gathered so far to w.
func (c *PrometheusProcessorCollector) WriteMetrics(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writeMetricsLocked(w)
}

func (c *PrometheusProcessorCollector) writeMetricsLocked(w io.Writer) error {
	if w == nil {
		return nil
	}
	names := make([]string, 0, len(c.samples))
	for name := range c.samples {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.WriteString("# HELP ecs_processor_duration_seconds Processor dispatch duration.\n")
	buf.WriteString("# TYPE ecs_processor_duration_seconds histogram\n")
	for _, name := range names {
		sample := c.samples[name]
		labels := processorLabels(name)
		for i, bucket := range sample.buckets {
			le := c.options.DurationBuckets[i].Seconds()
			fmt.Fprintf(&buf, "ecs_processor_duration_seconds_bucket{%s,le=\"%.6f\"} %f\n", labels, le, bucket)
		}
		fmt.Fprintf(&buf, "ecs_processor_duration_seconds_bucket{%s,le=\"+Inf\"} %f\n", labels, sample.durationCount)
		fmt.Fprintf(&buf, "ecs_processor_duration_seconds_sum{%s} %f\n", labels, sample.durationSum)
		fmt.Fprintf(&buf, "ecs_processor_duration_seconds_count{%s} %f\n", labels, sample.durationCount)
	}

	writeCounter := func(metric, help string, value func(*processorSample) float64) {
		fmt.Fprintf(&buf, "# HELP %s %s\n", metric, help)
		kind := "counter"
		if metric == "ecs_processor_matched_entities" {
			kind = "gauge"
		}
		fmt.Fprintf(&buf, "# TYPE %s %s\n", metric, kind)
		for _, name := range names {
			fmt.Fprintf(&buf, "%s{%s} %f\n", metric, processorLabels(name), value(c.samples[name]))
		}
	}
	writeCounter("ecs_processor_runs_total", "Processor dispatches.", func(s *processorSample) float64 { return s.runs })
	writeCounter("ecs_processor_skipped_total", "Processor ticks skipped by interval or disable.", func(s *processorSample) float64 { return s.skipped })
	writeCounter("ecs_processor_commands_total", "Deferred commands applied after the processor.", func(s *processorSample) float64 { return s.commands })
	writeCounter("ecs_processor_matched_entities", "Entities matched on the last dispatch.", func(s *processorSample) float64 { return s.matched })

	_, err := w.Write(buf.Bytes())
	return err
}

func processorLabels(name string) string {
	return fmt.Sprintf("processor=%q", name)
}

var (
	_ ProcessorObserver = noopObserver{}
	_ ProcessorObserver = compositeObserver{}
	_ MetricsCollector  = (*PrometheusProcessorCollector)(nil)
)
