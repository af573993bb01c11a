package ecs_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/TomBebbington/ecs"
)

type recordingObserver struct {
	summaries []ecs.ProcessorSummary
}

func (r *recordingObserver) ProcessorCompleted(s ecs.ProcessorSummary) {
	r.summaries = append(r.summaries, s)
}

func TestObserverReceivesSummaries(t *testing.T) {
	rec := &recordingObserver{}
	w := newTestWorld(t, ecs.WithInstrumentation(ecs.InstrumentationConfig{Observer: rec}))
	e := w.Create()
	ecs.Add(w, e, Position{})

	w.RegisterProcessor(ecs.EachEntity(func(w *ecs.World, e ecs.Entity, _ float64) {
		w.Defer(ecs.NewAddComponentCommand(e, Health(1)))
	}), ecs.None(ecs.TypeOf[Health]()), ecs.WithName("tagger"))
	w.RegisterProcessor(ecs.TickFunc(func(float64) {}), ecs.Everything(),
		ecs.WithName("slow"), ecs.WithTickInterval(ecs.TickInterval{Every: 2}))

	w.Update(0.5)
	w.Update(0.5)

	require.Len(t, rec.summaries, 4)
	first := rec.summaries[0]
	assert.Equal(t, "tagger", first.Processor)
	assert.Equal(t, uint64(0), first.Tick)
	assert.Equal(t, 1, first.Matched)
	assert.Equal(t, 1, first.Commands)
	assert.Equal(t, 0.5, first.Delta)
	assert.False(t, first.Skipped)

	assert.Equal(t, "slow", rec.summaries[1].Processor)
	assert.False(t, rec.summaries[1].Skipped)
	assert.Equal(t, 0, rec.summaries[2].Matched, "entity already tagged")
	assert.True(t, rec.summaries[3].Skipped)
	assert.Equal(t, uint64(1), rec.summaries[3].Tick)
}

func TestPrometheusProcessorCollectorWritesMetrics(t *testing.T) {
	collector := ecs.NewPrometheusProcessorCollector(&ecs.MetricsCollectorOptions{
		DurationBuckets: []time.Duration{time.Millisecond, time.Second},
	})
	w := newTestWorld(t, ecs.WithInstrumentation(ecs.InstrumentationConfig{MetricsCollector: collector}))
	w.Create()
	w.RegisterProcessor(ecs.TickFunc(func(float64) {}), ecs.Everything(),
		ecs.WithName("mover"), ecs.WithTickInterval(ecs.TickInterval{Every: 2}))

	w.Update(1)
	w.Update(1)
	w.Update(1)

	var buf bytes.Buffer
	require.NoError(t, collector.WriteMetrics(&buf))
	metrics := buf.String()
	assert.Contains(t, metrics, `ecs_processor_duration_seconds_count{processor="mover"} 2.000000`)
	assert.Contains(t, metrics, `ecs_processor_duration_seconds_bucket{processor="mover",le="1.000000"} 2.000000`)
	assert.Contains(t, metrics, `ecs_processor_duration_seconds_bucket{processor="mover",le="+Inf"} 2.000000`)
	assert.Contains(t, metrics, "# TYPE ecs_processor_duration_seconds histogram")
	assert.Contains(t, metrics, `ecs_processor_runs_total{processor="mover"} 2.000000`)
	assert.Contains(t, metrics, `ecs_processor_skipped_total{processor="mover"} 1.000000`)
	assert.Contains(t, metrics, `ecs_processor_matched_entities{processor="mover"} 1.000000`)
	assert.Contains(t, metrics, "# TYPE ecs_processor_matched_entities gauge")
}

func TestPrometheusCollectorStreamsToWriter(t *testing.T) {
	var buf bytes.Buffer
	collector := ecs.NewPrometheusProcessorCollector(&ecs.MetricsCollectorOptions{Writer: &buf})
	collector.ObserveProcessor(ecs.ProcessorSummary{Processor: "p", Duration: time.Millisecond})
	assert.Contains(t, buf.String(), `ecs_processor_runs_total{processor="p"} 1.000000`)
}

func TestStructuredLoggingObserverKeyValue(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	w := newTestWorld(t,
		ecs.WithLogger(ecs.NewZapLogger(zap.New(core))),
		ecs.WithInstrumentation(ecs.InstrumentationConfig{
			EnableStructuredLogging: true,
			LoggingFormat:           ecs.ObservationLogFormatKeyValue,
		}),
	)
	w.RegisterProcessor(ecs.TickFunc(func(float64) {}), ecs.Everything(), ecs.WithName("clock"))
	w.Update(1)

	entries := logs.FilterMessage("processor summary").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "clock", fields["processor"])
	assert.Equal(t, w.ID(), fields["world"])
	assert.Equal(t, false, fields["skipped"])
}

func TestStructuredLoggingObserverJSON(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := ecs.NewZapLogger(zap.New(core))
	w := newTestWorld(t, ecs.WithInstrumentation(ecs.InstrumentationConfig{
		EnableStructuredLogging: true,
		StructuredLogger:        logger,
	}))
	w.RegisterProcessor(ecs.TickFunc(func(float64) {}), ecs.Everything(), ecs.WithName("clock"))
	w.Update(0.25)

	require.Equal(t, 1, logs.Len())
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(logs.All()[0].Message), &payload))
	assert.Equal(t, "clock", payload["processor"])
	assert.Equal(t, 0.25, payload["delta"])
}

func TestStructuredLoggingFromConfigAtDefaultLevel(t *testing.T) {
	cfg, err := ecs.LoadConfig(strings.NewReader("metrics:\n  structured_logging: true\n  format: key_value\n"))
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	w := ecs.NewWorld(ecs.WithLogger(ecs.NewZapLogger(zap.New(core))), ecs.WithConfig(cfg))
	w.RegisterProcessor(ecs.TickFunc(func(float64) {}), ecs.Everything(), ecs.WithName("clock"))
	w.Update(1)

	entries := logs.FilterMessage("processor summary").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "clock", entries[0].ContextMap()["processor"])
}
