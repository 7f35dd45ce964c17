// Package obsmetrics wires the process-wide OpenTelemetry MeterProvider
// (§6 Observability): a stdoutmetric exporter by default, with Setup's
// signature left open for swapping in a real collector exporter without
// touching any instrumented call site (none of this engine's domain logic
// depends on a particular exporter, the same posture bd itself takes
// importing the full otel/otlp stack as ambient infrastructure).
package obsmetrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

const meterName = "github.com/kgraph/kgcore"

// Shutdown flushes and stops the installed MeterProvider.
type Shutdown func(context.Context) error

// Setup installs a process-wide MeterProvider exporting to stdout and
// returns a Shutdown to call once at process exit. Safe to call more than
// once in tests; each call installs its own provider.
func Setup() (Shutdown, error) {
	exporter, err := stdoutmetric.New(stdoutmetric.WithoutTimestamps())
	if err != nil {
		return nil, err
	}
	reader := sdkmetric.NewPeriodicReader(exporter)
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)
	return provider.Shutdown, nil
}

// Meter returns the engine's named meter off whichever MeterProvider is
// currently installed (the real one after Setup, or otel's no-op default
// in tests that never call Setup).
func Meter() metric.Meter {
	return otel.Meter(meterName)
}

// Tracer returns the engine's named tracer. Setup only installs a
// MeterProvider, not a TracerProvider, so spans opened here are no-ops
// today; the call sites stay in place as the seam a real exporter would
// plug into without touching instrumented code.
func Tracer() trace.Tracer {
	return otel.Tracer(meterName)
}
