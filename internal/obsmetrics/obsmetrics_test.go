package obsmetrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupInstallsAMeterProvider(t *testing.T) {
	shutdown, err := Setup()
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	meter := Meter()
	assert.NotNil(t, meter)

	hist, err := meter.Float64Histogram("test.histogram")
	require.NoError(t, err)
	assert.NotNil(t, hist)
}

func TestTracerReturnsANonNilTracer(t *testing.T) {
	assert.NotNil(t, Tracer())
}
