package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/transsmart/internal/telemetry"
	"github.com/tournevent/transsmart/pkg/transsmart"
	"go.opentelemetry.io/otel/attribute"
)

var _ transsmart.Recorder = (*telemetry.Metrics)(nil)

func TestMetrics_RecordRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)

	m.RecordRequest("getCarriers", "GET", "200", 20*time.Millisecond)
	m.RecordRequest("getCarriers", "GET", "200", 30*time.Millisecond)
	m.RecordRequest("bookShipment", "POST", "422", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("getCarriers", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("bookShipment", "POST", "422")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))
}

func TestMetrics_RecordLogin(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := telemetry.NewMetrics(reg)

	m.RecordLogin("success", 100*time.Millisecond)
	m.RecordLogin("error", time.Second)
	m.RecordLogin("success", 50*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoginsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoginsTotal.WithLabelValues("error")))
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		telemetry.NewMetrics(prometheus.NewRegistry())
		telemetry.NewMetrics(prometheus.NewRegistry())
	})
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warn", "error", "bogus", ""} {
		logger, err := telemetry.NewLogger(level, "stderr")
		require.NoError(t, err, level)
		assert.NotNil(t, logger)
	}
}

func TestInitTracer(t *testing.T) {
	ctx := context.Background()

	tracer, shutdown, err := telemetry.InitTracer(ctx, "http://127.0.0.1:4318", "transsmart",
		attribute.String("service.name", "transsmart"))
	require.NoError(t, err)
	require.NotNil(t, tracer)

	_, span := tracer.Start(ctx, "test")
	span.End()

	shutdownCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_ = shutdown(shutdownCtx)
}
