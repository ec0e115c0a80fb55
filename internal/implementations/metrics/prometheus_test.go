package metrics

import (
	"testing"
	"time"

	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/domain/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

var _ metrics.Sink = (*PrometheusSink)(nil)

func TestPrometheusSink(t *testing.T) {
	// Setup ---
	reg := prometheus.NewRegistry()
	sink := NewPrometheusSink(reg, logging.NewFakeLogger())

	// Exercise ---
	sink.ReminderScheduled()
	sink.ReminderScheduled()
	sink.ReminderRejected("invalid_timestamp")
	sink.ReminderFired(1500 * time.Millisecond)
	sink.ReminderFired(-time.Second)
	sink.ReminderFailed()
	sink.ArmedTimers(3)

	// Verify ---
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.scheduled))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.rejected.WithLabelValues("invalid_timestamp")))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.fired))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.failed))
	assert.Equal(t, 3.0, testutil.ToFloat64(sink.armed))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.lateness))
}

func TestDuplicateRegistrationIsTolerated(t *testing.T) {
	reg := prometheus.NewRegistry()
	log := logging.NewFakeLogger()
	NewPrometheusSink(reg, log)

	sink := NewPrometheusSink(reg, log)
	sink.ReminderScheduled()

	assert.Equal(t, 6, log.CountLevel(logging.WARNING))
}
