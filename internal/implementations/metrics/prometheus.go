package metrics

import (
	"context"
	"time"

	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements metrics.Sink. Registration errors are logged and
// never returned.
type PrometheusSink struct {
	scheduled prometheus.Counter
	rejected  *prometheus.CounterVec
	fired     prometheus.Counter
	failed    prometheus.Counter
	armed     prometheus.Gauge
	lateness  prometheus.Histogram
}

func NewPrometheusSink(reg prometheus.Registerer, log logging.Logger) *PrometheusSink {
	if reg == nil {
		panic(e.NewNilArgumentError("reg"))
	}
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	s := &PrometheusSink{
		scheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "remindbot_reminders_scheduled_total",
			Help: "Total number of reminders armed.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "remindbot_reminders_rejected_total",
			Help: "Total number of rejected submissions.",
		}, []string{"reason"}),
		fired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "remindbot_reminders_fired_total",
			Help: "Total number of reminders delivered.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "remindbot_reminders_failed_total",
			Help: "Total number of reminders that could not be delivered.",
		}),
		armed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "remindbot_timers_armed",
			Help: "Number of reminder timers currently armed.",
		}),
		lateness: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "remindbot_reminder_fire_lateness_seconds",
			Help:    "Delay between the fire instant and the successful delivery.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 30, 60, 300},
		}),
	}

	for name, c := range map[string]prometheus.Collector{
		"scheduled": s.scheduled,
		"rejected":  s.rejected,
		"fired":     s.fired,
		"failed":    s.failed,
		"armed":     s.armed,
		"lateness":  s.lateness,
	} {
		if err := reg.Register(c); err != nil {
			log.Warning(
				context.Background(),
				"Could not register metric.",
				logging.Entry("metric", name),
				logging.Entry("err", err),
			)
		}
	}
	return s
}

func (s *PrometheusSink) ReminderScheduled() {
	s.scheduled.Inc()
}

func (s *PrometheusSink) ReminderRejected(reason string) {
	s.rejected.WithLabelValues(reason).Inc()
}

func (s *PrometheusSink) ReminderFired(lateness time.Duration) {
	s.fired.Inc()
	if lateness < 0 {
		lateness = 0
	}
	s.lateness.Observe(lateness.Seconds())
}

func (s *PrometheusSink) ReminderFailed() {
	s.failed.Inc()
}

func (s *PrometheusSink) ArmedTimers(count int) {
	s.armed.Set(float64(count))
}
