package logger

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	levels     *prometheus.CounterVec //nolint:gochecknoglobals
	levelsOnce sync.Once              //nolint:gochecknoglobals
)

// levelHook counts the log statements written at each level.
type levelHook struct {
	counter *prometheus.CounterVec
}

// Run implements zerolog.Hook.
func (h levelHook) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if level == zerolog.NoLevel || level == zerolog.Disabled {
		return
	}

	h.counter.WithLabelValues(level.String()).Inc()
}

// newLevelHook registers grouproster_log_statements_total on first use.
// The service label of the first call sticks for the life of the process.
func newLevelHook(service string) levelHook {
	levelsOnce.Do(func() {
		levels = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   "grouproster",
				Name:        "log_statements_total",
				Help:        "Log statements written, by level.",
				ConstLabels: prometheus.Labels{"service": service},
			},
			[]string{"level"},
		)
	})

	return levelHook{counter: levels}
}
