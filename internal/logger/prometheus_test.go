package logger

import (
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLevelHookCountsPerLevel(t *testing.T) {
	level := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(level) })

	h := newLevelHook("test")
	warn := h.counter.WithLabelValues("warn")
	before := testutil.ToFloat64(warn)

	l := zerolog.New(io.Discard).Hook(h)
	l.Warn().Msg("first")
	l.Warn().Msg("second")
	l.Log().Msg("no level")

	assert.InDelta(t, before+2, testutil.ToFloat64(warn), 0)
}
