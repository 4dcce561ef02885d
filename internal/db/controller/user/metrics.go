package user

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess     = "success"
	resultMismatch    = "mismatch"
	resultUnknownUser = "unknown_user"
)

var authentications = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "user_authentications_total",
		Help: "Number of password authentications by result.",
	},
	[]string{"result"},
)
