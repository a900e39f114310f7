package payment

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics
var (
	initiationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "patchnotes_stkpush_initiations_total",
		Help: "STK push initiation requests by result",
	}, []string{"result"})

	pollsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "patchnotes_payment_status_polls_total",
		Help: "Status polls issued against the payments backend",
	})

	outcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "patchnotes_payment_outcomes_total",
		Help: "Terminal payment outcomes by state and reason",
	}, []string{"state", "reason"})
)
