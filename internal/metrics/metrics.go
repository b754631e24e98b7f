// Package metrics holds the prometheus collectors shared by the wizard
// front ends and the calculation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var CalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "partypay_calculations_total",
	Help: "Settlement calculations by outcome (ok, failed, refused).",
}, []string{"outcome"})

var CalculationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "partypay_calculation_duration_seconds",
	Help:    "Round trip time of settlement calculation requests.",
	Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
})

var ExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "partypay_exports_total",
	Help: "Result exports by action and outcome.",
}, []string{"action", "outcome"})

var SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "partypay_sessions_active",
	Help: "Wizard sessions currently held in memory.",
})

var QuotaRejections = promauto.NewCounter(prometheus.CounterOpts{
	Name: "partypay_quota_rejections_total",
	Help: "Calculation requests refused by the daily usage quota.",
})
