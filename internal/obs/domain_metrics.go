package obs

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// DiscountCalculationsTotal counts pipeline runs by outcome.
	DiscountCalculationsTotal *prometheus.CounterVec
	// DiscountAppliedTotal counts non-zero discounts by strategy.
	DiscountAppliedTotal *prometheus.CounterVec
	// DiscountAmountTotal accumulates discounted money by strategy.
	DiscountAmountTotal *prometheus.CounterVec
	// DiscountCalculationDuration records pipeline latency in milliseconds.
	DiscountCalculationDuration prometheus.Histogram
)

// MustRegisterDomainMetrics registers the discount collectors on reg, defaulting to the
// prometheus default registerer. The collectors are created once per process: namespace and
// buckets of the first call win, and later calls attach the same collectors to their registry
// so every registry observes the process-wide totals. Buckets fall back to DefaultDurationBuckets.
func MustRegisterDomainMetrics(namespace string, buckets []float64, reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	domainOnce.Do(func() {
		if len(buckets) == 0 {
			buckets = DefaultDurationBuckets
		}
		DiscountCalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_calculations_total",
			Help:      "Count of cart discount calculations by outcome.",
		}, []string{"result"})
		DiscountAppliedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_applied_total",
			Help:      "Count of non-zero discounts applied by strategy.",
		}, []string{"strategy"})
		DiscountAmountTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discount_amount_total",
			Help:      "Sum of discounted amounts by strategy.",
		}, []string{"strategy"})
		DiscountCalculationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "discount_calculation_duration_ms",
			Help:      "Latency of cart discount calculations in milliseconds.",
			Buckets:   buckets,
		})
	})

	mustRegisterCollector(reg, DiscountCalculationsTotal)
	mustRegisterCollector(reg, DiscountAppliedTotal)
	mustRegisterCollector(reg, DiscountAmountTotal)
	mustRegisterCollector(reg, DiscountCalculationDuration)
}

// ObserveCalculation records a finished pipeline run. Safe before registration.
func ObserveCalculation(result string, elapsed time.Duration) {
	if DiscountCalculationsTotal != nil {
		DiscountCalculationsTotal.WithLabelValues(result).Inc()
	}
	if DiscountCalculationDuration != nil {
		DiscountCalculationDuration.Observe(DurationMillis(elapsed))
	}
}

// ObserveDiscount records a non-zero discount produced by a strategy.
func ObserveDiscount(strategy string, amount float64) {
	if amount <= 0 {
		return
	}
	if DiscountAppliedTotal != nil {
		DiscountAppliedTotal.WithLabelValues(strategy).Inc()
	}
	if DiscountAmountTotal != nil {
		DiscountAmountTotal.WithLabelValues(strategy).Add(amount)
	}
}
