package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_submitted_total",
		Help: "Total number of orders submitted at checkout",
	})

	CheckoutRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_rejected_total",
		Help: "Total number of rejected checkout attempts",
	}, []string{"reason"})

	PaymentsPaidTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_paid_total",
		Help: "Total number of payments observed as paid",
	})

	PaymentsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_failed_total",
		Help: "Total number of payments observed as failed",
	})

	PaymentsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_expired_total",
		Help: "Total number of payments declared expired by the tracking timer",
	})

	PaymentRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_retries_total",
		Help: "Total number of payment retry resets",
	})

	MenuCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "menu_cache_hits_total",
		Help: "Total number of catalog cache hits",
	})

	MenuCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "menu_cache_misses_total",
		Help: "Total number of catalog cache misses",
	})

	MenuFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "menu_fallback_total",
		Help: "Total number of catalog reads served from the sample dataset",
	})

	KitchenStatusUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kitchen_status_updates_total",
		Help: "Total number of kitchen order status transitions",
	}, []string{"status"})

	AccessAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kitchen_access_attempts_total",
		Help: "Total number of kitchen access attempts",
	}, []string{"result"})

	AccessLockoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kitchen_access_lockouts_total",
		Help: "Total number of kitchen access lockouts",
	})

	CheckoutLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_latency_seconds",
		Help:    "Latency of checkout processing",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
