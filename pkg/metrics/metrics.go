package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	WishesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "tribute", Name: "wishes_created_total", Help: "Number of wishes accepted by the API."},
	)
	WishesDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "tribute", Name: "wishes_deleted_total", Help: "Number of wishes removed through the API."},
	)
	WishesCensored = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "tribute", Name: "wishes_censored_total", Help: "Number of accepted wishes that had blocked words masked."},
	)
	WishLanguages = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tribute", Name: "wish_languages_total", Help: "Accepted wishes by detected language (ISO 639-1, und when unsure)."},
		[]string{"lang"},
	)
	StoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tribute", Name: "store_errors_total", Help: "Failed reads and writes of the wishes document by operation."},
		[]string{"op"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tribute", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tribute", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	LiveClients = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "tribute", Name: "live_clients", Help: "Websocket clients currently subscribed to the wishes feed."},
	)
	Backups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "tribute", Name: "backups_total", Help: "Document snapshots uploaded to object storage by result."},
		[]string{"result"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "tribute", Name: "http_request_duration_seconds", Help: "HTTP request latency by route.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route", "status"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(WishesCreated)
	reg.MustRegister(WishesDeleted)
	reg.MustRegister(WishesCensored)
	reg.MustRegister(WishLanguages)
	reg.MustRegister(StoreErrors)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(LiveClients)
	reg.MustRegister(Backups)
	reg.MustRegister(RequestDuration)
}

// Middleware observes request latency labelled by the matched route template,
// so /api/wishes/:id stays one series.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Observe(time.Since(start).Seconds())
	}
}
