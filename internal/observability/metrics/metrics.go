package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	stampsGranted   *prometheus.CounterVec
	rewardsRedeemed *prometheus.CounterVec
	pointsAwarded   *prometheus.CounterVec
	campaignEmails  *prometheus.CounterVec
}

// New builds the registry and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		stampsGranted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loyalty_stamps_granted_total",
			Help: "Stamps granted, by shop",
		}, []string{"shop"}),
		rewardsRedeemed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loyalty_rewards_redeemed_total",
			Help: "Stamp-threshold rewards redeemed, by shop",
		}, []string{"shop"}),
		pointsAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loyalty_points_awarded_total",
			Help: "Points awarded, by shop and source",
		}, []string{"shop", "source"}),
		campaignEmails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campaign_emails_total",
			Help: "Campaign emails attempted, by shop and outcome",
		}, []string{"shop", "outcome"}),
	}

	m.registry.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.stampsGranted,
		m.rewardsRedeemed,
		m.pointsAwarded,
		m.campaignEmails,
	)

	return m
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordStampGranted(shop string) {
	m.stampsGranted.WithLabelValues(shop).Inc()
}

func (m *Metrics) RecordRewardRedeemed(shop string) {
	m.rewardsRedeemed.WithLabelValues(shop).Inc()
}

func (m *Metrics) RecordPointsAwarded(shop, source string, amount int64) {
	m.pointsAwarded.WithLabelValues(shop, source).Add(float64(amount))
}

func (m *Metrics) RecordCampaignEmail(shop, outcome string) {
	m.campaignEmails.WithLabelValues(shop, outcome).Inc()
}

// GinMiddleware records request counts and latencies per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
