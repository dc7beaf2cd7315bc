package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civilprep_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "civilprep_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 15},
		},
		[]string{"method", "endpoint"},
	)

	// AIRequests 按生成器类型与结果（ok/fallback/canceled）统计模型调用
	AIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civilprep_ai_requests_total",
			Help: "AI generator calls by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	PredictionFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "civilprep_prediction_fallbacks_total",
			Help: "Prediction requests answered with the fallback payload",
		},
	)

	// SnapshotResults 每日快照任务中每个账号的结果（ok/error）
	SnapshotResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civilprep_snapshot_results_total",
			Help: "Daily prediction snapshots by outcome",
		},
		[]string{"outcome"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "civilprep_cache_lookups_total",
			Help: "Suggestion cache lookups by result (hit/miss/error)",
		},
		[]string{"result"},
	)

	registerOnce sync.Once
)

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(AIRequests)
		prometheus.MustRegister(PredictionFallbacks)
		prometheus.MustRegister(SnapshotResults)
		prometheus.MustRegister(CacheLookups)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// 未匹配的路径归为一类，避免标签基数失控
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
