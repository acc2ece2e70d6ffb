package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 组卷与交卷
	QuizzesGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qbank_quizzes_generated_total",
			Help: "Number of quizzes generated, by grouping mode",
		},
		[]string{"mode"},
	)

	QuizzesFinalized = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qbank_quizzes_finalized_total",
			Help: "Number of quizzes sealed, by finalization protocol",
		},
		[]string{"protocol"},
	)

	QuizScoreRatio = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qbank_quiz_score_ratio",
			Help:    "Score divided by number of questions for finalized quizzes",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(QuizzesGenerated)
	prometheus.MustRegister(QuizzesFinalized)
	prometheus.MustRegister(QuizScoreRatio)
}

// ObserveFinalized 记录一次交卷
func ObserveFinalized(protocol string, score, total int) {
	QuizzesFinalized.WithLabelValues(protocol).Inc()
	if total > 0 {
		QuizScoreRatio.Observe(float64(score) / float64(total))
	}
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
