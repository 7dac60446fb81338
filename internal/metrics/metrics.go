package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_research_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stock_research_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"route", "method"},
	)

	analysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_research_analyses_total",
			Help: "Total number of completed stock analyses by action",
		},
		[]string{"action"},
	)

	analysisErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stock_research_analysis_errors_total",
			Help: "Total number of failed analyses by kind",
		},
		[]string{"kind"},
	)
)

// RecordAnalysis counts a completed analysis by decided action.
func RecordAnalysis(action string) {
	analysesTotal.WithLabelValues(action).Inc()
}

// RecordError counts a failed analysis.
func RecordError(kind string) {
	analysisErrors.WithLabelValues(kind).Inc()
}

// Middleware records request counts and latency per templated route.
// Echo's route template keeps label cardinality low.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}
			method := c.Request().Method

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = 500
				}
			}

			httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
