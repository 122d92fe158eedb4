package client

import (
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/uzgidro/lex-parser/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Prometheus metrics for upstream round-trips.
var (
	upstreamRequestsTotal = promauto.With(metrics.Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "lex_upstream_requests_total",
		Help: "Total upstream round-trips by method and status",
	}, []string{"method", "status"})

	upstreamRequestDuration = promauto.With(metrics.Registry).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lex_upstream_request_duration_seconds",
		Help:    "Upstream round-trip duration in seconds by method",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method"})

	upstreamErrorsTotal = promauto.With(metrics.Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "lex_upstream_errors_total",
		Help: "Total upstream failures by class",
	}, []string{"class"})
)

// instrument attaches tracing, metrics and debug logging to every round-trip.
func instrument(rc *resty.Client, logger zerolog.Logger) {
	rc.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		ctx, _ := tracer.Start(req.Context(), "http "+req.Method)
		req.SetContext(ctx)
		return nil
	})

	rc.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		span := trace.SpanFromContext(res.Request.Context())
		defer span.End()

		method := res.Request.Method
		status := strconv.Itoa(res.StatusCode())
		upstreamRequestsTotal.WithLabelValues(method, status).Inc()
		upstreamRequestDuration.WithLabelValues(method).Observe(res.Time().Seconds())

		span.SetAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", res.Request.URL),
			attribute.Int("http.status_code", res.StatusCode()),
			attribute.Int("http.response_size", len(res.Body())),
		)
		if !res.IsSuccess() {
			span.SetStatus(codes.Error, res.Status())
		}

		logger.Debug().
			Str("method", method).
			Str("url", res.Request.URL).
			Int("status_code", res.StatusCode()).
			Dur("duration", res.Time()).
			Msg("Upstream round-trip")
		return nil
	})

	rc.OnError(func(req *resty.Request, err error) {
		span := trace.SpanFromContext(req.Context())
		defer span.End()

		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")

		errClass := classify(0, err)
		upstreamErrorsTotal.WithLabelValues(string(errClass)).Inc()
		upstreamRequestsTotal.WithLabelValues(req.Method, "network_error").Inc()
		if !req.Time.IsZero() {
			upstreamRequestDuration.WithLabelValues(req.Method).Observe(time.Since(req.Time).Seconds())
		}

		logger.Error().
			Err(err).
			Str("method", req.Method).
			Str("url", req.URL).
			Str("error_class", string(errClass)).
			Msg("Upstream request failed")
	})
}

// restyLogger routes resty's internal messages into zerolog.
type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(format, v...)
}
