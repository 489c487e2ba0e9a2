package middleware

import (
	"net/http"
	"time"

	"shopmart-be/internal/logger"
	"shopmart-be/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// responseRecorder captures the status code written downstream.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// Logging assigns a request id, logs every request in structured form and
// feeds the request counters.
func Logging(reg *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", requestID)

			ctx := logger.WithRequestID(r.Context(), requestID)
			rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rec, r.WithContext(ctx))

			reg.RequestsTotal.Inc()
			if rec.statusCode >= http.StatusInternalServerError {
				reg.RequestErrors.Inc()
			}

			logger.FromCtx(ctx).Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_ip", r.RemoteAddr),
			)
		})
	}
}
