package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// quietPaths are polled by load balancers and logged at Debug only.
var quietPaths = map[string]bool{"/health": true, "/ready": true, "/metrics": true}

// Logger writes one access log line per request. Server errors are logged
// at Warn; the error handler has already logged their cause.
func Logger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			log := logger.Info
			switch {
			case status >= 500:
				log = logger.Warn
			case quietPaths[r.URL.Path]:
				log = logger.Debug
			}

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", middleware.GetReqID(r.Context())),
				zap.String("remoteAddr", getClientIP(r)),
			}
			if rc := chi.RouteContext(r.Context()); rc != nil {
				if pattern := rc.RoutePattern(); pattern != "" {
					fields = append(fields, zap.String("route", pattern))
				}
			}
			if date := chi.URLParamFromCtx(r.Context(), "date"); date != "" {
				fields = append(fields, zap.String("date", date))
			} else if date := r.URL.Query().Get("date"); date != "" {
				fields = append(fields, zap.String("date", date))
			}
			if ua := r.UserAgent(); ua != "" {
				fields = append(fields, zap.String("userAgent", ua))
			}

			log("HTTP request", fields...)
		})
	}
}
