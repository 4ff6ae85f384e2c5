package server

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs one line per request. 5xx responses log at error level
// and 4xx at warn.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(time.Since(start).Nanoseconds()) / 1e6,
				"bytes", ww.BytesWritten(),
			}
			if requestID := chimw.GetReqID(r.Context()); requestID != "" {
				attrs = append(attrs, "request_id", requestID)
			}

			switch {
			case status >= http.StatusInternalServerError:
				log.Error("HTTP request", attrs...)
			case status >= http.StatusBadRequest:
				log.Warn("HTTP request", attrs...)
			default:
				log.Info("HTTP request", attrs...)
			}
		})
	}
}
