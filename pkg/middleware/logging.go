package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"company-workspace-backend/pkg/logger"
)

// RequestLogger logs one line per request. The formatter chosen by
// logger.Configure makes this JSON in production and text elsewhere.
func RequestLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			// The auth middleware runs inside this one and stores the
			// identity on a derived request, so capture it through a holder.
			holder := &identityHolder{}
			next.ServeHTTP(ww, r.WithContext(withIdentityHolder(r.Context(), holder)))

			user := "anonymous"
			if holder.identity != nil {
				user = holder.identity.ID
			}

			entry := logger.HTTP().WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"user":       user,
				"ip":         getClientIP(r),
				"request_id": middleware.GetReqID(r.Context()),
			})

			switch status := ww.Status(); {
			case status >= 500:
				entry.Error("request completed")
			case status >= 400:
				entry.Warn("request completed")
			default:
				entry.Info("request completed")
			}
		})
	}
}

// getClientIP returns the client address, preferring proxy headers
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
