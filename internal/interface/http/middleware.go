package http

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/orbita-hub/orbita-learning-hub/pkg/logger"
)

// adminKeyHeader carries the admin API key.
const adminKeyHeader = "X-Admin-Key"

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// recoverMiddleware converts handler panics into 500 responses.
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error("handler panicked",
					logger.String("path", r.URL.Path),
					logger.Err(fmt.Errorf("panic: %v", rec)),
					logger.String("stack", string(debug.Stack())),
				)
				writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the written status for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware writes one access-log line per request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.log.Info("http request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", rec.status),
			logger.Duration("duration", time.Since(start)),
		)
	})
}

// adminAuthMiddleware checks the X-Admin-Key header against the configured
// bcrypt hash. With no hash configured the admin surface is disabled.
func (s *Server) adminAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.AdminKeyHash == "" {
			writeError(w, http.StatusNotFound, "not_found", "admin endpoints are disabled")
			return
		}

		key := r.Header.Get(adminKeyHeader)
		if key == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing "+adminKeyHeader+" header")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(s.config.AdminKeyHash), []byte(key)); err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid admin key")
			return
		}

		next.ServeHTTP(w, r)
	})
}
