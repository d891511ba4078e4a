package http

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/w-h-a/agentmem/trace"
)

const (
	HeaderTraceId   = "X-Trace-Id"
	HeaderSessionId = "X-Session-Id"
)

// TraceMiddleware runs each request as its own trace unit. The trace id
// comes from X-Trace-Id when present and is echoed back.
func TraceMiddleware(tracker *trace.Tracker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			manager := tracker.Manager()
			ctx := manager.Begin(r.Context())

			traceId := r.Header.Get(HeaderTraceId)
			if len(traceId) == 0 {
				traceId = manager.NewTraceId()
			}
			manager.SetTraceId(ctx, traceId)

			if sessionId := r.Header.Get(HeaderSessionId); len(sessionId) > 0 {
				manager.SetSessionId(ctx, sessionId)
			}

			w.Header().Set(HeaderTraceId, traceId)

			defer func() {
				tracker.ClearChain(ctx)
				tracker.ClearTokenUsage(ctx)
				manager.Reset(ctx)
			}()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggingMiddleware puts a request-scoped logger on the context and logs
// one line per request.
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			log := logger.With("method", r.Method, "path", r.URL.Path)
			ctx := clog.WithLogger(r.Context(), clog.New(log.Handler()))

			wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			level := slog.LevelInfo
			if wrapped.statusCode >= 500 {
				level = slog.LevelError
			} else if wrapped.statusCode >= 400 {
				level = slog.LevelWarn
			}

			log.Log(ctx, level, "http request",
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
				"trace_id", w.Header().Get(HeaderTraceId),
			)
		})
	}
}

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				clog.FromContext(r.Context()).Error("panic in handler", "panic", rec, "stack", string(debug.Stack()))
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
