package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	agentsvc "github.com/w-h-a/agentmem/internal/service/agent"
	"github.com/w-h-a/agentmem/internal/service/memories"
	"github.com/w-h-a/agentmem/trace"
)

// NewRouter mounts the memory routes and, when an agent is given, the run
// route. Every request is its own trace unit.
func NewRouter(tracker *trace.Tracker, mems *memories.Service, agent *agentsvc.Service, logger *slog.Logger) http.Handler {
	h := &handlers{
		memories: mems,
		agent:    agent,
	}

	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(
		mux.MiddlewareFunc(RecoveryMiddleware),
		mux.MiddlewareFunc(TraceMiddleware(tracker)),
	)

	api.HandleFunc("/memories/{name}/messages", h.getMessages).Methods(http.MethodGet)
	api.HandleFunc("/memories/{name}/messages", h.postMessages).Methods(http.MethodPost)
	api.HandleFunc("/memories/{name}/messages", h.deleteMessages).Methods(http.MethodDelete)

	if agent != nil {
		api.HandleFunc("/agent/run", h.runAgent).Methods(http.MethodPost)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return LoggingMiddleware(logger)(r)
}
