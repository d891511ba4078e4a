package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/gorilla/mux"
	agentsvc "github.com/w-h-a/agentmem/internal/service/agent"
	"github.com/w-h-a/agentmem/internal/service/memories"
	"github.com/w-h-a/agentmem/invocation"
	"github.com/w-h-a/agentmem/memory"
	getsafe "github.com/w-h-a/agentmem/util/get_safe"
)

type handlers struct {
	memories *memories.Service
	agent    *agentsvc.Service
}

func (h *handlers) getMessages(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	q := r.URL.Query()

	opts := []memory.GetOption{
		memory.WithGetSessionId(q.Get("session_id")),
		memory.WithGetAgentId(q.Get("agent_id")),
		memory.WithGetSource(q.Get("source")),
	}

	if raw := q.Get("top_k"); len(raw) > 0 {
		k := getsafe.Int(map[string]any{"top_k": raw}, "top_k")
		if k <= 0 {
			writeError(w, http.StatusBadRequest, "top_k must be a positive integer")
			return
		}
		opts = append(opts, memory.WithGetTopK(k))
	}

	msgs, err := h.memories.Messages(r.Context(), name, opts...)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if msgs == nil {
		msgs = []memory.Message{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (h *handlers) postMessages(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var body map[string]any
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	msgs, err := parseMessages(getsafe.Slice(body, "messages"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.memories.Append(
		r.Context(),
		name,
		msgs,
		memory.WithAddSessionId(getsafe.String(body, "session_id")),
		memory.WithAddAgentId(getsafe.String(body, "agent_id")),
	)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"added": len(msgs)})
}

func (h *handlers) deleteMessages(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	q := r.URL.Query()

	err := h.memories.Forget(
		r.Context(),
		name,
		memory.WithDeleteSessionId(q.Get("session_id")),
		memory.WithDeleteAgentId(q.Get("agent_id")),
	)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) runAgent(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	out, err := h.agent.Run(r.Context(), invocation.NewInput(body))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, out.ToMap())
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, memories.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, agentsvc.ErrEmptyInput), errors.Is(err, agentsvc.ErrUnknownTool):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		clog.FromContext(r.Context()).Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func parseMessages(raw []any) ([]memory.Message, error) {
	msgs := make([]memory.Message, 0, len(raw))

	for i, item := range raw {
		payload, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("messages[%d] must be an object", i)
		}

		msg := memory.Message{
			Type:     getsafe.String(payload, "type"),
			Content:  getsafe.String(payload, "content"),
			Source:   getsafe.String(payload, "source"),
			Metadata: getsafe.Metadata(payload, "metadata"),
		}

		if len(strings.TrimSpace(msg.Content)) == 0 {
			return nil, fmt.Errorf("messages[%d].content is required", i)
		}

		msgs = append(msgs, msg)
	}

	return msgs, nil
}
