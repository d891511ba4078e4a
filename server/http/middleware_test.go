package http

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/agentmem/trace"
)

func TestTraceMiddlewareIsolatesRequestsWithSameTraceId(t *testing.T) {
	tracker := trace.NewTracker(trace.NewManager())

	firstStarted := make(chan struct{})
	secondDone := make(chan struct{})

	var (
		chain []trace.Entry
		usage trace.TokenUsage
	)

	h := TraceMiddleware(tracker)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tracker.InitChain(ctx)
		tracker.InitTokenUsage(ctx)
		tracker.Push(ctx, trace.Entry{Source: r.URL.Path, Type: trace.TypeAgent})
		tracker.AddTokenUsage(ctx, trace.TokenUsage{"prompt_tokens": 1})

		if r.URL.Path != "/first" {
			return
		}

		close(firstStarted)
		<-secondDone

		tracker.Push(ctx, trace.Entry{Source: "gpt", Type: trace.TypeLLM})
		tracker.AddTokenUsage(ctx, trace.TokenUsage{"prompt_tokens": 1})

		chain = tracker.Chain(ctx)
		usage = tracker.TokenUsage(ctx)
	}))

	request := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(HeaderTraceId, "shared")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		request("/first")
	}()

	<-firstStarted
	rec := request("/second")
	close(secondDone)
	wg.Wait()

	assert.Equal(t, "shared", rec.Header().Get(HeaderTraceId))
	require.Len(t, chain, 2)
	assert.Equal(t, trace.Entry{Source: "/first", Type: trace.TypeAgent}, chain[0])
	assert.Equal(t, trace.Entry{Source: "gpt", Type: trace.TypeLLM}, chain[1])
	assert.Equal(t, trace.TokenUsage{"prompt_tokens": 2}, usage)
}
