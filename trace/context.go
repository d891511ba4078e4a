package trace

import "sync"

// Context is the identity bundle of one execution unit. Empty fields are
// absent. Fields only change through Manager setters.
type Context struct {
	mtx       sync.RWMutex
	sessionId string
	traceId   string
	spanId    string
}

func (c *Context) SessionId() string {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.sessionId
}

func (c *Context) TraceId() string {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.traceId
}

func (c *Context) SpanId() string {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.spanId
}

// Map returns the set fields keyed by name, for log binding.
func (c *Context) Map() map[string]string {
	c.mtx.RLock()
	defer c.mtx.RUnlock()

	m := map[string]string{}

	if len(c.sessionId) > 0 {
		m["session_id"] = c.sessionId
	}

	if len(c.traceId) > 0 {
		m["trace_id"] = c.traceId
	}

	if len(c.spanId) > 0 {
		m["span_id"] = c.spanId
	}

	return m
}

func (c *Context) setSessionId(id string) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.sessionId = id
}

func (c *Context) setTraceId(id string) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.traceId = id
}

func (c *Context) setSpanId(id string) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.spanId = id
}
