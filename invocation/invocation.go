package invocation

import (
	"maps"

	getsafe "github.com/w-h-a/agentmem/util/get_safe"
)

const (
	KeyInput      = "input"
	KeyOutput     = "output"
	KeySessionId  = "session_id"
	KeyTraceId    = "trace_id"
	KeyTokenUsage = "token_usage"
)

// Input is the payload an agent is invoked with.
type Input struct {
	values map[string]any
}

func (i *Input) Get(key string) any {
	return i.values[key]
}

func (i *Input) String(key string) string {
	return getsafe.String(i.values, key)
}

func (i *Input) Set(key string, value any) {
	i.values[key] = value
}

func (i *Input) ToMap() map[string]any {
	return maps.Clone(i.values)
}

func NewInput(values map[string]any) *Input {
	in := &Input{values: map[string]any{}}
	maps.Copy(in.values, values)
	return in
}

// Output is the payload an agent returns.
type Output struct {
	values map[string]any
}

func (o *Output) Get(key string) any {
	return o.values[key]
}

func (o *Output) String(key string) string {
	return getsafe.String(o.values, key)
}

func (o *Output) Set(key string, value any) {
	o.values[key] = value
}

func (o *Output) ToMap() map[string]any {
	return maps.Clone(o.values)
}

func NewOutput(values map[string]any) *Output {
	out := &Output{values: map[string]any{}}
	maps.Copy(out.values, values)
	return out
}
