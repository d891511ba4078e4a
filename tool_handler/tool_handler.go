package toolhandler

import "context"

type ToolHandler interface {
	Spec() ToolSpec
	Invoke(ctx context.Context, req ToolRequest) (ToolResponse, error)
}

type ToolRequest struct {
	Arguments map[string]any `json:"arguments"`
}

type ToolResponse struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ToMap lets the monitor record requests without reflection.
func (r ToolRequest) ToMap() map[string]any {
	return map[string]any{"arguments": r.Arguments}
}

func (r ToolResponse) ToMap() map[string]any {
	out := map[string]any{"content": r.Content}
	if len(r.Metadata) > 0 {
		out["metadata"] = r.Metadata
	}
	return out
}
