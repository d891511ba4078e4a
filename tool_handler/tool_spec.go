package toolhandler

import (
	"encoding/json"
	"fmt"
	"strings"
)

type ToolSpec struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	InputSchema map[string]any   `json:"input_schema"`
	Examples    []map[string]any `json:"examples,omitempty"`
}

// Render formats the spec as a prompt bullet: name and description, then the
// input schema and examples when present.
func (s ToolSpec) Render() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("- %s: %s\n", s.Name, s.Description))

	if len(s.InputSchema) > 0 {
		schema, _ := json.MarshalIndent(s.InputSchema, "  ", "  ")
		sb.WriteString("  Input schema: ")
		sb.Write(schema)
		sb.WriteString("\n")
	}

	if len(s.Examples) > 0 {
		sb.WriteString("  Examples:\n")
		for _, ex := range s.Examples {
			raw, _ := json.MarshalIndent(ex, "    ", "  ")
			sb.WriteString("    ")
			sb.Write(raw)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
