package memory

const (
	TypeHuman   = "human"
	TypeAI      = "ai"
	TypeSystem  = "system"
	TypeTool    = "tool"
	TypeSummary = "summary"
)

// Message is one entry of a conversation. Slices of Messages are ordered
// oldest first.
type Message struct {
	Type     string         `json:"type,omitempty"`
	Content  string         `json:"content"`
	Source   string         `json:"source,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
