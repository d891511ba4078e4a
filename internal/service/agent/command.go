package agent

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode"
)

const commandPrefix = "tool:"

// command is a parsed `tool:<name> <args>` line.
type command struct {
	name string
	args map[string]any
}

// parseCommand reports whether input is a tool command. The prefix is
// matched case-insensitively.
func parseCommand(input string) (command, bool, error) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(strings.ToLower(trimmed), commandPrefix) {
		return command{}, false, nil
	}

	payload := strings.TrimSpace(trimmed[len(commandPrefix):])

	name, rest := payload, ""
	if i := strings.IndexFunc(payload, unicode.IsSpace); i >= 0 {
		name, rest = payload[:i], payload[i:]
	}
	if len(name) == 0 {
		return command{}, true, errors.New("agent: tool name is missing")
	}

	return command{name: name, args: decodeArguments(rest)}, true, nil
}

// decodeArguments accepts a JSON object, a JSON array (as "items") or plain
// text (as "input").
func decodeArguments(raw string) map[string]any {
	raw = strings.TrimSpace(raw)
	if len(raw) == 0 {
		return map[string]any{}
	}

	switch raw[0] {
	case '{':
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err == nil {
			return obj
		}
	case '[':
		var arr []any
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			return map[string]any{"items": arr}
		}
	}

	return map[string]any{"input": raw}
}
