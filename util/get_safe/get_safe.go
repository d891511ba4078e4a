package getsafe

import (
	"encoding/json"
	"math"
	"strconv"
)

// String returns payload[key] if it is a string, else "".
func String(payload map[string]any, key string) string {
	if v, ok := payload[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Int accepts the numeric shapes decoded JSON produces, plus numeric strings.
func Int(payload map[string]any, key string) int {
	v, ok := payload[key]
	if !ok {
		return 0
	}

	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return int(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0
		}
		return int(i)
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0
		}
		return i
	}

	return 0
}

func Metadata(payload map[string]any, key string) map[string]any {
	if v, ok := payload[key]; ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}

// Slice returns payload[key] if it is a decoded JSON array.
func Slice(payload map[string]any, key string) []any {
	if v, ok := payload[key]; ok {
		if s, ok := v.([]any); ok {
			return s
		}
	}
	return nil
}
