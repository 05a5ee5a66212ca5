package terminal

import (
	"strings"

	"github.com/goccy/go-json"
)

// extractToolSummary extracts the most relevant field from a serialized tool
// input. Inputs that are not JSON objects yield their first line.
func extractToolSummary(name, input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(input), &m); err != nil || m == nil {
		if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
			return ""
		}
		return firstLine(input)
	}

	switch name {
	case "bash", "shell", "exec_command":
		return stringField(m, "command")
	case "read", "write", "edit", "multiedit":
		return stringField(m, "file_path")
	case "glob", "grep":
		return stringField(m, "pattern")
	default:
		for _, key := range []string{"command", "cmd", "file_path", "path", "pattern", "query", "url", "description"} {
			if v := stringField(m, key); v != "" {
				return v
			}
		}
		return ""
	}
}

// stringField extracts a string value from m. Lists of strings, as in a
// shell argv, are joined with spaces.
func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			s, ok := p.(string)
			if !ok {
				return ""
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
