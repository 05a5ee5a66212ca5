// Package compact provides a Transformer that replaces verbose tool content
// with short summaries for compact message viewing.
package compact

import (
	"fmt"
	"strings"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/goccy/go-json"
)

// Config controls the compact transformer behavior.
type Config struct {
	// StripThinking drops thinking and reasoning blocks.
	StripThinking bool
}

// Compactor replaces verbose tool content with line-count summaries.
type Compactor struct {
	stripThinking bool
}

// New creates a Compactor from the given config.
func New(cfg Config) *Compactor {
	return &Compactor{stripThinking: cfg.StripThinking}
}

// Transform implements core.Transformer. Messages left without content
// after stripping are kept so the page still matches Total.
func (c *Compactor) Transform(p *core.Page) error {
	for i := range p.Messages {
		c.compactMessage(&p.Messages[i])
	}
	return nil
}

func (c *Compactor) compactMessage(m *core.Message) {
	if c.stripThinking {
		m.Content = filterThinking(m.Content)
	}
	for j := range m.Content {
		c.compactBlock(&m.Content[j])
	}
}

func filterThinking(blocks []core.ContentBlock) []core.ContentBlock {
	out := make([]core.ContentBlock, 0, len(blocks))
	for _, b := range blocks {
		if b.Type != core.BlockThinking && b.Type != core.BlockReasoning {
			out = append(out, b)
		}
	}
	return out
}

func (c *Compactor) compactBlock(b *core.ContentBlock) {
	switch b.Type {
	case core.BlockToolResult:
		label := "output"
		if b.IsError {
			label = "error"
		}
		b.Content = lineSummary(label, b.Content)
	case core.BlockFunctionCallOutput:
		b.Output = lineSummary("output", b.Output)
	case core.BlockToolUse:
		b.Input = compactInput(b.Name, b.Input)
	case core.BlockFunctionCall:
		b.Arguments = compactInput(b.Name, b.Arguments)
	}
}

// verboseFields lists, per tool name, the input fields that carry whole file
// bodies or patches.
var verboseFields = map[string][]string{
	"write":       {"content"},
	"edit":        {"old_string", "new_string"},
	"multiedit":   {"edits"},
	"apply_patch": {"input", "patch"},
}

// compactInput summarizes the verbose fields of a serialized tool input.
// Inputs that are not JSON objects are returned unchanged.
func compactInput(name, input string) string {
	fields, ok := verboseFields[strings.ToLower(name)]
	if !ok || strings.TrimSpace(input) == "" {
		return input
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(input), &m); err != nil || m == nil {
		return input
	}
	changed := false
	for _, key := range fields {
		changed = summarizeMapField(m, key) || changed
	}
	if !changed {
		return input
	}
	out, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return input
	}
	return string(out)
}

// lineSummary returns a summary like "[output: 245 lines]" or "[error: 12 lines]".
func lineSummary(label, s string) string {
	n := core.CountLines(s)
	if n == 1 {
		return fmt.Sprintf("[%s: 1 line]", label)
	}
	return fmt.Sprintf("[%s: %d lines]", label, n)
}

// summarizeMapField replaces a field in m with a summary. Strings are counted
// by lines, lists by items.
func summarizeMapField(m map[string]any, key string) bool {
	switch v := m[key].(type) {
	case string:
		m[key] = lineSummary(key, v)
	case []any:
		m[key] = fmt.Sprintf("[%s: %d items]", key, len(v))
	default:
		return false
	}
	return true
}
