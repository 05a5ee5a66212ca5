package codex

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
)

func parseFile(path string) ([]core.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open rollout: %v", core.ErrRead, err)
	}
	defer f.Close()

	msgs, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w: scan rollout: %v", core.ErrRead, err)
	}
	return msgs, nil
}

// parse reads a rollout. Only response_item lines produce messages; lines
// that fail to decode are skipped.
func parse(r io.Reader) ([]core.Message, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	msgs := []core.Message{}
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var env rawLine
		if err := json.Unmarshal(line, &env); err != nil || env.Type != "response_item" {
			continue
		}
		var item rawResponseItem
		if err := json.Unmarshal(env.Payload, &item); err != nil {
			continue
		}
		if msg, ok := mapResponseItem(item); ok {
			msg.Timestamp = parseTime(env.Timestamp)
			msgs = append(msgs, msg)
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			log.Debug("rollout line exceeds buffer, keeping earlier records", "err", err)
			return msgs, nil
		}
		return msgs, err
	}
	return msgs, nil
}

func mapResponseItem(item rawResponseItem) (core.Message, bool) {
	switch item.Type {
	case "message":
		role := core.Role(item.Role)
		if hiddenRole(item.Role) {
			return core.Message{}, false
		}
		blocks := mapContent(item.Content, role)
		if len(blocks) == 0 {
			return core.Message{}, false
		}
		return core.Message{Role: role, Content: blocks}, true

	case "function_call":
		name := item.Name
		if name == "" {
			name = "unknown"
		}
		return core.Message{
			Role: core.RoleAssistant,
			Content: []core.ContentBlock{{
				Type:      core.BlockFunctionCall,
				Name:      name,
				Arguments: payloadText(item.Arguments),
				CallID:    item.CallID,
			}},
		}, true

	case "function_call_output":
		return core.Message{
			Role: core.RoleTool,
			Content: []core.ContentBlock{{
				Type:   core.BlockFunctionCallOutput,
				CallID: item.CallID,
				Output: payloadText(item.Output),
			}},
		}, true

	case "reasoning":
		text := reasoningText(item)
		if strings.TrimSpace(text) == "" {
			return core.Message{}, false
		}
		return core.Message{
			Role:    core.RoleAssistant,
			Content: []core.ContentBlock{{Type: core.BlockReasoning, Text: text}},
		}, true

	default:
		return core.Message{}, false
	}
}

// hiddenRole reports roles that carry instructions rather than conversation.
func hiddenRole(role string) bool {
	return role == "developer" || role == "system"
}

// mapContent decodes message content, either a plain string or an array of
// typed items.
func mapContent(raw json.RawMessage, role core.Role) []core.ContentBlock {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || strings.TrimSpace(s) == "" {
			return nil
		}
		return []core.ContentBlock{textBlock(s, role)}
	}

	var items []rawContentItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var blocks []core.ContentBlock
	for _, it := range items {
		if strings.TrimSpace(it.Text) == "" {
			continue
		}
		switch it.Type {
		case "input_text", "output_text", "text":
			blocks = append(blocks, textBlock(it.Text, role))
		case "reasoning":
			blocks = append(blocks, core.ContentBlock{Type: core.BlockReasoning, Text: it.Text})
		}
	}
	return blocks
}

func textBlock(s string, role core.Role) core.ContentBlock {
	format := core.FormatPlain
	if role == core.RoleAssistant {
		format = core.FormatMarkdown
	}
	return core.ContentBlock{Type: core.BlockText, Format: format, Text: s}
}

// payloadText renders function_call arguments or a function_call_output
// payload. Strings that hold JSON and structured values are both indented.
func payloadText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return core.PrettyJSON(s)
	}
	return core.PrettyJSON(string(raw))
}

// reasoningText returns a reasoning payload's text, from the text field or
// from summary, which is either a string or a list of {text} fragments
// joined by newlines.
func reasoningText(item rawResponseItem) string {
	if strings.TrimSpace(item.Text) != "" {
		return item.Text
	}
	raw := bytes.TrimSpace(item.Summary)
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == '"' {
		var s string
		_ = json.Unmarshal(raw, &s)
		return s
	}

	var parts []rawContentItem
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}
	var texts []string
	for _, p := range parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// userText returns the first human-authored text of a user message.
// Environment context and AGENTS.md instructions are injected as user
// messages and do not count.
func userText(msg core.Message) string {
	if msg.Role != core.RoleUser {
		return ""
	}
	for _, b := range msg.Content {
		if b.Type != core.BlockText {
			continue
		}
		text := core.CleanUserText(b.Text)
		if text == "" || strings.HasPrefix(text, "# AGENTS.md") {
			continue
		}
		return text
	}
	return ""
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}
