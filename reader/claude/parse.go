package claude

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

// transcript is a fully parsed session file.
type transcript struct {
	sessionID string
	cwd       string
	messages  []core.Message
}

func parseFile(path string) (*transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open session file: %v", core.ErrRead, err)
	}
	defer f.Close()

	t, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("%w: scan session file: %v", core.ErrRead, err)
	}
	return t, nil
}

// parse reads JSONL records, keeping user and assistant entries that carry
// at least one content block. Lines that fail to decode are skipped.
func parse(r io.Reader) (*transcript, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	t := &transcript{messages: []core.Message{}}
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry rawEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		if t.sessionID == "" {
			t.sessionID = entry.SessionID
		}
		if t.cwd == "" {
			t.cwd = entry.CWD
		}
		if msg, ok := mapEntry(entry); ok {
			t.messages = append(t.messages, msg)
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			log.Debug("session line exceeds buffer, keeping earlier records", "err", err)
			return t, nil
		}
		return t, err
	}
	return t, nil
}

// mapEntry converts one record into a message. Records other than user and
// assistant turns, and turns with nothing to show, are dropped.
func mapEntry(entry rawEntry) (core.Message, bool) {
	if entry.Type != "user" && entry.Type != "assistant" {
		return core.Message{}, false
	}
	if entry.Message == nil {
		return core.Message{}, false
	}

	role := core.Role(entry.Message.Role)
	if role == "" {
		role = core.Role(entry.Type)
	}
	blocks := mapContent(entry.Message.Content, role)
	if len(blocks) == 0 {
		return core.Message{}, false
	}

	return core.Message{
		ID:        entry.UUID,
		Role:      role,
		Timestamp: parseTime(entry.Timestamp),
		Content:   blocks,
	}, true
}

// mapContent decodes message.content, which is either a plain string or an
// array of typed blocks.
func mapContent(raw json.RawMessage, role core.Role) []core.ContentBlock {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || strings.TrimSpace(s) == "" {
			return nil
		}
		return []core.ContentBlock{textBlock(s, role)}

	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil
		}
		var blocks []core.ContentBlock
		for _, item := range items {
			if b, ok := mapContentBlock(item, role); ok {
				blocks = append(blocks, b)
			}
		}
		return blocks

	default:
		return nil
	}
}

func mapContentBlock(raw json.RawMessage, role core.Role) (core.ContentBlock, bool) {
	var b rawContentBlock
	if err := json.Unmarshal(raw, &b); err != nil {
		return core.ContentBlock{}, false
	}

	switch b.Type {
	case "text":
		if strings.TrimSpace(b.Text) == "" {
			return core.ContentBlock{}, false
		}
		return textBlock(b.Text, role), true

	case "thinking":
		if strings.TrimSpace(b.Thinking) == "" {
			return core.ContentBlock{}, false
		}
		return core.ContentBlock{
			Type: core.BlockThinking,
			Text: b.Thinking,
		}, true

	case "tool_use":
		return core.ContentBlock{
			Type:      core.BlockToolUse,
			ToolUseID: b.ID,
			Name:      b.Name,
			Input:     formatInput(b.Input),
		}, true

	case "tool_result":
		return core.ContentBlock{
			Type:      core.BlockToolResult,
			ToolUseID: b.ToolUseID,
			Content:   extractToolResultContent(b.Content),
			IsError:   b.IsError,
		}, true

	case "":
		return core.ContentBlock{}, false

	default:
		return core.ContentBlock{Type: core.BlockUnknown, Tag: b.Type}, true
	}
}

func textBlock(s string, role core.Role) core.ContentBlock {
	format := core.FormatPlain
	if role == core.RoleAssistant {
		format = core.FormatMarkdown
	}
	return core.ContentBlock{Type: core.BlockText, Format: format, Text: s}
}

// formatInput serializes tool input as indented JSON.
func formatInput(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	return core.PrettyJSON(string(raw))
}

// extractToolResultContent handles tool_result content which can be a string
// or an array of {"type":"text","text":"..."} objects.
func extractToolResultContent(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case []any:
		var parts []string
		for _, item := range c {
			if m, ok := item.(map[string]any); ok {
				if text, ok := m["text"].(string); ok {
					parts = append(parts, text)
				}
			}
		}
		return strings.Join(parts, "\n")
	default:
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%v", v)
	}
}

// userText returns the first human-authored text of a user message, with
// system-injected markup removed.
func userText(msg core.Message) string {
	if msg.Role != core.RoleUser {
		return ""
	}
	for _, b := range msg.Content {
		if b.Type != core.BlockText {
			continue
		}
		if text := core.CleanUserText(b.Text); text != "" {
			return text
		}
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
