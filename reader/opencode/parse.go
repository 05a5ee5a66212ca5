package opencode

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/charmbracelet/log"
)

// loadMessages decodes a session's message documents in authoring order:
// by creation time, then by file name. Unreadable documents are skipped.
func (r *Reader) loadMessages(sessionID string) []rawMessage {
	files := jsonFiles(filepath.Join(r.messageDir(), sessionID))
	msgs := make([]rawMessage, 0, len(files))
	for _, f := range files {
		m, err := readJSON[rawMessage](f)
		if err != nil {
			log.Debug("skipping message", "path", f, "err", err)
			continue
		}
		msgs = append(msgs, *m)
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Time.Created < msgs[j].Time.Created
	})
	return msgs
}

// partsText joins a message's text parts, read in file name order.
func (r *Reader) partsText(messageID string) string {
	if !validKey(messageID) {
		return ""
	}
	var texts []string
	for _, f := range jsonFiles(filepath.Join(r.partDir(), messageID)) {
		p, err := readJSON[rawPart](f)
		if err != nil || p.Type != "text" || p.Text == "" {
			continue
		}
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, "\n\n")
}

// displayText is what a message shows: its text parts, or failing that its
// summary title.
func (r *Reader) displayText(m rawMessage) string {
	if text := r.partsText(m.ID); text != "" {
		return text
	}
	if m.Summary != nil && strings.TrimSpace(m.Summary.Title) != "" {
		return m.Summary.Title
	}
	return ""
}

// toMessage maps a message document to the unified model. Messages with
// nothing to display are dropped.
func (r *Reader) toMessage(m rawMessage) (core.Message, bool) {
	text := r.displayText(m)
	if text == "" {
		return core.Message{}, false
	}
	role := core.Role(m.Role)
	format := core.FormatPlain
	if role == core.RoleAssistant {
		format = core.FormatMarkdown
	}
	return core.Message{
		ID:        m.ID,
		Role:      role,
		Timestamp: millis(m.Time.Created),
		Content:   []core.ContentBlock{{Type: core.BlockText, Format: format, Text: text}},
	}, true
}

// messages returns a session's visible messages.
func (r *Reader) messages(sessionID string) []core.Message {
	out := []core.Message{}
	for _, m := range r.loadMessages(sessionID) {
		if msg, ok := r.toMessage(m); ok {
			out = append(out, msg)
		}
	}
	return out
}
