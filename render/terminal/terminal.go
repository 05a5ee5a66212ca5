// Package terminal renders query results as ANSI-colored cards and tables.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

const defaultWidth = 100

// Renderer pretty-prints query results to the terminal.
type Renderer struct {
	// Width overrides terminal width detection. Zero means auto-detect.
	Width int
}

// New creates a terminal Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Messages writes a page of messages as message cards to w. Tool results on
// the same page are folded under the call that produced them.
func (r *Renderer) Messages(w io.Writer, p *core.Page) error {
	width := r.termWidth()

	writePageHeader(w, p)

	results := make(map[string]core.ContentBlock)
	for _, msg := range p.Messages {
		for _, b := range msg.Content {
			switch {
			case b.Type == core.BlockToolResult && b.ToolUseID != "":
				results[b.ToolUseID] = b
			case b.Type == core.BlockFunctionCallOutput && b.CallID != "":
				results[b.CallID] = b
			}
		}
	}
	consumed := make(map[string]bool)

	var prevTimestamp *time.Time
	for _, msg := range p.Messages {
		var duration string
		if msg.Timestamp != nil && prevTimestamp != nil {
			duration = formatDuration(msg.Timestamp.Sub(*prevTimestamp))
		}
		if msg.Timestamp != nil {
			prevTimestamp = msg.Timestamp
		}

		writeMessage(w, msg, duration, results, consumed, width)
	}

	fmt.Fprintln(w)
	return nil
}

func (r *Renderer) termWidth() int {
	if r.Width > 0 {
		return r.Width
	}
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// writePageHeader renders the page position, e.g. "Page 2 of 5  120 messages".
func writePageHeader(w io.Writer, p *core.Page) {
	pages := 0
	if p.PageSize > 0 {
		pages = (p.Total + p.PageSize - 1) / p.PageSize
	}
	title := styleTitle.Render(fmt.Sprintf("Page %d of %d", p.Page+1, max(pages, 1)))
	meta := []string{fmt.Sprintf("%s messages", formatNumber(p.Total))}
	if p.HasMore {
		meta = append(meta, fmt.Sprintf("next: --page %d", p.Page+2))
	}
	fmt.Fprintln(w, title+"  "+styleMeta.Render(strings.Join(meta, "  ")))
}

// writeSeparator renders a horizontal rule.
func writeSeparator(w io.Writer, width int) {
	n := min(width, 72)
	fmt.Fprintln(w)
	fmt.Fprintln(w, styleSeparator.Render(strings.Repeat("─", n)))
}

// writeMessage renders a single message card: role badge, metadata, content
// blocks. It reports whether anything was written.
func writeMessage(w io.Writer, msg core.Message, duration string, results map[string]core.ContentBlock, consumed map[string]bool, width int) bool {
	contentWidth := width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	var lines []string
	for _, b := range msg.Content {
		switch b.Type {
		case core.BlockText:
			text := strings.TrimSpace(b.Text)
			if text != "" {
				lines = append(lines, wrap(text, contentWidth)...)
			}
		case core.BlockThinking:
			lines = append(lines, styleThinking.Render("▸ Thinking..."))
		case core.BlockReasoning:
			line := "▸ Reasoning"
			if s := strings.TrimSpace(b.Text); s != "" {
				line += ": " + s
			}
			lines = append(lines, styleThinking.Render(truncate(line, contentWidth)))
		case core.BlockToolUse:
			lines = append(lines, toolLines(b.Name, b.Input, b.ToolUseID, results, consumed, contentWidth)...)
		case core.BlockFunctionCall:
			lines = append(lines, toolLines(b.Name, b.Arguments, b.CallID, results, consumed, contentWidth)...)
		case core.BlockToolResult:
			if consumed[b.ToolUseID] {
				continue
			}
			lines = append(lines, resultLine(b.Content, b.IsError, contentWidth))
		case core.BlockFunctionCallOutput:
			if consumed[b.CallID] {
				continue
			}
			lines = append(lines, resultLine(b.Output, false, contentWidth))
		case core.BlockUnknown:
			lines = append(lines, styleMeta.Render("["+b.Tag+"]"))
		}
	}

	if len(lines) == 0 {
		return false
	}

	writeSeparator(w, width)

	header := roleBadge(msg.Role)
	var metaParts []string
	if msg.Timestamp != nil {
		metaParts = append(metaParts, styleMeta.Render(formatTime(*msg.Timestamp)))
	}
	if duration != "" {
		metaParts = append(metaParts, styleDuration.Render(duration))
	}
	if len(metaParts) > 0 {
		header += "    " + strings.Join(metaParts, "    ")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, " "+header)

	for _, line := range lines {
		fmt.Fprintln(w, "  "+line)
	}

	return true
}

// toolLines renders a tool call and, when its result is on the same page, the
// first line of the result beneath it.
func toolLines(name, input, id string, results map[string]core.ContentBlock, consumed map[string]bool, width int) []string {
	if name == "" {
		name = "tool"
	}
	line := styleToolName.Render("⚙ " + name)
	if summary := extractToolSummary(strings.ToLower(name), input); summary != "" {
		nameWidth := lipgloss.Width("⚙ " + name + "  ")
		line += "  " + styleToolDetail.Render(truncate(summary, width-nameWidth))
	}
	lines := []string{line}

	res, ok := results[id]
	if id == "" || !ok {
		return lines
	}
	consumed[id] = true
	text, isError := res.Content, res.IsError
	if res.Type == core.BlockFunctionCallOutput {
		text = res.Output
	}
	return append(lines, "  ↳ "+resultLine(text, isError, width-4))
}

func resultLine(text string, isError bool, width int) string {
	summary := truncate(text, width)
	if n := core.CountLines(text); n > 1 {
		summary = truncate(text, width-12) + fmt.Sprintf(" (%d lines)", n)
	}
	if isError {
		return styleToolError.Render(summary)
	}
	return styleToolDetail.Render(summary)
}

func roleBadge(role core.Role) string {
	label := strings.ToUpper(string(role))
	switch role {
	case core.RoleUser:
		return styleUserBadge.Render(label)
	case core.RoleAssistant:
		return styleAssistantBadge.Render(label)
	case core.RoleSystem:
		return styleSystemBadge.Render(label)
	case core.RoleTool:
		return styleToolBadge.Render(label)
	default:
		return styleMeta.Render(label)
	}
}

// wrap breaks text into lines no wider than width.
func wrap(text string, width int) []string {
	wrapped := lipgloss.NewStyle().Width(width).Render(text)
	lines := strings.Split(wrapped, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return lines
}

// truncate shortens text to maxWidth, appending "..." if needed.
// Multi-line text is reduced to the first line.
func truncate(s string, maxWidth int) string {
	if maxWidth < 4 {
		maxWidth = 4
	}
	s = strings.TrimSpace(firstLine(strings.TrimSpace(s)))

	if lipgloss.Width(s) <= maxWidth {
		return s
	}

	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > maxWidth {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func formatTime(t time.Time) string {
	return t.Format("Jan 2, 2006 3:04 PM")
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	case m > 0 && s > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	case m > 0:
		return fmt.Sprintf("%dm", m)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func formatNumber[T int | int64](n T) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return formatNumber(n/1000) + "," + fmt.Sprintf("%03d", n%1000)
}
