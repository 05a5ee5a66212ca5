package html

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/Jiaweimsg/session-viewer/core"
)

// renderBlock dispatches to the appropriate block renderer based on type.
// For tool calls, result is the paired output on the same page (may be nil).
func (r *Renderer) renderBlock(b core.ContentBlock, result *core.ContentBlock) (template.HTML, error) {
	switch b.Type {
	case core.BlockText:
		return r.renderTextBlock(b)
	case core.BlockThinking:
		return renderCollapsed("Thinking…", b.Text), nil
	case core.BlockReasoning:
		return renderCollapsed("Reasoning", b.Text), nil
	case core.BlockToolUse:
		return r.renderToolCall(b.Name, b.Input, result), nil
	case core.BlockFunctionCall:
		return r.renderToolCall(b.Name, b.Arguments, result), nil
	case core.BlockToolResult:
		return renderOutput(b.Content, b.IsError), nil
	case core.BlockFunctionCallOutput:
		return renderOutput(b.Output, false), nil
	case core.BlockUnknown:
		return template.HTML(`<p class="text-xs text-slate-400">[` + template.HTMLEscapeString(b.Tag) + `]</p>`), nil
	default:
		return "", fmt.Errorf("unknown block type: %s", b.Type)
	}
}

func (r *Renderer) renderTextBlock(b core.ContentBlock) (template.HTML, error) {
	if b.Format == core.FormatMarkdown {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(b.Text), &buf); err != nil {
			return "", fmt.Errorf("goldmark convert: %w", err)
		}
		return template.HTML(`<div class="prose dark:prose-invert max-w-none">` + buf.String() + `</div>`), nil
	}
	escaped := template.HTMLEscapeString(b.Text)
	return template.HTML(`<p class="whitespace-pre-wrap text-sm">` + escaped + `</p>`), nil
}

func renderCollapsed(label, text string) template.HTML {
	escaped := template.HTMLEscapeString(text)
	h := `<details class="group">` +
		`<summary class="text-xs font-medium text-slate-400 dark:text-slate-500 cursor-pointer select-none">` + label + `</summary>` +
		`<pre class="mt-2 text-xs text-slate-500 dark:text-slate-400 whitespace-pre-wrap bg-slate-50 dark:bg-slate-900 rounded p-3 max-h-96 overflow-y-auto">` + escaped + `</pre>` +
		`</details>`
	return template.HTML(h)
}

// renderToolCall renders a tool card: name, highlighted input and, when
// present, the paired output.
func (r *Renderer) renderToolCall(name, input string, result *core.ContentBlock) template.HTML {
	var inputHTML string
	if input = strings.TrimSpace(input); input != "" {
		lang := "text"
		if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
			lang = "json"
		}
		var buf bytes.Buffer
		fenced := "```" + lang + "\n" + input + "\n```"
		if err := r.md.Convert([]byte(fenced), &buf); err != nil {
			inputHTML = `<pre class="px-4 py-3 text-xs font-mono overflow-x-auto">` + template.HTMLEscapeString(input) + `</pre>`
		} else {
			inputHTML = `<div class="px-4 py-3 text-xs overflow-x-auto">` + buf.String() + `</div>`
		}
	}

	var resultHTML string
	if result != nil {
		text, isError := result.Content, result.IsError
		if result.Type == core.BlockFunctionCallOutput {
			text = result.Output
		}
		errorClass := ""
		textClass := ""
		if isError {
			errorClass = " bg-red-50 dark:bg-red-950"
			textClass = " text-red-700 dark:text-red-400"
		}
		resultHTML = `<div class="border-t border-slate-200 dark:border-slate-700` + errorClass + `">` +
			`<pre class="px-4 py-3 text-xs font-mono overflow-x-auto max-h-96 overflow-y-auto` + textClass + `">` + template.HTMLEscapeString(text) + `</pre>` +
			`</div>`
	}

	if name == "" {
		name = "tool"
	}
	h := `<div class="bg-slate-50 dark:bg-slate-900 border border-slate-200 dark:border-slate-700 rounded-lg overflow-hidden">` +
		`<div class="px-4 py-2 border-b border-slate-200 dark:border-slate-700 flex items-center gap-2 text-slate-900 dark:text-white">` +
		`<span class="text-xs">` + toolIcon(name) + `</span>` +
		`<span class="text-xs font-semibold font-mono">` + template.HTMLEscapeString(name) + `</span>` +
		`</div>` +
		inputHTML +
		resultHTML +
		`</div>`
	return template.HTML(h)
}

// renderOutput renders tool output with no matching call on the page.
func renderOutput(text string, isError bool) template.HTML {
	classes := "text-xs font-mono bg-slate-50 dark:bg-slate-900 rounded p-3 overflow-x-auto"
	if isError {
		classes += " border-l-4 border-red-500 bg-red-50 dark:bg-red-950 text-red-700 dark:text-red-400"
	}
	return template.HTML(`<pre class="` + classes + `">` + template.HTMLEscapeString(text) + `</pre>`)
}

func toolIcon(name string) string {
	switch strings.ToLower(name) {
	case "bash", "shell", "exec_command":
		return "&#36;"
	case "read", "glob", "grep":
		return "&#128269;"
	case "write", "edit", "multiedit", "apply_patch":
		return "&#9998;"
	default:
		return "&#9881;"
	}
}
