// Package html renders a page of session messages as a standalone HTML page
// styled with Tailwind CSS v4 (CDN) and syntax highlighting via goldmark +
// chroma.
package html

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/Jiaweimsg/session-viewer/core"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
)

// Renderer renders a message page to a standalone HTML page.
type Renderer struct {
	// Title is used for the page title and heading. Empty means "Session".
	Title string

	md   goldmark.Markdown
	tmpl *template.Template
}

// New creates an HTML Renderer with goldmark configured for GFM and syntax highlighting.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("dracula"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // inline styles for standalone pages
				),
			),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(), // allow raw HTML in markdown
		),
	)

	tmpl := template.Must(template.New("page.html").Funcs(funcMap()).Parse(pageTemplate))
	return &Renderer{md: md, tmpl: tmpl}
}

// pageData is the top-level template data.
type pageData struct {
	Title    string
	Page     *core.Page
	Pages    int
	Messages []messageData
}

// messageData is the per-message template data.
type messageData struct {
	ID          string // anchor ID (e.g. "msg-0")
	RoleLabel   string
	BorderClass string
	BadgeClass  string
	Timestamp   *time.Time
	Duration    string // time since previous message (e.g. "4s")
	Blocks      []template.HTML
}

// Messages writes the page as a complete HTML document to w. Tool results
// on the same page are rendered inside the call that produced them.
func (r *Renderer) Messages(w io.Writer, p *core.Page) error {
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
	var messages []messageData
	for i, msg := range p.Messages {
		md := messageData{
			ID:          fmt.Sprintf("msg-%d", p.Page*p.PageSize+i),
			RoleLabel:   roleLabel(msg.Role),
			BorderClass: borderClass(msg.Role),
			BadgeClass:  badgeClass(msg.Role),
			Timestamp:   msg.Timestamp,
		}
		if msg.Timestamp != nil && prevTimestamp != nil {
			md.Duration = formatDuration(msg.Timestamp.Sub(*prevTimestamp))
		}
		if msg.Timestamp != nil {
			prevTimestamp = msg.Timestamp
		}

		for _, b := range msg.Content {
			var result *core.ContentBlock
			switch b.Type {
			case core.BlockToolUse, core.BlockFunctionCall:
				id := b.ToolUseID
				if b.Type == core.BlockFunctionCall {
					id = b.CallID
				}
				if res, ok := results[id]; ok && id != "" {
					result = &res
					consumed[id] = true
				}
			case core.BlockToolResult:
				if consumed[b.ToolUseID] {
					continue
				}
			case core.BlockFunctionCallOutput:
				if consumed[b.CallID] {
					continue
				}
			}
			rendered, err := r.renderBlock(b, result)
			if err != nil {
				return fmt.Errorf("render %s block: %w", b.Type, err)
			}
			md.Blocks = append(md.Blocks, rendered)
		}

		if len(md.Blocks) > 0 {
			messages = append(messages, md)
		}
	}

	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = "Session"
	}
	pages := 1
	if p.PageSize > 0 && p.Total > 0 {
		pages = (p.Total + p.PageSize - 1) / p.PageSize
	}

	return r.tmpl.Execute(w, pageData{
		Title:    title,
		Page:     p,
		Pages:    pages,
		Messages: messages,
	})
}

func roleLabel(role core.Role) string {
	switch role {
	case core.RoleUser:
		return "User"
	case core.RoleAssistant:
		return "Assistant"
	case core.RoleSystem:
		return "System"
	case core.RoleTool:
		return "Tool"
	default:
		return string(role)
	}
}

func borderClass(role core.Role) string {
	switch role {
	case core.RoleUser:
		return "border-l-4 border-l-blue-500"
	case core.RoleAssistant:
		return "border-l-4 border-l-emerald-500"
	case core.RoleSystem:
		return "border-l-4 border-l-slate-400"
	case core.RoleTool:
		return "border-l-4 border-l-violet-500"
	default:
		return ""
	}
}

func badgeClass(role core.Role) string {
	switch role {
	case core.RoleUser:
		return "text-blue-700 dark:text-blue-400 bg-blue-50 dark:bg-blue-950"
	case core.RoleAssistant:
		return "text-emerald-700 dark:text-emerald-400 bg-emerald-50 dark:bg-emerald-950"
	case core.RoleSystem:
		return "text-slate-600 dark:text-slate-400 bg-slate-100 dark:bg-slate-800"
	case core.RoleTool:
		return "text-violet-700 dark:text-violet-400 bg-violet-50 dark:bg-violet-950"
	default:
		return ""
	}
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"formatTime": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("Jan 2, 2006 3:04 PM")
		},
		"isoTime": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format(time.RFC3339)
		},
		"inc": func(n int) int { return n + 1 },
	}
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

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="preconnect" href="https://fonts.googleapis.com">
<link href="https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600&display=swap" rel="stylesheet">
<script src="https://cdn.jsdelivr.net/npm/@tailwindcss/browser@4"></script>
<style>body { font-family: "Inter", sans-serif; }</style>
</head>
<body class="bg-white dark:bg-slate-950 text-slate-900 dark:text-slate-100">
<main class="max-w-4xl mx-auto px-4 py-8 space-y-6">
<header class="space-y-1">
<h1 class="text-xl font-semibold">{{.Title}}</h1>
<p class="text-xs text-slate-500">Page {{inc .Page.Page}} of {{.Pages}} &middot; {{.Page.Total}} messages{{if .Page.HasMore}} &middot; more on the next page{{end}}</p>
</header>
{{range .Messages}}
<article id="{{.ID}}" class="rounded-lg border border-slate-200 dark:border-slate-800 {{.BorderClass}} p-4 space-y-3">
<div class="flex items-center gap-3 text-xs">
<span class="px-2 py-0.5 rounded font-semibold {{.BadgeClass}}">{{.RoleLabel}}</span>
{{if .Timestamp}}<time datetime="{{isoTime .Timestamp}}" class="text-slate-500">{{formatTime .Timestamp}}</time>{{end}}
{{if .Duration}}<span class="text-emerald-600 dark:text-emerald-400">{{.Duration}}</span>{{end}}
</div>
{{range .Blocks}}{{.}}
{{end}}</article>
{{else}}
<p class="text-sm text-slate-500">No messages on this page.</p>
{{end}}
</main>
</body>
</html>
`
