package terminal

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

// dailyRows caps how many recent days the stats view charts.
const dailyRows = 14

// Projects writes one row per project.
func (r *Renderer) Projects(w io.Writer, projects []core.Project) error {
	if len(projects) == 0 {
		fmt.Fprintln(w, styleMeta.Render("No projects found."))
		return nil
	}
	withProvider := lo.SomeBy(projects, func(p core.Project) bool { return p.ModelProvider != "" })

	headers := []string{"PROJECT", "SESSIONS", "UPDATED"}
	if withProvider {
		headers = append(headers, "PROVIDER")
	}
	headers = append(headers, "PATH")

	rows := make([][]string, len(projects))
	for i, p := range projects {
		row := []string{
			styleTitle.Render(p.ShortName),
			formatNumber(p.SessionCount),
			relative(p.LastModified),
		}
		if withProvider {
			row = append(row, p.ModelProvider)
		}
		rows[i] = append(row, styleMeta.Render(p.Path))
	}
	writeTable(w, headers, rows)
	return nil
}

// Sessions writes one card per session.
func (r *Renderer) Sessions(w io.Writer, sessions []core.Session) error {
	if len(sessions) == 0 {
		fmt.Fprintln(w, styleMeta.Render("No sessions found."))
		return nil
	}
	width := r.termWidth()
	for _, s := range sessions {
		writeSession(w, s, "", width)
	}
	return nil
}

// SessionGroups writes each root session followed by its children, indented.
func (r *Renderer) SessionGroups(w io.Writer, groups []core.SessionGroup) error {
	if len(groups) == 0 {
		fmt.Fprintln(w, styleMeta.Render("No sessions found."))
		return nil
	}
	width := r.termWidth()
	for _, g := range groups {
		writeSession(w, g.Root, "", width)
		for _, child := range g.Children {
			writeSession(w, child, "  └ ", width)
		}
	}
	return nil
}

func writeSession(w io.Writer, s core.Session, indent string, width int) {
	pad := strings.Repeat(" ", lipgloss.Width(indent))
	contentWidth := max(width-lipgloss.Width(indent), 40)

	title := s.Title
	if title == "" {
		title = s.FirstPrompt
	}
	if title == "" {
		title = "Session " + s.ID
	}
	row1 := styleTitle.Render(truncate(title, contentWidth))
	var stats []string
	if s.Additions > 0 {
		stats = append(stats, styleAdded.Render("+"+formatNumber(s.Additions)))
	}
	if s.Deletions > 0 {
		stats = append(stats, styleRemoved.Render("-"+formatNumber(s.Deletions)))
	}
	if len(stats) > 0 {
		row1 += "  " + strings.Join(stats, " ")
	}
	fmt.Fprintln(w, indent+row1)

	parts := []string{s.ID, relative(s.Modified), fmt.Sprintf("%s msgs", formatNumber(s.MessageCount))}
	if s.GitBranch != "" {
		parts = append(parts, "("+s.GitBranch+")")
	}
	if s.Model != "" {
		parts = append(parts, s.Model)
	} else if s.ModelProvider != "" {
		parts = append(parts, s.ModelProvider)
	}
	if s.IsSidechain {
		parts = append(parts, "sidechain")
	}
	fmt.Fprintln(w, pad+styleMeta.Render(strings.Join(parts, "  ")))
	fmt.Fprintln(w)
}

// SearchResults writes each match with its session and surrounding text.
func (r *Renderer) SearchResults(w io.Writer, results []core.SearchResult) error {
	if len(results) == 0 {
		fmt.Fprintln(w, styleMeta.Render("No matches."))
		return nil
	}
	width := r.termWidth()
	for _, res := range results {
		head := []string{styleTitle.Render(res.ShortName), roleBadge(res.Role)}
		meta := []string{res.SessionID}
		if res.Timestamp != nil {
			meta = append(meta, formatTime(*res.Timestamp))
		}
		fmt.Fprintln(w, strings.Join(head, "  ")+"  "+styleMeta.Render(strings.Join(meta, "  ")))
		fmt.Fprintln(w, "  "+styleMatch.Render(truncate(strings.Join(strings.Fields(res.MatchedText), " "), width-4)))
		if res.FirstPrompt != "" {
			fmt.Fprintln(w, "  "+styleMeta.Render("> "+truncate(res.FirstPrompt, width-6)))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, styleMeta.Render(fmt.Sprintf("%d matches", len(results))))
	return nil
}

// Stats writes the usage counters, per-model totals and a chart of the most
// recent days.
func (r *Renderer) Stats(w io.Writer, s *core.Stats) error {
	title := styleTitle.Render(string(s.Tool) + " usage")
	if s.LastComputedDate != "" {
		title += "  " + styleMeta.Render("computed "+s.LastComputedDate)
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w)

	counters := []stat{
		{formatNumber(s.SessionCount), "SESSIONS"},
		{formatNumber(s.MessageCount), "MESSAGES"},
	}
	if s.TotalTokens > 0 {
		counters = append(counters,
			stat{formatNumber(s.TotalInputTokens), "INPUT"},
			stat{formatNumber(s.TotalOutputTokens), "OUTPUT"},
			stat{formatNumber(s.TotalTokens), "TOTAL"},
		)
	}
	writeStats(w, counters)

	if len(s.TokensByModel) > 0 {
		fmt.Fprintln(w)
		models := lo.Keys(s.TokensByModel)
		sort.Slice(models, func(i, j int) bool {
			a, b := s.TokensByModel[models[i]], s.TokensByModel[models[j]]
			if a != b {
				return a > b
			}
			return models[i] < models[j]
		})
		rows := lo.Map(models, func(m string, _ int) []string {
			return []string{m, formatNumber(s.TokensByModel[m])}
		})
		writeTable(w, []string{"MODEL", "TOKENS"}, rows)
	}

	if len(s.DailyTokens) > 0 {
		fmt.Fprintln(w)
		days := s.DailyTokens[max(len(s.DailyTokens)-dailyRows, 0):]
		peak := lo.MaxBy(days, func(a, b core.DailyTokens) bool { return a.TotalTokens > b.TotalTokens }).TotalTokens
		for _, d := range days {
			fmt.Fprintf(w, "  %s  %s %s\n", styleMeta.Render(d.Date), styleAdded.Render(bar(d.TotalTokens, peak, 30)), formatNumber(d.TotalTokens))
		}
	}
	return nil
}

type stat struct {
	value string
	label string
}

// writeStats renders counters in two rows: values then labels.
func writeStats(w io.Writer, stats []stat) {
	var values, labels []string
	for _, s := range stats {
		colWidth := max(len(s.value), len(s.label))
		values = append(values, fmt.Sprintf("%*s", colWidth, s.value))
		labels = append(labels, fmt.Sprintf("%-*s", colWidth, s.label))
	}

	fmt.Fprintln(w, "  "+styleStat.Render(strings.Join(values, "    ")))
	fmt.Fprintln(w, "  "+styleStatLabel.Render(strings.Join(labels, "    ")))
}

// writeTable renders left-aligned columns sized to their widest cell.
func writeTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	line := func(cells []string, style *lipgloss.Style) string {
		out := make([]string, len(cells))
		for i, c := range cells {
			if style != nil {
				c = style.Render(c)
			}
			out[i] = c + strings.Repeat(" ", widths[i]-lipgloss.Width(c))
		}
		return strings.TrimRight("  "+strings.Join(out, "   "), " ")
	}

	fmt.Fprintln(w, line(headers, &styleHeader))
	for _, row := range rows {
		fmt.Fprintln(w, line(row, nil))
	}
}

func bar(v, peak int64, width int) string {
	if peak <= 0 || v <= 0 {
		return strings.Repeat(" ", width)
	}
	n := max(int(v*int64(width)/peak), 1)
	return strings.Repeat("█", n) + strings.Repeat(" ", width-n)
}

func relative(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return core.RelativeTime(*t)
}
