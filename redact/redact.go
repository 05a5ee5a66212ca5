package redact

import (
	"regexp"
	"sort"
	"strings"

	"github.com/Jiaweimsg/session-viewer/core"
)

// Config controls which rules the Redactor applies.
type Config struct {
	Secrets    bool
	PII        bool
	ExtraRules []Rule
	Allowlist  []string // regex patterns to skip
}

// Redactor applies redaction rules to every string a block or search result
// displays.
type Redactor struct {
	rules     []Rule
	allowlist []*regexp.Regexp
}

// New creates a Redactor from the given config.
func New(cfg Config) *Redactor {
	var rules []Rule
	if cfg.Secrets {
		rules = append(rules, SecretRules()...)
	}
	if cfg.PII {
		rules = append(rules, PIIRules()...)
	}
	rules = append(rules, cfg.ExtraRules...)

	allowlist := make([]*regexp.Regexp, 0, len(cfg.Allowlist))
	for _, pattern := range cfg.Allowlist {
		if re, err := regexp.Compile(pattern); err == nil {
			allowlist = append(allowlist, re)
		}
	}

	return &Redactor{rules: rules, allowlist: allowlist}
}

// Transform implements core.Transformer.
func (r *Redactor) Transform(p *core.Page) error {
	if len(r.rules) == 0 {
		return nil
	}
	for i := range p.Messages {
		for j := range p.Messages[i].Content {
			r.redactBlock(&p.Messages[i].Content[j])
		}
	}
	return nil
}

// Results redacts the prompt and matched text of search results in place.
// A detected value that query already contains in full is left visible, so
// searching for an address or key still shows where it occurs.
func (r *Redactor) Results(results []core.SearchResult, query string) {
	if len(r.rules) == 0 {
		return
	}
	query = strings.ToLower(query)
	for i := range results {
		results[i].FirstPrompt = r.redact(results[i].FirstPrompt, query)
		results[i].MatchedText = r.redact(results[i].MatchedText, query)
	}
}

func (r *Redactor) redactBlock(b *core.ContentBlock) {
	switch b.Type {
	case core.BlockText, core.BlockThinking, core.BlockReasoning:
		b.Text = r.redactString(b.Text)
	case core.BlockToolUse:
		b.Input = r.redactString(b.Input)
	case core.BlockToolResult:
		b.Content = r.redactString(b.Content)
	case core.BlockFunctionCall:
		b.Arguments = r.redactString(b.Arguments)
	case core.BlockFunctionCallOutput:
		b.Output = r.redactString(b.Output)
	}
}

func (r *Redactor) redactString(s string) string {
	return r.redact(s, "")
}

// redact applies all rules to s. Overlapping matches resolve to earliest
// start, then longest. Allowlisted values and values contained in the
// lowercased query are skipped.
func (r *Redactor) redact(s, query string) string {
	if len(s) == 0 {
		return s
	}

	type replacement struct {
		start int
		end   int
		text  string
	}

	var reps []replacement
	for _, rule := range r.rules {
		for _, m := range rule.Detect(s) {
			if r.isAllowed(m.Value) || inQuery(query, m.Value) {
				continue
			}
			reps = append(reps, replacement{
				start: m.Start,
				end:   m.End,
				text:  rule.Replacement(m),
			})
		}
	}

	if len(reps) == 0 {
		return s
	}

	// Sort by start position, then longest match first for ties.
	sort.Slice(reps, func(i, j int) bool {
		if reps[i].start != reps[j].start {
			return reps[i].start < reps[j].start
		}
		return reps[i].end > reps[j].end
	})

	// Apply non-overlapping replacements.
	var result []byte
	pos := 0
	for _, rep := range reps {
		if rep.start < pos {
			continue // overlaps with a previous replacement
		}
		result = append(result, s[pos:rep.start]...)
		result = append(result, rep.text...)
		pos = rep.end
	}
	result = append(result, s[pos:]...)
	return string(result)
}

func inQuery(query, value string) bool {
	return query != "" && strings.Contains(query, strings.ToLower(value))
}

func (r *Redactor) isAllowed(value string) bool {
	for _, re := range r.allowlist {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}
