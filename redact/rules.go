// Package redact scrubs secrets and PII from message pages and search
// results before they are shown or exported.
package redact

import (
	"fmt"
	"regexp"
)

// Rule kinds.
const (
	KindSecret = "secret"
	KindPII    = "pii"
)

// Rule detects sensitive data in a string and provides a replacement.
type Rule interface {
	Name() string
	Kind() string
	Detect(s string) []Match
	Replacement(m Match) string
}

// Match is one detected occurrence. Start and End are byte offsets.
type Match struct {
	Start int
	End   int
	Value string
}

// patternDef names a pattern; compile turns a table of them into rules.
type patternDef struct {
	name    string
	pattern string
}

// Tokens that agents commonly echo back from env files, shell history and
// config they read while working.
var secretDefs = []patternDef{
	{"aws_key", `AKIA[0-9A-Z]{16}`},
	{"api_key", `(?:sk-ant-[a-zA-Z0-9\-_]{32,}|sk-proj-[a-zA-Z0-9\-_]{32,}|sk-[a-zA-Z0-9]{32,}|ghp_[a-zA-Z0-9]{36,}|gho_[a-zA-Z0-9]{36,}|github_pat_[a-zA-Z0-9_]{40,}|glpat-[a-zA-Z0-9\-]{20,}|AIza[0-9A-Za-z\-_]{35}|hf_[a-zA-Z0-9]{30,}|(?:sk|rk)_live_[a-zA-Z0-9]{24,})`},
	{"slack_token", `xox[abprs]-[a-zA-Z0-9\-]{10,}`},
	{"bearer", `(?i)bearer\s+[a-z0-9\-_.~+/]{20,}=*`},
	{"private_key", `-----BEGIN [A-Z ]+PRIVATE KEY-----`},
	{"connection_string", `(?:postgres(?:ql)?|mongodb(?:\+srv)?|mysql|redis|amqp)://[^\s"'` + "`" + `]+`},
	{"jwt", `eyJ[A-Za-z0-9\-_]+\.eyJ[A-Za-z0-9\-_]+\.[A-Za-z0-9\-_.+/=]+`},
}

var piiDefs = []patternDef{
	{"email", `[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`},
	{"ipv4", `\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`},
	{"phone", `(?:\+\d{1,3}[\s\-]?)?\(?\d{3}\)?[\s\-]?\d{3}[\s\-]?\d{4}`},
}

// SecretRules returns the built-in secret detection rules.
func SecretRules() []Rule { return compile(KindSecret, secretDefs) }

// PIIRules returns the built-in PII detection rules.
func PIIRules() []Rule { return compile(KindPII, piiDefs) }

func compile(kind string, defs []patternDef) []Rule {
	rules := make([]Rule, len(defs))
	for i, d := range defs {
		rules[i] = &regexRule{name: d.name, kind: kind, re: regexp.MustCompile(d.pattern)}
	}
	return rules
}

type regexRule struct {
	name string
	kind string
	re   *regexp.Regexp
}

func (r *regexRule) Name() string { return r.name }
func (r *regexRule) Kind() string { return r.kind }

func (r *regexRule) Detect(s string) []Match {
	var matches []Match
	for _, loc := range r.re.FindAllStringIndex(s, -1) {
		matches = append(matches, Match{Start: loc[0], End: loc[1], Value: s[loc[0]:loc[1]]})
	}
	return matches
}

func (r *regexRule) Replacement(Match) string {
	return fmt.Sprintf("[REDACTED:%s]", r.name)
}
