package core

import (
	"regexp"
	"strings"
)

// commandNameRE extracts the slash command name from <command-name>/foo</command-name>.
var commandNameRE = regexp.MustCompile(`<command-name>(/[^<]+)</command-name>`)

// commandArgsRE extracts arguments from <command-args>...</command-args>.
var commandArgsRE = regexp.MustCompile(`<command-args>([^<]*)</command-args>`)

// injectedTagRE matches the opening tag of a block the tools inject into user
// turns. Any other markup is user-authored and left alone.
var injectedTagRE = regexp.MustCompile(`<(environment_context|user_instructions|system-reminder|user-prompt-submit-hook|turn_aborted|(?:local-)?command-[a-z]+|ide_[a-z_]+)(?:\s[^>]*)?>`)

// CleanUserText strips system-injected XML from user text.
//
// Slash commands (containing <command-name>) are shortened to "/name args".
// Injected blocks are removed entirely (tag + content). Other angle
// brackets, such as generics or HTML in a prompt, are kept.
func CleanUserText(s string) string {
	// Slash commands: extract /name and optional args.
	if m := commandNameRE.FindStringSubmatch(s); m != nil {
		name := m[1]
		if a := commandArgsRE.FindStringSubmatch(s); a != nil && strings.TrimSpace(a[1]) != "" {
			return name + " " + strings.TrimSpace(a[1])
		}
		return name
	}

	// Go regexp doesn't support backreferences, so closing tags are
	// located manually.
	for {
		loc := injectedTagRE.FindStringSubmatchIndex(s)
		if loc == nil {
			break
		}
		tagName := s[loc[2]:loc[3]]
		closeTag := "</" + tagName + ">"
		closeIdx := strings.Index(s[loc[1]:], closeTag)
		if closeIdx < 0 {
			// No matching close tag: strip just the open tag.
			s = s[:loc[0]] + s[loc[1]:]
			continue
		}
		// Remove from open tag start through end of close tag.
		end := loc[1] + closeIdx + len(closeTag)
		s = s[:loc[0]] + s[end:]
	}

	return strings.TrimSpace(s)
}
