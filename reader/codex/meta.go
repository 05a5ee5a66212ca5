package codex

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/Jiaweimsg/session-viewer/core"
	"github.com/goccy/go-json"
)

var (
	responseItemMarker = []byte(`"type":"response_item"`)
	messageMarker      = []byte(`"type":"message"`)
	developerMarker    = []byte(`"role":"developer"`)
	systemMarker       = []byte(`"role":"system"`)
	roleMarker         = []byte(`"role"`)
	userMarker         = []byte(`"user"`)
	tokenCountMarker   = []byte(`"token_count"`)
)

// tokenInfo is the cumulative usage reported by a rollout's last
// token_count event.
type tokenInfo struct {
	input  int64
	output int64
	total  int64
}

// sessionInfo is what one pass over a rollout reveals without building the
// full message list.
type sessionInfo struct {
	id            string
	cwd           string
	cliVersion    string
	modelProvider string
	gitBranch     string
	firstPrompt   string
	messageCount  int
	tokens        *tokenInfo
	created       time.Time
	modified      time.Time
}

// scanSession reads a rollout once. The session_meta record is only looked
// for in the first metaReadAhead lines.
func scanSession(path string) (*sessionInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open rollout: %v", core.ErrRead, err)
	}
	defer f.Close()

	info := &sessionInfo{}
	if st, err := f.Stat(); err == nil {
		info.modified = st.ModTime()
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	metaFound := false
	for n := 0; scanner.Scan(); n++ {
		line := scanner.Bytes()

		if !metaFound && n < metaReadAhead {
			if meta, ts, ok := decodeMeta(line); ok {
				metaFound = true
				info.applyMeta(meta, ts)
				continue
			}
		}

		if isVisibleMessage(line) {
			info.messageCount++
			if info.firstPrompt == "" && bytes.Contains(line, roleMarker) && bytes.Contains(line, userMarker) {
				info.firstPrompt = firstPromptFromLine(line)
			}
			continue
		}

		if bytes.Contains(line, tokenCountMarker) {
			if t, ok := decodeTokenInfo(line); ok {
				info.tokens = t
			}
		}
	}

	if info.id == "" {
		info.id = stem(path)
	}
	if info.created.IsZero() {
		info.created = info.modified
	}
	return info, nil
}

func (info *sessionInfo) applyMeta(meta rawSessionMeta, envelopeTS string) {
	info.id = meta.ID
	info.cwd = meta.CWD
	info.cliVersion = meta.CLIVersion
	info.modelProvider = meta.ModelProvider
	if meta.Git != nil {
		info.gitBranch = meta.Git.Branch
	}
	for _, ts := range []string{meta.Timestamp, envelopeTS} {
		if t := parseTime(ts); t != nil {
			info.created = *t
			break
		}
	}
}

func decodeMeta(line []byte) (rawSessionMeta, string, bool) {
	var env rawLine
	if err := json.Unmarshal(line, &env); err != nil || env.Type != "session_meta" {
		return rawSessionMeta{}, "", false
	}
	var meta rawSessionMeta
	if err := json.Unmarshal(env.Payload, &meta); err != nil {
		return rawSessionMeta{}, "", false
	}
	return meta, env.Timestamp, true
}

// isVisibleMessage counts message items without decoding them. Developer
// and system messages are hidden and do not count.
func isVisibleMessage(line []byte) bool {
	return bytes.Contains(line, responseItemMarker) &&
		bytes.Contains(line, messageMarker) &&
		!bytes.Contains(line, developerMarker) &&
		!bytes.Contains(line, systemMarker)
}

func firstPromptFromLine(line []byte) string {
	var env rawLine
	if err := json.Unmarshal(line, &env); err != nil || env.Type != "response_item" {
		return ""
	}
	var item rawResponseItem
	if err := json.Unmarshal(env.Payload, &item); err != nil {
		return ""
	}
	msg, ok := mapResponseItem(item)
	if !ok {
		return ""
	}
	text := userText(msg)
	if text == "" {
		return ""
	}
	return core.TruncateChars(text, firstPromptChars)
}

func decodeTokenInfo(line []byte) (*tokenInfo, bool) {
	var env rawLine
	if err := json.Unmarshal(line, &env); err != nil || env.Type != "event_msg" {
		return nil, false
	}
	var ev rawEventMsg
	if err := json.Unmarshal(env.Payload, &ev); err != nil || ev.Type != "token_count" {
		return nil, false
	}
	if ev.Info == nil || ev.Info.TotalTokenUsage == nil {
		return nil, false
	}
	u := ev.Info.TotalTokenUsage
	t := &tokenInfo{input: u.InputTokens, output: u.OutputTokens, total: u.InputTokens + u.OutputTokens}
	if u.TotalTokens != nil {
		t.total = *u.TotalTokens
	}
	return t, true
}
