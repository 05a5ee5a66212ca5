package core

import "time"

// SearchResult is one match found by a global search. It is built per query
// and never stored.
type SearchResult struct {
	Tool        Tool       `json:"tool"`
	ProjectKey  string     `json:"project_key"`
	ProjectPath string     `json:"project_path,omitempty"`
	ShortName   string     `json:"short_name"`
	SessionID   string     `json:"session_id"`
	MessageID   string     `json:"message_id,omitempty"`
	FirstPrompt string     `json:"first_prompt,omitempty"`
	MatchedText string     `json:"matched_text"`
	Role        Role       `json:"role"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	FilePath    string     `json:"file_path"`
}
