package core

import "errors"

var (
	// ErrNotFound reports a missing root, project, or session.
	ErrNotFound = errors.New("not found")
	// ErrRead reports a file that exists but could not be read.
	ErrRead = errors.New("read failure")
	// ErrParse reports a structurally invalid document.
	ErrParse = errors.New("parse failure")
	// ErrUnsupportedTool reports an unknown tool tag.
	ErrUnsupportedTool = errors.New("unsupported tool")
)
