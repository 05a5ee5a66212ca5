package core

// Page is one window over a session's visible messages.
type Page struct {
	Messages []Message `json:"messages"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	HasMore  bool      `json:"has_more"`
}

// Paginate slices msgs into the zero-based page of pageSize items. A page past
// the end is empty with HasMore false. Callers must exclude invisible messages
// before paginating so Total counts only what can be shown.
func Paginate(msgs []Message, page, pageSize int) *Page {
	total := len(msgs)
	p := &Page{
		Messages: []Message{},
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	if page < 0 || pageSize <= 0 || total == 0 {
		return p
	}
	// Compare before multiplying so huge values cannot overflow into range.
	if page > (total-1)/pageSize {
		return p
	}

	start := page * pageSize
	end := min(start+pageSize, total)

	p.Messages = msgs[start:end]
	p.HasMore = end < total
	return p
}
