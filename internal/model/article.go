package model

import "strings"

// Article is a record owned by the Article API.
type Article struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// PageInfo is the pagination metadata returned with a list query.
type PageInfo struct {
	LastPage int `json:"last_page"`
}

// ArticleInput is the body sent on create and update.
type ArticleInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// FieldErrors maps a form field ("title", "content") to a message.
type FieldErrors map[string]string

// Merge copies every entry of other into e, overwriting existing keys.
func (e FieldErrors) Merge(other FieldErrors) FieldErrors {
	if e == nil {
		e = FieldErrors{}
	}
	for k, v := range other {
		e[k] = v
	}
	return e
}

// Clone returns an independent copy. A nil map stays nil.
func (e FieldErrors) Clone() FieldErrors {
	if e == nil {
		return nil
	}
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Excerpt shortens content for table cells.
func (a Article) Excerpt(max int) string {
	s := strings.Join(strings.Fields(a.Content), " ")
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "…"
}
