package controller

import "articledash/internal/model"

// State is everything a binding needs to render the dashboard. Bindings get
// copies from Controller.Snapshot and never mutate controller state directly.
type State struct {
	View       model.ViewMode
	Articles   []model.Article
	TotalPages int
	Page       int
	PageSize   int
	Search     string

	Form     model.FormState
	Selected *model.Article
	Status   model.StatusMessage

	Loading    bool
	Submitting bool
	Deleting   bool
	Importing  bool

	// DeleteTarget is the article whose delete confirmation is open.
	DeleteTarget *int
	// Loaded is set after the first successful list fetch.
	Loaded bool
}

func initialState() State {
	return State{
		View:       model.ViewList,
		Page:       1,
		PageSize:   model.DefaultPageSize,
		TotalPages: 1,
	}
}

// Rows numbers the cached page for display.
func (s State) Rows() []model.ArticleRow {
	return model.NewArticleRows(s.Articles, s.Page, s.PageSize)
}

// Pagination describes the page controls for the cached page.
func (s State) Pagination() model.Pagination {
	return model.NewPagination(s.Page, s.TotalPages)
}

// EditMode is true when the form updates an existing article.
func (s State) EditMode() bool {
	return s.Selected != nil
}

// ConfirmingDelete reports whether the confirmation for id is open.
func (s State) ConfirmingDelete(id int) bool {
	return s.DeleteTarget != nil && *s.DeleteTarget == id
}

func (s State) clone() State {
	out := s
	if s.Articles != nil {
		out.Articles = append([]model.Article(nil), s.Articles...)
	}
	if s.Selected != nil {
		a := *s.Selected
		out.Selected = &a
	}
	if s.DeleteTarget != nil {
		id := *s.DeleteTarget
		out.DeleteTarget = &id
	}
	out.Form.Errors = s.Form.Errors.Clone()
	return out
}
