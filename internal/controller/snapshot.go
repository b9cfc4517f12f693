package controller

import "articledash/internal/model"

// Export returns the restorable part of the state.
func (c *Controller) Export() model.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := model.Snapshot{
		View:     c.state.View,
		Page:     c.state.Page,
		PageSize: c.state.PageSize,
		Search:   c.state.Search,
	}
	if c.state.Selected != nil {
		a := *c.state.Selected
		snap.Selected = &a
	}
	if c.state.View.IsForm() {
		snap.Draft = model.FormState{Title: c.state.Form.Title, Content: c.state.Form.Content}
	}
	return snap
}

// Restore puts a previously exported snapshot back. Inconsistent snapshots
// fall back to the list view. The article cache is not part of a snapshot;
// callers fetch it afterwards.
func (c *Controller) Restore(snap model.Snapshot) {
	c.update(func(s *State) {
		*s = initialState()

		if snap.Page > 0 {
			s.Page = snap.Page
		}
		if model.ValidPageSize(snap.PageSize) {
			s.PageSize = snap.PageSize
		}
		s.Search = snap.Search

		view := snap.View
		if !view.Valid() {
			view = model.ViewList
		}
		if (view == model.ViewDetail || view == model.ViewEdit) && snap.Selected == nil {
			view = model.ViewList
		}
		if view == model.ViewForm {
			snap.Selected = nil
		}
		s.View = view

		if snap.Selected != nil && view != model.ViewList {
			a := *snap.Selected
			s.Selected = &a
		}
		if view.IsForm() {
			s.Form = model.FormState{Title: snap.Draft.Title, Content: snap.Draft.Content}
		}
	})
}
