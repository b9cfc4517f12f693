package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"articledash/internal/api"
	"articledash/internal/importer"
	"articledash/internal/model"

	"go.uber.org/zap"
)

const (
	DefaultStatusTTL = 3 * time.Second

	msgLoadFailed   = "Failed to load articles."
	msgViewFailed   = "Failed to load article details."
	msgDeleted      = "Article deleted successfully!"
	msgDeleteFailed = "Failed to delete article."
	msgImported     = "Article imported. Review it and save."
	msgImportFailed = "Failed to import article from URL."
)

// ArticleAPI is the remote collaborator the controller synchronizes with.
type ArticleAPI interface {
	List(ctx context.Context, q api.ListQuery) (*api.Result, error)
	Get(ctx context.Context, id int) (*api.Result, error)
	Create(ctx context.Context, in model.ArticleInput) (*api.Result, error)
	Update(ctx context.Context, id int, in model.ArticleInput) (*api.Result, error)
	Delete(ctx context.Context, id int) (*api.Result, error)
}

// Importer fills the create form from a web page.
type Importer interface {
	Import(ctx context.Context, rawURL string) (*importer.Page, error)
}

type Options struct {
	// SurfaceReadErrors shows an error banner when a list or detail fetch
	// fails. Off by default: failed reads leave the screen as it was.
	SurfaceReadErrors bool
	StatusTTL         time.Duration
	Clock             Clock
	Importer          Importer
}

// Controller owns the dashboard state for one session and keeps it in sync
// with the Article API. Methods may be called from any goroutine; network
// calls run with the lock released.
type Controller struct {
	mu     sync.Mutex
	api    ArticleAPI
	logger *zap.Logger
	opts   Options
	state  State

	listSeq     uint64
	statusGen   uint64
	statusTimer Timer
	onChange    func()
}

func New(articles ArticleAPI, logger *zap.Logger, opts Options) *Controller {
	if opts.StatusTTL <= 0 {
		opts.StatusTTL = DefaultStatusTTL
	}
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		api:    articles,
		logger: logger,
		opts:   opts,
		state:  initialState(),
	}
}

// OnChange registers fn to be called after every state change, including
// the timer-driven status clear. fn runs without the controller lock held.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Close stops the pending status timer.
func (c *Controller) Close() {
	c.mu.Lock()
	c.stopStatusTimerLocked()
	c.mu.Unlock()
}

func (c *Controller) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (c *Controller) update(fn func(s *State)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
	c.notify()
}

// --- list ---

// FetchArticles loads the current page. Only the most recently issued fetch
// may change state; earlier responses are dropped when they arrive.
func (c *Controller) FetchArticles(ctx context.Context) {
	c.mu.Lock()
	c.listSeq++
	token := c.listSeq
	q := api.ListQuery{Search: c.state.Search, Page: c.state.Page, PageSize: c.state.PageSize}
	c.state.Loading = true
	c.mu.Unlock()
	c.notify()

	res, err := c.api.List(ctx, q)

	c.mu.Lock()
	if token != c.listSeq {
		c.mu.Unlock()
		c.logger.Debug("Discarding stale article list", zap.Uint64("token", token), zap.Int("page", q.Page))
		return
	}
	c.state.Loading = false
	if err != nil {
		c.logger.Error("Error fetching articles",
			zap.Error(err),
			zap.String("search", q.Search),
			zap.Int("page", q.Page),
			zap.Int("page_size", q.PageSize))
		if c.opts.SurfaceReadErrors {
			c.setStatusLocked(model.StatusError, msgLoadFailed)
		}
	} else {
		c.state.Articles = c.uniqueArticles(res.Articles)
		c.state.TotalPages = res.PageInfo.LastPage
		c.state.Loaded = true
	}
	c.mu.Unlock()
	c.notify()
}

// uniqueArticles drops entries that would break the cache invariant:
// ids are non-negative and unique.
func (c *Controller) uniqueArticles(in []model.Article) []model.Article {
	out := make([]model.Article, 0, len(in))
	seen := make(map[int]struct{}, len(in))
	for _, a := range in {
		if a.ID < 0 {
			c.logger.Warn("Dropping article with negative id", zap.Int("id", a.ID))
			continue
		}
		if _, dup := seen[a.ID]; dup {
			c.logger.Warn("Dropping duplicate article", zap.Int("id", a.ID))
			continue
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out
}

// SetSearch changes the search text, goes back to page 1 and refetches.
func (c *Controller) SetSearch(ctx context.Context, q string) {
	c.mu.Lock()
	if q == c.state.Search {
		c.mu.Unlock()
		return
	}
	c.state.Search = q
	c.state.Page = 1
	c.mu.Unlock()
	c.FetchArticles(ctx)
}

// SetPage moves to page p, clamped to 1..TotalPages, and refetches.
func (c *Controller) SetPage(ctx context.Context, p int) {
	c.mu.Lock()
	if p > c.state.TotalPages {
		p = c.state.TotalPages
	}
	if p < 1 {
		p = 1
	}
	if p == c.state.Page {
		c.mu.Unlock()
		return
	}
	c.state.Page = p
	c.mu.Unlock()
	c.FetchArticles(ctx)
}

func (c *Controller) NextPage(ctx context.Context) {
	c.mu.Lock()
	p := c.state.Page + 1
	c.mu.Unlock()
	c.SetPage(ctx, p)
}

func (c *Controller) PrevPage(ctx context.Context) {
	c.mu.Lock()
	p := c.state.Page - 1
	c.mu.Unlock()
	c.SetPage(ctx, p)
}

// SetPageSize accepts one of model.PageSizes, goes back to page 1 and refetches.
func (c *Controller) SetPageSize(ctx context.Context, n int) {
	if !model.ValidPageSize(n) {
		c.logger.Warn("Ignoring unsupported page size", zap.Int("page_size", n))
		return
	}
	c.mu.Lock()
	if n == c.state.PageSize {
		c.mu.Unlock()
		return
	}
	c.state.PageSize = n
	c.state.Page = 1
	c.mu.Unlock()
	c.FetchArticles(ctx)
}

// --- detail ---

// View fetches one article and shows it. Failures leave the view unchanged.
func (c *Controller) View(ctx context.Context, id int) {
	res, err := c.api.Get(ctx, id)
	if err == nil && res.Article == nil {
		err = api.ErrUnexpectedShape
	}
	if err != nil {
		c.logger.Error("Error fetching article details", zap.Error(err), zap.Int("id", id))
		if c.opts.SurfaceReadErrors {
			c.update(func(s *State) { c.setStatusLocked(model.StatusError, msgViewFailed) })
		}
		return
	}

	c.update(func(s *State) {
		// The user may have opened a form while the request was in flight.
		if s.View.IsForm() {
			return
		}
		a := *res.Article
		s.Selected = &a
		s.View = model.ViewDetail
		s.DeleteTarget = nil
	})
}

// --- form ---

// StartCreate opens an empty create form.
func (c *Controller) StartCreate() {
	c.update(func(s *State) {
		c.resetFormLocked()
		c.clearStatusLocked()
		s.Selected = nil
		s.DeleteTarget = nil
		s.View = model.ViewForm
	})
}

// Edit opens the edit form for a cached row. It reports false when id is not
// on the current page.
func (c *Controller) Edit(id int) bool {
	c.mu.Lock()
	var found *model.Article
	for i := range c.state.Articles {
		if c.state.Articles[i].ID == id {
			a := c.state.Articles[i]
			found = &a
			break
		}
	}
	c.mu.Unlock()

	if found == nil {
		c.logger.Warn("Edit requested for article not in cache", zap.Int("id", id))
		return false
	}
	c.EditArticle(*found)
	return true
}

// EditArticle fills the form from a without any network call.
func (c *Controller) EditArticle(a model.Article) {
	c.update(func(s *State) {
		s.Form = model.FormState{Title: a.Title, Content: a.Content}
		s.Selected = &a
		s.DeleteTarget = nil
		s.View = model.ViewEdit
	})
}

func (c *Controller) SetTitle(title string) {
	c.update(func(s *State) { s.Form.Title = title })
}

func (c *Controller) SetContent(content string) {
	c.update(func(s *State) { s.Form.Content = content })
}

// Back returns to the list. Leaving a form discards the draft.
func (c *Controller) Back() {
	c.update(func(s *State) {
		if s.View.IsForm() {
			c.resetFormLocked()
			c.clearStatusLocked()
		}
		s.Selected = nil
		s.DeleteTarget = nil
		s.View = model.ViewList
	})
}

// Submit validates the form and creates or updates the article.
func (c *Controller) Submit(ctx context.Context) {
	c.mu.Lock()
	if c.state.Submitting || !c.state.View.IsForm() {
		c.mu.Unlock()
		return
	}
	errs := ValidateForm(c.state.Form.Title, c.state.Form.Content)
	c.state.Form.Errors = errs
	if len(errs) > 0 {
		c.mu.Unlock()
		c.notify()
		return
	}
	c.state.Submitting = true
	c.clearStatusLocked()
	in := model.ArticleInput{Title: c.state.Form.Title, Content: c.state.Form.Content}
	var selected *model.Article
	if c.state.Selected != nil {
		a := *c.state.Selected
		selected = &a
	}
	c.mu.Unlock()
	c.notify()

	verb, done := "create", "created"
	var err error
	if selected != nil {
		verb, done = "update", "updated"
		_, err = c.api.Update(ctx, selected.ID, in)
	} else {
		_, err = c.api.Create(ctx, in)
	}

	refetch := false
	c.mu.Lock()
	c.state.Submitting = false
	var apiErr *api.Error
	switch {
	case err == nil:
		c.resetFormLocked()
		c.state.Selected = nil
		c.state.View = model.ViewList
		c.setStatusLocked(model.StatusSuccess, fmt.Sprintf("Article %s successfully!", done))
		refetch = true
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = fmt.Sprintf("Failed to %s article", verb)
		}
		c.setStatusLocked(model.StatusError, msg)
		if len(apiErr.Fields) > 0 {
			c.state.Form.Errors = c.state.Form.Errors.Merge(apiErr.Fields)
		}
	default:
		c.logger.Error("Error saving article", zap.String("action", verb), zap.Error(err))
		c.setStatusLocked(model.StatusError, fmt.Sprintf("Failed to %s article. Please try again.", verb))
	}
	c.mu.Unlock()
	c.notify()

	if refetch {
		c.FetchArticles(ctx)
	}
}

// ImportFromURL replaces the create-form draft with the readable content of
// a web page. Edit forms are left alone.
func (c *Controller) ImportFromURL(ctx context.Context, rawURL string) {
	c.mu.Lock()
	if c.opts.Importer == nil || c.state.Importing || c.state.View != model.ViewForm {
		c.mu.Unlock()
		return
	}
	c.state.Importing = true
	c.mu.Unlock()
	c.notify()

	page, err := c.opts.Importer.Import(ctx, rawURL)

	c.update(func(s *State) {
		s.Importing = false
		if err != nil {
			c.logger.Error("Error importing article", zap.String("url", rawURL), zap.Error(err))
		}
		// The user may have left the form while the page was downloading.
		if s.View != model.ViewForm {
			return
		}
		if err != nil {
			c.setStatusLocked(model.StatusError, msgImportFailed)
			return
		}
		s.Form.Title = page.Title
		s.Form.Content = page.Content
		s.Form.Errors = nil
		c.setStatusLocked(model.StatusSuccess, msgImported)
	})
}

// --- delete ---

// RequestDelete opens the confirmation for id. Nothing is sent yet.
func (c *Controller) RequestDelete(id int) {
	c.update(func(s *State) {
		if s.View != model.ViewList || s.Deleting {
			return
		}
		s.DeleteTarget = &id
	})
}

// CancelDelete closes the confirmation.
func (c *Controller) CancelDelete() {
	c.update(func(s *State) { s.DeleteTarget = nil })
}

// ConfirmDelete sends the DELETE for id, but only while the confirmation for
// that id is open. The confirmation is closed in every outcome.
func (c *Controller) ConfirmDelete(ctx context.Context, id int) {
	c.mu.Lock()
	if !c.state.ConfirmingDelete(id) || c.state.Deleting {
		c.mu.Unlock()
		c.logger.Warn("Delete without confirmation ignored", zap.Int("id", id))
		return
	}
	c.state.Deleting = true
	c.mu.Unlock()
	c.notify()

	_, err := c.api.Delete(ctx, id)

	refetch := false
	c.mu.Lock()
	c.state.Deleting = false
	c.state.DeleteTarget = nil
	var apiErr *api.Error
	switch {
	case err == nil:
		c.setStatusLocked(model.StatusSuccess, msgDeleted)
		refetch = true
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = msgDeleteFailed
		}
		c.setStatusLocked(model.StatusError, msg)
	default:
		c.logger.Error("Error deleting article", zap.Int("id", id), zap.Error(err))
		c.setStatusLocked(model.StatusError, msgDeleteFailed)
	}
	c.mu.Unlock()
	c.notify()

	if refetch {
		c.FetchArticles(ctx)
	}
}

// --- helpers, caller holds c.mu ---

func (c *Controller) resetFormLocked() {
	c.state.Form = model.FormState{}
}

// setStatusLocked shows msg and replaces any pending clear with a new one.
func (c *Controller) setStatusLocked(kind model.StatusKind, text string) {
	c.stopStatusTimerLocked()
	c.statusGen++
	gen := c.statusGen
	c.state.Status = model.StatusMessage{Kind: kind, Text: text}
	c.statusTimer = c.opts.Clock.AfterFunc(c.opts.StatusTTL, func() {
		c.mu.Lock()
		// A timer that fired just before being stopped must not clear a
		// newer message.
		if gen != c.statusGen {
			c.mu.Unlock()
			return
		}
		c.state.Status = model.StatusMessage{}
		c.statusTimer = nil
		c.mu.Unlock()
		c.notify()
	})
}

func (c *Controller) clearStatusLocked() {
	c.stopStatusTimerLocked()
	c.statusGen++
	c.state.Status = model.StatusMessage{}
}

func (c *Controller) stopStatusTimerLocked() {
	if c.statusTimer != nil {
		c.statusTimer.Stop()
		c.statusTimer = nil
	}
}
