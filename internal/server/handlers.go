package server

import (
	"bytes"
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"articledash/internal/controller"
	"articledash/internal/model"
	"articledash/internal/session"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

var errBadRequest = errors.New("bad request")

// eventFunc applies one user action to the session controller.
type eventFunc func(ctx context.Context, r *http.Request, c *controller.Controller) error

type pageData struct {
	Title          string
	State          controller.State
	Rows           []model.ArticleRow
	Pagination     model.Pagination
	PageSizes      []int
	Confirming     bool
	DeleteID       int
	CreatedAt      string
	Refresh        bool
	RefreshSeconds int
	CanImport      bool
}

var pageTitles = map[model.ViewMode]string{
	model.ViewList:   "Article List",
	model.ViewDetail: "Article Detail",
	model.ViewForm:   "Add Article",
	model.ViewEdit:   "Edit Article",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// handleIndex renders whatever view the session is on. The first visit to
// the list loads page one.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sid, err := s.sessionID(w, r)
	if err != nil {
		s.logger.Error("Session cookie", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctrl, _ := s.registry.Get(r.Context(), sid)
	st := ctrl.Snapshot()
	if st.View == model.ViewList && !st.Loaded && !st.Loading {
		ctrl.FetchArticles(r.Context())
		st = ctrl.Snapshot()
	}
	s.persist(r.Context(), sid)
	s.render(w, st)
}

// event wraps a state-changing action in Post/Redirect/Get.
func (s *Server) event(fn eventFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid, err := s.sessionID(w, r)
		if err != nil {
			s.logger.Error("Session cookie", zap.Error(err))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		ctrl, _ := s.registry.Get(r.Context(), sid)
		if err := fn(r.Context(), r, ctrl); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.persist(r.Context(), sid)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (string, error) {
	sess, err := s.cookies.Get(r, cookieName)
	if err != nil {
		// Undecodable cookie; gorilla hands back a fresh session.
		s.logger.Debug("Discarding session cookie", zap.Error(err))
	}
	if id, ok := sess.Values["sid"].(string); ok && session.ValidID(id) {
		return id, nil
	}

	id := session.NewID()
	sess.Values["sid"] = id
	if err := sess.Save(r, w); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Server) persist(ctx context.Context, sid string) {
	if err := s.registry.Persist(ctx, sid); err != nil {
		s.logger.Warn("Failed to persist session", zap.String("session", sid), zap.Error(err))
	}
}

func (s *Server) render(w http.ResponseWriter, st controller.State) {
	tmpl, ok := s.pages[st.View]
	if !ok {
		tmpl = s.pages[model.ViewList]
	}

	data := pageData{
		Title:          pageTitles[st.View],
		State:          st,
		Rows:           st.Rows(),
		Pagination:     st.Pagination(),
		PageSizes:      model.PageSizes,
		CanImport:      s.cfg.CanImport,
		RefreshSeconds: int(math.Ceil(s.cfg.StatusTTL.Seconds())),
	}
	if st.DeleteTarget != nil {
		data.Confirming = true
		data.DeleteID = *st.DeleteTarget
	}
	if st.Selected != nil {
		data.CreatedAt = model.FormatDate(st.Selected.CreatedAt)
	}
	// Reload once the banner has expired so it disappears without JS.
	data.Refresh = st.Status.Visible() && !st.View.IsForm()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("Template render", zap.String("view", string(st.View)), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func pathInt(r *http.Request, key string) (int, error) {
	n, err := strconv.Atoi(mux.Vars(r)[key])
	if err != nil {
		return 0, errBadRequest
	}
	return n, nil
}

// --- list ---

func (s *Server) handleSearch(ctx context.Context, r *http.Request, c *controller.Controller) error {
	c.SetSearch(ctx, r.FormValue("q"))
	return nil
}

func (s *Server) handlePage(ctx context.Context, r *http.Request, c *controller.Controller) error {
	n, err := pathInt(r, "n")
	if err != nil {
		return err
	}
	c.SetPage(ctx, n)
	return nil
}

func (s *Server) handlePrev(ctx context.Context, r *http.Request, c *controller.Controller) error {
	c.PrevPage(ctx)
	return nil
}

func (s *Server) handleNext(ctx context.Context, r *http.Request, c *controller.Controller) error {
	c.NextPage(ctx)
	return nil
}

func (s *Server) handlePageSize(ctx context.Context, r *http.Request, c *controller.Controller) error {
	n, err := strconv.Atoi(r.FormValue("size"))
	if err != nil || !model.ValidPageSize(n) {
		return errBadRequest
	}
	c.SetPageSize(ctx, n)
	return nil
}

func (s *Server) handleBack(ctx context.Context, r *http.Request, c *controller.Controller) error {
	c.Back()
	return nil
}

// --- articles ---

func (s *Server) handleNew(ctx context.Context, r *http.Request, c *controller.Controller) error {
	c.StartCreate()
	return nil
}

func (s *Server) handleView(ctx context.Context, r *http.Request, c *controller.Controller) error {
	id, err := pathInt(r, "id")
	if err != nil {
		return err
	}
	c.View(ctx, id)
	return nil
}

func (s *Server) handleEdit(ctx context.Context, r *http.Request, c *controller.Controller) error {
	id, err := pathInt(r, "id")
	if err != nil {
		return err
	}
	if !c.Edit(id) {
		s.logger.Debug("Edit target not on current page", zap.Int("id", id))
	}
	return nil
}

func (s *Server) handleDelete(ctx context.Context, r *http.Request, c *controller.Controller) error {
	id, err := pathInt(r, "id")
	if err != nil {
		return err
	}
	c.RequestDelete(id)
	return nil
}

func (s *Server) handleConfirmDelete(ctx context.Context, r *http.Request, c *controller.Controller) error {
	id, err := pathInt(r, "id")
	if err != nil {
		return err
	}
	c.ConfirmDelete(ctx, id)
	return nil
}

func (s *Server) handleCancelDelete(ctx context.Context, r *http.Request, c *controller.Controller) error {
	c.CancelDelete()
	return nil
}

func (s *Server) handleSubmit(ctx context.Context, r *http.Request, c *controller.Controller) error {
	c.SetTitle(r.FormValue("title"))
	c.SetContent(r.FormValue("content"))
	c.Submit(ctx)
	return nil
}

func (s *Server) handleImport(ctx context.Context, r *http.Request, c *controller.Controller) error {
	if !s.cfg.CanImport {
		return errBadRequest
	}
	c.ImportFromURL(ctx, r.FormValue("url"))
	return nil
}
