package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"articledash/internal/api"
	"articledash/internal/controller"
	"articledash/internal/session"
	"articledash/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// articleAPI is a tiny in-memory Article API.
type articleAPI struct {
	mu       sync.Mutex
	requests []string
	created  map[string]string
}

func (a *articleAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.requests = append(a.requests, r.Method+" "+r.URL.Path)
	a.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/articles":
		io.WriteString(w, `{"meta":{"success":true},"data":{"articles":[
			{"id":1,"title":"First post","content":"Hello there","created_at":"2024-03-05T10:00:00Z"},
			{"id":2,"title":"Second post","content":"More words","created_at":"2024-03-06T10:00:00Z"}
		],"page_info":{"last_page":3}}}`)
	case r.Method == http.MethodGet && r.URL.Path == "/api/articles/1":
		io.WriteString(w, `{"meta":{"success":true},"data":{"id":1,"title":"First post","content":"Full body of the first post","created_at":"2024-03-05T10:00:00Z"}}`)
	case r.Method == http.MethodPost && r.URL.Path == "/api/articles":
		var in map[string]string
		json.NewDecoder(r.Body).Decode(&in)
		a.mu.Lock()
		a.created = in
		a.mu.Unlock()
		io.WriteString(w, `{"meta":{"success":true},"data":{"id":9,"title":"x","content":"y"}}`)
	case r.Method == http.MethodDelete:
		io.WriteString(w, `{"meta":{"success":true},"data":null}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"meta":{"success":false,"message":"Not found"}}`)
	}
}

func (a *articleAPI) saw(req string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, r := range a.requests {
		if r == req {
			return true
		}
	}
	return false
}

func (a *articleAPI) lastCreated() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.created
}

type harness struct {
	api    *articleAPI
	store  *store.MemoryStore
	reg    *session.Registry
	web    *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	fake := &articleAPI{}
	backend := httptest.NewServer(fake)
	t.Cleanup(backend.Close)

	client := api.NewClient(backend.URL, 2*time.Second)
	st := store.NewMemoryStore(time.Hour)
	reg := session.NewRegistry(st, func() *controller.Controller {
		return controller.New(client, zap.NewNop(), controller.Options{})
	}, time.Hour, zap.NewNop())

	srv, err := NewServer(reg, Config{SessionSecret: "test-secret", CanImport: false}, zap.NewNop())
	require.NoError(t, err)

	web := httptest.NewServer(srv.Handler())
	t.Cleanup(web.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &harness{
		api:    fake,
		store:  st,
		reg:    reg,
		web:    web,
		client: &http.Client{Jar: jar, Timeout: 5 * time.Second},
	}
}

func (h *harness) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := h.client.Get(h.web.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

// post follows the 303 back to the dashboard like a browser would.
func (h *harness) post(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := h.client.PostForm(h.web.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	code, body := h.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)
}

func TestIndex_LoadsFirstPage(t *testing.T) {
	h := newHarness(t)

	code, body := h.get(t, "/")
	require.Equal(t, http.StatusOK, code)

	assert.Contains(t, body, "First post")
	assert.Contains(t, body, "Second post")
	assert.Contains(t, body, "05 Mar 2024")
	assert.Contains(t, body, `action="/page/3"`)
	assert.True(t, h.api.saw("GET /api/articles"))
	assert.Equal(t, 1, h.reg.Len())
}

func TestView_ShowsDetail(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")

	code, body := h.post(t, "/articles/1/view", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Full body of the first post")
	assert.Contains(t, body, "Back to List")

	_, body = h.post(t, "/back", nil)
	assert.Contains(t, body, "Second post")
}

func TestForm_ValidationAndCreate(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")

	_, body := h.post(t, "/articles/new", nil)
	assert.Contains(t, body, `action="/form"`)

	_, body = h.post(t, "/form", url.Values{"title": {"  "}, "content": {"Body"}})
	assert.Contains(t, body, "Title is required")
	assert.NotContains(t, body, "Content is required")
	assert.False(t, h.api.saw("POST /api/articles"))

	_, body = h.post(t, "/form", url.Values{"title": {"Hello"}, "content": {"World"}})
	assert.Contains(t, body, "Article created successfully!")
	assert.Contains(t, body, `http-equiv="refresh"`)
	assert.Equal(t, map[string]string{"title": "Hello", "content": "World"}, h.api.lastCreated())
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")

	// Confirming without an open dialog does nothing.
	h.post(t, "/articles/2/delete/confirm", nil)
	assert.False(t, h.api.saw("DELETE /api/articles/2"))

	_, body := h.post(t, "/articles/2/delete", nil)
	assert.Contains(t, body, "Delete Article")
	assert.Contains(t, body, `action="/articles/2/delete/confirm"`)

	_, body = h.post(t, "/delete/cancel", nil)
	assert.NotContains(t, body, "Delete Article")

	h.post(t, "/articles/2/delete", nil)
	_, body = h.post(t, "/articles/2/delete/confirm", nil)
	assert.True(t, h.api.saw("DELETE /api/articles/2"))
	assert.Contains(t, body, "Article deleted successfully!")
}

func TestPageSize_RejectsUnknownSize(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")

	code, _ := h.post(t, "/page-size", url.Values{"size": {"7"}})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := h.post(t, "/page-size", url.Values{"size": {"25"}})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `<option value="25" selected>`)
}

func TestImport_DisabledWithoutImporter(t *testing.T) {
	h := newHarness(t)
	h.post(t, "/articles/new", nil)

	code, _ := h.post(t, "/form/import", url.Values{"url": {"https://example.com"}})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSession_PersistedAfterEachRequest(t *testing.T) {
	h := newHarness(t)
	h.get(t, "/")
	h.post(t, "/search", url.Values{"q": {"golang"}})

	u, _ := url.Parse(h.web.URL)
	var sid string
	for _, c := range h.client.Jar.Cookies(u) {
		if c.Name == cookieName {
			sid = c.Value
		}
	}
	require.NotEmpty(t, sid)

	// Dropping every live controller forces the next request to restore
	// from the store.
	h.reg.Stop(context.Background())
	assert.Equal(t, 0, h.reg.Len())

	_, body := h.get(t, "/")
	assert.Contains(t, body, `value="golang"`)
}

func TestUnknownRoute(t *testing.T) {
	h := newHarness(t)
	code, _ := h.get(t, "/nope")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = h.get(t, "/search")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}
