package tui

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"articledash/internal/api"
	"articledash/internal/controller"
	"articledash/internal/model"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type backend struct {
	mu       sync.Mutex
	requests []string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.requests = append(b.requests, r.Method+" "+r.URL.RequestURI())
	b.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/articles":
		io.WriteString(w, `{"meta":{"success":true},"data":{"articles":[
			{"id":4,"title":"Alpha","content":"alpha body","created_at":"2024-01-01"},
			{"id":5,"title":"Beta","content":"beta body","created_at":"2024-01-02"}
		],"page_info":{"last_page":2}}}`)
	case r.Method == http.MethodGet && r.URL.Path == "/api/articles/5":
		io.WriteString(w, `{"meta":{"success":true},"data":{"id":5,"title":"Beta","content":"the whole beta story","created_at":"2024-01-02"}}`)
	case r.Method == http.MethodDelete:
		io.WriteString(w, `{"meta":{"success":true}}`)
	case r.Method == http.MethodPost:
		io.WriteString(w, `{"meta":{"success":true},"data":{"id":6,"title":"t","content":"c"}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"meta":{"success":false}}`)
	}
}

func (b *backend) count(req string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.requests {
		if r == req {
			n++
		}
	}
	return n
}

func (b *backend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func setup(t *testing.T) (*Model, *backend) {
	t.Helper()
	b := &backend{}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	ctrl := controller.New(api.NewClient(srv.URL, 2*time.Second), zap.NewNop(), controller.Options{})
	t.Cleanup(ctrl.Close)

	m := New(context.Background(), ctrl, false)
	// Blinking cursors return sleeping commands; keep tests instant.
	m.search.Cursor.SetMode(cursor.CursorStatic)
	m.title.Cursor.SetMode(cursor.CursorStatic)
	m.url.Cursor.SetMode(cursor.CursorStatic)
	m.content.Cursor.SetMode(cursor.CursorStatic)
	run(m, m.Init())
	return m, b
}

// run executes cmd synchronously and feeds the result back into the model.
func run(m *Model, cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if _, ok := msg.(stateChangedMsg); ok {
		m.Update(msg)
	}
	return msg
}

func press(m *Model, keys ...tea.KeyMsg) tea.Msg {
	var last tea.Msg
	for _, k := range keys {
		_, cmd := m.Update(k)
		last = run(m, cmd)
	}
	return last
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		press(m, runes(string(r)))
	}
}

func TestInit_LoadsList(t *testing.T) {
	m, _ := setup(t)

	out := m.View()
	assert.Contains(t, out, "Alpha")
	assert.Contains(t, out, "Beta")
	assert.Contains(t, out, "[1]")
}

func TestEnter_OpensDetail(t *testing.T) {
	m, b := setup(t)

	press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, 1, b.count("GET /api/articles/5"))
	assert.Equal(t, model.ViewDetail, m.state.View)
	assert.Contains(t, m.View(), "the whole beta story")

	press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, model.ViewList, m.state.View)
}

func TestForm_ValidatesBeforeSending(t *testing.T) {
	m, b := setup(t)

	press(m, runes("a"))
	require.Equal(t, model.ViewForm, m.state.View)

	typeText(m, "Hello")
	press(m, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Equal(t, 0, b.count("POST /api/articles"))
	assert.Contains(t, m.View(), "Content is required")
	assert.Equal(t, "Hello", m.state.Form.Title)

	press(m, tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "World")
	press(m, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Equal(t, 1, b.count("POST /api/articles"))
	assert.Equal(t, model.ViewList, m.state.View)
	assert.Contains(t, m.View(), "Article created successfully!")
}

func TestEdit_FillsFormFromRow(t *testing.T) {
	m, b := setup(t)
	before := b.total()

	press(m, runes("e"))

	assert.Equal(t, model.ViewEdit, m.state.View)
	assert.Equal(t, "Alpha", m.title.Value())
	assert.Equal(t, "alpha body", m.content.Value())
	assert.Equal(t, before, b.total())
}

func TestEdit_KeepsLongDraftIntact(t *testing.T) {
	m, _ := setup(t)

	title := strings.Repeat("t", 300)
	lines := make([]string, 150)
	for i := range lines {
		lines[i] = strings.Repeat("x", 20)
	}
	content := strings.Join(lines, "\n")
	m.ctrl.EditArticle(model.Article{ID: 4, Title: title, Content: content})
	m.Update(stateChangedMsg{})

	require.Equal(t, model.ViewEdit, m.state.View)
	assert.Equal(t, title, m.title.Value())
	assert.Equal(t, content, m.content.Value())

	// One edit in each field must not drop the rest of the draft.
	press(m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, title[:299], m.ctrl.Snapshot().Form.Title)

	press(m, tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, content[:len(content)-1], m.ctrl.Snapshot().Form.Content)
}

func TestDelete_AsksFirst(t *testing.T) {
	m, b := setup(t)

	press(m, runes("d"))
	assert.Contains(t, m.View(), "Delete Article")

	press(m, runes("n"))
	assert.Nil(t, m.state.DeleteTarget)
	assert.Equal(t, 0, b.count("DELETE /api/articles/4"))

	lists := b.count("GET /api/articles?page=1&page_size=10&search=")
	press(m, runes("d"), runes("y"))
	assert.Equal(t, 1, b.count("DELETE /api/articles/4"))
	assert.Equal(t, lists+1, b.count("GET /api/articles?page=1&page_size=10&search="))
	assert.Contains(t, m.View(), "Article deleted successfully!")
}

func TestSearch_AppliesOnEnter(t *testing.T) {
	m, b := setup(t)

	press(m, runes("/"))
	assert.True(t, m.searching)
	typeText(m, "go")
	press(m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.searching)
	assert.Equal(t, "go", m.state.Search)
	assert.Equal(t, 1, b.count("GET /api/articles?page=1&page_size=10&search=go"))
}

func TestPaging(t *testing.T) {
	m, _ := setup(t)

	press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 2, m.state.Page)

	// last_page is 2, so this is clamped.
	press(m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 2, m.state.Page)

	press(m, runes("+"))
	assert.Equal(t, 25, m.state.PageSize)
	assert.Equal(t, 1, m.state.Page)
}

func TestStepPageSize(t *testing.T) {
	assert.Equal(t, 25, stepPageSize(10, 1))
	assert.Equal(t, 5, stepPageSize(10, -1))
	assert.Equal(t, 5, stepPageSize(5, -1))
	assert.Equal(t, 25, stepPageSize(25, 1))
}

func TestQuit(t *testing.T) {
	m, _ := setup(t)

	msg := press(m, runes("q"))
	assert.IsType(t, tea.QuitMsg{}, msg)
}
