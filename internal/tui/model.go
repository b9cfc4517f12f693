package tui

import (
	"context"

	"articledash/internal/controller"
	"articledash/internal/model"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// stateChangedMsg tells the model to re-read the controller state. It is
// sent when a network command finishes and by the controller change hook.
type stateChangedMsg struct{}

type field int

const (
	fieldTitle field = iota
	fieldContent
	fieldURL
)

// Model is the terminal binding over one controller. All dashboard state
// lives in the controller; the model only keeps input widgets and the cursor.
type Model struct {
	ctx       context.Context
	ctrl      *controller.Controller
	canImport bool

	state     controller.State
	cursor    int
	searching bool
	focus     field

	search  textinput.Model
	title   textinput.Model
	content textarea.Model
	url     textinput.Model
	detail  viewport.Model
	help    help.Model

	width  int
	height int
}

func New(ctx context.Context, ctrl *controller.Controller, canImport bool) *Model {
	search := textinput.New()
	search.Placeholder = "Type here to search"
	search.Prompt = "/ "

	title := textinput.New()
	title.Placeholder = "Enter title"
	// The widgets hold the whole draft, so they must never trim it.
	title.CharLimit = 0

	content := textarea.New()
	content.Placeholder = "Enter content"
	content.ShowLineNumbers = false
	content.CharLimit = 0
	content.MaxHeight = 0
	content.SetHeight(8)

	url := textinput.New()
	url.Placeholder = "https://..."

	return &Model{
		ctx:       ctx,
		ctrl:      ctrl,
		canImport: canImport,
		state:     ctrl.Snapshot(),
		search:    search,
		title:     title,
		content:   content,
		url:       url,
		detail:    viewport.New(80, 12),
		help:      help.New(),
		width:     80,
		height:    24,
	}
}

func (m *Model) Init() tea.Cmd {
	return m.do(m.ctrl.FetchArticles)
}

// do runs a blocking controller call off the event loop.
func (m *Model) do(fn func(ctx context.Context)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		fn(ctx)
		return stateChangedMsg{}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case stateChangedMsg:
		m.sync()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, forceQuit) {
			return m, tea.Quit
		}
		m.state = m.ctrl.Snapshot()

		var cmd tea.Cmd
		switch {
		case m.searching:
			cmd = m.updateSearch(msg)
		case m.state.View == model.ViewList && m.state.DeleteTarget != nil:
			cmd = m.updateConfirm(msg)
		case m.state.View == model.ViewList:
			cmd = m.updateList(msg)
		case m.state.View == model.ViewDetail:
			cmd = m.updateDetail(msg)
		default:
			cmd = m.updateForm(msg)
		}
		m.sync()
		return m, cmd
	}

	// Cursor blinks and similar widget messages.
	var cmd tea.Cmd
	switch {
	case m.searching:
		m.search, cmd = m.search.Update(msg)
	case m.state.View.IsForm():
		cmd = m.updateFocused(msg)
	}
	return m, cmd
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.search.Width = w - 6
	m.title.Width = w - 4
	m.url.Width = w - 4
	m.content.SetWidth(w - 2)
	m.detail.Width = w
	m.detail.Height = max(h-12, 3)
	m.help.Width = w
	if m.state.Selected != nil {
		m.detail.SetContent(wrap(m.state.Selected.Content, w))
	}
}

// sync pulls the controller state and aligns the widgets with it.
func (m *Model) sync() {
	prev := m.state
	m.state = m.ctrl.Snapshot()
	st := m.state

	if m.cursor >= len(st.Articles) {
		m.cursor = max(len(st.Articles)-1, 0)
	}

	if st.View.IsForm() {
		if !prev.View.IsForm() {
			m.url.SetValue("")
			m.focusField(fieldTitle)
		}
		if m.title.Value() != st.Form.Title {
			m.title.SetValue(st.Form.Title)
		}
		if m.content.Value() != st.Form.Content {
			m.content.SetValue(st.Form.Content)
		}
	} else {
		m.title.Blur()
		m.content.Blur()
		m.url.Blur()
	}

	if st.View == model.ViewDetail && st.Selected != nil {
		if prev.View != model.ViewDetail || prev.Selected == nil || prev.Selected.ID != st.Selected.ID {
			m.detail.SetContent(wrap(st.Selected.Content, m.width))
			m.detail.GotoTop()
		}
	}
}

func (m *Model) current() (model.Article, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Articles) {
		return model.Article{}, false
	}
	return m.state.Articles[m.cursor], true
}

// --- list ---

func (m *Model) updateList(msg tea.KeyMsg) tea.Cmd {
	st := m.state
	switch {
	case key.Matches(msg, listKeys.Quit):
		return tea.Quit
	case key.Matches(msg, listKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, listKeys.Down):
		if m.cursor < len(st.Articles)-1 {
			m.cursor++
		}
	case key.Matches(msg, listKeys.View):
		if a, ok := m.current(); ok {
			id := a.ID
			return m.do(func(ctx context.Context) { m.ctrl.View(ctx, id) })
		}
	case key.Matches(msg, listKeys.Edit):
		if a, ok := m.current(); ok {
			m.ctrl.Edit(a.ID)
		}
	case key.Matches(msg, listKeys.Add):
		m.ctrl.StartCreate()
	case key.Matches(msg, listKeys.Delete):
		if a, ok := m.current(); ok {
			m.ctrl.RequestDelete(a.ID)
		}
	case key.Matches(msg, listKeys.Search):
		m.searching = true
		m.search.SetValue(st.Search)
		m.search.CursorEnd()
		m.search.Focus()
		return textinput.Blink
	case key.Matches(msg, listKeys.Prev):
		return m.do(m.ctrl.PrevPage)
	case key.Matches(msg, listKeys.Next):
		return m.do(m.ctrl.NextPage)
	case key.Matches(msg, listKeys.Bigger):
		size := stepPageSize(st.PageSize, 1)
		return m.do(func(ctx context.Context) { m.ctrl.SetPageSize(ctx, size) })
	case key.Matches(msg, listKeys.Smaller):
		size := stepPageSize(st.PageSize, -1)
		return m.do(func(ctx context.Context) { m.ctrl.SetPageSize(ctx, size) })
	case key.Matches(msg, listKeys.Refresh):
		return m.do(m.ctrl.FetchArticles)
	}
	return nil
}

// stepPageSize moves dir steps through model.PageSizes, stopping at the ends.
func stepPageSize(current, dir int) int {
	idx := 0
	for i, n := range model.PageSizes {
		if n == current {
			idx = i
		}
	}
	idx += dir
	idx = max(0, min(idx, len(model.PageSizes)-1))
	return model.PageSizes[idx]
}

func (m *Model) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, confirmKeys.Yes):
		if m.state.Deleting {
			return nil
		}
		id := *m.state.DeleteTarget
		return m.do(func(ctx context.Context) { m.ctrl.ConfirmDelete(ctx, id) })
	case key.Matches(msg, confirmKeys.No):
		m.ctrl.CancelDelete()
	}
	return nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, searchKeys.Apply):
		m.searching = false
		m.search.Blur()
		q := m.search.Value()
		m.cursor = 0
		return m.do(func(ctx context.Context) { m.ctrl.SetSearch(ctx, q) })
	case key.Matches(msg, searchKeys.Cancel):
		m.searching = false
		m.search.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return cmd
}

// --- detail ---

func (m *Model) updateDetail(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, detailKeys.Quit):
		return tea.Quit
	case key.Matches(msg, detailKeys.Back):
		m.ctrl.Back()
		return nil
	case key.Matches(msg, detailKeys.Edit):
		if m.state.Selected != nil {
			m.ctrl.EditArticle(*m.state.Selected)
		}
		return nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return cmd
}

// --- form ---

func (m *Model) importAvailable() bool {
	return m.canImport && !m.state.EditMode()
}

func (m *Model) formKeyMap() formKeyMap {
	k := formKeys
	k.Import.SetEnabled(m.focus == fieldURL)
	return k
}

func (m *Model) focusField(f field) {
	m.focus = f
	m.title.Blur()
	m.content.Blur()
	m.url.Blur()
	switch f {
	case fieldTitle:
		m.title.Focus()
	case fieldContent:
		m.content.Focus()
	case fieldURL:
		m.url.Focus()
	}
}

func (m *Model) nextField() {
	next := m.focus + 1
	if next == fieldURL && !m.importAvailable() {
		next++
	}
	if next > fieldURL {
		next = fieldTitle
	}
	m.focusField(next)
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	if m.state.Submitting || m.state.Importing {
		return nil
	}
	keys := m.formKeyMap()
	switch {
	case key.Matches(msg, keys.Cancel):
		m.ctrl.Back()
		return nil
	case key.Matches(msg, keys.Save):
		return m.do(m.ctrl.Submit)
	case key.Matches(msg, keys.NextField):
		m.nextField()
		return nil
	case key.Matches(msg, keys.Import):
		u := m.url.Value()
		return m.do(func(ctx context.Context) { m.ctrl.ImportFromURL(ctx, u) })
	}
	return m.updateFocused(msg)
}

// updateFocused forwards msg to the focused widget and copies edits into the
// controller draft.
func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case fieldTitle:
		before := m.title.Value()
		m.title, cmd = m.title.Update(msg)
		if v := m.title.Value(); v != before {
			m.ctrl.SetTitle(v)
		}
	case fieldContent:
		before := m.content.Value()
		m.content, cmd = m.content.Update(msg)
		if v := m.content.Value(); v != before {
			m.ctrl.SetContent(v)
		}
	case fieldURL:
		m.url, cmd = m.url.Update(msg)
	}
	return cmd
}
