package tui

import "github.com/charmbracelet/bubbles/key"

type listKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	View    key.Binding
	Edit    key.Binding
	Add     key.Binding
	Delete  key.Binding
	Search  key.Binding
	Prev    key.Binding
	Next    key.Binding
	Bigger  key.Binding
	Smaller key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func (k listKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.View, k.Edit, k.Add, k.Delete, k.Search, k.Prev, k.Next, k.Bigger, k.Quit}
}

func (k listKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.View},
		{k.Edit, k.Add, k.Delete},
		{k.Search, k.Prev, k.Next, k.Bigger, k.Smaller},
		{k.Refresh, k.Quit},
	}
}

var listKeys = listKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	View:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view")),
	Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Prev:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev page")),
	Next:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next page")),
	Bigger:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "page size")),
	Smaller: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "smaller pages")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
}

type confirmKeyMap struct {
	Yes key.Binding
	No  key.Binding
}

func (k confirmKeyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Yes, k.No} }
func (k confirmKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var confirmKeys = confirmKeyMap{
	Yes: key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "delete")),
	No:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "cancel")),
}

type searchKeyMap struct {
	Apply  key.Binding
	Cancel key.Binding
}

func (k searchKeyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Apply, k.Cancel} }
func (k searchKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var searchKeys = searchKeyMap{
	Apply:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "search")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}

type detailKeyMap struct {
	Back   key.Binding
	Edit   key.Binding
	Scroll key.Binding
	Quit   key.Binding
}

func (k detailKeyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Back, k.Edit, k.Scroll, k.Quit} }
func (k detailKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var detailKeys = detailKeyMap{
	Back:   key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
	Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Scroll: key.NewBinding(key.WithKeys("up", "down", "pgup", "pgdown"), key.WithHelp("↑/↓", "scroll")),
	Quit:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
}

type formKeyMap struct {
	NextField key.Binding
	Save      key.Binding
	Import    key.Binding
	Cancel    key.Binding
}

func (k formKeyMap) ShortHelp() []key.Binding  { return []key.Binding{k.NextField, k.Save, k.Import, k.Cancel} }
func (k formKeyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var formKeys = formKeyMap{
	NextField: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	Import:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "import url"), key.WithDisabled()),
	Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}

var forceQuit = key.NewBinding(key.WithKeys("ctrl+c"))
