package tui

import (
	"fmt"
	"strconv"
	"strings"

	"articledash/internal/model"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

func (m *Model) View() string {
	st := m.state

	var body string
	var keys help.KeyMap
	switch {
	case st.View == model.ViewDetail:
		body, keys = m.viewDetail(), detailKeys
	case st.View.IsForm():
		body, keys = m.viewForm(), m.formKeyMap()
	case m.searching:
		body, keys = m.viewList(), searchKeys
	case st.DeleteTarget != nil:
		body, keys = m.viewList(), confirmKeys
	default:
		body, keys = m.viewList(), listKeys
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewTabs(),
		m.viewStatus(),
		body,
		HelpStyle.Render(m.help.View(keys)),
	)
}

func (m *Model) viewTabs() string {
	list, form := TabStyle, TabStyle
	if m.state.View.IsForm() {
		form = ActiveTabStyle
	} else {
		list = ActiveTabStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		list.Render("Article"),
		form.Render("Add / Edit"),
	) + "\n"
}

func (m *Model) viewStatus() string {
	s := m.state.Status
	if !s.Visible() {
		return ""
	}
	if s.Kind == model.StatusError {
		return ErrorBannerStyle.Render("✗ "+s.Text) + "\n"
	}
	return SuccessBannerStyle.Render("✓ "+s.Text) + "\n"
}

const (
	colNo      = 4
	colTitle   = 24
	colExcerpt = 36
	colDate    = 12
)

func (m *Model) viewList() string {
	st := m.state
	var b strings.Builder

	if m.searching {
		b.WriteString(m.search.View())
	} else if st.Search != "" {
		b.WriteString(MutedStyle.Render("Search: " + st.Search))
	} else {
		b.WriteString(MutedStyle.Render("Press / to search"))
	}
	b.WriteString("\n\n")

	b.WriteString(HeaderStyle.Render(row("No", "Title", "Content", "Created")))
	b.WriteString("\n")

	rows := st.Rows()
	switch {
	case st.Loading && len(rows) == 0:
		b.WriteString(MutedStyle.Render("Loading..."))
		b.WriteString("\n")
	case len(rows) == 0:
		b.WriteString(MutedStyle.Render("No articles found"))
		b.WriteString("\n")
	default:
		for i, r := range rows {
			line := row(strconv.Itoa(r.No), r.Title, r.Excerpt, r.Date)
			if i == m.cursor {
				line = SelectedRowStyle.Render("› " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.viewPager())

	if st.DeleteTarget != nil {
		msg := "Are you sure you want to delete it? You can't undo this action."
		if st.Deleting {
			msg = "Deleting..."
		}
		b.WriteString("\n\n")
		b.WriteString(DialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			FieldErrorStyle.Bold(true).Render("Delete Article"),
			"",
			msg,
		)))
	}
	return b.String()
}

func (m *Model) viewPager() string {
	p := m.state.Pagination()
	parts := make([]string, 0, len(p.Pages)+2)

	prev := "‹"
	if p.PrevDisabled {
		prev = MutedStyle.Render(prev)
	}
	parts = append(parts, prev)
	for _, n := range p.Pages {
		if n == p.Current {
			parts = append(parts, SelectedRowStyle.Render(fmt.Sprintf("[%d]", n)))
		} else {
			parts = append(parts, strconv.Itoa(n))
		}
	}
	next := "›"
	if p.NextDisabled {
		next = MutedStyle.Render(next)
	}
	parts = append(parts, next)

	return strings.Join(parts, " ") + MutedStyle.Render(fmt.Sprintf("   %d per page", m.state.PageSize))
}

func (m *Model) viewDetail() string {
	a := m.state.Selected
	if a == nil {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render("Title"),
		a.Title,
		"",
		TitleStyle.Render("Content"),
		m.detail.View(),
		"",
		TitleStyle.Render("Created At"),
		model.FormatDate(a.CreatedAt),
	)
}

func (m *Model) viewForm() string {
	st := m.state
	heading := "Add Article"
	if st.EditMode() {
		heading = "Edit Article"
	}

	lines := []string{TitleStyle.Render(heading), ""}

	if m.importAvailable() {
		label := "Import from URL"
		if st.Importing {
			label = "Importing..."
		}
		lines = append(lines, HeaderStyle.Render(label), m.url.View(), "")
	}

	lines = append(lines, HeaderStyle.Render("Title"), m.title.View())
	if msg := st.Form.Errors["title"]; msg != "" {
		lines = append(lines, FieldErrorStyle.Render(msg))
	}
	lines = append(lines, "", HeaderStyle.Render("Content"), m.content.View())
	if msg := st.Form.Errors["content"]; msg != "" {
		lines = append(lines, FieldErrorStyle.Render(msg))
	}
	if st.Submitting {
		lines = append(lines, "", MutedStyle.Render("Saving..."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func row(no, title, excerpt, date string) string {
	return pad(no, colNo) + " " + pad(title, colTitle) + " " + pad(excerpt, colExcerpt) + " " + pad(date, colDate)
}

// pad clips s to n runes and right-pads it with spaces.
func pad(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s + strings.Repeat(" ", n-len(r))
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}
