package model

import (
	"github.com/araddon/dateparse"
)

// PageSizes are the page sizes the dashboard offers.
var PageSizes = []int{5, 10, 25}

const DefaultPageSize = 10

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// RowNumber is the 1-based position of the row at index on page, continuous
// across pages.
func RowNumber(page, pageSize, index int) int {
	return (page-1)*pageSize + index + 1
}

// ArticleRow is an Article shaped for the list table.
type ArticleRow struct {
	No      int
	ID      int
	Title   string
	Excerpt string
	Date    string
}

// NewArticleRows converts the cached page into table rows.
func NewArticleRows(articles []Article, page, pageSize int) []ArticleRow {
	rows := make([]ArticleRow, len(articles))
	for i, a := range articles {
		rows[i] = ArticleRow{
			No:      RowNumber(page, pageSize, i),
			ID:      a.ID,
			Title:   a.Title,
			Excerpt: a.Excerpt(80),
			Date:    FormatDate(a.CreatedAt),
		}
	}
	return rows
}

// Pagination describes the page controls under the list.
type Pagination struct {
	Current      int
	Total        int
	Pages        []int
	PrevDisabled bool
	NextDisabled bool
}

// MaxPageControls bounds how many numbered page controls are rendered.
const MaxPageControls = 50

// NewPagination renders one control per page from 1 to total. Past
// MaxPageControls pages only a window around current is rendered.
func NewPagination(current, total int) Pagination {
	p := Pagination{
		Current:      current,
		Total:        total,
		PrevDisabled: current <= 1,
		NextDisabled: current >= total,
	}
	first, last := 1, total
	if total > MaxPageControls {
		first = max(current-MaxPageControls/2, 1)
		last = first + MaxPageControls - 1
		if last > total {
			last = total
			first = last - MaxPageControls + 1
		}
	}
	if last >= first {
		p.Pages = make([]int, 0, last-first+1)
	}
	for i := first; i <= last; i++ {
		p.Pages = append(p.Pages, i)
	}
	return p
}

// FormatDate renders a created_at value as "02 Jan 2006". Values that cannot
// be parsed are returned unchanged.
func FormatDate(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return raw
	}
	return t.Format("02 Jan 2006")
}
