package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
)

// ModelRow is one line of the local model listing.
type ModelRow struct {
	Repo     string
	Tag      string
	Size     int64
	Modified string
}

type modelColumn struct {
	header string
	width  int
	align  lipgloss.Position
	value  func(ModelRow) string
}

// Widths are in terminal cells and include the two-cell gap after each column.
var modelColumns = []modelColumn{
	{"NAME", 34, lipgloss.Left, func(r ModelRow) string { return r.Repo }},
	{"TAG", 18, lipgloss.Left, func(r ModelRow) string { return r.Tag }},
	{"SIZE", 12, lipgloss.Right, func(r ModelRow) string { return FormatBytes(r.Size) }},
	{"MODIFIED", 12, lipgloss.Left, func(r ModelRow) string { return r.Modified }},
}

const columnGap = 2

// ModelTable lists local models in fixed-width, borderless columns.
type ModelTable struct {
	rows   []ModelRow
	total  int64
	indent int
}

func NewModelTable() *ModelTable {
	return &ModelTable{indent: 2}
}

// Indent sets the left indentation for the table.
func (t *ModelTable) Indent(spaces int) *ModelTable {
	t.indent = spaces
	return t
}

func (t *ModelTable) Add(row ModelRow) *ModelTable {
	t.rows = append(t.rows, row)
	t.total += row.Size
	return t
}

func (t *ModelTable) Len() int {
	return len(t.rows)
}

// TotalSize is the sum of all row sizes in bytes.
func (t *ModelTable) TotalSize() int64 {
	return t.total
}

// Render returns the table with a trailing newline, or "" when it has no rows.
func (t *ModelTable) Render() string {
	if len(t.rows) == 0 {
		return ""
	}

	headers := make([]string, len(modelColumns))
	for i, col := range modelColumns {
		headers[i] = col.header
	}

	tbl := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		Wrap(false).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			c := modelColumns[col]
			style := lipgloss.NewStyle().Width(c.width).PaddingRight(columnGap).Align(c.align)
			if row == table.HeaderRow {
				return style.Inherit(headerStyle)
			}
			return style
		})

	for _, r := range t.rows {
		cells := make([]string, len(modelColumns))
		for i, col := range modelColumns {
			cells[i] = fitCell(col.value(r), col.width-columnGap)
		}
		tbl.Row(cells...)
	}

	out := lipgloss.NewStyle().MarginLeft(t.indent).Render(tbl.String())
	return strings.TrimRight(out, "\n") + "\n"
}

func (t *ModelTable) String() string {
	return t.Render()
}

// fitCell truncates value to width terminal cells, marking the cut with an
// ellipsis when there is room for one.
func fitCell(value string, width int) string {
	if ansi.StringWidth(value) <= width {
		return value
	}
	tail := "..."
	if width <= len(tail) {
		tail = ""
	}
	return ansi.Truncate(value, width, tail)
}
