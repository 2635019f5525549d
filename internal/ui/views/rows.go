package views

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"ledgergrip/internal/domain"
	"ledgergrip/internal/listview"
)

// Highlighter returns the spans of text, the value of field, matched by the
// current query
type Highlighter func(field, text string) [][2]int

// cell is one column of a row line. A zero width takes what is left.
type cell struct {
	text  string
	field string
	width int
	right bool
	style *lipgloss.Style
}

// RowRenderer renders customer and invoice rows
type RowRenderer struct {
	styles     *Styles
	now        func() time.Time
	showTotals bool
}

// NewRowRenderer creates a row renderer
func NewRowRenderer(styles *Styles) *RowRenderer {
	return &RowRenderer{styles: styles, now: time.Now, showTotals: true}
}

// SetShowTotals toggles the total column of invoice rows
func (r *RowRenderer) SetShowTotals(show bool) {
	r.showTotals = show
}

// Customer renders a one line customer row
func (r *RowRenderer) Customer(row listview.Row[domain.Customer], hl Highlighter, width int) []string {
	c := row.Item
	code := c.Code
	if code == "" {
		code = "(saving)"
	}
	return []string{r.line(row.Selected, hl, width,
		cell{text: code, field: "code", width: 11, style: &r.styles.Code},
		cell{text: c.Name, field: "name", width: 24},
		cell{text: c.Email, field: "email", width: 30},
		cell{text: c.Phone, field: "phone", width: 16},
		cell{text: c.Company, field: "company"},
	)}
}

// Invoice renders an invoice as a summary line and a detail line
func (r *RowRenderer) Invoice(row listview.Row[domain.Invoice], hl Highlighter, width int) []string {
	inv := row.Item
	number := inv.Number
	if number == "" {
		number = "(saving)"
	}
	status := lipgloss.NewStyle().Foreground(lipgloss.Color(GetStatusColor(inv.Status)))

	cells := []cell{
		{text: number, field: "number", width: 11, style: &r.styles.Code},
		{text: inv.CustomerName, field: "customer", width: 24},
		{text: string(inv.Status), field: "status", width: 6, style: &status},
	}
	if r.showTotals {
		cells = append(cells, cell{text: inv.Total().StringFixed(2), width: 12, right: true})
	}
	if inv.IsOverdue(r.now()) {
		cells = append(cells, cell{text: "  overdue", style: &r.styles.Overdue})
	}
	lines := []string{r.line(row.Selected, hl, width, cells...)}

	detail := fmt.Sprintf("issued %s · due %s · %d %s",
		inv.IssuedAt.Format(time.DateOnly), inv.DueAt.Format(time.DateOnly),
		len(inv.Lines), plural(len(inv.Lines), "line", "lines"))
	details := []cell{{text: detail, width: utf8.RuneCountInString(detail), style: &r.styles.Dim}}
	if inv.Notes != "" {
		details = append(details,
			cell{text: " · ", width: 3, style: &r.styles.Dim},
			cell{text: inv.Notes, field: "notes"})
	}
	lines = append(lines, r.line(row.Selected, hl, width, append([]cell{{text: "", width: 11}}, details...)...))
	return lines
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// line lays out cells left to right, cutting them at width
func (r *RowRenderer) line(selected bool, hl Highlighter, width int, cells ...cell) string {
	base := r.styles.Row
	marker := "  "
	if selected {
		base = r.styles.SelectedRow
		marker = "▸ "
	}
	hlStyle := r.styles.Highlight.Inherit(base)

	var b strings.Builder
	b.WriteString(base.Render(marker))
	remaining := width - 2
	for i, c := range cells {
		if remaining <= 0 {
			break
		}
		w := c.width
		if w <= 0 || w > remaining {
			w = remaining
		}
		style := base
		if c.style != nil {
			style = c.style.Inherit(base)
		}

		text := truncate(c.text, w)
		var spans [][2]int
		if hl != nil && c.field != "" {
			spans = hl(c.field, text)
		}
		pad := w - utf8.RuneCountInString(text)
		if c.right && pad > 0 {
			b.WriteString(base.Render(strings.Repeat(" ", pad)))
			pad = 0
		}
		b.WriteString(Highlight(text, spans, style, hlStyle))
		if pad > 0 && i < len(cells)-1 {
			b.WriteString(base.Render(strings.Repeat(" ", pad)))
		}
		remaining -= w
		if i < len(cells)-1 && remaining > 0 && c.width > 0 {
			b.WriteString(base.Render(" "))
			remaining--
		}
	}
	return b.String()
}

// truncate cuts s to at most n runes, marking the cut with an ellipsis
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}

// Highlight renders text with the given byte spans in hl and the rest in base
func Highlight(text string, spans [][2]int, base, hl lipgloss.Style) string {
	if len(spans) == 0 {
		return base.Render(text)
	}

	var b strings.Builder
	pos := 0
	for _, sp := range spans {
		start, end := sp[0], min(sp[1], len(text))
		if start < pos || start >= end {
			continue
		}
		if start > pos {
			b.WriteString(base.Render(text[pos:start]))
		}
		b.WriteString(hl.Render(text[start:end]))
		pos = end
	}
	if pos < len(text) {
		b.WriteString(base.Render(text[pos:]))
	}
	return b.String()
}

// Clip turns the visible rows into the lines of the viewport. Rows cut by
// the top or bottom edge contribute only their visible lines; rows whose
// rendering is shorter than their size are padded with blank lines.
func Clip[T listview.Item](rows []listview.Row[T], scroll, viewport int, render func(listview.Row[T]) []string) []string {
	lines := make([]string, 0, viewport)
	bottom := scroll + viewport
	for _, row := range rows {
		rendered := render(row)
		for i := 0; i < row.Size; i++ {
			y := row.Start + i
			if y < scroll {
				continue
			}
			if y >= bottom {
				return lines
			}
			if i < len(rendered) {
				lines = append(lines, rendered[i])
			} else {
				lines = append(lines, "")
			}
		}
	}
	return lines
}
