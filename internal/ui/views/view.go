package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"ledgergrip/internal/domain"
)

// Chrome is the number of terminal lines used around the list: padding,
// title, prompt, scroll indicators and footer.
const Chrome = 9

// ListHeight returns the number of list lines that fit a terminal of height
func ListHeight(height int) int {
	return max(height-Chrome, 1)
}

// ListState describes the visible part of the active list
type ListState struct {
	Name       string   // plural noun, e.g. "customers"
	Lines      []string // rendered lines of the viewport
	Count      int      // matching items
	Candidates int      // items before filtering
	Above      int      // rows above the first visible one
	Below      int      // rows below the last visible one
	Scroll     int
	Viewport   int
	TotalSize  int
	Query      string // raw query as typed
	Pending    bool   // the raw query has not settled yet
	Loading    bool
	Err        error
}

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width         int
	Height        int
	Tabs          []string
	ActiveTab     int
	List          ListState
	Prompt        string
	TextInput     string
	ConfirmTarget string
	StatusMessage string
	StatusKind    domain.NotifyKind
	HelpLine      string
	Popup         string
}

// Renderer handles all view rendering
type Renderer struct {
	styles *Styles
	rows   *RowRenderer
	popup  *PopupRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles: styles,
		rows:   NewRowRenderer(styles),
		popup:  NewPopupRenderer(styles),
	}
}

// Rows returns the row renderer sharing this renderer's styles
func (r *Renderer) Rows() *RowRenderer {
	return r.rows
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	termWidth := state.Width
	if termWidth <= 0 {
		termWidth = 80
	}
	content := &strings.Builder{}

	content.WriteString(r.renderTitle(state, termWidth-4))
	content.WriteString("\n\n")

	switch {
	case state.ConfirmTarget != "":
		content.WriteString(r.styles.Confirm.Render(fmt.Sprintf("Delete '%s'? (y/n): ", state.ConfirmTarget)))
	case state.Prompt != "":
		content.WriteString(r.styles.Prompt.Render(state.Prompt))
		content.WriteString(state.TextInput)
	}
	content.WriteString("\n")

	content.WriteString(r.renderList(state.List))

	// Push the footer to the bottom
	currentLines := strings.Count(content.String(), "\n") + 1
	availableLines := state.Height - 2
	if availableLines <= 0 {
		availableLines = 22
	}
	if paddingNeeded := availableLines - currentLines - 2; paddingNeeded > 0 {
		content.WriteString(strings.Repeat("\n", paddingNeeded))
	}
	content.WriteString("\n\n")
	content.WriteString(r.renderFooter(state, termWidth-4))

	mainStyle := r.styles.Main
	if state.Height > 0 {
		mainStyle = mainStyle.MaxHeight(state.Height)
	}
	finalContent := mainStyle.Render(content.String())

	if state.Popup != "" {
		return r.popup.RenderPopupOverlay(finalContent, state.Popup, state.Height, termWidth)
	}
	return finalContent
}

func (r *Renderer) renderTitle(state ViewState, width int) string {
	parts := []string{r.styles.Title.Render("ledgergrip"), " "}
	for i, name := range state.Tabs {
		if i == state.ActiveTab {
			parts = append(parts, r.styles.TabActive.Render(name))
		} else {
			parts = append(parts, r.styles.Tab.Render(name))
		}
	}
	left := strings.Join(parts, "")

	var indicators []string
	if state.List.Loading {
		spinner := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		frame := int(time.Now().UnixMilli()/80) % len(spinner)
		indicators = append(indicators, r.styles.Dim.Render(spinner[frame]+" Loading"))
	}
	if q := strings.TrimSpace(state.List.Query); q != "" {
		label := fmt.Sprintf("[Search: %s]", q)
		if state.List.Pending {
			label = fmt.Sprintf("[Search: %s…]", q)
		}
		indicators = append(indicators, r.styles.Filter.Render(label))
	}
	if len(indicators) == 0 {
		return left
	}

	right := strings.Join(indicators, "  ")
	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 2 {
		padding = 2
	}
	return left + strings.Repeat(" ", padding) + right
}

func (r *Renderer) renderList(list ListState) string {
	var lines []string

	if list.Count == 0 {
		lines = append(lines, "", r.styles.Dim.Render(emptyMessage(list)))
		return strings.Join(lines, "\n")
	}

	if list.Above > 0 {
		lines = append(lines, r.styles.Scroll.Render(fmt.Sprintf("↑ %d more above ↑", list.Above)))
	} else {
		lines = append(lines, "")
	}
	lines = append(lines, list.Lines...)
	if list.Below > 0 {
		lines = append(lines, r.styles.Scroll.Render(fmt.Sprintf("↓ %d more below ↓", list.Below)))
	}
	return strings.Join(lines, "\n")
}

func emptyMessage(list ListState) string {
	name := list.Name
	if name == "" {
		name = "records"
	}
	switch {
	case list.Err != nil:
		return fmt.Sprintf("Failed to load %s: %v", name, list.Err)
	case list.Loading && list.Candidates == 0:
		return fmt.Sprintf("Loading %s...", name)
	case strings.TrimSpace(list.Query) != "":
		return fmt.Sprintf("No %s match %q. Press esc to clear the search.", name, strings.TrimSpace(list.Query))
	default:
		return fmt.Sprintf("No %s yet.", name)
	}
}

func (r *Renderer) renderFooter(state ViewState, width int) string {
	var left string
	switch {
	case state.StatusMessage != "":
		left = r.styles.Notification(state.StatusKind).Render(state.StatusMessage)
	case state.HelpLine != "":
		left = r.styles.Help.Render(state.HelpLine)
	default:
		left = r.styles.Help.Render("Press ? for help")
	}

	right := r.styles.Dim.Render(Position(state.List))
	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 2 {
		padding = 2
	}
	return left + strings.Repeat(" ", padding) + right
}

// Position describes where the viewport is within the list, e.g.
// "1,204 of 10,000 · 12%"
func Position(list ListState) string {
	count := formatCount(list.Count)
	if list.Candidates != list.Count {
		count = fmt.Sprintf("%s of %s", count, formatCount(list.Candidates))
	}

	maxScroll := list.TotalSize - list.Viewport
	var where string
	switch {
	case list.Count == 0 || maxScroll <= 0:
		where = "All"
	case list.Scroll <= 0:
		where = "Top"
	case list.Scroll >= maxScroll:
		where = "Bot"
	default:
		where = fmt.Sprintf("%d%%", list.Scroll*100/maxScroll)
	}
	return fmt.Sprintf("%s %s · %s", count, list.Name, where)
}

// formatCount renders n with thousands separators
func formatCount(n int) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		return s
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}
