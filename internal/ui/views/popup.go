package views

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PopupRenderer handles popup/modal rendering
type PopupRenderer struct {
	styles *Styles
}

// NewPopupRenderer creates a new popup renderer
func NewPopupRenderer(styles *Styles) *PopupRenderer {
	return &PopupRenderer{
		styles: styles,
	}
}

// RenderPopupOverlay renders popup content centered over a greyed out copy
// of the main content
func (pr *PopupRenderer) RenderPopupOverlay(mainContent, popupContent string, height, width int) string {
	styledPopup := pr.styles.PopupBox.MaxWidth(max(width-6, 10)).Render(popupContent)
	if height <= 0 {
		height = lipgloss.Height(mainContent)
	}

	base := strings.Split(desaturateANSI(mainContent), "\n")
	for len(base) < height {
		base = append(base, "")
	}

	popupLines := strings.Split(styledPopup, "\n")
	if len(popupLines) > height-2 && height > 2 {
		popupLines = popupLines[:height-2]
	}
	top := max((height-len(popupLines))/2, 0)
	left := max((width-lipgloss.Width(styledPopup))/2, 0)
	indent := strings.Repeat(" ", left)

	// Modal lines replace whole base lines; the sides stay blank
	for i, line := range popupLines {
		if top+i < len(base) {
			base[top+i] = indent + line
		}
	}
	return strings.Join(base[:height], "\n")
}

// ANSI escape sequence regex to strip styles/colors
var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// desaturateANSI strips ANSI color/style codes and recolors text dim gray
func desaturateANSI(s string) string {
	lines := strings.Split(ansiRE.ReplaceAllString(s, ""), "\n")
	grey := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	for i, line := range lines {
		lines[i] = grey.Render(line)
	}
	return strings.Join(lines, "\n")
}
