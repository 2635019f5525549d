package views

import (
	"github.com/charmbracelet/lipgloss"

	"ledgergrip/internal/domain"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Tab           lipgloss.Style
	TabActive     lipgloss.Style
	Confirm       lipgloss.Style
	Prompt        lipgloss.Style
	Dim           lipgloss.Style
	Filter        lipgloss.Style
	Help          lipgloss.Style
	Main          lipgloss.Style
	Scroll        lipgloss.Style
	Highlight     lipgloss.Style
	Row           lipgloss.Style
	SelectedRow   lipgloss.Style
	Code          lipgloss.Style
	Overdue       lipgloss.Style
	PopupBox      lipgloss.Style
	StatusError   lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusLoading lipgloss.Style
	StatusSuccess lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Tab:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
		TabActive: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62")).Padding(0, 1),
		Confirm:   lipgloss.NewStyle().Bold(true),
		Prompt:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Dim:       lipgloss.NewStyle().Faint(true),
		Filter:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		Help:      lipgloss.NewStyle().Faint(true),
		Main: lipgloss.NewStyle().
			Padding(1, 2),
		Scroll:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Highlight:   lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		Row:         lipgloss.NewStyle(),
		SelectedRow: lipgloss.NewStyle().Background(lipgloss.Color("238")),
		Code:        lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		Overdue:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		PopupBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(1).
			BorderForeground(lipgloss.Color("241")),
		StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("51")),  // cyan
		StatusLoading: lipgloss.NewStyle().Foreground(lipgloss.Color("241")), // gray
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("78")),  // green
	}
}

// Notification returns the style for a status bar message of kind
func (s *Styles) Notification(kind domain.NotifyKind) lipgloss.Style {
	switch kind {
	case domain.NotifyError:
		return s.StatusError
	case domain.NotifySuccess:
		return s.StatusSuccess
	default:
		return s.StatusInfo
	}
}

// GetStatusColor returns the color for an invoice status
func GetStatusColor(status domain.InvoiceStatus) string {
	switch status {
	case domain.InvoiceStatusPaid:
		return "78" // green
	case domain.InvoiceStatusSent:
		return "33" // blue
	case domain.InvoiceStatusVoid:
		return "241" // gray
	default:
		return "214" // yellow for drafts
	}
}
