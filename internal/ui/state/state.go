package state

import (
	"ledgergrip/internal/domain"
	"ledgergrip/internal/ui/input/types"
)

// AppState contains the screen state that is not owned by the list views
type AppState struct {
	ActiveTab types.Tab

	// Terminal size
	Width  int
	Height int

	// Status bar
	StatusMessage string
	StatusKind    domain.NotifyKind
	statusSeq     uint64

	// Popup shown when the external pager is unavailable
	Popup string

	// InPagerMode is set while an external pager owns the terminal
	InPagerMode bool
}

// NewAppState creates a new application state
func NewAppState() *AppState {
	return &AppState{ActiveTab: types.TabCustomers}
}

// SetStatus shows message in the status bar and returns its sequence
// number for ClearStatus
func (s *AppState) SetStatus(kind domain.NotifyKind, message string) uint64 {
	s.statusSeq++
	s.StatusKind = kind
	s.StatusMessage = message
	return s.statusSeq
}

// ClearStatus removes the status message if it is still the one numbered
// seq. A newer message stays visible.
func (s *AppState) ClearStatus(seq uint64) bool {
	if seq != s.statusSeq {
		return false
	}
	s.StatusMessage = ""
	s.StatusKind = ""
	return true
}

// SwitchTab moves to the next list
func (s *AppState) SwitchTab() {
	if s.ActiveTab == types.TabCustomers {
		s.ActiveTab = types.TabInvoices
	} else {
		s.ActiveTab = types.TabCustomers
	}
}

// ShowPopup opens a popup with content; an empty string closes it
func (s *AppState) ShowPopup(content string) {
	s.Popup = content
}
