package types

import tea "github.com/charmbracelet/bubbletea"

// Mode represents an input mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeNewCustomer
	ModeRename
	ModeDeleteConfirm
)

// Tab identifies the list the operator is looking at
type Tab int

const (
	TabCustomers Tab = iota
	TabInvoices
)

func (t Tab) String() string {
	if t == TabInvoices {
		return "Invoices"
	}
	return "Customers"
}

// Action represents a command the model should execute
type Action interface {
	Type() string
}

// Context provides read-only access to model state needed for input handling
type Context interface {
	ActiveTab() Tab
	CurrentIndex() int
	TotalItems() int
	// SelectedKey returns the key of the selected row, "" when nothing is selected
	SelectedKey() string
	// SelectedLabel returns a short human readable name of the selected row
	SelectedLabel() string
	SearchQuery() string
}

// ModeHandler handles input for a specific mode
type ModeHandler interface {
	// HandleKey processes a key message and returns actions and whether to consume the event
	HandleKey(msg tea.KeyMsg, ctx Context) ([]Action, bool)

	// Enter is called when entering this mode
	Enter(ctx Context) []Action

	// Exit is called when leaving this mode
	Exit(ctx Context) []Action

	// Name returns the mode name for display
	Name() string
}
