package viewmodels

import (
	"github.com/charmbracelet/bubbles/help"

	"ledgergrip/internal/listview"
	"ledgergrip/internal/ui/input"
	"ledgergrip/internal/ui/input/types"
	"ledgergrip/internal/ui/state"
	"ledgergrip/internal/ui/views"
)

// ViewModel transforms application state into view-ready data
type ViewModel struct {
	state            *state.AppState
	help             help.Model
	keys             help.KeyMap
	inputTransformer *InputTransformer
}

// NewViewModel creates a new view model
func NewViewModel(appState *state.AppState, handler *input.Handler, keys help.KeyMap) *ViewModel {
	return &ViewModel{
		state:            appState,
		help:             help.New(),
		keys:             keys,
		inputTransformer: NewInputTransformer(handler),
	}
}

// BuildViewState creates a ViewState for rendering the given list
func (vm *ViewModel) BuildViewState(list views.ListState) views.ViewState {
	vm.help.Width = vm.state.Width

	var helpLine string
	if vm.keys != nil {
		helpLine = vm.help.ShortHelpView(vm.keys.ShortHelp())
	}

	return views.ViewState{
		Width:         vm.state.Width,
		Height:        vm.state.Height,
		Tabs:          []string{types.TabCustomers.String(), types.TabInvoices.String()},
		ActiveTab:     int(vm.state.ActiveTab),
		List:          list,
		Prompt:        vm.inputTransformer.GetPrompt(),
		TextInput:     vm.inputTransformer.GetInputText(),
		ConfirmTarget: vm.inputTransformer.GetConfirmTarget(),
		StatusMessage: vm.state.StatusMessage,
		StatusKind:    vm.state.StatusKind,
		HelpLine:      helpLine,
		Popup:         vm.state.Popup,
	}
}

// BuildList renders the visible rows of v into a ListState
func BuildList[T listview.Item](v *listview.View[T], name string, render func(listview.Row[T]) []string) views.ListState {
	rows := v.Visible()
	scroll, viewport := v.Scroll()
	count := v.Len()

	var above, below int
	if len(rows) > 0 {
		above = rows[0].Index
		below = count - rows[len(rows)-1].Index - 1
	}
	raw, _ := v.Query()
	loading, err := v.Status()

	return views.ListState{
		Name:       name,
		Lines:      views.Clip(rows, scroll, viewport, render),
		Count:      count,
		Candidates: len(v.Candidates()),
		Above:      above,
		Below:      below,
		Scroll:     scroll,
		Viewport:   viewport,
		TotalSize:  v.TotalSize(),
		Query:      raw,
		Pending:    v.QueryPending(),
		Loading:    loading,
		Err:        err,
	}
}
