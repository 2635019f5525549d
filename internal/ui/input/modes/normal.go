package modes

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"ledgergrip/internal/ui/input/types"
)

type NormalMode struct {
	lastKeyWasG bool
	lastGTime   time.Time
}

func NewNormalMode() *NormalMode {
	return &NormalMode{}
}

func (m *NormalMode) Name() string {
	return "normal"
}

func (m *NormalMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) Exit(ctx types.Context) []types.Action {
	m.lastKeyWasG = false
	return nil
}

func (m *NormalMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return []types.Action{types.QuitAction{Force: true}}, true

	case tea.KeyUp:
		return []types.Action{types.NavigateAction{Direction: "up"}}, true

	case tea.KeyDown:
		return []types.Action{types.NavigateAction{Direction: "down"}}, true

	case tea.KeyPgUp:
		return []types.Action{types.NavigateAction{Direction: "pageup"}}, true

	case tea.KeyPgDown:
		return []types.Action{types.NavigateAction{Direction: "pagedown"}}, true

	case tea.KeyHome:
		return []types.Action{types.NavigateAction{Direction: "home"}}, true

	case tea.KeyEnd:
		return []types.Action{types.NavigateAction{Direction: "end"}}, true

	case tea.KeyTab:
		return []types.Action{types.SwitchTabAction{}}, true

	case tea.KeyEsc:
		if ctx.SearchQuery() != "" {
			return []types.Action{types.ClearSearchAction{}}, true
		}
		return nil, true

	case tea.KeyEnter:
		if ctx.SelectedKey() != "" {
			return []types.Action{types.OpenDetailsAction{}}, true
		}
		return nil, false
	}

	key := msg.String()
	if key != "g" {
		m.lastKeyWasG = false
	}

	switch key {
	case "j":
		return []types.Action{types.NavigateAction{Direction: "down"}}, true

	case "k":
		return []types.Action{types.NavigateAction{Direction: "up"}}, true

	case "ctrl+d":
		return []types.Action{types.NavigateAction{Direction: "pagedown"}}, true

	case "ctrl+u":
		return []types.Action{types.NavigateAction{Direction: "pageup"}}, true

	case "/":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeSearch, Data: ctx.SearchQuery()}}, true

	case "n":
		// New records are entered on the customer list only
		if ctx.ActiveTab() == types.TabCustomers {
			return []types.Action{types.ChangeModeAction{Mode: types.ModeNewCustomer}}, true
		}
		return nil, true

	case "e":
		if ctx.ActiveTab() == types.TabCustomers && ctx.SelectedKey() != "" {
			return []types.Action{types.ChangeModeAction{Mode: types.ModeRename, Data: ctx.SelectedLabel()}}, true
		}
		return nil, true

	case "p":
		if ctx.ActiveTab() == types.TabInvoices && ctx.SelectedKey() != "" {
			return []types.Action{types.CycleStatusAction{}}, true
		}
		return nil, true

	case "d":
		if ctx.SelectedKey() != "" {
			return []types.Action{types.ChangeModeAction{Mode: types.ModeDeleteConfirm}}, true
		}
		return nil, true

	case "r":
		return []types.Action{types.RefreshAction{}}, true

	case "i":
		if ctx.SelectedKey() != "" {
			return []types.Action{types.OpenDetailsAction{}}, true
		}
		return nil, true

	case "?":
		return []types.Action{types.ToggleHelpAction{}}, true

	case "q":
		return []types.Action{types.QuitAction{Force: false}}, true

	case "g":
		if m.lastKeyWasG && time.Since(m.lastGTime) < 500*time.Millisecond {
			// gg - go to top
			m.lastKeyWasG = false
			return []types.Action{types.NavigateAction{Direction: "home"}}, true
		}
		// First g, wait for next key
		m.lastKeyWasG = true
		m.lastGTime = time.Now()
		return nil, true

	case "G":
		return []types.Action{types.NavigateAction{Direction: "end"}}, true
	}

	return nil, false
}
