package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"ledgergrip/internal/ui/input/types"
)

type ConfirmMode struct {
	key   string
	label string
}

func NewConfirmMode() *ConfirmMode {
	return &ConfirmMode{}
}

func (m *ConfirmMode) Name() string {
	return "delete-confirm"
}

// Target returns the label of the row awaiting confirmation
func (m *ConfirmMode) Target() string {
	return m.label
}

func (m *ConfirmMode) Enter(ctx types.Context) []types.Action {
	// Remember the row now; the selection may move while the prompt is open
	m.key = ctx.SelectedKey()
	m.label = ctx.SelectedLabel()
	return nil
}

func (m *ConfirmMode) Exit(ctx types.Context) []types.Action {
	m.key = ""
	m.label = ""
	return nil
}

func (m *ConfirmMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{Force: true}}, true
	case "esc", "n", "N":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeNormal}}, true
	case "y", "Y":
		if m.key == "" {
			return []types.Action{types.ChangeModeAction{Mode: types.ModeNormal}}, true
		}
		return []types.Action{
			types.DeleteAction{Key: m.key},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	}

	// Swallow everything else while the prompt is open
	return nil, true
}
