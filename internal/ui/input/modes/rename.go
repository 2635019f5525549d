package modes

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"ledgergrip/internal/ui/input/types"
)

type RenameMode struct {
	textInput *textinput.Model
	key       string
	oldName   string
}

func NewRenameMode(ti *textinput.Model) *RenameMode {
	return &RenameMode{
		textInput: ti,
	}
}

func (m *RenameMode) Name() string {
	return "rename"
}

func (m *RenameMode) Prompt() string {
	return "Rename customer: "
}

func (m *RenameMode) Enter(ctx types.Context) []types.Action {
	m.key = ctx.SelectedKey()
	m.oldName = ctx.SelectedLabel()
	if m.textInput != nil {
		m.textInput.Prompt = ""
		m.textInput.SetValue(m.oldName)
		m.textInput.CursorEnd()
	}
	return nil
}

func (m *RenameMode) Exit(ctx types.Context) []types.Action {
	if m.textInput != nil {
		m.textInput.Blur()
		m.textInput.Reset()
	}
	m.key = ""
	m.oldName = ""
	return nil
}

func (m *RenameMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{Force: true}}, true

	case "esc":
		return []types.Action{
			types.CancelTextAction{Mode: types.ModeRename},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true

	case "enter":
		newName := ""
		if m.textInput != nil {
			newName = strings.TrimSpace(m.textInput.Value())
		}

		// Only rename if the name changed and is not empty
		if newName != "" && newName != m.oldName && m.key != "" {
			return []types.Action{
				types.RenameAction{Key: m.key, Name: newName},
				types.ChangeModeAction{Mode: types.ModeNormal},
			}, true
		}

		return []types.Action{
			types.CancelTextAction{Mode: types.ModeRename},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true

	default:
		return nil, false
	}
}
