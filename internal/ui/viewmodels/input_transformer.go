package viewmodels

import (
	"ledgergrip/internal/ui/input"
	"ledgergrip/internal/ui/input/types"
)

// InputTransformer exposes the input handler's prompt state to the view
type InputTransformer struct {
	handler *input.Handler
}

// NewInputTransformer creates a new input transformer
func NewInputTransformer(handler *input.Handler) *InputTransformer {
	return &InputTransformer{handler: handler}
}

// GetPrompt returns the label of the active text prompt
func (it *InputTransformer) GetPrompt() string {
	if it.handler == nil || it.handler.CurrentMode() == types.ModeNormal {
		return ""
	}
	return it.handler.Prompt()
}

// GetInputText returns the rendered text input of the active prompt
func (it *InputTransformer) GetInputText() string {
	if it.handler == nil {
		return ""
	}
	if ti := it.handler.TextInput(); ti != nil {
		return ti.View()
	}
	return ""
}

// GetConfirmTarget returns the row a delete prompt is asking about
func (it *InputTransformer) GetConfirmTarget() string {
	if it.handler == nil {
		return ""
	}
	return it.handler.ConfirmTarget()
}
