package ui

import (
	"ledgergrip/internal/ui/input/types"
)

// modelContext exposes the active list to the input modes
type modelContext struct {
	m *Model
}

func (c modelContext) ActiveTab() types.Tab { return c.m.state.ActiveTab }

func (c modelContext) CurrentIndex() int { return c.m.active().SelectedIndex() }

func (c modelContext) TotalItems() int { return c.m.active().Len() }

func (c modelContext) SelectedKey() string {
	key, _ := c.m.selected()
	return key
}

func (c modelContext) SelectedLabel() string {
	_, label := c.m.selected()
	return label
}

func (c modelContext) SearchQuery() string {
	raw, _ := c.m.active().Query()
	return raw
}

var _ types.Context = modelContext{}
