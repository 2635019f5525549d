package modes

import (
	"github.com/charmbracelet/bubbles/textinput"

	"ledgergrip/internal/ui/input/types"
)

type NewCustomerMode struct {
	TextInputMode
}

func NewNewCustomerMode(ti *textinput.Model) *NewCustomerMode {
	return &NewCustomerMode{
		TextInputMode: NewTextInputMode(types.ModeNewCustomer, "new-customer", "New customer name: ", ti),
	}
}
