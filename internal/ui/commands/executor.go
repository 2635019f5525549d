package commands

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Executor handles command execution
type Executor struct {
	ctx *CommandContext
}

// NewExecutor creates a new command executor
func NewExecutor(ctx *CommandContext) *Executor {
	return &Executor{ctx: ctx}
}

// ExecuteCreateCustomer creates and executes a create command
func (e *Executor) ExecuteCreateCustomer(name string) tea.Cmd {
	return NewCreateCustomerCommand(e.ctx, name).Execute()
}

// ExecuteRename creates and executes a rename command
func (e *Executor) ExecuteRename(key, name string) tea.Cmd {
	return NewRenameCustomerCommand(e.ctx, key, name).Execute()
}

// ExecuteCycleStatus creates and executes a status command
func (e *Executor) ExecuteCycleStatus(key string) tea.Cmd {
	return NewCycleStatusCommand(e.ctx, key).Execute()
}

// ExecuteDeleteCustomer creates and executes a delete command for a customer
func (e *Executor) ExecuteDeleteCustomer(key string) tea.Cmd {
	return NewDeleteCommand(e.ctx, e.ctx.Customers, key).Execute()
}

// ExecuteDeleteInvoice creates and executes a delete command for an invoice
func (e *Executor) ExecuteDeleteInvoice(key string) tea.Cmd {
	return NewDeleteCommand(e.ctx, e.ctx.Invoices, key).Execute()
}

// ExecuteRefresh creates and executes a refresh command
func (e *Executor) ExecuteRefresh(list Refresher) tea.Cmd {
	return NewRefreshCommand(e.ctx, list).Execute()
}

// ExecuteRefreshAll refreshes every list concurrently
func (e *Executor) ExecuteRefreshAll(lists ...Refresher) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(lists))
	for _, list := range lists {
		cmds = append(cmds, e.ExecuteRefresh(list))
	}
	return tea.Batch(cmds...)
}
