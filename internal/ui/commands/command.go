package commands

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ledgergrip/internal/domain"
	"ledgergrip/internal/listview"
	"ledgergrip/internal/listview/cache"
)

// DefaultTimeout bounds a single mutation or refresh
const DefaultTimeout = 30 * time.Second

// Op names the operation a ResultMsg reports on
type Op string

const (
	OpCreate  Op = "create"
	OpRename  Op = "rename"
	OpStatus  Op = "status"
	OpDelete  Op = "delete"
	OpRefresh Op = "refresh"
)

// ResultMsg reports the outcome of a command. Failures have already been
// announced to the operator through the coordinator's notifier.
type ResultMsg struct {
	Op       Op
	Resource string
	Key      string
	Err      error
}

// Command represents an executable action
type Command interface {
	Execute() tea.Cmd
}

// Refresher reloads one list from its source
type Refresher interface {
	Resource() string
	Refresh(ctx context.Context) error
}

// CommandContext provides context for command execution
type CommandContext struct {
	Ctx       context.Context
	Customers *cache.Coordinator[domain.Customer]
	Invoices  *cache.Coordinator[domain.Invoice]
	Logger    *zap.Logger
	Timeout   time.Duration
}

func (c *CommandContext) run(op Op, resource, key string, fn func(ctx context.Context) (string, error)) tea.Cmd {
	return func() tea.Msg {
		parent := c.Ctx
		if parent == nil {
			parent = context.Background()
		}
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		ctx, cancel := context.WithTimeout(parent, timeout)
		defer cancel()

		resultKey, err := fn(ctx)
		if resultKey == "" {
			resultKey = key
		}
		if err != nil && c.Logger != nil {
			c.Logger.Debug("command failed",
				zap.String("op", string(op)),
				zap.String("resource", resource),
				zap.String("key", resultKey),
				zap.Error(err))
		}
		return ResultMsg{Op: op, Resource: resource, Key: resultKey, Err: err}
	}
}

// CreateCustomerCommand adds a customer optimistically
type CreateCustomerCommand struct {
	ctx  *CommandContext
	name string
}

// NewCreateCustomerCommand creates a new create command
func NewCreateCustomerCommand(ctx *CommandContext, name string) *CreateCustomerCommand {
	return &CreateCustomerCommand{ctx: ctx, name: name}
}

// Execute inserts a provisional customer under a temporary id; the store
// replaces it with the saved record
func (c *CreateCustomerCommand) Execute() tea.Cmd {
	draft := domain.Customer{ID: uuid.New(), Name: c.name}
	return c.ctx.run(OpCreate, domain.ResourceCustomers, draft.Key(), func(ctx context.Context) (string, error) {
		created, err := c.ctx.Customers.Create(ctx, draft)
		if err != nil {
			return "", err
		}
		return created.Key(), nil
	})
}

// RenameCustomerCommand changes the name of a customer
type RenameCustomerCommand struct {
	ctx  *CommandContext
	key  string
	name string
}

// NewRenameCustomerCommand creates a new rename command
func NewRenameCustomerCommand(ctx *CommandContext, key, name string) *RenameCustomerCommand {
	return &RenameCustomerCommand{ctx: ctx, key: key, name: name}
}

// Execute performs the rename
func (c *RenameCustomerCommand) Execute() tea.Cmd {
	return c.ctx.run(OpRename, domain.ResourceCustomers, c.key, func(ctx context.Context) (string, error) {
		_, err := c.ctx.Customers.Update(ctx, c.key, func(cust domain.Customer) domain.Customer {
			cust.Name = c.name
			return cust
		})
		return "", err
	})
}

// CycleStatusCommand advances an invoice to its next status
type CycleStatusCommand struct {
	ctx *CommandContext
	key string
}

// NewCycleStatusCommand creates a new status command
func NewCycleStatusCommand(ctx *CommandContext, key string) *CycleStatusCommand {
	return &CycleStatusCommand{ctx: ctx, key: key}
}

// Execute performs the status change
func (c *CycleStatusCommand) Execute() tea.Cmd {
	return c.ctx.run(OpStatus, domain.ResourceInvoices, c.key, func(ctx context.Context) (string, error) {
		_, err := c.ctx.Invoices.Update(ctx, c.key, func(inv domain.Invoice) domain.Invoice {
			inv.Status = inv.Status.Next()
			return inv
		})
		return "", err
	})
}

// DeleteCommand removes one entity of either list
type DeleteCommand[T cache.Item] struct {
	ctx         *CommandContext
	coordinator *cache.Coordinator[T]
	key         string
}

// NewDeleteCommand creates a new delete command
func NewDeleteCommand[T cache.Item](ctx *CommandContext, coordinator *cache.Coordinator[T], key string) *DeleteCommand[T] {
	return &DeleteCommand[T]{ctx: ctx, coordinator: coordinator, key: key}
}

// Execute performs the delete
func (c *DeleteCommand[T]) Execute() tea.Cmd {
	return c.ctx.run(OpDelete, c.coordinator.Resource(), c.key, func(ctx context.Context) (string, error) {
		return "", c.coordinator.Delete(ctx, c.key)
	})
}

// RefreshCommand reloads a list from its source
type RefreshCommand struct {
	ctx  *CommandContext
	list Refresher
}

// NewRefreshCommand creates a new refresh command
func NewRefreshCommand(ctx *CommandContext, list Refresher) *RefreshCommand {
	return &RefreshCommand{ctx: ctx, list: list}
}

// Execute performs the refresh. A result superseded by a newer fetch is
// not an error.
func (c *RefreshCommand) Execute() tea.Cmd {
	return c.ctx.run(OpRefresh, c.list.Resource(), "", func(ctx context.Context) (string, error) {
		err := c.list.Refresh(ctx)
		if errors.Is(err, listview.ErrStale) {
			return "", nil
		}
		return "", err
	})
}
