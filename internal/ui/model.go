package ui

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ledgergrip/internal/config"
	"ledgergrip/internal/domain"
	"ledgergrip/internal/eventbus"
	"ledgergrip/internal/listview"
	"ledgergrip/internal/listview/cache"
	"ledgergrip/internal/listview/search"
	"ledgergrip/internal/ui/commands"
	"ledgergrip/internal/ui/handlers"
	"ledgergrip/internal/ui/input"
	inputtypes "ledgergrip/internal/ui/input/types"
	"ledgergrip/internal/ui/state"
	"ledgergrip/internal/ui/viewmodels"
	"ledgergrip/internal/ui/views"
)

// Backend loads and mutates one resource
type Backend[T cache.Item] interface {
	listview.Source[T]
	cache.Sink[T]
}

// Options wire the model to its data
type Options struct {
	Config    *config.Config
	Bus       eventbus.EventBus // optional
	Logger    *zap.Logger
	Store     *cache.Store // created when nil
	Customers Backend[domain.Customer]
	Invoices  Backend[domain.Invoice]

	// Notifier receives mutation outcomes; defaults to publishing on Bus
	Notifier cache.Notifier
}

// list is the part of a listview.View the model drives without knowing
// the row type
type list interface {
	Resource() string
	Refresh(ctx context.Context) error
	SetQuery(raw string)
	FlushQuery()
	Query() (raw, settled string)
	Resize(height int)
	Select(index int)
	Move(delta int)
	Page(dir int)
	SelectedIndex() int
	Len() int
	Sync() bool
	Close()
}

// Model represents the UI state
type Model struct {
	bus    eventbus.EventBus
	config *config.Config
	logger *zap.Logger
	state  *state.AppState
	keys   KeyMap

	customers *listview.View[domain.Customer]
	invoices  *listview.View[domain.Invoice]

	// Handlers
	renderer     *views.Renderer
	eventHandler *handlers.EventHandler
	viewModel    *viewmodels.ViewModel
	cmdExecutor  *commands.Executor
	inputHandler *input.Handler
	pager        *PagerOps

	ctx    context.Context
	cancel context.CancelFunc

	// Program reference for terminal management; read from view timers
	program atomic.Pointer[tea.Program]
}

// NewModel creates a new UI model over the customer and invoice lists
func NewModel(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := opts.Store
	if store == nil {
		store = cache.NewStore(opts.Bus)
	}
	notifier := opts.Notifier
	if notifier == nil && opts.Bus != nil {
		notifier = cache.NewBusNotifier(opts.Bus)
	}

	ctx, cancel := context.WithCancel(context.Background())
	appState := state.NewAppState()
	m := &Model{
		bus:          opts.Bus,
		config:       cfg,
		logger:       logger.Named("ui"),
		state:        appState,
		keys:         DefaultKeyMap(),
		renderer:     views.NewRenderer(),
		inputHandler: input.New(),
		ctx:          ctx,
		cancel:       cancel,
	}
	m.renderer.Rows().SetShowTotals(cfg.UI.ShowTotals)

	m.customers = listview.New(listview.Options[domain.Customer]{
		Resource: domain.ResourceCustomers,
		Fields:   customerFields,
		RowSize:  cfg.UI.RowHeight,
		Overscan: cfg.UI.Overscan,
		Debounce: cfg.UI.Debounce(),
		OnChange: m.notifyChanged,
		Bus:      opts.Bus,

		Limit:         cfg.UI.FetchLimit,
		RemoteFilter:  cfg.UI.RemoteFilter,
		ScopedQueries: true,
	}, opts.Customers, store, logger)

	m.invoices = listview.New(listview.Options[domain.Invoice]{
		Resource: domain.ResourceInvoices,
		Fields:   invoiceFields,
		RowSize:  cfg.UI.InvoiceRowHeight,
		Overscan: cfg.UI.Overscan,
		Debounce: cfg.UI.Debounce(),
		OnChange: m.notifyChanged,
		Bus:      opts.Bus,

		Limit:         cfg.UI.FetchLimit,
		RemoteFilter:  cfg.UI.RemoteFilter,
		ScopedQueries: true,
	}, opts.Invoices, store, logger)

	customerOpts := []cache.CoordinatorOption[domain.Customer]{
		cache.WithLogger[domain.Customer](logger),
		cache.WithDescribe(func(c domain.Customer) string { return "customer " + c.Name }),
	}
	invoiceOpts := []cache.CoordinatorOption[domain.Invoice]{
		cache.WithLogger[domain.Invoice](logger),
		cache.WithDescribe(func(i domain.Invoice) string { return "invoice " + i.Number }),
	}
	if notifier != nil {
		customerOpts = append(customerOpts, cache.WithNotifier[domain.Customer](notifier))
		invoiceOpts = append(invoiceOpts, cache.WithNotifier[domain.Invoice](notifier))
	}

	m.cmdExecutor = commands.NewExecutor(&commands.CommandContext{
		Ctx:       ctx,
		Customers: cache.NewCoordinator[domain.Customer](store, domain.ResourceCustomers, opts.Customers, customerOpts...),
		Invoices:  cache.NewCoordinator[domain.Invoice](store, domain.ResourceInvoices, opts.Invoices, invoiceOpts...),
		Logger:    m.logger,
	})
	m.eventHandler = handlers.NewEventHandler(appState, m.sync, m.logger)
	m.viewModel = viewmodels.NewViewModel(appState, m.inputHandler, m.keys)

	return m
}

var customerFields = []search.Field[domain.Customer]{
	{Name: "code", Value: func(c domain.Customer) string { return c.Code }},
	{Name: "name", Value: func(c domain.Customer) string { return c.Name }},
	{Name: "email", Value: func(c domain.Customer) string { return c.Email }},
	{Name: "phone", Value: func(c domain.Customer) string { return c.Phone }},
	{Name: "company", Value: func(c domain.Customer) string { return c.Company }},
}

var invoiceFields = []search.Field[domain.Invoice]{
	{Name: "number", Value: func(i domain.Invoice) string { return i.Number }},
	{Name: "customer", Value: func(i domain.Invoice) string { return i.CustomerName }},
	{Name: "status", Value: func(i domain.Invoice) string { return string(i.Status) }},
	{Name: "notes", Value: func(i domain.Invoice) string { return i.Notes }},
}

// SetProgram stores the program for pager hand-off and change callbacks
func (m *Model) SetProgram(p *tea.Program) {
	m.program.Store(p)
	m.pager = NewPagerOps(p)
}

// Close stops pending searches and fetches
func (m *Model) Close() {
	m.cancel()
	m.customers.Close()
	m.invoices.Close()
}

// Load fetches both lists concurrently
func (m *Model) Load(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, l := range []list{m.customers, m.invoices} {
		g.Go(func() error {
			if err := l.Refresh(ctx); err != nil && !errors.Is(err, listview.ErrStale) {
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// notifyChanged runs on view timers and inside Update. Send blocks until
// the program reads the message, so it must not run on the Update
// goroutine.
func (m *Model) notifyChanged() {
	if p := m.program.Load(); p != nil {
		go p.Send(listChangedMsg{})
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init starts the initial load and the animation tick
func (m *Model) Init() tea.Cmd {
	ctx := m.ctx
	return tea.Batch(tick(), func() tea.Msg {
		return loadedMsg{err: m.Load(ctx)}
	})
}

func (m *Model) active() list {
	if m.state.ActiveTab == inputtypes.TabInvoices {
		return m.invoices
	}
	return m.customers
}

// selected returns key and label of the selected row of the active list
func (m *Model) selected() (key, label string) {
	if m.state.ActiveTab == inputtypes.TabInvoices {
		if inv, ok := m.invoices.Selected(); ok {
			return inv.Key(), inv.Number
		}
		return "", ""
	}
	if c, ok := m.customers.Selected(); ok {
		return c.Key(), c.Name
	}
	return "", ""
}

// sync re-derives the list showing resource from the cache
func (m *Model) sync(resource string) bool {
	switch resource {
	case domain.ResourceCustomers:
		return m.customers.Sync()
	case domain.ResourceInvoices:
		return m.invoices.Sync()
	}
	return false
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.state.Width = msg.Width
		m.state.Height = msg.Height
		height := views.ListHeight(msg.Height)
		m.customers.Resize(height)
		m.invoices.Resize(height)
		return m, nil

	case tea.KeyMsg:
		if m.state.Popup != "" {
			return m, m.handlePopupKey(msg)
		}

		actions, cmd := m.inputHandler.HandleKey(msg, modelContext{m: m})

		cmds := []tea.Cmd{}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		for _, action := range actions {
			if actionCmd := m.processAction(action); actionCmd != nil {
				cmds = append(cmds, actionCmd)
			}
		}
		return m, tea.Batch(cmds...)

	case EventMsg:
		return m, m.eventHandler.HandleEvent(msg.Event)

	case handlers.ClearStatusMsg:
		m.state.ClearStatus(msg.Seq)
		return m, nil

	case commands.ResultMsg:
		return m, m.handleResult(msg)

	case loadedMsg:
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.logger.Warn("initial load failed", zap.Error(msg.err))
			if m.bus == nil {
				return m, m.eventHandler.Status(domain.NotifyError, "Failed to load: "+msg.err.Error())
			}
		}
		return m, nil

	case listChangedMsg:
		// The next View call picks up the change
		return m, nil

	case pagerMsg:
		if msg.err != nil {
			m.logger.Debug("pager unavailable, using popup", zap.Error(msg.err))
			m.state.ShowPopup(msg.content)
		}
		return m, nil

	case pauseRenderingMsg:
		m.state.InPagerMode = true
		return m, nil

	case resumeRenderingMsg:
		m.state.InPagerMode = false
		return m, tea.Batch(tea.ClearScreen, tick())

	case tickMsg:
		// Don't continue tick loop if we're in pager mode
		if m.state.InPagerMode {
			return m, nil
		}
		return m, tick()

	default:
		return m, m.inputHandler.Update(msg)
	}
}

func (m *Model) handlePopupKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc", "q", "enter", "i", "?":
		m.state.ShowPopup("")
	}
	return nil
}

func (m *Model) handleResult(msg commands.ResultMsg) tea.Cmd {
	if msg.Err != nil {
		// The coordinator already announced the failure
		m.logger.Debug("command failed",
			zap.String("op", string(msg.Op)),
			zap.String("resource", msg.Resource),
			zap.Error(msg.Err))
	}
	m.sync(msg.Resource)
	if msg.Err != nil {
		return nil
	}

	switch msg.Op {
	case commands.OpCreate:
		if msg.Resource == domain.ResourceCustomers {
			m.customers.SelectKey(msg.Key)
		}
	case commands.OpRename:
		// Invoices show the customer name
		return m.cmdExecutor.ExecuteRefresh(m.invoices)
	}
	return nil
}

// processAction processes an action from the input handler
func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	switch a := action.(type) {
	case inputtypes.NavigateAction:
		l := m.active()
		switch a.Direction {
		case "up":
			l.Move(-1)
		case "down":
			l.Move(1)
		case "pageup":
			l.Page(-1)
		case "pagedown":
			l.Page(1)
		case "home":
			l.Select(0)
		case "end":
			l.Select(l.Len() - 1)
		}

	case inputtypes.SwitchTabAction:
		m.state.SwitchTab()

	case inputtypes.UpdateTextAction:
		if a.Mode == inputtypes.ModeSearch {
			m.active().SetQuery(a.Text)
		}

	case inputtypes.SubmitTextAction:
		switch a.Mode {
		case inputtypes.ModeSearch:
			l := m.active()
			l.SetQuery(a.Text)
			l.FlushQuery()
		case inputtypes.ModeNewCustomer:
			name := strings.TrimSpace(a.Text)
			if name == "" {
				return m.eventHandler.Status(domain.NotifyInfo, "Customer name is required")
			}
			return m.cmdExecutor.ExecuteCreateCustomer(name)
		}

	case inputtypes.ClearSearchAction:
		l := m.active()
		l.SetQuery("")
		l.FlushQuery()

	case inputtypes.RenameAction:
		return m.cmdExecutor.ExecuteRename(a.Key, a.Name)

	case inputtypes.CycleStatusAction:
		if inv, ok := m.invoices.Selected(); ok {
			return m.cmdExecutor.ExecuteCycleStatus(inv.Key())
		}

	case inputtypes.DeleteAction:
		if m.state.ActiveTab == inputtypes.TabInvoices {
			return m.cmdExecutor.ExecuteDeleteInvoice(a.Key)
		}
		return m.cmdExecutor.ExecuteDeleteCustomer(a.Key)

	case inputtypes.RefreshAction:
		return m.cmdExecutor.ExecuteRefresh(m.active())

	case inputtypes.OpenDetailsAction:
		if content := m.details(); content != "" {
			return m.openPager(content)
		}

	case inputtypes.ToggleHelpAction:
		return m.openPager(helpContent(m.keys))

	case inputtypes.QuitAction:
		return tea.Quit
	}
	return nil
}

// details renders the selected row of the active list
func (m *Model) details() string {
	now := time.Now()
	if m.state.ActiveTab == inputtypes.TabInvoices {
		inv, ok := m.invoices.Selected()
		if !ok {
			return ""
		}
		return views.InvoiceDetails(inv, now)
	}

	c, ok := m.customers.Selected()
	if !ok {
		return ""
	}
	var invoices []domain.Invoice
	for _, inv := range m.invoices.Candidates() {
		if inv.CustomerID == c.ID {
			invoices = append(invoices, inv)
		}
	}
	return views.CustomerDetails(c, invoices, now)
}

// View renders the UI
func (m *Model) View() string {
	if m.state.InPagerMode {
		return ""
	}
	if m.state.Width == 0 {
		return "Loading..."
	}

	// Main style pads two columns on each side
	width := max(m.state.Width-4, 20)
	rows := m.renderer.Rows()

	var l views.ListState
	if m.state.ActiveTab == inputtypes.TabInvoices {
		l = viewmodels.BuildList(m.invoices, domain.ResourceInvoices, func(r listview.Row[domain.Invoice]) []string {
			return rows.Invoice(r, m.invoices.Highlight, width)
		})
	} else {
		l = viewmodels.BuildList(m.customers, domain.ResourceCustomers, func(r listview.Row[domain.Customer]) []string {
			return rows.Customer(r, m.customers.Highlight, width)
		})
	}
	return m.renderer.Render(m.viewModel.BuildViewState(l))
}
