package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ledgergrip/internal/domain"
	"ledgergrip/internal/eventbus"
	"ledgergrip/internal/store"
	"ledgergrip/internal/ui"
)

// memorySeed sizes the demo data of --memory
var memorySeed = store.SeedOptions{Customers: 5000, Invoices: 20000}

// uiEvents are forwarded from the bus to the program
var uiEvents = []eventbus.EventType{
	eventbus.EventCollectionChanged,
	eventbus.EventNotification,
	eventbus.EventFetchFailed,
	eventbus.EventFetchCompleted,
	eventbus.EventConfigSaved,
}

// NewRootCommand builds the ledgergrip command tree
func NewRootCommand() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           "ledgergrip",
		Short:         "Browse and edit the customers and invoices of one tenant",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), o)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&o.db, "db", "d", "", "SQLite database file (default from config)")
	flags.StringVar(&o.configPath, "config", "", "configuration file (default .ledgergrip.toml next to the database)")
	flags.StringVar(&o.tenant, "tenant", "", "tenant id the session is scoped to")
	root.Flags().BoolVar(&o.memory, "memory", false, "use generated in-memory data instead of the database")

	root.AddCommand(newSeedCommand(o))
	return root
}

// Execute runs the root command with signal handling
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runTUI(ctx context.Context, o *options) error {
	// The configured logger is only known after the config is loaded
	bus := eventbus.New(zap.NewNop())
	defer bus.Close()

	s, err := openSession(o, bus)
	if err != nil {
		return err
	}
	defer func() { _ = s.log.Sync() }()
	log := s.log

	var (
		customers ui.Backend[domain.Customer]
		invoices  ui.Backend[domain.Invoice]
	)
	if o.memory {
		c, i := store.SeedMemory(s.tenant, memorySeed)
		customers, invoices = c, i
		log.Info("using in-memory data",
			zap.Int("customers", memorySeed.Customers),
			zap.Int("invoices", memorySeed.Invoices))
	} else {
		db, err := store.Open(s.config.Database, log, s.config.Log.Level)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close(db) }()
		customers = store.NewCustomerRepository(db, s.tenant)
		invoices = store.NewInvoiceRepository(db, s.tenant)
	}

	log.Info("starting",
		zap.String("tenant", s.tenant.String()),
		zap.String("database", s.config.Database),
		zap.String("config", s.configPath))

	model := ui.NewModel(ui.Options{
		Config:    s.config,
		Bus:       bus,
		Logger:    log,
		Customers: customers,
		Invoices:  invoices,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(p)

	for _, t := range uiEvents {
		unsubscribe := bus.Subscribe(t, func(e eventbus.DomainEvent) {
			p.Send(ui.EventMsg{Event: e})
		})
		defer unsubscribe()
	}

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
