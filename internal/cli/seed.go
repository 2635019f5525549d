package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ledgergrip/internal/store"
)

func newSeedCommand(o *options) *cobra.Command {
	seed := store.SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the tenant with generated customers and invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if seed.Customers < 0 || seed.Invoices < 0 {
				return fmt.Errorf("counts must not be negative")
			}

			s, err := openSession(o, nil)
			if err != nil {
				return err
			}
			defer func() { _ = s.log.Sync() }()

			db, err := store.Open(s.config.Database, s.log, s.config.Log.Level)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close(db) }()

			result, err := store.Seed(cmd.Context(), db, s.tenant, seed)
			if err != nil {
				return err
			}
			s.log.Info("seeded",
				zap.String("tenant", s.tenant.String()),
				zap.Int("customers", result.Customers),
				zap.Int("invoices", result.Invoices))

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d customers and %d invoices into %s (tenant %s)\n",
				result.Customers, result.Invoices, s.config.Database, s.tenant)
			return nil
		},
	}

	cmd.Flags().IntVar(&seed.Customers, "customers", 1000, "number of customers to create")
	cmd.Flags().IntVar(&seed.Invoices, "invoices", 5000, "number of invoices to create")
	cmd.Flags().Uint64Var(&seed.Seed, "seed", 0, "random seed (0 picks one)")
	return cmd
}
