package commands

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/openbooks-dev/openbooks/internal/ledger"
	"github.com/openbooks-dev/openbooks/internal/model"
)

func newSampleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Seed the default chart and a starter entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			app, err := openApp(dir)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			if err := app.registry.SeedDefaultChart(ctx, time.Now()); err != nil {
				return err
			}

			entry, err := app.ledger.Commit(ctx, ledger.Draft{
				Description: "Owner invests cash",
				Lines: []model.JournalLine{
					{AccountCode: "1000", Amount: decimal.NewFromInt(1000), IsDebit: true},
					{AccountCode: "3000", Amount: decimal.NewFromInt(1000), IsDebit: false},
				},
			})
			if err != nil {
				return err
			}

			fmt.Printf("Seeded sample chart and entry %d\n", entry.ID)
			return nil
		},
	}

	cmd.Flags().String("dir", ".", "project directory")
	return cmd
}
