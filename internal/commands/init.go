package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/openbooks-dev/openbooks/internal/config"
)

func newInitCommand() *cobra.Command {
	var name string
	var driver string
	var seedChart bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new openbooks project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, name, driver, seedChart)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&driver, "driver", config.DriverSQLite, "storage driver (sqlite, postgres, memory)")
	cmd.Flags().BoolVar(&seedChart, "chart", true, "seed the default chart of accounts")

	return cmd
}

func runInit(dir, name, driver string, seedChart bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	cfg := config.Default(name)
	cfg.Storage.Driver = driver
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Opening the store creates the schema.
	app, err := openAppWithConfig(dir, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if seedChart {
		if err := app.registry.SeedDefaultChart(context.Background(), time.Now()); err != nil {
			return fmt.Errorf("seeding chart of accounts: %w", err)
		}
	}

	fmt.Printf("Initialized openbooks project at %s\n", dir)
	return nil
}
