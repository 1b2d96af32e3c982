package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a CSV snapshot of accounts and journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			app, err := openApp(dir)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.export.Export(cmd.Context(), out); err != nil {
				return err
			}
			fmt.Printf("Exported snapshot to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "export", "output directory")
	cmd.Flags().String("dir", ".", "project directory")
	return cmd
}

func newImportCommand() *cobra.Command {
	var in string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replay a CSV snapshot into the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			app, err := openApp(dir)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.export.Import(cmd.Context(), in); err != nil {
				return err
			}
			fmt.Printf("Imported snapshot from %s\n", in)
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "export", "snapshot directory")
	cmd.Flags().String("dir", ".", "project directory")
	return cmd
}
