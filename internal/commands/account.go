package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/openbooks-dev/openbooks/internal/accounts"
	"github.com/openbooks-dev/openbooks/internal/model"
)

func newAccountCommand() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the chart of accounts",
	}
	accountCmd.PersistentFlags().String("dir", ".", "project directory")
	accountCmd.AddCommand(newAccountAddCommand())
	accountCmd.AddCommand(newAccountListCommand())
	accountCmd.AddCommand(newAccountShowCommand())
	return accountCmd
}

func newAccountAddCommand() *cobra.Command {
	var (
		name        string
		accountType string
		opening     string
		openingDate string
	)

	cmd := &cobra.Command{
		Use:   "add <code>",
		Short: "Add an account to the chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			app, err := openApp(dir)
			if err != nil {
				return err
			}
			defer app.Close()

			parsedType, err := model.ParseAccountType(accountType)
			if err != nil {
				return err
			}
			openingBalance, err := decimal.NewFromString(opening)
			if err != nil {
				return fmt.Errorf("invalid opening balance %q: %w", opening, err)
			}
			date, err := parseDate(openingDate)
			if err != nil {
				return err
			}

			account, err := app.registry.Create(cmd.Context(), accounts.CreateParams{
				Code:           args[0],
				Name:           name,
				Type:           parsedType,
				OpeningBalance: openingBalance,
				OpeningDate:    date,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Created account %s\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&accountType, "type", "", "account type: asset, liability, equity, revenue, expense (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().StringVar(&opening, "opening-balance", "0", "opening balance")
	cmd.Flags().StringVar(&openingDate, "opening-date", "", "opening date (YYYY-MM-DD, default today)")

	return cmd
}

func newAccountListCommand() *cobra.Command {
	var typeFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts in the chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			app, err := openApp(dir)
			if err != nil {
				return err
			}
			defer app.Close()

			var types []model.AccountType
			if typeFilter != "" {
				t, err := model.ParseAccountType(typeFilter)
				if err != nil {
					return err
				}
				types = append(types, t)
			}

			accts, err := app.registry.List(cmd.Context(), types...)
			if err != nil {
				return err
			}
			for _, a := range accts {
				fmt.Printf("%-8s %-32s %-10s %12s\n", a.Code, a.Name, a.Type, a.Balance.StringFixed(2))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&typeFilter, "type", "", "filter by account type")
	return cmd
}

func newAccountShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <code>",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			app, err := openApp(dir)
			if err != nil {
				return err
			}
			defer app.Close()

			a, err := app.registry.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Code:            %s\n", a.Code)
			fmt.Printf("Name:            %s\n", a.Name)
			fmt.Printf("Type:            %s\n", a.Type)
			fmt.Printf("Opening balance: %s (%s)\n", a.OpeningBalance.StringFixed(2), a.OpeningDate.Format(dateFormat))
			fmt.Printf("Balance:         %s\n", a.Balance.StringFixed(2))
			return nil
		},
	}
}
