package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/openbooks-dev/openbooks/internal/transactions"
)

func newSaleCommand() *cobra.Command {
	var (
		cash        string
		revenue     string
		taxAccount  string
		amount      string
		taxRate     string
		description string
		date        string
		reference   string
	)

	cmd := &cobra.Command{
		Use:   "sale",
		Short: "Record a cash sale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			app, err := openApp(dir)
			if err != nil {
				return err
			}
			defer app.Close()

			amt, rate, err := parseAmountAndRate(amount, taxRate)
			if err != nil {
				return err
			}
			saleDate, err := parseDate(date)
			if err != nil {
				return err
			}

			entry, err := app.builder.CashSale(cmd.Context(), transactions.CashSaleParams{
				CashAccount:    cash,
				RevenueAccount: revenue,
				TaxAccount:     taxAccount,
				Amount:         amt,
				TaxRate:        rate,
				Description:    description,
				Date:           saleDate,
				Reference:      reference,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Recorded cash sale as entry %d (%s gross)\n", entry.ID, entry.TotalDebits().StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&cash, "cash", "1000", "cash account code")
	cmd.Flags().StringVar(&revenue, "revenue", "4000", "revenue account code")
	cmd.Flags().StringVar(&taxAccount, "tax-account", "", "tax payable account code")
	cmd.Flags().StringVar(&amount, "amount", "", "net sale amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&taxRate, "tax-rate", "0", "tax rate, e.g. 0.10")
	cmd.Flags().StringVar(&description, "description", "", "entry description")
	cmd.Flags().StringVar(&date, "date", "", "sale date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&reference, "ref", "", "external reference")
	cmd.Flags().String("dir", ".", "project directory")

	return cmd
}

func newPurchaseCommand() *cobra.Command {
	var (
		cash        string
		expense     string
		taxAccount  string
		amount      string
		taxRate     string
		description string
		date        string
		reference   string
	)

	cmd := &cobra.Command{
		Use:   "purchase",
		Short: "Record a cash purchase",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			app, err := openApp(dir)
			if err != nil {
				return err
			}
			defer app.Close()

			amt, rate, err := parseAmountAndRate(amount, taxRate)
			if err != nil {
				return err
			}
			purchaseDate, err := parseDate(date)
			if err != nil {
				return err
			}

			entry, err := app.builder.CashPurchase(cmd.Context(), transactions.CashPurchaseParams{
				CashAccount:    cash,
				ExpenseAccount: expense,
				TaxAccount:     taxAccount,
				Amount:         amt,
				TaxRate:        rate,
				Description:    description,
				Date:           purchaseDate,
				Reference:      reference,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Recorded cash purchase as entry %d (%s gross)\n", entry.ID, entry.TotalCredits().StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&cash, "cash", "1000", "cash account code")
	cmd.Flags().StringVar(&expense, "expense", "", "expense account code (required)")
	_ = cmd.MarkFlagRequired("expense")
	cmd.Flags().StringVar(&taxAccount, "tax-account", "", "tax account code")
	cmd.Flags().StringVar(&amount, "amount", "", "net purchase amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&taxRate, "tax-rate", "0", "tax rate, e.g. 0.10")
	cmd.Flags().StringVar(&description, "description", "", "entry description")
	cmd.Flags().StringVar(&date, "date", "", "purchase date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&reference, "ref", "", "external reference")
	cmd.Flags().String("dir", ".", "project directory")

	return cmd
}

func newOpeningCommand() *cobra.Command {
	var (
		offset string
		amount string
		date   string
	)

	cmd := &cobra.Command{
		Use:   "opening <account>",
		Short: "Post an account's opening balance as a journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			app, err := openApp(dir)
			if err != nil {
				return err
			}
			defer app.Close()

			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			openingDate, err := parseDate(date)
			if err != nil {
				return err
			}

			entry, err := app.builder.OpeningBalance(cmd.Context(), transactions.OpeningBalanceParams{
				AccountCode:   args[0],
				OffsetAccount: offset,
				Amount:        amt,
				Date:          openingDate,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Posted opening balance as entry %d\n", entry.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&offset, "offset", "3000", "offset equity/suspense account code")
	cmd.Flags().StringVar(&amount, "amount", "", "opening balance amount (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&date, "date", "", "opening date (YYYY-MM-DD, default today)")
	cmd.Flags().String("dir", ".", "project directory")

	return cmd
}

func parseAmountAndRate(amount, taxRate string) (decimal.Decimal, decimal.Decimal, error) {
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	rate, err := decimal.NewFromString(taxRate)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid tax rate %q: %w", taxRate, err)
	}
	return amt, rate, nil
}
