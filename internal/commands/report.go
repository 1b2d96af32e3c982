package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/openbooks-dev/openbooks/internal/reports"
)

func newReportCommand() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Derive financial statements",
	}
	reportCmd.PersistentFlags().String("dir", ".", "project directory")
	reportCmd.AddCommand(newBalanceSheetCommand())
	reportCmd.AddCommand(newIncomeStatementCommand())
	reportCmd.AddCommand(newCashFlowCommand())
	return reportCmd
}

func newBalanceSheetCommand() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "balance-sheet",
		Short: "Print the balance sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			app, err := openApp(dir)
			if err != nil {
				return err
			}
			defer app.Close()

			asOfDate, err := parseDate(asOf)
			if err != nil {
				return err
			}

			bs, err := app.reports.BalanceSheet(cmd.Context(), asOfDate)
			if err != nil {
				return err
			}

			fmt.Println("Balance Sheet")
			printSection("Assets", bs.Assets, bs.TotalAssets)
			printSection("Liabilities", bs.Liabilities, bs.TotalLiabilities)
			printSection("Equity", bs.Equity, bs.TotalEquity)
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "report date (YYYY-MM-DD, default now)")
	return cmd
}

func newIncomeStatementCommand() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "income-statement",
		Short: "Print the income statement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			app, err := openApp(dir)
			if err != nil {
				return err
			}
			defer app.Close()

			fromDate, err := parseDate(from)
			if err != nil {
				return err
			}
			toDate, err := parseDate(to)
			if err != nil {
				return err
			}

			is, err := app.reports.IncomeStatement(cmd.Context(), fromDate, toDate)
			if err != nil {
				return err
			}

			fmt.Println("Income Statement")
			printSection("Revenue", is.Revenue, is.TotalRevenue)
			printSection("Expenses", is.Expenses, is.TotalExpenses)
			fmt.Printf("\nNet income: %s\n", is.NetIncome.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "period start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "period end (YYYY-MM-DD)")
	return cmd
}

func newCashFlowCommand() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "cash-flow",
		Short: "Print the cash flow report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			app, err := openApp(dir)
			if err != nil {
				return err
			}
			defer app.Close()

			fromDate, err := parseDate(from)
			if err != nil {
				return err
			}
			toDate, err := parseDate(to)
			if err != nil {
				return err
			}

			cf, err := app.reports.CashFlow(cmd.Context(), fromDate, toDate)
			if err != nil {
				return err
			}

			fmt.Println("Cash Flow")
			for _, g := range cf.Groups {
				fmt.Printf("  %-16s in %12s  out %12s  net %12s\n",
					g.Type, g.Inflows.StringFixed(2), g.Outflows.StringFixed(2), g.Net.StringFixed(2))
			}
			fmt.Printf("\nTotal inflows:  %s\n", cf.TotalInflows.StringFixed(2))
			fmt.Printf("Total outflows: %s\n", cf.TotalOutflows.StringFixed(2))
			fmt.Printf("Net change:     %s\n", cf.NetChange.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "period start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "period end (YYYY-MM-DD)")
	return cmd
}

func printSection(title string, rows []reports.AccountBalance, total decimal.Decimal) {
	fmt.Printf("\n%s\n", title)
	for _, r := range rows {
		code := r.Code
		if code == "" {
			code = "-"
		}
		fmt.Printf("  %-8s %-32s %12s\n", code, r.Name, r.Balance.StringFixed(2))
	}
	fmt.Printf("  %-41s %12s\n", "Total", total.StringFixed(2))
}
