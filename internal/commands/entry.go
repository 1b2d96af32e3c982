package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/openbooks-dev/openbooks/internal/ledger"
	"github.com/openbooks-dev/openbooks/internal/model"
	"github.com/openbooks-dev/openbooks/internal/store"
)

func newEntryCommand() *cobra.Command {
	entryCmd := &cobra.Command{
		Use:   "entry",
		Short: "Record and inspect journal entries",
	}
	entryCmd.PersistentFlags().String("dir", ".", "project directory")
	entryCmd.AddCommand(newEntryAddCommand())
	entryCmd.AddCommand(newEntryListCommand())
	entryCmd.AddCommand(newEntryShowCommand())
	return entryCmd
}

func newEntryAddCommand() *cobra.Command {
	var (
		description string
		date        string
		reference   string
		debits      []string
		credits     []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a journal entry",
		Long: `Record a balanced journal entry. Each --debit and --credit flag
takes a "code:amount" pair; total debits must equal total credits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			app, err := openApp(dir)
			if err != nil {
				return err
			}
			defer app.Close()

			entryDate, err := parseDate(date)
			if err != nil {
				return err
			}

			var lines []model.JournalLine
			for _, d := range debits {
				line, err := parseLineFlag(d, true)
				if err != nil {
					return err
				}
				lines = append(lines, line)
			}
			for _, c := range credits {
				line, err := parseLineFlag(c, false)
				if err != nil {
					return err
				}
				lines = append(lines, line)
			}

			entry, err := app.ledger.Commit(cmd.Context(), ledger.Draft{
				Description: description,
				Date:        entryDate,
				Reference:   reference,
				Lines:       lines,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Committed entry %d (%s)\n", entry.ID, entry.TotalDebits().StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "entry description (required)")
	_ = cmd.MarkFlagRequired("description")
	cmd.Flags().StringVar(&date, "date", "", "entry date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&reference, "ref", "", "external reference")
	cmd.Flags().StringArrayVar(&debits, "debit", nil, "debit line as code:amount (repeatable)")
	cmd.Flags().StringArrayVar(&credits, "credit", nil, "credit line as code:amount (repeatable)")

	return cmd
}

func newEntryListCommand() *cobra.Command {
	var (
		from        string
		to          string
		entryType   string
		accountCode string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries",
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

			entries, err := app.ledger.Entries(cmd.Context(), store.EntryFilter{
				From:        fromDate,
				To:          toDate,
				Type:        model.TransactionType(entryType),
				AccountCode: accountCode,
			})
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%6d  %s  %-16s %s\n", e.ID, e.Date.Format(dateFormat), e.Type, e.Description)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&entryType, "type", "", "filter by transaction type")
	cmd.Flags().StringVar(&accountCode, "account", "", "filter by account code")

	return cmd
}

func newEntryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a journal entry with its lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entry id %q", args[0])
			}

			dir, _ := cmd.Flags().GetString("dir")
			app, err := openApp(dir)
			if err != nil {
				return err
			}
			defer app.Close()

			e, err := app.ledger.Entry(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Printf("Entry %d: %s (%s, %s)\n", e.ID, e.Description, e.Type, e.Date.Format(dateFormat))
			if e.Reference != "" {
				fmt.Printf("Reference: %s\n", e.Reference)
			}
			for _, l := range e.Lines {
				side := "credit"
				if l.IsDebit {
					side = "debit "
				}
				fmt.Printf("  %s %-8s %12s  %s\n", side, l.AccountCode, l.Amount.StringFixed(2), l.Narration)
			}
			return nil
		},
	}
}

// parseLineFlag parses a "code:amount" flag value into a line.
func parseLineFlag(value string, isDebit bool) (model.JournalLine, error) {
	code, amountStr, ok := strings.Cut(value, ":")
	if !ok {
		return model.JournalLine{}, fmt.Errorf("invalid line %q (want code:amount)", value)
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return model.JournalLine{}, fmt.Errorf("invalid amount in %q: %w", value, err)
	}
	return model.JournalLine{AccountCode: code, Amount: amount, IsDebit: isDebit}, nil
}
