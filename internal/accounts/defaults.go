package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/openbooks-dev/openbooks/internal/model"
)

// DefaultChart returns the starter chart of accounts.
func DefaultChart() []CreateParams {
	return []CreateParams{
		{Code: "1000", Name: "Cash", Type: model.AccountTypeAsset},
		{Code: "1100", Name: "Accounts Receivable", Type: model.AccountTypeAsset},
		{Code: "2000", Name: "Accounts Payable", Type: model.AccountTypeLiability},
		{Code: "2100", Name: "Tax Payable", Type: model.AccountTypeLiability},
		{Code: "3000", Name: "Owner Equity", Type: model.AccountTypeEquity},
		{Code: "3900", Name: "Retained Earnings", Type: model.AccountTypeEquity},
		{Code: "4000", Name: "Sales Revenue", Type: model.AccountTypeRevenue},
		{Code: "5000", Name: "Office Supplies Expense", Type: model.AccountTypeExpense},
		{Code: "5100", Name: "Cost of Goods Sold", Type: model.AccountTypeExpense},
	}
}

// SeedDefaultChart creates the default chart of accounts with the
// given opening date. Accounts that already exist are left alone.
func (r *Registry) SeedDefaultChart(ctx context.Context, openingDate time.Time) error {
	for _, params := range DefaultChart() {
		params.OpeningDate = openingDate
		if _, err := r.Create(ctx, params); err != nil {
			var dup *model.DuplicateAccountError
			if errors.As(err, &dup) {
				continue
			}
			return err
		}
	}
	return nil
}
