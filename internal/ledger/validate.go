package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/openbooks-dev/openbooks/internal/model"
)

// validate enforces the commit invariants on a candidate entry, in
// order: minimum line count, known accounts, balanced totals, and
// well-formed amounts. The account snapshots are keyed by code and
// must already be loaded; validation itself never touches storage.
func validate(lines []model.JournalLine, accounts map[string]model.Account) error {
	if len(lines) < 2 {
		return &model.UnbalancedEntryError{LineCount: len(lines)}
	}

	for _, l := range lines {
		if _, ok := accounts[l.AccountCode]; !ok {
			return &model.AccountNotFoundError{Code: l.AccountCode}
		}
	}

	totalDebits := decimal.Zero
	totalCredits := decimal.Zero
	for _, l := range lines {
		if l.IsDebit {
			totalDebits = totalDebits.Add(l.Amount)
		} else {
			totalCredits = totalCredits.Add(l.Amount)
		}
	}
	if !totalDebits.Equal(totalCredits) {
		return &model.UnbalancedEntryError{
			Debits:    totalDebits,
			Credits:   totalCredits,
			LineCount: len(lines),
		}
	}

	for _, l := range lines {
		if !l.Amount.IsPositive() {
			return &model.InvalidAmountError{
				AccountCode: l.AccountCode,
				Amount:      l.Amount,
				Reason:      "amount must be positive",
			}
		}
		if !model.CentPrecise(l.Amount) {
			return &model.InvalidAmountError{
				AccountCode: l.AccountCode,
				Amount:      l.Amount,
				Reason:      "amount has more than 2 decimal places",
			}
		}
		// When both quantity and unit price are present the amount
		// must be their product; tax always lives on its own line.
		if l.Quantity.IsPositive() && l.UnitPrice.IsPositive() {
			expected := l.Quantity.Mul(l.UnitPrice).Round(2)
			if !l.Amount.Equal(expected) {
				return &model.InvalidAmountError{
					AccountCode: l.AccountCode,
					Amount:      l.Amount,
					Reason:      "amount does not equal quantity x unit price (" + expected.StringFixed(2) + ")",
				}
			}
		}
	}

	return nil
}
