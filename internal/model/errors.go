package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DuplicateAccountError reports an attempt to create an account with
// a code that already exists in the chart.
type DuplicateAccountError struct {
	Code string
}

func (e *DuplicateAccountError) Error() string {
	return fmt.Sprintf("account %s already exists", e.Code)
}

// AccountNotFoundError reports a reference to an unknown account code.
type AccountNotFoundError struct {
	Code string
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s not found", e.Code)
}

// InvalidAccountTypeError reports an account type outside the fixed
// enumeration.
type InvalidAccountTypeError struct {
	Type string
}

func (e *InvalidAccountTypeError) Error() string {
	return fmt.Sprintf("invalid account type %q", e.Type)
}

// UnbalancedEntryError reports a candidate entry whose debits do not
// equal its credits, or one with fewer than two lines.
type UnbalancedEntryError struct {
	Debits    decimal.Decimal
	Credits   decimal.Decimal
	LineCount int
}

func (e *UnbalancedEntryError) Error() string {
	if e.LineCount < 2 {
		return fmt.Sprintf("entry needs at least 2 lines, got %d", e.LineCount)
	}
	return fmt.Sprintf("entry is not balanced: debits %s != credits %s",
		e.Debits.StringFixed(2), e.Credits.StringFixed(2))
}

// InvalidAmountError reports a line amount that is not a positive
// value with at most two decimal places, or one inconsistent with the
// line's quantity and unit price.
type InvalidAmountError struct {
	AccountCode string
	Amount      decimal.Decimal
	Reason      string
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %s on account %s: %s", e.Amount, e.AccountCode, e.Reason)
}

// ReportInconsistencyError reports a balance-sheet identity violation
// (Assets != Liabilities + Equity). It signals upstream corruption
// and is surfaced, never auto-corrected.
type ReportInconsistencyError struct {
	Assets      decimal.Decimal
	Liabilities decimal.Decimal
	Equity      decimal.Decimal
}

func (e *ReportInconsistencyError) Error() string {
	return fmt.Sprintf("balance sheet out of balance: assets %s != liabilities %s + equity %s",
		e.Assets.StringFixed(2), e.Liabilities.StringFixed(2), e.Equity.StringFixed(2))
}
