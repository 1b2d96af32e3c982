package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// AccountTypes lists every valid account type, in statement order.
var AccountTypes = []AccountType{
	AccountTypeAsset,
	AccountTypeLiability,
	AccountTypeEquity,
	AccountTypeRevenue,
	AccountTypeExpense,
}

// ParseAccountType converts a string into an AccountType.
// Returns InvalidAccountTypeError for anything outside the fixed set.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range AccountTypes {
		if t == valid {
			return t, nil
		}
	}
	return "", &InvalidAccountTypeError{Type: s}
}

// Valid reports whether the account type is one of the fixed set.
func (t AccountType) Valid() bool {
	_, err := ParseAccountType(string(t))
	return err == nil
}

// DebitNormal reports whether the type increases on the debit side.
// Asset and Expense accounts are debit-normal; Liability, Equity and
// Revenue accounts are credit-normal.
func (t AccountType) DebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// SignedAmount returns the balance delta a line applies to an account
// of this type: a line on the account's normal side increases the
// balance, the opposite side decreases it.
func (t AccountType) SignedAmount(amount decimal.Decimal, isDebit bool) decimal.Decimal {
	if isDebit == t.DebitNormal() {
		return amount
	}
	return amount.Neg()
}

// Account is one entry in the chart of accounts.
// Balance is maintained exclusively by ledger commits.
type Account struct {
	Code           string
	Name           string
	Type           AccountType
	OpeningBalance decimal.Decimal
	OpeningDate    time.Time
	Balance        decimal.Decimal
}

// IsCash reports whether the account feeds the cash-flow report:
// an asset account with "cash" in its name.
func (a Account) IsCash() bool {
	return a.Type == AccountTypeAsset && strings.Contains(strings.ToLower(a.Name), "cash")
}

func (a Account) String() string {
	return fmt.Sprintf("%s %s (%s)", a.Code, a.Name, a.Type)
}
