// Package transactions builds correctly shaped journal entries for
// common business events and submits them to the ledger. Builders
// compose lines only; every invariant is enforced once, in the
// ledger commit.
package transactions

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbooks-dev/openbooks/internal/accounts"
	"github.com/openbooks-dev/openbooks/internal/ledger"
	"github.com/openbooks-dev/openbooks/internal/model"
)

// Builder translates business events into balanced journal entries.
type Builder struct {
	ledger   *ledger.Ledger
	registry *accounts.Registry
}

// NewBuilder creates a Builder over a ledger and account registry.
func NewBuilder(l *ledger.Ledger, r *accounts.Registry) *Builder {
	return &Builder{ledger: l, registry: r}
}

// CashSaleParams holds parameters for a cash sale.
type CashSaleParams struct {
	CashAccount    string
	RevenueAccount string
	TaxAccount     string // required when TaxRate is positive
	Amount         decimal.Decimal
	TaxRate        decimal.Decimal // e.g. 0.10 for 10%
	Description    string
	Date           time.Time
	Reference      string
}

// CashSale posts a sale settled in cash: debit the cash account for
// the gross amount, credit revenue for the net amount, and credit the
// tax account for the tax portion when a tax rate applies. The tax is
// rounded to cents before the gross is derived, so the entry always
// balances exactly.
func (b *Builder) CashSale(ctx context.Context, p CashSaleParams) (model.JournalEntry, error) {
	tax, gross, err := splitTax(p.Amount, p.TaxRate, p.TaxAccount)
	if err != nil {
		return model.JournalEntry{}, err
	}

	if p.Description == "" {
		p.Description = "Cash sale"
	}

	lines := []model.JournalLine{
		{AccountCode: p.CashAccount, Amount: gross, IsDebit: true},
		{AccountCode: p.RevenueAccount, Amount: p.Amount, IsDebit: false, TaxRate: p.TaxRate},
	}
	if tax.IsPositive() {
		lines = append(lines, model.JournalLine{
			AccountCode: p.TaxAccount,
			Amount:      tax,
			IsDebit:     false,
			Narration:   "sales tax",
		})
	}

	return b.ledger.Commit(ctx, ledger.Draft{
		Description: p.Description,
		Date:        p.Date,
		Type:        model.TypeCashSale,
		Reference:   p.Reference,
		Lines:       lines,
	})
}

// CashPurchaseParams holds parameters for a cash purchase.
type CashPurchaseParams struct {
	CashAccount    string
	ExpenseAccount string
	TaxAccount     string // required when TaxRate is positive
	Amount         decimal.Decimal
	TaxRate        decimal.Decimal
	Description    string
	Date           time.Time
	Reference      string
}

// CashPurchase posts an expense settled in cash, the mirror of
// CashSale: debit the expense account for the net amount, debit the
// tax account for any recoverable tax, and credit cash for the gross.
func (b *Builder) CashPurchase(ctx context.Context, p CashPurchaseParams) (model.JournalEntry, error) {
	tax, gross, err := splitTax(p.Amount, p.TaxRate, p.TaxAccount)
	if err != nil {
		return model.JournalEntry{}, err
	}

	if p.Description == "" {
		p.Description = "Cash purchase"
	}

	lines := []model.JournalLine{
		{AccountCode: p.ExpenseAccount, Amount: p.Amount, IsDebit: true, TaxRate: p.TaxRate},
	}
	if tax.IsPositive() {
		lines = append(lines, model.JournalLine{
			AccountCode: p.TaxAccount,
			Amount:      tax,
			IsDebit:     true,
			Narration:   "purchase tax",
		})
	}
	lines = append(lines, model.JournalLine{
		AccountCode: p.CashAccount,
		Amount:      gross,
		IsDebit:     false,
	})

	return b.ledger.Commit(ctx, ledger.Draft{
		Description: p.Description,
		Date:        p.Date,
		Type:        model.TypeCashPurchase,
		Reference:   p.Reference,
		Lines:       lines,
	})
}

// OpeningBalanceParams holds parameters for posting an opening
// balance as an auditable journal entry.
type OpeningBalanceParams struct {
	AccountCode   string
	OffsetAccount string // equity or suspense account absorbing the other side
	Amount        decimal.Decimal
	Date          time.Time
	Description   string
}

// OpeningBalance records an account's opening balance as a journal
// entry against a designated offset account, so the balance is
// backed by an auditable entry rather than silently seeded. The
// account's normal side receives the amount; a negative amount posts
// to the opposite side.
func (b *Builder) OpeningBalance(ctx context.Context, p OpeningBalanceParams) (model.JournalEntry, error) {
	account, err := b.registry.Get(ctx, p.AccountCode)
	if err != nil {
		return model.JournalEntry{}, err
	}

	amount := p.Amount
	debitSide := account.Type.DebitNormal()
	if amount.IsNegative() {
		amount = amount.Neg()
		debitSide = !debitSide
	}

	if p.Description == "" {
		p.Description = fmt.Sprintf("Opening balance for %s", p.AccountCode)
	}

	return b.ledger.Commit(ctx, ledger.Draft{
		Description: p.Description,
		Date:        p.Date,
		Type:        model.TypeOpeningBalance,
		Lines: []model.JournalLine{
			{AccountCode: p.AccountCode, Amount: amount, IsDebit: debitSide},
			{AccountCode: p.OffsetAccount, Amount: amount, IsDebit: !debitSide},
		},
	})
}

// splitTax derives the cent-rounded tax portion and gross total for a
// net amount.
func splitTax(amount, taxRate decimal.Decimal, taxAccount string) (tax, gross decimal.Decimal, err error) {
	tax = amount.Mul(taxRate).Round(2)
	if tax.IsPositive() && taxAccount == "" {
		return decimal.Zero, decimal.Zero, fmt.Errorf("tax account is required when tax rate is positive")
	}
	return tax, amount.Add(tax), nil
}
