package transactions

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbooks-dev/openbooks/internal/accounts"
	"github.com/openbooks-dev/openbooks/internal/ledger"
	"github.com/openbooks-dev/openbooks/internal/model"
	"github.com/openbooks-dev/openbooks/internal/store"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestBuilder(t *testing.T) (*Builder, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	r := accounts.NewRegistry(s)
	require.NoError(t, r.SeedDefaultChart(context.Background(), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	return NewBuilder(ledger.New(s), r), s
}

func balance(t *testing.T, s store.Store, code string) decimal.Decimal {
	t.Helper()
	a, err := s.GetAccount(context.Background(), code)
	require.NoError(t, err)
	return a.Balance
}

func TestCashSale_WithTax(t *testing.T) {
	b, s := newTestBuilder(t)

	entry, err := b.CashSale(context.Background(), CashSaleParams{
		CashAccount:    "1000",
		RevenueAccount: "4000",
		TaxAccount:     "2100",
		Amount:         dec("1000.00"),
		TaxRate:        dec("0.10"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.TypeCashSale, entry.Type)
	require.Len(t, entry.Lines, 3)
	assert.True(t, entry.Balanced())

	assert.True(t, balance(t, s, "1000").Equal(dec("1100.00")))
	assert.True(t, balance(t, s, "4000").Equal(dec("1000.00")))
	assert.True(t, balance(t, s, "2100").Equal(dec("100.00")))
}

func TestCashSale_NoTax(t *testing.T) {
	b, s := newTestBuilder(t)

	entry, err := b.CashSale(context.Background(), CashSaleParams{
		CashAccount:    "1000",
		RevenueAccount: "4000",
		Amount:         dec("500.00"),
	})
	require.NoError(t, err)

	require.Len(t, entry.Lines, 2)
	assert.Equal(t, "Cash sale", entry.Description)
	assert.True(t, balance(t, s, "1000").Equal(dec("500.00")))
	assert.True(t, balance(t, s, "2100").IsZero())
}

func TestCashSale_AwkwardTaxRounding(t *testing.T) {
	b, s := newTestBuilder(t)

	// 33.33 * 0.0825 = 2.749725, rounds to 2.75; gross must follow the
	// rounded tax so the entry still balances to the cent.
	entry, err := b.CashSale(context.Background(), CashSaleParams{
		CashAccount:    "1000",
		RevenueAccount: "4000",
		TaxAccount:     "2100",
		Amount:         dec("33.33"),
		TaxRate:        dec("0.0825"),
	})
	require.NoError(t, err)

	assert.True(t, entry.Balanced())
	assert.True(t, balance(t, s, "1000").Equal(dec("36.08")))
	assert.True(t, balance(t, s, "2100").Equal(dec("2.75")))
}

func TestCashSale_TaxAccountRequired(t *testing.T) {
	b, _ := newTestBuilder(t)

	_, err := b.CashSale(context.Background(), CashSaleParams{
		CashAccount:    "1000",
		RevenueAccount: "4000",
		Amount:         dec("100.00"),
		TaxRate:        dec("0.10"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tax account is required")
}

func TestCashPurchase_WithTax(t *testing.T) {
	b, s := newTestBuilder(t)

	entry, err := b.CashPurchase(context.Background(), CashPurchaseParams{
		CashAccount:    "1000",
		ExpenseAccount: "5000",
		TaxAccount:     "2100",
		Amount:         dec("200.00"),
		TaxRate:        dec("0.10"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.TypeCashPurchase, entry.Type)
	require.Len(t, entry.Lines, 3)

	assert.True(t, balance(t, s, "5000").Equal(dec("200.00")))
	// Recoverable tax debits the liability, pulling it negative here.
	assert.True(t, balance(t, s, "2100").Equal(dec("-20.00")))
	assert.True(t, balance(t, s, "1000").Equal(dec("-220.00")))
}

func TestOpeningBalance_DebitNormal(t *testing.T) {
	b, s := newTestBuilder(t)

	entry, err := b.OpeningBalance(context.Background(), OpeningBalanceParams{
		AccountCode:   "1000",
		OffsetAccount: "3000",
		Amount:        dec("5000.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.TypeOpeningBalance, entry.Type)
	require.Len(t, entry.Lines, 2)
	assert.True(t, entry.Lines[0].IsDebit)
	assert.False(t, entry.Lines[1].IsDebit)

	assert.True(t, balance(t, s, "1000").Equal(dec("5000.00")))
	assert.True(t, balance(t, s, "3000").Equal(dec("5000.00")))
}

func TestOpeningBalance_CreditNormal(t *testing.T) {
	b, s := newTestBuilder(t)

	_, err := b.OpeningBalance(context.Background(), OpeningBalanceParams{
		AccountCode:   "2000",
		OffsetAccount: "3000",
		Amount:        dec("750.00"),
	})
	require.NoError(t, err)

	assert.True(t, balance(t, s, "2000").Equal(dec("750.00")))
	assert.True(t, balance(t, s, "3000").Equal(dec("-750.00")))
}

func TestOpeningBalance_NegativeFlipsSides(t *testing.T) {
	b, s := newTestBuilder(t)

	_, err := b.OpeningBalance(context.Background(), OpeningBalanceParams{
		AccountCode:   "1000",
		OffsetAccount: "3000",
		Amount:        dec("-100.00"),
	})
	require.NoError(t, err)

	assert.True(t, balance(t, s, "1000").Equal(dec("-100.00")))
	assert.True(t, balance(t, s, "3000").Equal(dec("-100.00")))
}

func TestOpeningBalance_UnknownAccount(t *testing.T) {
	b, _ := newTestBuilder(t)

	_, err := b.OpeningBalance(context.Background(), OpeningBalanceParams{
		AccountCode:   "9999",
		OffsetAccount: "3000",
		Amount:        dec("100.00"),
	})

	var notFound *model.AccountNotFoundError
	require.ErrorAs(t, err, &notFound)
}
