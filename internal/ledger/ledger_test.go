package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func newTestStore(t *testing.T) *store.MemoryStore {
	t.Helper()
	s := store.NewMemoryStore()
	ctx := context.Background()

	accounts := []model.Account{
		{Code: "1000", Name: "Cash", Type: model.AccountTypeAsset},
		{Code: "2100", Name: "Tax Payable", Type: model.AccountTypeLiability},
		{Code: "3000", Name: "Owner Equity", Type: model.AccountTypeEquity},
		{Code: "4000", Name: "Sales Revenue", Type: model.AccountTypeRevenue},
		{Code: "5000", Name: "Office Supplies Expense", Type: model.AccountTypeExpense},
	}
	for _, a := range accounts {
		require.NoError(t, s.CreateAccount(ctx, a))
	}
	return s
}

func balance(t *testing.T, s store.Store, code string) decimal.Decimal {
	t.Helper()
	a, err := s.GetAccount(context.Background(), code)
	require.NoError(t, err)
	return a.Balance
}

func TestCommit_DebitCashCreditRevenue(t *testing.T) {
	s := newTestStore(t)
	led := New(s)

	entry, err := led.Commit(context.Background(), Draft{
		Description: "Consulting income",
		Date:        date(2025, 3, 10),
		Lines: []model.JournalLine{
			{AccountCode: "1000", Amount: dec("500.00"), IsDebit: true},
			{AccountCode: "4000", Amount: dec("500.00"), IsDebit: false},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), entry.ID)
	assert.Equal(t, model.TypeJournalEntry, entry.Type)

	// Debit increases the asset, credit increases the revenue.
	assert.True(t, balance(t, s, "1000").Equal(dec("500.00")))
	assert.True(t, balance(t, s, "4000").Equal(dec("500.00")))
}

func TestCommit_SignConvention(t *testing.T) {
	s := newTestStore(t)
	led := New(s)

	// Pay an expense from cash: expense up, cash down.
	_, err := led.Commit(context.Background(), Draft{
		Description: "Office supplies",
		Date:        date(2025, 3, 11),
		Lines: []model.JournalLine{
			{AccountCode: "5000", Amount: dec("80.00"), IsDebit: true},
			{AccountCode: "1000", Amount: dec("80.00"), IsDebit: false},
		},
	})
	require.NoError(t, err)

	assert.True(t, balance(t, s, "5000").Equal(dec("80.00")))
	assert.True(t, balance(t, s, "1000").Equal(dec("-80.00")))
}

func TestCommit_Unbalanced(t *testing.T) {
	s := newTestStore(t)
	led := New(s)

	_, err := led.Commit(context.Background(), Draft{
		Description: "Off by a cent",
		Lines: []model.JournalLine{
			{AccountCode: "1000", Amount: dec("500.00"), IsDebit: true},
			{AccountCode: "4000", Amount: dec("499.99"), IsDebit: false},
		},
	})

	var unbalanced *model.UnbalancedEntryError
	require.ErrorAs(t, err, &unbalanced)
	assert.True(t, unbalanced.Debits.Equal(dec("500.00")))
	assert.True(t, unbalanced.Credits.Equal(dec("499.99")))

	// Nothing applied, nothing recorded.
	assert.True(t, balance(t, s, "1000").IsZero())
	assert.True(t, balance(t, s, "4000").IsZero())
	entries, err := led.Entries(context.Background(), store.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCommit_TooFewLines(t *testing.T) {
	led := New(newTestStore(t))

	_, err := led.Commit(context.Background(), Draft{
		Description: "Single-sided",
		Lines: []model.JournalLine{
			{AccountCode: "1000", Amount: dec("10.00"), IsDebit: true},
		},
	})

	var unbalanced *model.UnbalancedEntryError
	require.ErrorAs(t, err, &unbalanced)
	assert.Equal(t, 1, unbalanced.LineCount)
}

func TestCommit_UnknownAccount(t *testing.T) {
	s := newTestStore(t)
	led := New(s)

	_, err := led.Commit(context.Background(), Draft{
		Description: "Bad reference",
		Lines: []model.JournalLine{
			{AccountCode: "9999", Amount: dec("25.00"), IsDebit: true},
			{AccountCode: "4000", Amount: dec("25.00"), IsDebit: false},
		},
	})

	var notFound *model.AccountNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "9999", notFound.Code)

	assert.True(t, balance(t, s, "4000").IsZero())
	entries, err := led.Entries(context.Background(), store.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCommit_NonPositiveAmount(t *testing.T) {
	led := New(newTestStore(t))

	_, err := led.Commit(context.Background(), Draft{
		Description: "Zero line",
		Lines: []model.JournalLine{
			{AccountCode: "1000", Amount: decimal.Zero, IsDebit: true},
			{AccountCode: "4000", Amount: decimal.Zero, IsDebit: false},
		},
	})

	var invalid *model.InvalidAmountError
	require.ErrorAs(t, err, &invalid)
}

func TestCommit_MultiLineEntry(t *testing.T) {
	s := newTestStore(t)
	led := New(s)

	entry, err := led.Commit(context.Background(), Draft{
		Description: "Sale with tax collected",
		Type:        model.TypeCashSale,
		Lines: []model.JournalLine{
			{AccountCode: "1000", Amount: dec("1100.00"), IsDebit: true},
			{AccountCode: "4000", Amount: dec("1000.00"), IsDebit: false},
			{AccountCode: "2100", Amount: dec("100.00"), IsDebit: false},
		},
	})
	require.NoError(t, err)
	require.Len(t, entry.Lines, 3)

	assert.True(t, balance(t, s, "1000").Equal(dec("1100.00")))
	assert.True(t, balance(t, s, "4000").Equal(dec("1000.00")))
	assert.True(t, balance(t, s, "2100").Equal(dec("100.00")))
}

func TestCommit_DefaultDateIsDayGranular(t *testing.T) {
	s := newTestStore(t)
	led := New(s)
	ctx := context.Background()

	entry, err := led.Commit(ctx, Draft{
		Description: "Dated today",
		Lines: []model.JournalLine{
			{AccountCode: "1000", Amount: dec("10.00"), IsDebit: true},
			{AccountCode: "4000", Amount: dec("10.00"), IsDebit: false},
		},
	})
	require.NoError(t, err)

	year, month, day := time.Now().Date()
	today := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, today, entry.Date)

	// A To=today filter must include an entry committed today, on any
	// backend; a time-of-day remainder would push it past the bound.
	entries, err := led.Entries(ctx, store.EntryFilter{To: today})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, today, entries[0].Date)
}

func TestCommit_ExplicitDateTruncated(t *testing.T) {
	s := newTestStore(t)
	led := New(s)

	noon := time.Date(2025, 4, 2, 12, 30, 45, 0, time.UTC)
	entry, err := led.Commit(context.Background(), Draft{
		Description: "Midday",
		Date:        noon,
		Lines: []model.JournalLine{
			{AccountCode: "1000", Amount: dec("10.00"), IsDebit: true},
			{AccountCode: "4000", Amount: dec("10.00"), IsDebit: false},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, date(2025, 4, 2), entry.Date)

	entries, err := led.Entries(context.Background(), store.EntryFilter{To: date(2025, 4, 2)})
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestCommit_MonotonicIDs(t *testing.T) {
	s := newTestStore(t)
	led := New(s)

	for i := 1; i <= 3; i++ {
		entry, err := led.Commit(context.Background(), Draft{
			Description: fmt.Sprintf("Entry %d", i),
			Lines: []model.JournalLine{
				{AccountCode: "1000", Amount: dec("10.00"), IsDebit: true},
				{AccountCode: "4000", Amount: dec("10.00"), IsDebit: false},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i), entry.ID)
	}
}

func TestQueries(t *testing.T) {
	s := newTestStore(t)
	led := New(s)
	ctx := context.Background()

	first, err := led.Commit(ctx, Draft{
		Description: "January sale",
		Date:        date(2025, 1, 15),
		Type:        model.TypeCashSale,
		Lines: []model.JournalLine{
			{AccountCode: "1000", Amount: dec("100.00"), IsDebit: true},
			{AccountCode: "4000", Amount: dec("100.00"), IsDebit: false},
		},
	})
	require.NoError(t, err)

	_, err = led.Commit(ctx, Draft{
		Description: "February purchase",
		Date:        date(2025, 2, 20),
		Type:        model.TypeCashPurchase,
		Lines: []model.JournalLine{
			{AccountCode: "5000", Amount: dec("40.00"), IsDebit: true},
			{AccountCode: "1000", Amount: dec("40.00"), IsDebit: false},
		},
	})
	require.NoError(t, err)

	got, err := led.Entry(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "January sale", got.Description)
	require.Len(t, got.Lines, 2)

	janOnly, err := led.Entries(ctx, store.EntryFilter{
		From: date(2025, 1, 1),
		To:   date(2025, 1, 31),
	})
	require.NoError(t, err)
	require.Len(t, janOnly, 1)
	assert.Equal(t, first.ID, janOnly[0].ID)

	sales, err := led.Entries(ctx, store.EntryFilter{Type: model.TypeCashSale})
	require.NoError(t, err)
	require.Len(t, sales, 1)

	lines, err := led.Lines(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.True(t, lines[0].IsDebit)
	assert.True(t, lines[0].Amount.Equal(dec("100.00")))
}

// failingStore wraps a Store and fails a chosen transaction step to
// exercise rollback.
type failingStore struct {
	store.Store
	failDelta  bool
	failInsert bool
}

func (f *failingStore) Begin(ctx context.Context) (store.Tx, error) {
	tx, err := f.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &failingTx{Tx: tx, failDelta: f.failDelta, failInsert: f.failInsert}, nil
}

type failingTx struct {
	store.Tx
	failDelta  bool
	failInsert bool
}

func (f *failingTx) InsertLines(entryID int64, lines []model.JournalLine) error {
	if f.failInsert {
		return fmt.Errorf("disk full")
	}
	return f.Tx.InsertLines(entryID, lines)
}

func (f *failingTx) ApplyDelta(code string, delta decimal.Decimal) error {
	if f.failDelta {
		return fmt.Errorf("disk full")
	}
	return f.Tx.ApplyDelta(code, delta)
}

func TestCommit_RollbackOnDeltaFailure(t *testing.T) {
	mem := newTestStore(t)
	led := New(&failingStore{Store: mem, failDelta: true})

	_, err := led.Commit(context.Background(), Draft{
		Description: "Doomed",
		Lines: []model.JournalLine{
			{AccountCode: "1000", Amount: dec("50.00"), IsDebit: true},
			{AccountCode: "4000", Amount: dec("50.00"), IsDebit: false},
		},
	})
	require.Error(t, err)

	// The entry insert succeeded inside the transaction but the whole
	// commit must have rolled back.
	entries, err := mem.ListEntries(context.Background(), store.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.True(t, balance(t, mem, "1000").IsZero())
	assert.True(t, balance(t, mem, "4000").IsZero())
}

func TestCommit_RollbackOnPersistFailure(t *testing.T) {
	mem := newTestStore(t)
	led := New(&failingStore{Store: mem, failInsert: true})

	_, err := led.Commit(context.Background(), Draft{
		Description: "Doomed",
		Lines: []model.JournalLine{
			{AccountCode: "1000", Amount: dec("50.00"), IsDebit: true},
			{AccountCode: "4000", Amount: dec("50.00"), IsDebit: false},
		},
	})
	require.Error(t, err)

	entries, err := mem.ListEntries(context.Background(), store.EntryFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.True(t, balance(t, mem, "1000").IsZero())
}
