package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestParseAccountType(t *testing.T) {
	for _, valid := range AccountTypes {
		got, err := ParseAccountType(string(valid))
		require.NoError(t, err)
		assert.Equal(t, valid, got)
	}

	got, err := ParseAccountType("  Asset ")
	require.NoError(t, err)
	assert.Equal(t, AccountTypeAsset, got)

	_, err = ParseAccountType("bank")
	var invalid *InvalidAccountTypeError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "bank", invalid.Type)
}

func TestSignedAmount(t *testing.T) {
	amount := dec("100.00")

	tests := []struct {
		accountType AccountType
		isDebit     bool
		want        string
	}{
		{AccountTypeAsset, true, "100.00"},
		{AccountTypeAsset, false, "-100.00"},
		{AccountTypeExpense, true, "100.00"},
		{AccountTypeExpense, false, "-100.00"},
		{AccountTypeLiability, true, "-100.00"},
		{AccountTypeLiability, false, "100.00"},
		{AccountTypeEquity, true, "-100.00"},
		{AccountTypeEquity, false, "100.00"},
		{AccountTypeRevenue, true, "-100.00"},
		{AccountTypeRevenue, false, "100.00"},
	}

	for _, tt := range tests {
		got := tt.accountType.SignedAmount(amount, tt.isDebit)
		assert.True(t, got.Equal(dec(tt.want)),
			"%s debit=%v: got %s want %s", tt.accountType, tt.isDebit, got, tt.want)
	}
}

func TestIsCash(t *testing.T) {
	assert.True(t, Account{Name: "Cash", Type: AccountTypeAsset}.IsCash())
	assert.True(t, Account{Name: "Petty Cash Drawer", Type: AccountTypeAsset}.IsCash())
	assert.False(t, Account{Name: "Accounts Receivable", Type: AccountTypeAsset}.IsCash())
	// Name alone is not enough; the type must be asset.
	assert.False(t, Account{Name: "Cash Over/Short", Type: AccountTypeExpense}.IsCash())
}

func TestCentPrecise(t *testing.T) {
	assert.True(t, CentPrecise(dec("10.25")))
	assert.True(t, CentPrecise(dec("10")))
	assert.True(t, CentPrecise(dec("-3.10")))
	assert.True(t, CentPrecise(decimal.Zero))
	assert.False(t, CentPrecise(dec("10.005")))
	assert.False(t, CentPrecise(dec("0.001")))
}

func TestJournalEntryTotals(t *testing.T) {
	entry := JournalEntry{
		Lines: []JournalLine{
			{AccountCode: "1000", Amount: dec("110.00"), IsDebit: true},
			{AccountCode: "4000", Amount: dec("100.00"), IsDebit: false},
			{AccountCode: "2100", Amount: dec("10.00"), IsDebit: false},
		},
	}

	assert.True(t, entry.TotalDebits().Equal(dec("110.00")))
	assert.True(t, entry.TotalCredits().Equal(dec("110.00")))
	assert.True(t, entry.Balanced())

	entry.Lines[2].Amount = dec("10.01")
	assert.False(t, entry.Balanced())
}
