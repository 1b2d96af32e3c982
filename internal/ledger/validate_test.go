package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbooks-dev/openbooks/internal/model"
)

func testAccounts() map[string]model.Account {
	return map[string]model.Account{
		"1000": {Code: "1000", Name: "Cash", Type: model.AccountTypeAsset},
		"4000": {Code: "4000", Name: "Sales Revenue", Type: model.AccountTypeRevenue},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		lines   []model.JournalLine
		wantErr string
	}{
		{
			name: "balanced pair",
			lines: []model.JournalLine{
				{AccountCode: "1000", Amount: dec("100.00"), IsDebit: true},
				{AccountCode: "4000", Amount: dec("100.00"), IsDebit: false},
			},
		},
		{
			name:    "no lines",
			lines:   nil,
			wantErr: "at least 2 lines",
		},
		{
			name: "unknown account checked before balance",
			lines: []model.JournalLine{
				{AccountCode: "9999", Amount: dec("1.00"), IsDebit: true},
				{AccountCode: "4000", Amount: dec("2.00"), IsDebit: false},
			},
			wantErr: "9999",
		},
		{
			name: "unbalanced",
			lines: []model.JournalLine{
				{AccountCode: "1000", Amount: dec("100.00"), IsDebit: true},
				{AccountCode: "4000", Amount: dec("99.00"), IsDebit: false},
			},
			wantErr: "debits 100.00 != credits 99.00",
		},
		{
			name: "negative amounts",
			lines: []model.JournalLine{
				{AccountCode: "1000", Amount: dec("-5.00"), IsDebit: true},
				{AccountCode: "4000", Amount: dec("-5.00"), IsDebit: false},
			},
			wantErr: "must be positive",
		},
		{
			name: "sub-cent precision",
			lines: []model.JournalLine{
				{AccountCode: "1000", Amount: dec("10.005"), IsDebit: true},
				{AccountCode: "4000", Amount: dec("10.005"), IsDebit: false},
			},
			wantErr: "2 decimal places",
		},
		{
			name: "quantity times unit price mismatch",
			lines: []model.JournalLine{
				{AccountCode: "1000", Amount: dec("30.00"), IsDebit: true},
				{AccountCode: "4000", Amount: dec("30.00"), IsDebit: false,
					Quantity: dec("3"), UnitPrice: dec("9.00")},
			},
			wantErr: "quantity x unit price",
		},
		{
			name: "quantity times unit price match",
			lines: []model.JournalLine{
				{AccountCode: "1000", Amount: dec("27.00"), IsDebit: true},
				{AccountCode: "4000", Amount: dec("27.00"), IsDebit: false,
					Quantity: dec("3"), UnitPrice: dec("9.00")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(tt.lines, testAccounts())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
