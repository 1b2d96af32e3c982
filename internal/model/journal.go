package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tags a journal entry with the business event that
// produced it. The ledger never branches on the tag; it exists for
// reporting and classification.
type TransactionType string

const (
	TypeJournalEntry   TransactionType = "journal_entry"
	TypeCashSale       TransactionType = "cash_sale"
	TypeCashPurchase   TransactionType = "cash_purchase"
	TypeOpeningBalance TransactionType = "opening_balance"
)

// JournalLine is one debit or credit row inside a journal entry.
// Amount is always a positive magnitude; IsDebit picks the side.
// Quantity, UnitPrice and TaxRate are optional descriptive fields;
// when both Quantity and UnitPrice are set the amount must equal
// their product (tax is always split into its own line).
type JournalLine struct {
	AccountCode string
	Amount      decimal.Decimal
	IsDebit     bool
	Narration   string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxRate     decimal.Decimal
}

// JournalEntry is one balanced transaction: two or more lines whose
// debit total equals the credit total. Entries are immutable once
// committed; corrections are new offsetting entries.
type JournalEntry struct {
	ID          int64
	Description string
	Date        time.Time
	Type        TransactionType
	Reference   string
	Lines       []JournalLine
}

// TotalDebits sums the debit-side line amounts.
func (e JournalEntry) TotalDebits() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		if l.IsDebit {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// TotalCredits sums the credit-side line amounts.
func (e JournalEntry) TotalCredits() decimal.Decimal {
	total := decimal.Zero
	for _, l := range e.Lines {
		if !l.IsDebit {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// Balanced reports whether debits equal credits exactly.
func (e JournalEntry) Balanced() bool {
	return e.TotalDebits().Equal(e.TotalCredits())
}

// PostedLine is a journal line joined with its parent entry's
// metadata, as returned by period queries for reporting.
type PostedLine struct {
	JournalLine
	EntryID   int64
	EntryDate time.Time
	EntryType TransactionType
}
