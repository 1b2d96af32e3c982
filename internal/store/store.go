// Package store defines the persistence collaborator for the ledger:
// accounts keyed by code, journal entries keyed by id, and a
// transaction boundary for atomic commits.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbooks-dev/openbooks/internal/model"
)

// EntryFilter narrows entry and posted-line queries. Zero time values
// mean unbounded; an empty type matches everything.
type EntryFilter struct {
	From        time.Time
	To          time.Time
	Type        model.TransactionType
	AccountCode string
}

// Matches reports whether an entry's date and type pass the filter.
func (f EntryFilter) Matches(date time.Time, entryType model.TransactionType) bool {
	if !f.From.IsZero() && date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && date.After(f.To) {
		return false
	}
	if f.Type != "" && entryType != f.Type {
		return false
	}
	return true
}

// Store is the persistence layer behind the account registry and the
// ledger. Reads see only committed state; writes that must be atomic
// go through a Tx from Begin.
type Store interface {
	CreateAccount(ctx context.Context, account model.Account) error
	GetAccount(ctx context.Context, code string) (model.Account, error)
	// ListAccounts returns accounts ordered by code, optionally
	// restricted to the given types.
	ListAccounts(ctx context.Context, types ...model.AccountType) ([]model.Account, error)

	GetEntry(ctx context.Context, id int64) (model.JournalEntry, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]model.JournalEntry, error)
	GetLines(ctx context.Context, entryID int64) ([]model.JournalLine, error)
	// PostedLines returns committed lines joined with entry metadata,
	// ordered by entry id then line position.
	PostedLines(ctx context.Context, filter EntryFilter) ([]model.PostedLine, error)

	Begin(ctx context.Context) (Tx, error)
	Close() error
}

// Tx is one atomic write scope. Either Commit applies every staged
// write or Rollback discards them all; an entry is never persisted
// without its balance deltas, nor deltas without the entry.
type Tx interface {
	// InsertEntry persists the entry header and returns its assigned id.
	InsertEntry(entry model.JournalEntry) (int64, error)
	// InsertLines persists the entry's lines in order.
	InsertLines(entryID int64, lines []model.JournalLine) error
	// ApplyDelta adds a signed amount to an account's running balance.
	ApplyDelta(code string, delta decimal.Decimal) error
	Commit() error
	Rollback() error
}
