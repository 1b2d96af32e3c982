// Package ledger is the double-entry core: it validates candidate
// journal entries, commits them atomically, and applies the resulting
// balance deltas to the chart of accounts. It is the only writer of
// account balances.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/openbooks-dev/openbooks/internal/logger"
	"github.com/openbooks-dev/openbooks/internal/model"
	"github.com/openbooks-dev/openbooks/internal/store"
)

// Ledger owns journal entries and enforces the balanced-entry
// invariant over a persistence store.
type Ledger struct {
	store store.Store
}

// New creates a Ledger over a store.
func New(s store.Store) *Ledger {
	return &Ledger{store: s}
}

// Draft is a candidate journal entry. A zero Date defaults to today
// and an empty Type to journal_entry.
type Draft struct {
	Description string
	Date        time.Time
	Type        model.TransactionType
	Reference   string
	Lines       []model.JournalLine
}

// Commit validates a draft and persists it atomically: the entry, its
// lines, and every balance delta land together or not at all. On
// success the committed entry is returned with its assigned id.
//
// Sign convention: a line on an account's normal side increases its
// balance. Asset and Expense accounts are debit-normal; Liability,
// Equity and Revenue accounts are credit-normal.
func (l *Ledger) Commit(ctx context.Context, draft Draft) (model.JournalEntry, error) {
	if draft.Date.IsZero() {
		draft.Date = time.Now()
	}
	// Entry dates are day-granular everywhere they travel (flags, CSV,
	// date columns); normalize here so every backend stores and
	// filters the same value.
	year, month, day := draft.Date.Date()
	draft.Date = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if draft.Type == "" {
		draft.Type = model.TypeJournalEntry
	}

	if len(draft.Lines) < 2 {
		return model.JournalEntry{}, &model.UnbalancedEntryError{LineCount: len(draft.Lines)}
	}

	// Load a snapshot of every referenced account before validating,
	// so an unknown code rejects the entry before any mutation.
	accounts := make(map[string]model.Account, len(draft.Lines))
	for _, line := range draft.Lines {
		if _, ok := accounts[line.AccountCode]; ok {
			continue
		}
		account, err := l.store.GetAccount(ctx, line.AccountCode)
		if err != nil {
			return model.JournalEntry{}, err
		}
		accounts[line.AccountCode] = account
	}

	if err := validate(draft.Lines, accounts); err != nil {
		return model.JournalEntry{}, err
	}

	entry := model.JournalEntry{
		Description: draft.Description,
		Date:        draft.Date,
		Type:        draft.Type,
		Reference:   draft.Reference,
		Lines:       draft.Lines,
	}

	tx, err := l.store.Begin(ctx)
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("beginning commit: %w", err)
	}

	id, err := l.write(tx, entry, accounts)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("rollback failed", rbErr, logger.Fields{"entry": entry.Description})
		}
		return model.JournalEntry{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.JournalEntry{}, fmt.Errorf("committing entry: %w", err)
	}

	entry.ID = id
	logger.Info("journal entry committed", logger.Fields{
		"entryId": id,
		"type":    string(entry.Type),
		"debits":  entry.TotalDebits().StringFixed(2),
	})
	return entry, nil
}

// write stages the entry, its lines and the per-line balance deltas
// inside an open store transaction.
func (l *Ledger) write(tx store.Tx, entry model.JournalEntry, accounts map[string]model.Account) (int64, error) {
	id, err := tx.InsertEntry(entry)
	if err != nil {
		return 0, fmt.Errorf("persisting entry: %w", err)
	}
	if err := tx.InsertLines(id, entry.Lines); err != nil {
		return 0, fmt.Errorf("persisting lines: %w", err)
	}
	for _, line := range entry.Lines {
		delta := accounts[line.AccountCode].Type.SignedAmount(line.Amount, line.IsDebit)
		if err := tx.ApplyDelta(line.AccountCode, delta); err != nil {
			return 0, fmt.Errorf("applying delta to %s: %w", line.AccountCode, err)
		}
	}
	return id, nil
}

// Entry returns a committed entry with its lines.
func (l *Ledger) Entry(ctx context.Context, id int64) (model.JournalEntry, error) {
	return l.store.GetEntry(ctx, id)
}

// Entries returns committed entry headers matching the filter.
func (l *Ledger) Entries(ctx context.Context, filter store.EntryFilter) ([]model.JournalEntry, error) {
	return l.store.ListEntries(ctx, filter)
}

// Lines returns a committed entry's lines in order.
func (l *Ledger) Lines(ctx context.Context, entryID int64) ([]model.JournalLine, error) {
	return l.store.GetLines(ctx, entryID)
}
