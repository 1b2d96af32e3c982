package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/openbooks-dev/openbooks/internal/model"
)

// MemoryStore is an in-memory Store used by tests and the sample
// command. Writers are serialized by holding the store lock for the
// life of a transaction; staged writes become visible only on Commit.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]model.Account
	entries  map[int64]model.JournalEntry
	order    []int64
	nextID   int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]model.Account),
		entries:  make(map[int64]model.JournalEntry),
		nextID:   1,
	}
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// CreateAccount adds a new account to the chart.
func (s *MemoryStore) CreateAccount(_ context.Context, a model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[a.Code]; exists {
		return &model.DuplicateAccountError{Code: a.Code}
	}
	s.accounts[a.Code] = a
	return nil
}

// GetAccount returns one account by code.
func (s *MemoryStore) GetAccount(_ context.Context, code string) (model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[code]
	if !ok {
		return model.Account{}, &model.AccountNotFoundError{Code: code}
	}
	return a, nil
}

// ListAccounts returns accounts ordered by code, optionally filtered
// by type.
func (s *MemoryStore) ListAccounts(_ context.Context, types ...model.AccountType) ([]model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[model.AccountType]bool, len(types))
	for _, t := range types {
		wanted[t] = true
	}

	var accounts []model.Account
	for _, a := range s.accounts {
		if len(wanted) > 0 && !wanted[a.Type] {
			continue
		}
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Code < accounts[j].Code })
	return accounts, nil
}

// GetEntry returns one journal entry with its lines.
func (s *MemoryStore) GetEntry(_ context.Context, id int64) (model.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return model.JournalEntry{}, fmt.Errorf("journal entry %d not found", id)
	}
	e.Lines = append([]model.JournalLine(nil), e.Lines...)
	return e, nil
}

// ListEntries returns entry headers matching the filter, ordered by id.
func (s *MemoryStore) ListEntries(_ context.Context, filter EntryFilter) ([]model.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []model.JournalEntry
	for _, id := range s.order {
		e := s.entries[id]
		if !filter.Matches(e.Date, e.Type) {
			continue
		}
		if filter.AccountCode != "" && !touchesAccount(e, filter.AccountCode) {
			continue
		}
		header := e
		header.Lines = nil
		entries = append(entries, header)
	}
	return entries, nil
}

// GetLines returns an entry's lines in order.
func (s *MemoryStore) GetLines(_ context.Context, entryID int64) ([]model.JournalLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[entryID]
	if !ok {
		return nil, fmt.Errorf("journal entry %d not found", entryID)
	}
	return append([]model.JournalLine(nil), e.Lines...), nil
}

// PostedLines returns committed lines joined with entry metadata.
func (s *MemoryStore) PostedLines(_ context.Context, filter EntryFilter) ([]model.PostedLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var lines []model.PostedLine
	for _, id := range s.order {
		e := s.entries[id]
		if !filter.Matches(e.Date, e.Type) {
			continue
		}
		for _, l := range e.Lines {
			if filter.AccountCode != "" && l.AccountCode != filter.AccountCode {
				continue
			}
			lines = append(lines, model.PostedLine{
				JournalLine: l,
				EntryID:     e.ID,
				EntryDate:   e.Date,
				EntryType:   e.Type,
			})
		}
	}
	return lines, nil
}

// Begin acquires the store lock for an atomic write scope.
func (s *MemoryStore) Begin(_ context.Context) (Tx, error) {
	s.mu.Lock()
	return &memoryTx{store: s}, nil
}

// memoryTx stages writes while the store lock is held and applies
// them on Commit.
type memoryTx struct {
	store  *MemoryStore
	staged []model.JournalEntry
	deltas map[string]decimal.Decimal
	done   bool
}

func (t *memoryTx) InsertEntry(e model.JournalEntry) (int64, error) {
	id := t.store.nextID + int64(len(t.staged))
	e.ID = id
	e.Lines = nil
	t.staged = append(t.staged, e)
	return id, nil
}

func (t *memoryTx) InsertLines(entryID int64, lines []model.JournalLine) error {
	for i := range t.staged {
		if t.staged[i].ID == entryID {
			t.staged[i].Lines = append(t.staged[i].Lines, lines...)
			return nil
		}
	}
	return fmt.Errorf("journal entry %d not staged in this transaction", entryID)
}

func (t *memoryTx) ApplyDelta(code string, delta decimal.Decimal) error {
	if _, ok := t.store.accounts[code]; !ok {
		return &model.AccountNotFoundError{Code: code}
	}
	if t.deltas == nil {
		t.deltas = make(map[string]decimal.Decimal)
	}
	t.deltas[code] = t.deltas[code].Add(delta)
	return nil
}

func (t *memoryTx) Commit() error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}
	t.done = true
	defer t.store.mu.Unlock()

	for _, e := range t.staged {
		t.store.entries[e.ID] = e
		t.store.order = append(t.store.order, e.ID)
	}
	t.store.nextID += int64(len(t.staged))
	for code, delta := range t.deltas {
		a := t.store.accounts[code]
		a.Balance = a.Balance.Add(delta)
		t.store.accounts[code] = a
	}
	return nil
}

func (t *memoryTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func touchesAccount(e model.JournalEntry, code string) bool {
	for _, l := range e.Lines {
		if l.AccountCode == code {
			return true
		}
	}
	return false
}
