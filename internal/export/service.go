package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openbooks-dev/openbooks/internal/accounts"
	"github.com/openbooks-dev/openbooks/internal/ledger"
	"github.com/openbooks-dev/openbooks/internal/model"
	"github.com/openbooks-dev/openbooks/internal/store"
)

const (
	accountsFile = "accounts.csv"
	journalFile  = "journal.csv"
)

// Service snapshots ledger state to CSV files and restores it.
type Service struct {
	registry *accounts.Registry
	ledger   *ledger.Ledger
}

// NewService creates an export Service.
func NewService(r *accounts.Registry, l *ledger.Ledger) *Service {
	return &Service{registry: r, ledger: l}
}

// Export writes accounts.csv and journal.csv into dir.
func (s *Service) Export(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}

	accts, err := s.registry.List(ctx)
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, accountsFile), func(f *os.File) error {
		return WriteAccounts(f, accts)
	}); err != nil {
		return err
	}

	headers, err := s.ledger.Entries(ctx, store.EntryFilter{})
	if err != nil {
		return err
	}
	entries := make([]model.JournalEntry, 0, len(headers))
	for _, h := range headers {
		lines, err := s.ledger.Lines(ctx, h.ID)
		if err != nil {
			return err
		}
		h.Lines = lines
		entries = append(entries, h)
	}
	return writeFile(filepath.Join(dir, journalFile), func(f *os.File) error {
		return WriteJournal(f, entries)
	})
}

// Import reads a snapshot from dir and replays it: accounts are
// recreated with their opening balances, then every entry is
// recommitted through the ledger in original order. Running balances
// come out of the replay, so a snapshot with tampered balances cannot
// smuggle them in.
func (s *Service) Import(ctx context.Context, dir string) error {
	af, err := os.Open(filepath.Join(dir, accountsFile))
	if err != nil {
		return fmt.Errorf("opening accounts snapshot: %w", err)
	}
	defer af.Close()

	accts, err := ReadAccounts(af)
	if err != nil {
		return err
	}
	for _, a := range accts {
		_, err := s.registry.Create(ctx, accounts.CreateParams{
			Code:           a.Code,
			Name:           a.Name,
			Type:           a.Type,
			OpeningBalance: a.OpeningBalance,
			OpeningDate:    a.OpeningDate,
		})
		if err != nil {
			return fmt.Errorf("restoring account %s: %w", a.Code, err)
		}
	}

	jf, err := os.Open(filepath.Join(dir, journalFile))
	if err != nil {
		return fmt.Errorf("opening journal snapshot: %w", err)
	}
	defer jf.Close()

	entries, err := ReadJournal(jf)
	if err != nil {
		return err
	}
	for _, e := range entries {
		_, err := s.ledger.Commit(ctx, ledger.Draft{
			Description: e.Description,
			Date:        e.Date,
			Type:        e.Type,
			Reference:   e.Reference,
			Lines:       e.Lines,
		})
		if err != nil {
			return fmt.Errorf("replaying entry %d: %w", e.ID, err)
		}
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
