package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/openbooks-dev/openbooks/internal/model"
)

const dateFormat = "2006-01-02"

// SQLiteStore is the default Store backend, a single-file SQLite
// database with WAL mode and foreign keys enabled.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) a SQLite ledger database and
// ensures the schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateAccount inserts a new chart-of-accounts row. A primary-key
// collision maps to DuplicateAccountError.
func (s *SQLiteStore) CreateAccount(ctx context.Context, a model.Account) error {
	const query = `
INSERT INTO accounts (code, name, type, opening_balance, opening_date, balance)
VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		a.Code, a.Name, string(a.Type),
		a.OpeningBalance.String(), a.OpeningDate.Format(dateFormat), a.Balance.String())
	if err != nil {
		var serr sqlite3.Error
		if errors.As(err, &serr) &&
			(serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
				serr.ExtendedCode == sqlite3.ErrConstraintUnique) {
			return &model.DuplicateAccountError{Code: a.Code}
		}
		return fmt.Errorf("inserting account %s: %w", a.Code, err)
	}
	return nil
}

// GetAccount returns one account by code.
func (s *SQLiteStore) GetAccount(ctx context.Context, code string) (model.Account, error) {
	const query = `
SELECT code, name, type, opening_balance, opening_date, balance
FROM accounts WHERE code = ?`

	a, err := scanAccount(s.db.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, &model.AccountNotFoundError{Code: code}
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("querying account %s: %w", code, err)
	}
	return a, nil
}

// ListAccounts returns accounts ordered by code, optionally filtered
// by type.
func (s *SQLiteStore) ListAccounts(ctx context.Context, types ...model.AccountType) ([]model.Account, error) {
	query := `
SELECT code, name, type, opening_balance, opening_date, balance
FROM accounts`
	var args []any
	if len(types) > 0 {
		placeholders := make([]string, len(types))
		for i, t := range types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		query += " WHERE type IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY code"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// GetEntry returns one journal entry with its lines.
func (s *SQLiteStore) GetEntry(ctx context.Context, id int64) (model.JournalEntry, error) {
	const query = `
SELECT id, description, entry_date, transaction_type, reference
FROM journal_entries WHERE id = ?`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.JournalEntry{}, fmt.Errorf("journal entry %d not found", id)
	}
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("querying entry %d: %w", id, err)
	}

	lines, err := s.GetLines(ctx, id)
	if err != nil {
		return model.JournalEntry{}, err
	}
	e.Lines = lines
	return e, nil
}

// ListEntries returns entry headers matching the filter, ordered by id.
func (s *SQLiteStore) ListEntries(ctx context.Context, filter EntryFilter) ([]model.JournalEntry, error) {
	query := `
SELECT id, description, entry_date, transaction_type, reference
FROM journal_entries`
	where, args := filterClauses(filter)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var entries []model.JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetLines returns an entry's lines in order.
func (s *SQLiteStore) GetLines(ctx context.Context, entryID int64) ([]model.JournalLine, error) {
	const query = `
SELECT account_code, amount, is_debit, narration, quantity, unit_price, tax_rate
FROM journal_lines WHERE entry_id = ? ORDER BY line_no`

	rows, err := s.db.QueryContext(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("querying lines for entry %d: %w", entryID, err)
	}
	defer rows.Close()

	var lines []model.JournalLine
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// PostedLines returns committed lines joined with entry metadata.
func (s *SQLiteStore) PostedLines(ctx context.Context, filter EntryFilter) ([]model.PostedLine, error) {
	query := `
SELECT l.entry_id, e.entry_date, e.transaction_type,
       l.account_code, l.amount, l.is_debit, l.narration, l.quantity, l.unit_price, l.tax_rate
FROM journal_lines l
JOIN journal_entries e ON e.id = l.entry_id`
	where, args := postedFilterClauses(filter)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY l.entry_id, l.line_no"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying posted lines: %w", err)
	}
	defer rows.Close()

	var lines []model.PostedLine
	for rows.Next() {
		pl, err := scanPostedLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning posted line: %w", err)
		}
		lines = append(lines, pl)
	}
	return lines, rows.Err()
}

// Begin opens a write transaction.
func (s *SQLiteStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &sqliteTx{tx: tx}, nil
}

type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) InsertEntry(e model.JournalEntry) (int64, error) {
	const query = `
INSERT INTO journal_entries (description, entry_date, transaction_type, reference)
VALUES (?, ?, ?, ?)`

	res, err := t.tx.Exec(query,
		e.Description, e.Date.Format(dateFormat), string(e.Type), e.Reference)
	if err != nil {
		return 0, fmt.Errorf("inserting entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading entry id: %w", err)
	}
	return id, nil
}

func (t *sqliteTx) InsertLines(entryID int64, lines []model.JournalLine) error {
	const query = `
INSERT INTO journal_lines (entry_id, line_no, account_code, amount, is_debit,
                           narration, quantity, unit_price, tax_rate)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for i, l := range lines {
		_, err := t.tx.Exec(query,
			entryID, i, l.AccountCode, l.Amount.String(), boolToInt(l.IsDebit),
			l.Narration, l.Quantity.String(), l.UnitPrice.String(), l.TaxRate.String())
		if err != nil {
			return fmt.Errorf("inserting line %d for entry %d: %w", i, entryID, err)
		}
	}
	return nil
}

func (t *sqliteTx) ApplyDelta(code string, delta decimal.Decimal) error {
	var raw string
	err := t.tx.QueryRow(`SELECT balance FROM accounts WHERE code = ?`, code).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.AccountNotFoundError{Code: code}
	}
	if err != nil {
		return fmt.Errorf("reading balance for %s: %w", code, err)
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("parsing balance %q for %s: %w", raw, code, err)
	}

	_, err = t.tx.Exec(`UPDATE accounts SET balance = ? WHERE code = ?`,
		balance.Add(delta).String(), code)
	if err != nil {
		return fmt.Errorf("updating balance for %s: %w", code, err)
	}
	return nil
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (model.Account, error) {
	var (
		a                         model.Account
		typ, opening, date, value string
	)
	if err := row.Scan(&a.Code, &a.Name, &typ, &opening, &date, &value); err != nil {
		return model.Account{}, err
	}

	a.Type = model.AccountType(typ)
	var err error
	if a.OpeningBalance, err = decimal.NewFromString(opening); err != nil {
		return model.Account{}, fmt.Errorf("parsing opening balance %q: %w", opening, err)
	}
	if a.Balance, err = decimal.NewFromString(value); err != nil {
		return model.Account{}, fmt.Errorf("parsing balance %q: %w", value, err)
	}
	if a.OpeningDate, err = parseDate(date); err != nil {
		return model.Account{}, fmt.Errorf("parsing opening date %q: %w", date, err)
	}
	return a, nil
}

func scanEntry(row scanner) (model.JournalEntry, error) {
	var (
		e         model.JournalEntry
		date, typ string
	)
	if err := row.Scan(&e.ID, &e.Description, &date, &typ, &e.Reference); err != nil {
		return model.JournalEntry{}, err
	}
	e.Type = model.TransactionType(typ)
	var err error
	if e.Date, err = parseDate(date); err != nil {
		return model.JournalEntry{}, fmt.Errorf("parsing entry date %q: %w", date, err)
	}
	return e, nil
}

func scanLine(row scanner) (model.JournalLine, error) {
	var (
		l                              model.JournalLine
		isDebit                        int
		amount, qty, unitPrice, taxRat string
	)
	if err := row.Scan(&l.AccountCode, &amount, &isDebit, &l.Narration, &qty, &unitPrice, &taxRat); err != nil {
		return model.JournalLine{}, err
	}
	l.IsDebit = isDebit != 0
	return parseLineDecimals(l, amount, qty, unitPrice, taxRat)
}

func scanPostedLine(row scanner) (model.PostedLine, error) {
	var (
		pl                             model.PostedLine
		date, typ                      string
		isDebit                        int
		amount, qty, unitPrice, taxRat string
	)
	err := row.Scan(&pl.EntryID, &date, &typ,
		&pl.AccountCode, &amount, &isDebit, &pl.Narration, &qty, &unitPrice, &taxRat)
	if err != nil {
		return model.PostedLine{}, err
	}
	pl.EntryType = model.TransactionType(typ)
	pl.IsDebit = isDebit != 0
	if pl.EntryDate, err = parseDate(date); err != nil {
		return model.PostedLine{}, fmt.Errorf("parsing entry date %q: %w", date, err)
	}
	pl.JournalLine, err = parseLineDecimals(pl.JournalLine, amount, qty, unitPrice, taxRat)
	return pl, err
}

func parseLineDecimals(l model.JournalLine, amount, qty, unitPrice, taxRate string) (model.JournalLine, error) {
	var err error
	if l.Amount, err = decimal.NewFromString(amount); err != nil {
		return l, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	if l.Quantity, err = decimal.NewFromString(qty); err != nil {
		return l, fmt.Errorf("parsing quantity %q: %w", qty, err)
	}
	if l.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
		return l, fmt.Errorf("parsing unit price %q: %w", unitPrice, err)
	}
	if l.TaxRate, err = decimal.NewFromString(taxRate); err != nil {
		return l, fmt.Errorf("parsing tax rate %q: %w", taxRate, err)
	}
	return l, nil
}

func parseDate(s string) (time.Time, error) {
	// Postgres DATE columns come back with a time component.
	if len(s) > len(dateFormat) {
		s = s[:len(dateFormat)]
	}
	return time.Parse(dateFormat, s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// filterClauses builds WHERE fragments for entry-header queries,
// using ? placeholders. The Postgres backend rebinds them to $n.
func filterClauses(f EntryFilter) ([]string, []any) {
	var (
		where []string
		args  []any
	)
	if !f.From.IsZero() {
		where = append(where, "entry_date >= ?")
		args = append(args, f.From.Format(dateFormat))
	}
	if !f.To.IsZero() {
		where = append(where, "entry_date <= ?")
		args = append(args, f.To.Format(dateFormat))
	}
	if f.Type != "" {
		where = append(where, "transaction_type = ?")
		args = append(args, string(f.Type))
	}
	if f.AccountCode != "" {
		where = append(where, "id IN (SELECT entry_id FROM journal_lines WHERE account_code = ?)")
		args = append(args, f.AccountCode)
	}
	return where, args
}

func postedFilterClauses(f EntryFilter) ([]string, []any) {
	var (
		where []string
		args  []any
	)
	if !f.From.IsZero() {
		where = append(where, "e.entry_date >= ?")
		args = append(args, f.From.Format(dateFormat))
	}
	if !f.To.IsZero() {
		where = append(where, "e.entry_date <= ?")
		args = append(args, f.To.Format(dateFormat))
	}
	if f.Type != "" {
		where = append(where, "e.transaction_type = ?")
		args = append(args, string(f.Type))
	}
	if f.AccountCode != "" {
		where = append(where, "l.account_code = ?")
		args = append(args, f.AccountCode)
	}
	return where, args
}
