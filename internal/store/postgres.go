package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/openbooks-dev/openbooks/internal/model"
)

// uniqueViolation is the Postgres error code for a duplicate key.
const uniqueViolation = "23505"

// PostgresStore is the Postgres Store backend.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to Postgres with the given DSN and ensures
// the schema exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the underlying pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// CreateAccount inserts a new chart-of-accounts row. A unique
// violation maps to DuplicateAccountError.
func (s *PostgresStore) CreateAccount(ctx context.Context, a model.Account) error {
	const query = `
INSERT INTO accounts (code, name, type, opening_balance, opening_date, balance)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.ExecContext(ctx, query,
		a.Code, a.Name, string(a.Type),
		a.OpeningBalance.String(), a.OpeningDate.Format(dateFormat), a.Balance.String())
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && string(perr.Code) == uniqueViolation {
			return &model.DuplicateAccountError{Code: a.Code}
		}
		return fmt.Errorf("inserting account %s: %w", a.Code, err)
	}
	return nil
}

// GetAccount returns one account by code.
func (s *PostgresStore) GetAccount(ctx context.Context, code string) (model.Account, error) {
	const query = `
SELECT code, name, type, opening_balance::text, opening_date::text, balance::text
FROM accounts WHERE code = $1`

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
func (s *PostgresStore) ListAccounts(ctx context.Context, types ...model.AccountType) ([]model.Account, error) {
	query := `
SELECT code, name, type, opening_balance::text, opening_date::text, balance::text
FROM accounts`
	var args []any
	if len(types) > 0 {
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = string(t)
		}
		query += " WHERE type = ANY($1)"
		args = append(args, pq.Array(names))
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
func (s *PostgresStore) GetEntry(ctx context.Context, id int64) (model.JournalEntry, error) {
	const query = `
SELECT id, description, entry_date::text, transaction_type, reference
FROM journal_entries WHERE id = $1`

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
func (s *PostgresStore) ListEntries(ctx context.Context, filter EntryFilter) ([]model.JournalEntry, error) {
	query := `
SELECT id, description, entry_date::text, transaction_type, reference
FROM journal_entries`
	where, args := filterClauses(filter)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, rebind(query), args...)
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
func (s *PostgresStore) GetLines(ctx context.Context, entryID int64) ([]model.JournalLine, error) {
	const query = `
SELECT account_code, amount::text, is_debit, narration,
       quantity::text, unit_price::text, tax_rate::text
FROM journal_lines WHERE entry_id = $1 ORDER BY line_no`

	rows, err := s.db.QueryContext(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("querying lines for entry %d: %w", entryID, err)
	}
	defer rows.Close()

	var lines []model.JournalLine
	for rows.Next() {
		l, err := scanPostgresLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// PostedLines returns committed lines joined with entry metadata.
func (s *PostgresStore) PostedLines(ctx context.Context, filter EntryFilter) ([]model.PostedLine, error) {
	query := `
SELECT l.entry_id, e.entry_date::text, e.transaction_type,
       l.account_code, l.amount::text, l.is_debit, l.narration,
       l.quantity::text, l.unit_price::text, l.tax_rate::text
FROM journal_lines l
JOIN journal_entries e ON e.id = l.entry_id`
	where, args := postedFilterClauses(filter)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY l.entry_id, l.line_no"

	rows, err := s.db.QueryContext(ctx, rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("querying posted lines: %w", err)
	}
	defer rows.Close()

	var lines []model.PostedLine
	for rows.Next() {
		pl, err := scanPostgresPostedLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning posted line: %w", err)
		}
		lines = append(lines, pl)
	}
	return lines, rows.Err()
}

// Begin opens a write transaction.
func (s *PostgresStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &postgresTx{tx: tx}, nil
}

type postgresTx struct {
	tx *sql.Tx
}

func (t *postgresTx) InsertEntry(e model.JournalEntry) (int64, error) {
	const query = `
INSERT INTO journal_entries (description, entry_date, transaction_type, reference)
VALUES ($1, $2, $3, $4)
RETURNING id`

	var id int64
	err := t.tx.QueryRow(query,
		e.Description, e.Date.Format(dateFormat), string(e.Type), e.Reference).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting entry: %w", err)
	}
	return id, nil
}

func (t *postgresTx) InsertLines(entryID int64, lines []model.JournalLine) error {
	const query = `
INSERT INTO journal_lines (entry_id, line_no, account_code, amount, is_debit,
                           narration, quantity, unit_price, tax_rate)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for i, l := range lines {
		_, err := t.tx.Exec(query,
			entryID, i, l.AccountCode, l.Amount.String(), l.IsDebit,
			l.Narration, l.Quantity.String(), l.UnitPrice.String(), l.TaxRate.String())
		if err != nil {
			return fmt.Errorf("inserting line %d for entry %d: %w", i, entryID, err)
		}
	}
	return nil
}

func (t *postgresTx) ApplyDelta(code string, delta decimal.Decimal) error {
	var raw string
	err := t.tx.QueryRow(`SELECT balance::text FROM accounts WHERE code = $1 FOR UPDATE`, code).Scan(&raw)
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

	_, err = t.tx.Exec(`UPDATE accounts SET balance = $1 WHERE code = $2`,
		balance.Add(delta).String(), code)
	if err != nil {
		return fmt.Errorf("updating balance for %s: %w", code, err)
	}
	return nil
}

func (t *postgresTx) Commit() error {
	return t.tx.Commit()
}

func (t *postgresTx) Rollback() error {
	return t.tx.Rollback()
}

func scanPostgresLine(row scanner) (model.JournalLine, error) {
	var (
		l                              model.JournalLine
		amount, qty, unitPrice, taxRat string
	)
	if err := row.Scan(&l.AccountCode, &amount, &l.IsDebit, &l.Narration, &qty, &unitPrice, &taxRat); err != nil {
		return model.JournalLine{}, err
	}
	return parseLineDecimals(l, amount, qty, unitPrice, taxRat)
}

func scanPostgresPostedLine(row scanner) (model.PostedLine, error) {
	var (
		pl                             model.PostedLine
		date, typ                      string
		amount, qty, unitPrice, taxRat string
	)
	err := row.Scan(&pl.EntryID, &date, &typ,
		&pl.AccountCode, &amount, &pl.IsDebit, &pl.Narration, &qty, &unitPrice, &taxRat)
	if err != nil {
		return model.PostedLine{}, err
	}
	pl.EntryType = model.TransactionType(typ)
	if pl.EntryDate, err = parseDate(date); err != nil {
		return model.PostedLine{}, fmt.Errorf("parsing entry date %q: %w", date, err)
	}
	pl.JournalLine, err = parseLineDecimals(pl.JournalLine, amount, qty, unitPrice, taxRat)
	return pl, err
}

// rebind converts ? placeholders to Postgres $n placeholders.
func rebind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
