package store

// sqliteSchema creates the ledger tables. Amounts are stored as exact
// decimal strings, never floats; dates as YYYY-MM-DD text so range
// scans work lexicographically.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS accounts (
    code TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    opening_balance TEXT NOT NULL,
    opening_date TEXT NOT NULL,
    balance TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS journal_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    description TEXT NOT NULL,
    entry_date TEXT NOT NULL,
    transaction_type TEXT NOT NULL,
    reference TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS journal_lines (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    entry_id INTEGER NOT NULL,
    line_no INTEGER NOT NULL,
    account_code TEXT NOT NULL,
    amount TEXT NOT NULL,
    is_debit INTEGER NOT NULL,
    narration TEXT NOT NULL DEFAULT '',
    quantity TEXT NOT NULL DEFAULT '0',
    unit_price TEXT NOT NULL DEFAULT '0',
    tax_rate TEXT NOT NULL DEFAULT '0',
    FOREIGN KEY(entry_id) REFERENCES journal_entries(id),
    FOREIGN KEY(account_code) REFERENCES accounts(code)
);

CREATE INDEX IF NOT EXISTS idx_journal_entries_date
    ON journal_entries(entry_date);

CREATE INDEX IF NOT EXISTS idx_journal_lines_entry
    ON journal_lines(entry_id, line_no);

CREATE INDEX IF NOT EXISTS idx_journal_lines_account
    ON journal_lines(account_code);
`

// postgresSchema mirrors the SQLite schema with native types.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS accounts (
    code TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    opening_balance NUMERIC(20,2) NOT NULL,
    opening_date DATE NOT NULL,
    balance NUMERIC(20,2) NOT NULL
);

CREATE TABLE IF NOT EXISTS journal_entries (
    id BIGSERIAL PRIMARY KEY,
    description TEXT NOT NULL,
    entry_date DATE NOT NULL,
    transaction_type TEXT NOT NULL,
    reference TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS journal_lines (
    id BIGSERIAL PRIMARY KEY,
    entry_id BIGINT NOT NULL REFERENCES journal_entries(id),
    line_no INTEGER NOT NULL,
    account_code TEXT NOT NULL REFERENCES accounts(code),
    amount NUMERIC(20,2) NOT NULL,
    is_debit BOOLEAN NOT NULL,
    narration TEXT NOT NULL DEFAULT '',
    quantity NUMERIC(20,4) NOT NULL DEFAULT 0,
    unit_price NUMERIC(20,4) NOT NULL DEFAULT 0,
    tax_rate NUMERIC(8,4) NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_journal_entries_date
    ON journal_entries(entry_date);

CREATE INDEX IF NOT EXISTS idx_journal_lines_entry
    ON journal_lines(entry_id, line_no);

CREATE INDEX IF NOT EXISTS idx_journal_lines_account
    ON journal_lines(account_code);
`
