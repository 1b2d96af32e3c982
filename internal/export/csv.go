// Package export writes and reads CSV snapshots of the chart of
// accounts and the journal. Imports replay through the registry and
// ledger so every invariant is re-enforced and balances are rebuilt,
// never trusted from the snapshot.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbooks-dev/openbooks/internal/model"
)

const dateFormat = "2006-01-02"

const (
	acctNumFields = 6
	acctColCode   = 0
	acctColName   = 1
	acctColType   = 2
	acctColOpen   = 3
	acctColDate   = 4
	acctColBal    = 5
)

var accountsHeader = []string{"code", "name", "type", "opening_balance", "opening_date", "balance"}

// WriteAccounts writes accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(accountsHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, a := range accounts {
		if err := cw.Write(marshalAccount(a)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// ReadAccounts reads accounts.csv.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = acctNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.Account
	for i, rec := range records[1:] {
		a, err := unmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

func marshalAccount(a model.Account) []string {
	row := make([]string, acctNumFields)
	row[acctColCode] = a.Code
	row[acctColName] = a.Name
	row[acctColType] = string(a.Type)
	row[acctColOpen] = a.OpeningBalance.String()
	row[acctColDate] = a.OpeningDate.Format(dateFormat)
	row[acctColBal] = a.Balance.String()
	return row
}

func unmarshalAccount(record []string) (model.Account, error) {
	if len(record) != acctNumFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", acctNumFields, len(record))
	}

	accountType, err := model.ParseAccountType(record[acctColType])
	if err != nil {
		return model.Account{}, err
	}
	opening, err := decimal.NewFromString(record[acctColOpen])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing opening balance %q: %w", record[acctColOpen], err)
	}
	openingDate, err := time.Parse(dateFormat, record[acctColDate])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing opening date %q: %w", record[acctColDate], err)
	}
	balance, err := decimal.NewFromString(record[acctColBal])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing balance %q: %w", record[acctColBal], err)
	}

	return model.Account{
		Code:           record[acctColCode],
		Name:           record[acctColName],
		Type:           accountType,
		OpeningBalance: opening,
		OpeningDate:    openingDate,
		Balance:        balance,
	}, nil
}

const (
	lineNumFields = 12
	lineColEntry  = 0
	lineColDate   = 1
	lineColType   = 2
	lineColRef    = 3
	lineColDesc   = 4
	lineColAcct   = 5
	lineColAmount = 6
	lineColSide   = 7
	lineColNarr   = 8
	lineColQty    = 9
	lineColPrice  = 10
	lineColTax    = 11
)

var journalHeader = []string{
	"entry_id", "entry_date", "transaction_type", "reference", "description",
	"account_code", "amount", "side", "narration", "quantity", "unit_price", "tax_rate",
}

// WriteJournal writes journal.csv, one row per line with the parent
// entry's columns repeated.
func WriteJournal(w io.Writer, entries []model.JournalEntry) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(journalHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, e := range entries {
		for _, l := range e.Lines {
			if err := cw.Write(marshalLine(e, l)); err != nil {
				return fmt.Errorf("writing entry %d: %w", e.ID, err)
			}
		}
	}
	return cw.Error()
}

// ReadJournal reads journal.csv back into entries, grouping
// consecutive rows that share an entry id.
func ReadJournal(r io.Reader) ([]model.JournalEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = lineNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var entries []model.JournalEntry
	for i, rec := range records[1:] {
		entry, line, err := unmarshalLine(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if n := len(entries); n > 0 && entries[n-1].ID == entry.ID {
			entries[n-1].Lines = append(entries[n-1].Lines, line)
			continue
		}
		entry.Lines = []model.JournalLine{line}
		entries = append(entries, entry)
	}
	return entries, nil
}

func marshalLine(e model.JournalEntry, l model.JournalLine) []string {
	row := make([]string, lineNumFields)
	row[lineColEntry] = strconv.FormatInt(e.ID, 10)
	row[lineColDate] = e.Date.Format(dateFormat)
	row[lineColType] = string(e.Type)
	row[lineColRef] = e.Reference
	row[lineColDesc] = e.Description
	row[lineColAcct] = l.AccountCode
	row[lineColAmount] = l.Amount.String()
	if l.IsDebit {
		row[lineColSide] = "debit"
	} else {
		row[lineColSide] = "credit"
	}
	row[lineColNarr] = l.Narration
	row[lineColQty] = l.Quantity.String()
	row[lineColPrice] = l.UnitPrice.String()
	row[lineColTax] = l.TaxRate.String()
	return row
}

func unmarshalLine(record []string) (model.JournalEntry, model.JournalLine, error) {
	if len(record) != lineNumFields {
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("expected %d fields, got %d", lineNumFields, len(record))
	}

	id, err := strconv.ParseInt(record[lineColEntry], 10, 64)
	if err != nil {
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("parsing entry_id %q: %w", record[lineColEntry], err)
	}
	date, err := time.Parse(dateFormat, record[lineColDate])
	if err != nil {
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("parsing entry_date %q: %w", record[lineColDate], err)
	}

	var isDebit bool
	switch record[lineColSide] {
	case "debit":
		isDebit = true
	case "credit":
		isDebit = false
	default:
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("invalid side %q", record[lineColSide])
	}

	amount, err := decimal.NewFromString(record[lineColAmount])
	if err != nil {
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("parsing amount %q: %w", record[lineColAmount], err)
	}
	qty, err := decimal.NewFromString(record[lineColQty])
	if err != nil {
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("parsing quantity %q: %w", record[lineColQty], err)
	}
	price, err := decimal.NewFromString(record[lineColPrice])
	if err != nil {
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("parsing unit_price %q: %w", record[lineColPrice], err)
	}
	taxRate, err := decimal.NewFromString(record[lineColTax])
	if err != nil {
		return model.JournalEntry{}, model.JournalLine{}, fmt.Errorf("parsing tax_rate %q: %w", record[lineColTax], err)
	}

	entry := model.JournalEntry{
		ID:          id,
		Date:        date,
		Type:        model.TransactionType(record[lineColType]),
		Reference:   record[lineColRef],
		Description: record[lineColDesc],
	}
	line := model.JournalLine{
		AccountCode: record[lineColAcct],
		Amount:      amount,
		IsDebit:     isDebit,
		Narration:   record[lineColNarr],
		Quantity:    qty,
		UnitPrice:   price,
		TaxRate:     taxRate,
	}
	return entry, line, nil
}
