// Package reports derives financial statements from committed ledger
// state. Every report is a pure read-side projection: balances are
// recomputed from opening balances plus posted lines, never trusted
// from the running totals, so reports work for any point in time and
// cannot mutate anything.
package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbooks-dev/openbooks/internal/model"
	"github.com/openbooks-dev/openbooks/internal/store"
)

// Engine reads account and journal state and folds it into financial
// statements.
type Engine struct {
	store store.Store
}

// NewEngine creates a report Engine over a store.
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// AccountBalance is one report row.
type AccountBalance struct {
	Code    string
	Name    string
	Type    model.AccountType
	Balance decimal.Decimal
}

// BalanceSheet partitions account balances into Assets, Liabilities
// and Equity as of a point in time.
//
// Revenue and Expense accounts close into Equity virtually at report
// time: their net is carried as the synthetic Current Earnings row,
// so the accounting identity holds without explicit closing entries.
type BalanceSheet struct {
	AsOf             time.Time
	Assets           []AccountBalance
	Liabilities      []AccountBalance
	Equity           []AccountBalance // includes the Current Earnings row
	TotalAssets      decimal.Decimal
	TotalLiabilities decimal.Decimal
	TotalEquity      decimal.Decimal
}

// IncomeStatement reports revenue and expense activity over a period.
type IncomeStatement struct {
	From          time.Time
	To            time.Time
	Revenue       []AccountBalance
	Expenses      []AccountBalance
	TotalRevenue  decimal.Decimal
	TotalExpenses decimal.Decimal
	NetIncome     decimal.Decimal
}

// FlowGroup nets cash movement for one transaction type.
type FlowGroup struct {
	Type     model.TransactionType
	Inflows  decimal.Decimal
	Outflows decimal.Decimal
	Net      decimal.Decimal
}

// CashFlow reports cash movement over a period, grouped by
// transaction type as a proxy for flow classification.
type CashFlow struct {
	From          time.Time
	To            time.Time
	Groups        []FlowGroup
	TotalInflows  decimal.Decimal
	TotalOutflows decimal.Decimal
	NetChange     decimal.Decimal
}

// BalanceSheet builds the balance sheet as of the given date (zero
// means "now"). If the accounting identity Assets == Liabilities +
// Equity does not hold after folding in current earnings, the report
// is withheld and a ReportInconsistencyError returned.
func (e *Engine) BalanceSheet(ctx context.Context, asOf time.Time) (*BalanceSheet, error) {
	accounts, balances, err := e.balancesAsOf(ctx, asOf)
	if err != nil {
		return nil, err
	}

	bs := &BalanceSheet{AsOf: asOf}
	earnings := decimal.Zero
	for _, a := range accounts {
		row := AccountBalance{Code: a.Code, Name: a.Name, Type: a.Type, Balance: balances[a.Code]}
		switch a.Type {
		case model.AccountTypeAsset:
			bs.Assets = append(bs.Assets, row)
			bs.TotalAssets = bs.TotalAssets.Add(row.Balance)
		case model.AccountTypeLiability:
			bs.Liabilities = append(bs.Liabilities, row)
			bs.TotalLiabilities = bs.TotalLiabilities.Add(row.Balance)
		case model.AccountTypeEquity:
			bs.Equity = append(bs.Equity, row)
			bs.TotalEquity = bs.TotalEquity.Add(row.Balance)
		case model.AccountTypeRevenue:
			earnings = earnings.Add(row.Balance)
		case model.AccountTypeExpense:
			earnings = earnings.Sub(row.Balance)
		}
	}

	bs.Equity = append(bs.Equity, AccountBalance{
		Name:    "Current Earnings",
		Type:    model.AccountTypeEquity,
		Balance: earnings,
	})
	bs.TotalEquity = bs.TotalEquity.Add(earnings)

	if !bs.TotalAssets.Equal(bs.TotalLiabilities.Add(bs.TotalEquity)) {
		return nil, &model.ReportInconsistencyError{
			Assets:      bs.TotalAssets,
			Liabilities: bs.TotalLiabilities,
			Equity:      bs.TotalEquity,
		}
	}
	return bs, nil
}

// IncomeStatement sums revenue and expense activity posted within the
// period (zero bounds are open-ended).
func (e *Engine) IncomeStatement(ctx context.Context, from, to time.Time) (*IncomeStatement, error) {
	accounts, err := e.store.ListAccounts(ctx, model.AccountTypeRevenue, model.AccountTypeExpense)
	if err != nil {
		return nil, err
	}
	lines, err := e.store.PostedLines(ctx, store.EntryFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}

	activity := make(map[string]decimal.Decimal)
	byCode := make(map[string]model.Account, len(accounts))
	for _, a := range accounts {
		byCode[a.Code] = a
	}
	for _, l := range lines {
		a, ok := byCode[l.AccountCode]
		if !ok {
			continue
		}
		activity[a.Code] = activity[a.Code].Add(a.Type.SignedAmount(l.Amount, l.IsDebit))
	}

	is := &IncomeStatement{From: from, To: to}
	for _, a := range accounts {
		row := AccountBalance{Code: a.Code, Name: a.Name, Type: a.Type, Balance: activity[a.Code]}
		if a.Type == model.AccountTypeRevenue {
			is.Revenue = append(is.Revenue, row)
			is.TotalRevenue = is.TotalRevenue.Add(row.Balance)
		} else {
			is.Expenses = append(is.Expenses, row)
			is.TotalExpenses = is.TotalExpenses.Add(row.Balance)
		}
	}
	is.NetIncome = is.TotalRevenue.Sub(is.TotalExpenses)
	return is, nil
}

// CashFlow nets inflows against outflows on cash accounts over the
// period, grouped by the owning entry's transaction type.
func (e *Engine) CashFlow(ctx context.Context, from, to time.Time) (*CashFlow, error) {
	accounts, err := e.store.ListAccounts(ctx, model.AccountTypeAsset)
	if err != nil {
		return nil, err
	}
	cash := make(map[string]bool)
	for _, a := range accounts {
		if a.IsCash() {
			cash[a.Code] = true
		}
	}

	lines, err := e.store.PostedLines(ctx, store.EntryFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}

	cf := &CashFlow{From: from, To: to}
	groups := make(map[model.TransactionType]*FlowGroup)
	var order []model.TransactionType
	for _, l := range lines {
		if !cash[l.AccountCode] {
			continue
		}
		g, ok := groups[l.EntryType]
		if !ok {
			g = &FlowGroup{Type: l.EntryType}
			groups[l.EntryType] = g
			order = append(order, l.EntryType)
		}
		if l.IsDebit {
			g.Inflows = g.Inflows.Add(l.Amount)
			cf.TotalInflows = cf.TotalInflows.Add(l.Amount)
		} else {
			g.Outflows = g.Outflows.Add(l.Amount)
			cf.TotalOutflows = cf.TotalOutflows.Add(l.Amount)
		}
	}

	for _, t := range order {
		g := groups[t]
		g.Net = g.Inflows.Sub(g.Outflows)
		cf.Groups = append(cf.Groups, *g)
	}
	cf.NetChange = cf.TotalInflows.Sub(cf.TotalOutflows)
	return cf, nil
}

// balancesAsOf recomputes every account's balance from its opening
// balance plus signed posted lines up to the cutoff.
func (e *Engine) balancesAsOf(ctx context.Context, asOf time.Time) ([]model.Account, map[string]decimal.Decimal, error) {
	accounts, err := e.store.ListAccounts(ctx)
	if err != nil {
		return nil, nil, err
	}
	lines, err := e.store.PostedLines(ctx, store.EntryFilter{To: asOf})
	if err != nil {
		return nil, nil, err
	}

	byCode := make(map[string]model.Account, len(accounts))
	balances := make(map[string]decimal.Decimal, len(accounts))
	for _, a := range accounts {
		byCode[a.Code] = a
		balances[a.Code] = a.OpeningBalance
	}
	for _, l := range lines {
		a, ok := byCode[l.AccountCode]
		if !ok {
			continue
		}
		balances[a.Code] = balances[a.Code].Add(a.Type.SignedAmount(l.Amount, l.IsDebit))
	}
	return accounts, balances, nil
}
