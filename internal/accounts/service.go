// Package accounts owns the chart of accounts: account creation,
// lookup and listing. Balances are read here but only ever written by
// ledger commits.
package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openbooks-dev/openbooks/internal/logger"
	"github.com/openbooks-dev/openbooks/internal/model"
	"github.com/openbooks-dev/openbooks/internal/store"
)

// Registry is the single source of truth for chart-of-accounts
// entries and their running balances.
type Registry struct {
	store store.Store
}

// NewRegistry creates a Registry over a store.
func NewRegistry(s store.Store) *Registry {
	return &Registry{store: s}
}

// CreateParams holds parameters for creating an account.
type CreateParams struct {
	Code           string
	Name           string
	Type           model.AccountType
	OpeningBalance decimal.Decimal
	OpeningDate    time.Time
}

// Create adds a new account to the chart. The running balance starts
// at the opening balance. Fails with DuplicateAccountError for an
// existing code and InvalidAccountTypeError for a type outside the
// fixed enumeration.
func (r *Registry) Create(ctx context.Context, params CreateParams) (model.Account, error) {
	code := strings.TrimSpace(params.Code)
	if code == "" {
		return model.Account{}, fmt.Errorf("account code is required")
	}
	if !params.Type.Valid() {
		return model.Account{}, &model.InvalidAccountTypeError{Type: string(params.Type)}
	}
	if !model.CentPrecise(params.OpeningBalance) {
		return model.Account{}, &model.InvalidAmountError{
			AccountCode: code,
			Amount:      params.OpeningBalance,
			Reason:      "opening balance has more than 2 decimal places",
		}
	}

	if params.OpeningDate.IsZero() {
		params.OpeningDate = time.Now()
	}

	account := model.Account{
		Code:           code,
		Name:           strings.TrimSpace(params.Name),
		Type:           params.Type,
		OpeningBalance: params.OpeningBalance,
		OpeningDate:    params.OpeningDate,
		Balance:        params.OpeningBalance,
	}
	if err := r.store.CreateAccount(ctx, account); err != nil {
		return model.Account{}, err
	}

	logger.Info("account created", logger.Fields{
		"code": account.Code,
		"name": account.Name,
		"type": string(account.Type),
	})
	return account, nil
}

// Get returns an account snapshot by code.
func (r *Registry) Get(ctx context.Context, code string) (model.Account, error) {
	return r.store.GetAccount(ctx, code)
}

// List returns account snapshots ordered by code, optionally
// restricted to the given types.
func (r *Registry) List(ctx context.Context, types ...model.AccountType) ([]model.Account, error) {
	return r.store.ListAccounts(ctx, types...)
}
