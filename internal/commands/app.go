package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/openbooks-dev/openbooks/internal/accounts"
	"github.com/openbooks-dev/openbooks/internal/config"
	"github.com/openbooks-dev/openbooks/internal/export"
	"github.com/openbooks-dev/openbooks/internal/ledger"
	"github.com/openbooks-dev/openbooks/internal/reports"
	"github.com/openbooks-dev/openbooks/internal/store"
	"github.com/openbooks-dev/openbooks/internal/transactions"
)

const dateFormat = "2006-01-02"

// app wires the store, registry, ledger, builders and report engine
// for one CLI invocation. Its lifetime is the command run; nothing is
// shared globally.
type app struct {
	cfg      *config.Config
	store    store.Store
	registry *accounts.Registry
	ledger   *ledger.Ledger
	builder  *transactions.Builder
	reports  *reports.Engine
	export   *export.Service
}

// openApp loads the project config from dir and opens the configured
// store backend.
func openApp(dir string) (*app, error) {
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return nil, err
	}
	return openAppWithConfig(dir, cfg)
}

func openAppWithConfig(dir string, cfg *config.Config) (*app, error) {
	st, err := openStore(dir, cfg)
	if err != nil {
		return nil, err
	}

	registry := accounts.NewRegistry(st)
	led := ledger.New(st)
	return &app{
		cfg:      cfg,
		store:    st,
		registry: registry,
		ledger:   led,
		builder:  transactions.NewBuilder(led, registry),
		reports:  reports.NewEngine(st),
		export:   export.NewService(registry, led),
	}, nil
}

func openStore(dir string, cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		path := cfg.Storage.Path
		if path == "" {
			path = "openbooks.db"
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		return store.OpenSQLite(path)
	case config.DriverPostgres:
		return store.OpenPostgres(context.Background(), cfg.Storage.DSN)
	case config.DriverMemory:
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func (a *app) Close() error {
	return a.store.Close()
}

// parseDate parses a YYYY-MM-DD flag value; empty means "unset".
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", value)
	}
	return t, nil
}
