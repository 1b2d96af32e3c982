package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	cfg := Default("Acme Anvils")
	cfg.Storage.Path = "books/ledger.db"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Acme Anvils", loaded.Business.Name)
	assert.Equal(t, "USD", loaded.Business.Currency)
	assert.Equal(t, DriverSQLite, loaded.Storage.Driver)
	assert.Equal(t, "books/ledger.db", loaded.Storage.Path)
	assert.Equal(t, "01-01", loaded.Fiscal.YearStart)
}

func TestLoad_DefaultsDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("business:\n  name: Minimal\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default("Acme Anvils")))

	t.Setenv("OPENBOOKS_DB_DRIVER", DriverPostgres)
	t.Setenv("OPENBOOKS_DSN", "postgres://localhost/openbooks?sslmode=disable")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/openbooks?sslmode=disable", cfg.Storage.DSN)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	require.Error(t, err)
}
