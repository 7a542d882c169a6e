package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikhailWahib/ledgerdb/internal/bank"
	"github.com/MikhailWahib/ledgerdb/internal/ledger"
	"github.com/MikhailWahib/ledgerdb/internal/page"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRoot()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTransactAndStatement(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "transact", "1", "1000", "c", "salary", "--data-dir", dir)
	require.NoError(t, err)
	var bal ledger.Balance
	require.NoError(t, json.Unmarshal([]byte(out), &bal))
	assert.Equal(t, ledger.Balance{Limit: 100_000, Balance: 1000}, bal)

	_, err = run(t, "transact", "1", "300", "d", "coffee", "--data-dir", dir)
	require.NoError(t, err)

	out, err = run(t, "statement", "1", "--data-dir", dir)
	require.NoError(t, err)

	var st struct {
		Saldo struct {
			Total  int64 `json:"total"`
			Limite int64 `json:"limite"`
		} `json:"saldo"`
		Recent []struct {
			Valor     int64  `json:"valor"`
			Tipo      string `json:"tipo"`
			Descricao string `json:"descricao"`
		} `json:"ultimas_transacoes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, int64(700), st.Saldo.Total)
	assert.Equal(t, int64(100_000), st.Saldo.Limite)
	require.Len(t, st.Recent, 2)
	assert.Equal(t, "coffee", st.Recent[0].Descricao)
	assert.Equal(t, "d", st.Recent[0].Tipo)
	assert.Equal(t, "salary", st.Recent[1].Descricao)
}

func TestTransact_Rejections(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, "transact", "2", "80001", "d", "too much", "--data-dir", dir)
	require.ErrorIs(t, err, ledger.ErrLimitExceeded)
	assert.Contains(t, err.Error(), "status 422")

	_, err = run(t, "transact", "42", "1", "c", "nobody", "--data-dir", dir)
	require.ErrorIs(t, err, bank.ErrAccountNotFound)

	_, err = run(t, "transact", "1", "10", "x", "bad kind", "--data-dir", dir)
	require.ErrorIs(t, err, ledger.ErrInvalidKind)

	_, err = run(t, "transact", "1", "ten", "c", "bad amount", "--data-dir", dir)
	require.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = run(t, "transact", "1", "10", "c", "much too long", "--data-dir", dir)
	require.ErrorIs(t, err, ledger.ErrInvalidDescription)

	_, err = run(t, "transact", "abc", "10", "c", "x", "--data-dir", dir)
	require.Error(t, err)

	// nothing was persisted by the rejected debit
	out, err := run(t, "statement", "2", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `"total": 0`)
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "transact", "3", "50", "c", "x", "--data-dir", dir)
	require.NoError(t, err)

	out, err := run(t, "verify", "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "account 3")
	assert.Contains(t, out, "rows=1\tbalance=50\tlimit=1000000")
	assert.NotContains(t, out, "missing")
	assert.Equal(t, 5, strings.Count(out, "account "))

	// a partial trailing page is reported instead of repaired
	f, err := os.OpenFile(bank.PathFor(dir, 3), os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	out, err = run(t, "verify", "--data-dir", dir)
	require.ErrorIs(t, err, page.ErrInvalidPageSize)
	assert.Contains(t, out, "FAILED")

	info, err := os.Stat(bank.PathFor(dir, 3))
	require.NoError(t, err)
	assert.Equal(t, int64(page.PageSize+3), info.Size())
}

func TestVerify_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "ledgerdb.yaml")
	cfg := "data_dir: " + filepath.Join(dir, "data") + "\naccounts:\n  - id: 7\n    limit: 10\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	out, err := run(t, "verify", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "account 7")
	assert.Contains(t, out, "missing")
	assert.Equal(t, 1, strings.Count(out, "account "))
	assert.NoDirExists(t, filepath.Join(dir, "data"))
}

func TestDump(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "transact", "1", "1000", "c", "salary", "--data-dir", dir)
	require.NoError(t, err)
	_, err = run(t, "transact", "1", "250", "d", "rent", "--data-dir", dir)
	require.NoError(t, err)

	out, err := run(t, "dump", bank.PathFor(dir, 1))
	require.NoError(t, err)
	assert.Contains(t, out, "page 0")
	assert.Contains(t, out, "slots 2/32")
	assert.Contains(t, out, `"salary"`)
	assert.Contains(t, out, "balance=750")
	assert.Contains(t, out, "1 page(s), 2 row(s)")

	out, err = run(t, "dump", "--raw", bank.PathFor(dir, 1))
	require.NoError(t, err)
	assert.NotContains(t, out, "salary")
	assert.Contains(t, out, "2 row(s)")
}

func TestDump_TornReadOnlyFile(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "transact", "1", "1000", "c", "salary", "--data-dir", dir)
	require.NoError(t, err)

	path := bank.PathFor(dir, 1)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte{9, 9, 9})
	require.NoError(t, err)
	require.NoError(t, f.Close())
	require.NoError(t, os.Chmod(path, 0444))

	out, err := run(t, "dump", path)
	require.ErrorIs(t, err, page.ErrInvalidPageSize)
	assert.Contains(t, out, `"salary"`)
	assert.Contains(t, out, "1 page(s), 1 row(s)")
	assert.Contains(t, out, "torn tail: 3 byte(s) past offset 4096")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(page.PageSize+3), info.Size())
}

func TestDump_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.db")
	_, err := run(t, "dump", path)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.NoFileExists(t, path)
}

func TestRoute(t *testing.T) {
	out, err := run(t, "route", "/a", "/b", "/c")
	require.NoError(t, err)
	assert.Equal(t, "/a -> api01:3000\n/b -> api02:3000\n/c -> api01:3000\n", out)

	first, err := run(t, "route", "--strategy", "path-hash", "/clientes/1/extrato", "/clientes/1/extrato")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(first), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, lines[0], lines[1])

	_, err = run(t, "route", "--strategy", "random", "/a")
	require.Error(t, err)
}
