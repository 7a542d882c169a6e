// Package ledgerdb keeps durable per-account transaction logs in page files
// and rebuilds balances from them on restart.
//
// Each account is a ledger backed by its own file of fixed-size pages. Every
// accepted transaction is appended together with the balance after it and the
// tail page is flushed before the call returns.
//
// Example usage:
//
//	db, err := ledgerdb.Open(nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer db.Close()
//
//	tx, err := ledgerdb.NewTransaction(500, ledgerdb.Debit, "rent", time.Time{})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	balance, err := db.Transact(1, tx)
//	if errors.Is(err, ledgerdb.ErrLimitExceeded) {
//		log.Printf("rejected")
//	}
//
//	statement, err := db.Statement(1)
package ledgerdb

import (
	"time"

	"github.com/MikhailWahib/ledgerdb/internal/bank"
	"github.com/MikhailWahib/ledgerdb/internal/config"
	"github.com/MikhailWahib/ledgerdb/internal/database"
	"github.com/MikhailWahib/ledgerdb/internal/ledger"
	"github.com/MikhailWahib/ledgerdb/internal/logging"
)

// Config is an alias for config.Config, re-exported for user convenience.
type Config = config.Config

// DefaultConfig returns a Config struct populated with default values. Re-exported for user convenience.
var DefaultConfig = config.DefaultConfig

// Re-exported ledger types.
type (
	Transaction = ledger.Transaction
	Kind        = ledger.Kind
	Balance     = ledger.Balance
	Statement   = ledger.Statement
)

const (
	Credit = ledger.Credit
	Debit  = ledger.Debit
)

// NewTransaction validates and builds a transaction. A zero createdAt means now.
var NewTransaction = ledger.NewTransaction

// ParseTransaction decodes a {"valor","tipo","descricao"} request body.
// Errors wrap ErrInvalidTransaction, so StatusOf maps them to 422.
var ParseTransaction = ledger.ParseTransaction

// Errors callers are expected to branch on.
var (
	ErrAccountNotFound    = bank.ErrAccountNotFound
	ErrLimitExceeded      = ledger.ErrLimitExceeded
	ErrInvalidTransaction = ledger.ErrInvalidTransaction
	ErrIO                 = database.ErrIO
	ErrCorruptRow         = database.ErrCorruptRow
)

// StatusOf maps an error returned by DB to an HTTP status code.
var StatusOf = bank.StatusOf

// DB is a thread-safe set of account ledgers.
type DB struct {
	bank *bank.Bank
}

// Open validates cfg, applies its log level, creates the data directory and
// replays every configured account. A nil cfg uses DefaultConfig.
func Open(cfg *Config) (*DB, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := logging.ParseLevel(cfg.LogLevel)
	logging.SetLevel(level)

	opts, err := LedgerOptions(cfg)
	if err != nil {
		return nil, err
	}

	accounts := make([]bank.Account, 0, len(cfg.Accounts))
	for _, acc := range cfg.Accounts {
		accounts = append(accounts, bank.Account{ID: acc.ID, Limit: acc.Limit})
	}

	b, err := bank.Open(cfg.DataDir, accounts, opts)
	if err != nil {
		return nil, err
	}
	return &DB{bank: b}, nil
}

// LedgerOptions translates the storage settings of cfg into ledger options.
func LedgerOptions(cfg *Config) (ledger.Options, error) {
	fsync, err := database.ParseFsyncMode(cfg.Fsync)
	if err != nil {
		return ledger.Options{}, err
	}
	return ledger.Options{
		SlotSize:         cfg.SlotSize,
		Fsync:            fsync,
		TruncateTornPage: cfg.TruncateTornPage,
	}, nil
}

// Transact applies tx to account id.
// Returns ErrAccountNotFound, ErrLimitExceeded, or a storage error.
func (db *DB) Transact(id int, tx Transaction) (Balance, error) {
	return db.bank.Transact(id, tx)
}

// Statement returns balance, limit and the latest transactions of account id.
func (db *DB) Statement(id int) (Statement, error) {
	return db.bank.Statement(id, time.Now())
}

// Accounts returns the configured account ids in ascending order.
func (db *DB) Accounts() []int {
	return db.bank.IDs()
}

// Close closes every ledger file. The DB must not be used afterwards.
func (db *DB) Close() error {
	return db.bank.Close()
}
