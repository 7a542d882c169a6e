// Package ledger keeps the balance and recent history of one account on top
// of an append-only row database.
//
// Every accepted transaction is persisted together with the balance after it,
// so replaying the log on open rebuilds the exact in-memory state. Memory is
// never ahead of the durable log: state changes only after the row is flushed.
package ledger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/MikhailWahib/ledgerdb/internal/database"
	"github.com/MikhailWahib/ledgerdb/internal/diskmanager"
	"github.com/MikhailWahib/ledgerdb/internal/logging"
)

// DefaultSlotSize is the slot size of ledger files.
const DefaultSlotSize = 128

// Options tunes the database behind a ledger.
type Options struct {
	SlotSize         int
	Fsync            database.FsyncMode
	TruncateTornPage bool
	DiskManager      diskmanager.DiskManager
}

// Ledger is the durable transaction log of one account plus its derived state.
// It is safe for concurrent use: writes are serialized, reads share a read lock.
type Ledger struct {
	mu sync.RWMutex

	id      int
	limit   int64
	balance int64
	history *History
	db      *database.Database[Entry]

	log *slog.Logger
}

// Balance is the result of an accepted transaction.
type Balance struct {
	Limit   int64 `json:"limite"`
	Balance int64 `json:"saldo"`
}

// Statement is a consistent snapshot of a ledger.
type Statement struct {
	Balance int64
	Limit   int64
	Date    time.Time
	Recent  []Transaction
}

type statementSummary struct {
	Total int64     `json:"total"`
	Date  time.Time `json:"data_extrato"`
	Limit int64     `json:"limite"`
}

type statementJSON struct {
	Summary statementSummary `json:"saldo"`
	Recent  []Transaction    `json:"ultimas_transacoes"`
}

// MarshalJSON encodes the statement in the request layer's wire shape.
func (s Statement) MarshalJSON() ([]byte, error) {
	recent := s.Recent
	if recent == nil {
		recent = []Transaction{}
	}
	return json.Marshal(statementJSON{
		Summary: statementSummary{Total: s.Balance, Date: s.Date, Limit: s.Limit},
		Recent:  recent,
	})
}

// Open opens the log at path and replays it to rebuild balance and history.
func Open(id int, path string, limit int64, opts Options) (*Ledger, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: account %d has limit %d", ErrInvalidLimit, id, limit)
	}
	if opts.SlotSize == 0 {
		opts.SlotSize = DefaultSlotSize
	}

	db, err := database.Open(path, database.Options[Entry]{
		SlotSize:         opts.SlotSize,
		Codec:            EntryCodec{},
		Fsync:            opts.Fsync,
		TruncateTornPage: opts.TruncateTornPage,
		DiskManager:      opts.DiskManager,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %d: %w", id, err)
	}

	l := &Ledger{
		id:      id,
		limit:   limit,
		history: NewHistory(HistorySize),
		db:      db,
		log:     logging.WithAccount(id),
	}
	if err := l.replay(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to replay ledger %d: %w", id, err)
	}
	return l, nil
}

func (l *Ledger) replay() error {
	var rows int
	for entry, err := range l.db.Scan() {
		if err != nil {
			return err
		}
		l.balance = entry.Balance
		l.history.Push(entry.Transaction)
		rows++
	}

	if l.balance+l.limit < 0 {
		l.log.Warn("replayed balance is below the current limit", "balance", l.balance, "limit", l.limit)
	}
	l.log.Info("ledger replayed", "rows", rows, "balance", l.balance)
	return nil
}

// headroom is how much can still be debited: balance + limit, saturated at MaxInt64.
func (l *Ledger) headroom() int64 {
	if l.balance > 0 && l.limit > math.MaxInt64-l.balance {
		return math.MaxInt64
	}
	return l.balance + l.limit
}

// Transact applies tx. Debits beyond balance + limit fail with
// ErrLimitExceeded and leave balance, history and log unchanged. The row is
// persisted before any in-memory state changes.
func (l *Ledger) Transact(tx Transaction) (Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var next int64
	switch tx.kind {
	case Credit:
		if l.balance > 0 && tx.amount > math.MaxInt64-l.balance {
			return Balance{}, ErrBalanceOverflow
		}
		next = l.balance + tx.amount
	case Debit:
		if tx.amount > l.headroom() {
			l.log.Debug("debit rejected", "amount", tx.amount, "balance", l.balance, "limit", l.limit)
			return Balance{}, ErrLimitExceeded
		}
		next = l.balance - tx.amount
	default:
		return Balance{}, ErrInvalidKind
	}

	if err := l.db.Insert(Entry{Balance: next, Transaction: tx}); err != nil {
		return Balance{}, fmt.Errorf("failed to persist transaction: %w", err)
	}

	l.balance = next
	l.history.Push(tx)
	return Balance{Limit: l.limit, Balance: l.balance}, nil
}

// ID returns the account id.
func (l *Ledger) ID() int { return l.id }

// Limit returns the credit limit.
func (l *Ledger) Limit() int64 { return l.limit }

// Balance returns the current balance.
func (l *Ledger) Balance() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balance
}

// History returns up to HistorySize recent transactions, newest first.
func (l *Ledger) History() []Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.history.Items()
}

// Statement returns balance, limit and history read under one lock, dated now.
func (l *Ledger) Statement(now time.Time) Statement {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Statement{
		Balance: l.balance,
		Limit:   l.limit,
		Date:    now.UTC(),
		Recent:  l.history.Items(),
	}
}

// Len returns the number of transactions in the log.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.db.Len()
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.Close()
}
