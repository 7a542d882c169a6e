// Package bank owns the fixed set of ledgers served by one process.
//
// The account set is decided at startup and never changes, so lookups need
// no lock; each ledger carries its own lock and distinct accounts proceed
// fully in parallel.
package bank

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MikhailWahib/ledgerdb/internal/ledger"
	"github.com/MikhailWahib/ledgerdb/internal/logging"
)

var (
	// ErrAccountNotFound is returned for ids outside the configured account set.
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateAccount is returned by Open when an id is configured twice.
	ErrDuplicateAccount = errors.New("duplicate account id")
)

// Account describes one ledger to open at startup.
type Account struct {
	ID    int
	Limit int64
}

// Bank maps account ids to their ledgers.
type Bank struct {
	ledgers map[int]*ledger.Ledger
}

// PathFor returns the log file of account id inside dataDir.
func PathFor(dataDir string, id int) string {
	return filepath.Join(dataDir, fmt.Sprintf("account-%d.db", id))
}

// Open creates dataDir if needed and opens and replays every account in parallel.
// If any ledger fails to open, the ones already opened are closed.
func Open(dataDir string, accounts []Account, opts ledger.Options) (*Bank, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	seen := make(map[int]struct{}, len(accounts))
	for _, acc := range accounts {
		if _, dup := seen[acc.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateAccount, acc.ID)
		}
		seen[acc.ID] = struct{}{}
	}

	opened := make([]*ledger.Ledger, len(accounts))
	var g errgroup.Group
	for i, acc := range accounts {
		g.Go(func() error {
			l, err := ledger.Open(acc.ID, PathFor(dataDir, acc.ID), acc.Limit, opts)
			if err != nil {
				return err
			}
			opened[i] = l
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, l := range opened {
			if l != nil {
				_ = l.Close()
			}
		}
		return nil, err
	}

	b := &Bank{ledgers: make(map[int]*ledger.Ledger, len(opened))}
	for _, l := range opened {
		b.ledgers[l.ID()] = l
	}
	logging.WithComponent("bank").Info("accounts opened", "count", len(b.ledgers), "data_dir", dataDir)
	return b, nil
}

// Ledger returns the ledger of account id.
func (b *Bank) Ledger(id int) (*ledger.Ledger, error) {
	l, ok := b.ledgers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrAccountNotFound, id)
	}
	return l, nil
}

// Transact applies tx to account id.
func (b *Bank) Transact(id int, tx ledger.Transaction) (ledger.Balance, error) {
	l, err := b.Ledger(id)
	if err != nil {
		return ledger.Balance{}, err
	}
	return l.Transact(tx)
}

// Statement returns the statement of account id dated now.
func (b *Bank) Statement(id int, now time.Time) (ledger.Statement, error) {
	l, err := b.Ledger(id)
	if err != nil {
		return ledger.Statement{}, err
	}
	return l.Statement(now), nil
}

// IDs returns the configured account ids in ascending order.
func (b *Bank) IDs() []int {
	ids := make([]int, 0, len(b.ledgers))
	for id := range b.ledgers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Close closes every ledger.
func (b *Bank) Close() error {
	var errs []error
	for _, id := range b.IDs() {
		if err := b.ledgers[id].Close(); err != nil {
			errs = append(errs, fmt.Errorf("account %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// StatusOf maps an operation result to the HTTP status the request layer
// should answer with.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrLimitExceeded), errors.Is(err, ledger.ErrInvalidTransaction):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
