package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikhailWahib/ledgerdb"
	"github.com/MikhailWahib/ledgerdb/internal/bank"
	"github.com/MikhailWahib/ledgerdb/internal/ledger"
)

func parseAccountID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid account id %q", s)
	}
	return id, nil
}

func newTransactCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transact <account> <amount> <c|d> <description>",
		Short: "Apply a credit or debit to an account",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountID(args[0])
			if err != nil {
				return err
			}
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: amount %q", ledger.ErrInvalidAmount, args[1])
			}
			var kind ledger.Kind
			if err := kind.UnmarshalText([]byte(args[2])); err != nil {
				return err
			}
			tx, err := ledger.NewTransaction(amount, kind, args[3], time.Time{})
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := ledgerdb.Open(cfg)
			if err != nil {
				return err
			}
			res, txErr := db.Transact(id, tx)
			if err := db.Close(); err != nil && txErr == nil {
				txErr = err
			}
			if txErr != nil {
				return fmt.Errorf("transaction failed (status %d): %w", bank.StatusOf(txErr), txErr)
			}
			return writeJSON(cmd, res)
		},
	}
	return cmd
}

func newStatementCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "statement <account>",
		Short: "Print balance, limit and the latest transactions of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountID(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			db, err := ledgerdb.Open(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			st, err := db.Statement(id)
			if err != nil {
				return err
			}
			return writeJSON(cmd, st)
		},
	}
}

func newVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Replay every configured account and report row counts",
		Long: `Replay every configured account file from the first page.

Fails when any file is torn, holds a corrupt row, or cannot be read.
Files are opened one at a time and never written. Accounts without a file
are listed as missing and do not fail verification.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			opts, err := ledgerdb.LedgerOptions(cfg)
			if err != nil {
				return err
			}
			// verification must never repair
			opts.TruncateTornPage = false

			out := cmd.OutOrStdout()
			var failed []error
			for _, acc := range cfg.Accounts {
				path := bank.PathFor(cfg.DataDir, acc.ID)
				if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
					fmt.Fprintf(out, "account %d\t%s\tmissing\n", acc.ID, path)
					continue
				}
				l, err := ledger.Open(acc.ID, path, acc.Limit, opts)
				if err != nil {
					fmt.Fprintf(out, "account %d\t%s\tFAILED: %v\n", acc.ID, path, err)
					failed = append(failed, err)
					continue
				}
				fmt.Fprintf(out, "account %d\t%s\trows=%d\tbalance=%d\tlimit=%d\n",
					acc.ID, path, l.Len(), l.Balance(), l.Limit())
				if err := l.Close(); err != nil {
					failed = append(failed, err)
				}
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d account(s) failed verification: %w", len(failed), errors.Join(failed...))
			}
			return nil
		},
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
