package cli

import (
	"encoding/hex"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MikhailWahib/ledgerdb/internal/database"
	"github.com/MikhailWahib/ledgerdb/internal/ledger"
)

func newDumpCommand() *cobra.Command {
	var (
		slotSize int
		raw      bool
	)
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "List every page and slot of a ledger file",
		Long: `List every page and slot of a ledger file.

Slots are decoded as ledger rows. A slot that does not decode is printed
as hex and reported as corrupt. Use --raw to skip decoding entirely.

The file is opened read-only. Bytes past the last page boundary are
reported and the command fails, but the whole pages before them are listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := database.OpenInspector(args[0], slotSize, nil)
			if err != nil {
				return err
			}
			defer in.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			var codec ledger.EntryCodec
			pages, rows, corrupt := 0, 0, 0
			for p, err := range in.Pages() {
				if err != nil {
					w.Flush()
					return err
				}
				pages++
				fmt.Fprintf(w, "page %d\tslots %d/%d\n", p.Index(), p.Len(), p.Capacity())

				slot := 0
				for payload, err := range p.Rows() {
					if err != nil {
						w.Flush()
						return fmt.Errorf("page %d slot %d: %w", p.Index(), slot, err)
					}
					rows++
					if raw {
						fmt.Fprintf(w, "  %d\t%s\n", slot, hex.EncodeToString(payload))
						slot++
						continue
					}
					e, err := codec.Decode(payload)
					if err != nil {
						corrupt++
						fmt.Fprintf(w, "  %d\tCORRUPT\t%s\t%v\n", slot, hex.EncodeToString(payload), err)
						slot++
						continue
					}
					tx := e.Transaction
					fmt.Fprintf(w, "  %d\t%s\t%d\t%q\tbalance=%d\t%s\n",
						slot, tx.Kind(), tx.Amount(), tx.Description(), e.Balance,
						tx.CreatedAt().UTC().Format("2006-01-02T15:04:05.000000Z"))
					slot++
				}
			}
			fmt.Fprintf(w, "%d page(s), %d row(s)\n", pages, rows)
			torn := in.TornBytes()
			if torn > 0 {
				fmt.Fprintf(w, "torn tail: %d byte(s) past offset %d\n", torn, in.Size()-torn)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if torn > 0 {
				return fmt.Errorf("%w: %d byte(s) past the last page boundary", database.ErrInvalidPageSize, torn)
			}
			if corrupt > 0 {
				return fmt.Errorf("%w: %d slot(s) failed to decode", database.ErrCorruptRow, corrupt)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&slotSize, "slot-size", ledger.DefaultSlotSize, "Slot size the file was written with")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print payloads as hex without decoding")
	return cmd
}
