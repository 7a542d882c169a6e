package ledger

import (
	"fmt"
	"time"

	"github.com/MikhailWahib/ledgerdb/internal/record"
)

// Entry is one persisted ledger row: the transaction and the balance right after it.
type Entry struct {
	Balance     int64
	Transaction Transaction
}

// entrySize is the largest encoded Entry: four bytes per description rune at most.
// Format: [8 bytes Balance][8 bytes Amount][1 byte Kind][1 byte DescLen][Desc][8 bytes CreatedAt unix seconds][8 bytes CreatedAt nanoseconds]
const entrySize = 8 + 8 + 1 + 1 + 4*MaxDescriptionLength + 8 + 8

// EntryCodec is the fixed big-endian layout of ledger rows.
type EntryCodec struct{}

var _ record.Codec[Entry] = EntryCodec{}

// Encode serializes e.
func (EntryCodec) Encode(e Entry) ([]byte, error) {
	tx := e.Transaction
	enc := record.NewEncoder(entrySize)
	enc.Int64(e.Balance)
	enc.Int64(tx.amount)
	enc.Byte(byte(tx.kind))
	enc.String(tx.description)
	enc.Int64(tx.createdAt.Unix())
	enc.Int64(int64(tx.createdAt.Nanosecond()))
	return enc.Bytes()
}

// Decode parses and re-validates a row written by Encode.
func (EntryCodec) Decode(payload []byte) (Entry, error) {
	dec := record.NewDecoder(payload)
	balance := dec.Int64()
	amount := dec.Int64()
	kind := Kind(dec.Byte())
	description := dec.String()
	sec := dec.Int64()
	nsec := dec.Int64()
	if err := dec.Finish(); err != nil {
		return Entry{}, err
	}
	if nsec < 0 || nsec >= int64(time.Second) {
		return Entry{}, fmt.Errorf("%w: %d nanoseconds", ErrInvalidCreatedAt, nsec)
	}

	tx, err := NewTransaction(amount, kind, description, time.Unix(sec, nsec))
	if err != nil {
		return Entry{}, fmt.Errorf("failed to decode transaction: %w", err)
	}
	return Entry{Balance: balance, Transaction: tx}, nil
}
