package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxDescriptionLength is the maximum number of characters in a description.
const MaxDescriptionLength = 10

// Kind is the direction of a transaction.
type Kind byte

const (
	// Credit adds the amount to the balance
	Credit Kind = 'c'
	// Debit subtracts the amount from the balance
	Debit Kind = 'd'
)

func (k Kind) valid() bool { return k == Credit || k == Debit }

func (k Kind) String() string {
	switch k {
	case Credit:
		return "credit"
	case Debit:
		return "debit"
	default:
		return fmt.Sprintf("Kind(%d)", byte(k))
	}
}

// MarshalText encodes the kind as "c" or "d".
func (k Kind) MarshalText() ([]byte, error) {
	if !k.valid() {
		return nil, ErrInvalidKind
	}
	return []byte{byte(k)}, nil
}

// UnmarshalText accepts "c" or "d".
func (k *Kind) UnmarshalText(text []byte) error {
	if len(text) != 1 || !Kind(text[0]).valid() {
		return fmt.Errorf("%w: got %q", ErrInvalidKind, text)
	}
	*k = Kind(text[0])
	return nil
}

// Transaction is an immutable, validated ledger movement.
type Transaction struct {
	amount      int64
	kind        Kind
	description string
	createdAt   time.Time
}

// NewTransaction validates its arguments and builds a Transaction.
// A zero createdAt is replaced with the current time.
func NewTransaction(amount int64, kind Kind, description string, createdAt time.Time) (Transaction, error) {
	if amount <= 0 {
		return Transaction{}, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}
	if !kind.valid() {
		return Transaction{}, ErrInvalidKind
	}
	if n := utf8.RuneCountInString(description); n == 0 || n > MaxDescriptionLength || !utf8.ValidString(description) {
		return Transaction{}, fmt.Errorf("%w: got %q", ErrInvalidDescription, description)
	}
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	if y := createdAt.UTC().Year(); y < 0 || y > 9999 {
		return Transaction{}, fmt.Errorf("%w: got %v", ErrInvalidCreatedAt, createdAt)
	}

	return Transaction{
		amount:      amount,
		kind:        kind,
		description: description,
		createdAt:   createdAt.UTC(),
	}, nil
}

// Amount returns the positive amount moved.
func (t Transaction) Amount() int64 { return t.amount }

// Kind returns credit or debit.
func (t Transaction) Kind() Kind { return t.kind }

// Description returns the 1 to 10 character description.
func (t Transaction) Description() string { return t.description }

// CreatedAt returns the creation time in UTC.
func (t Transaction) CreatedAt() time.Time { return t.createdAt }

type transactionJSON struct {
	Amount      int64      `json:"valor"`
	Kind        Kind       `json:"tipo"`
	Description string     `json:"descricao"`
	CreatedAt   *time.Time `json:"realizada_em,omitempty"`
}

// MarshalJSON encodes the transaction in the request layer's wire shape.
func (t Transaction) MarshalJSON() ([]byte, error) {
	createdAt := t.createdAt
	return json.Marshal(transactionJSON{
		Amount:      t.amount,
		Kind:        t.kind,
		Description: t.description,
		CreatedAt:   &createdAt,
	})
}

// ParseTransaction decodes a request body into a validated Transaction.
// Every failure, malformed JSON included, wraps ErrInvalidTransaction.
func ParseTransaction(data []byte) (Transaction, error) {
	var tx Transaction
	if err := json.Unmarshal(data, &tx); err != nil {
		if errors.Is(err, ErrInvalidTransaction) {
			return Transaction{}, err
		}
		return Transaction{}, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	return tx, nil
}

// UnmarshalJSON decodes and validates a transaction. A missing realizada_em
// defaults to now.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var raw transactionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}

	var createdAt time.Time
	if raw.CreatedAt != nil {
		createdAt = *raw.CreatedAt
	}
	tx, err := NewTransaction(raw.Amount, raw.Kind, raw.Description, createdAt)
	if err != nil {
		return err
	}
	*t = tx
	return nil
}
