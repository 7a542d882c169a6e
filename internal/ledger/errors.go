package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrLimitExceeded is returned when a debit would take the balance below -limit.
	// It is a business rejection; the ledger is left untouched.
	ErrLimitExceeded = errors.New("debit exceeds the account limit")

	// ErrInvalidTransaction is the parent of every transaction validation error.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrInvalidAmount is returned for non-positive amounts.
	ErrInvalidAmount = fmt.Errorf("%w: amount must be a positive integer", ErrInvalidTransaction)

	// ErrInvalidKind is returned for kinds other than credit or debit.
	ErrInvalidKind = fmt.Errorf("%w: kind must be c or d", ErrInvalidTransaction)

	// ErrInvalidDescription is returned for descriptions outside 1 to 10 characters.
	ErrInvalidDescription = fmt.Errorf("%w: description must be 1 to 10 characters", ErrInvalidTransaction)

	// ErrInvalidCreatedAt is returned for creation times outside years 0 to 9999,
	// which cannot be written as RFC 3339.
	ErrInvalidCreatedAt = fmt.Errorf("%w: realizada_em must be within years 0 to 9999", ErrInvalidTransaction)

	// ErrBalanceOverflow is returned when a credit would overflow the balance.
	ErrBalanceOverflow = fmt.Errorf("%w: balance would overflow", ErrInvalidTransaction)

	// ErrInvalidLimit is returned when opening a ledger with a negative limit.
	ErrInvalidLimit = errors.New("limit must not be negative")
)
