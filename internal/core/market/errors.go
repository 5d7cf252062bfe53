package market

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the sender is not the owner, creator
	// or claimant an operation requires, or is not the whitelisted buyer.
	ErrUnauthorized = errors.New("unauthorized")

	ErrIdAlreadyExists  = errors.New("id already exists")
	ErrAlreadyFinalized = errors.New("listing already finalized")

	// ErrInvalidStatus is returned when a record is not in the status an
	// operation requires.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrErrorAdding is returned when adding funds leaves the balance
	// unchanged.
	ErrErrorAdding = errors.New("error adding funds")

	ErrExpired    = errors.New("listing expired")
	ErrNotExpired = errors.New("listing not expired")

	// ErrNotPurchasable is returned by buy when the listing is claimed,
	// closed, or not finalized where finalization is required.
	ErrNotPurchasable = errors.New("listing not purchasable")

	// ErrAskMismatch is returned by buy when the bucket does not hold
	// exactly the listing's ask.
	ErrAskMismatch = errors.New("bucket funds do not match ask")

	ErrInvalidTTL = errors.New("invalid ttl")

	// ErrGeneric wraps codec, backend and host failures.
	ErrGeneric = errors.New("generic error")
)

// RecordKind names the record type in a NotFound error.
type RecordKind string

const (
	KindListing RecordKind = "listing"
	KindBucket  RecordKind = "bucket"
)

// NotFound is returned when a listing or bucket does not exist under the
// requested key.
type NotFound struct {
	Kind RecordKind
	ID   uint64
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// IsNotFound reports whether err is or wraps a NotFound.
func IsNotFound(err error) bool {
	var nf *NotFound
	return errors.As(err, &nf)
}

func notFound(kind RecordKind, id uint64) error {
	return &NotFound{Kind: kind, ID: id}
}

func generic(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrGeneric, fmt.Sprintf(format, args...))
}
