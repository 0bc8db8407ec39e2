package sqlite

import (
	"errors"
	"fmt"
)

// ErrNoUser indicates no mirrored user row exists. Run a sync first.
var ErrNoUser = errors.New("store: no mirrored user")

// ErrInvoiceNotFound indicates no invoice row exists for the given id.
var ErrInvoiceNotFound = errors.New("store: invoice not found")

// StorageError reports a failure reading or writing the backing file.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
