package dtr

import (
	"errors"
	"fmt"
)

var (
	ErrDTRNotFound = errors.New("DTR record not found")

	// ErrDuplicateRecord is returned when a concurrent save created the
	// (employee, date) row first. The caller may retry.
	ErrDuplicateRecord = errors.New("DTR record already exists for this employee and date")

	// ErrTransactionFailed matches every *TransactionError.
	ErrTransactionFailed = errors.New("DTR transaction failed")
)

// TransactionError wraps an unclassified failure inside the upsert
// transaction. Nothing was persisted, so the request is safe to retry.
type TransactionError struct {
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("DTR transaction failed: %v", e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

func (e *TransactionError) Is(target error) bool {
	return target == ErrTransactionFailed
}
