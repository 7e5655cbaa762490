package repository

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a row does not exist or is not visible to the caller.
var ErrNotFound = errors.New("record not found")

// ErrOwnershipMismatch is returned when a batch names rows the caller does not own.
var ErrOwnershipMismatch = errors.New("one or more rows do not belong to the caller")

// ConflictError reports a unique constraint violation.
type ConflictError struct {
	Entity string
	Fields []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("A %s with this %s already exists.", e.Entity, strings.Join(e.Fields, ", "))
}

// IsConflict reports whether err wraps a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
