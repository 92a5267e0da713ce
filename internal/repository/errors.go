package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an id addressed by Update has no row.
var ErrNotFound = errors.New("not found")

// PersistenceError wraps a failure raised by the store itself: constraint
// violations, lost connections, pool exhaustion. Error() is the raw driver message.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func notFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}
