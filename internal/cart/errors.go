package cart

import (
	"errors"
	"fmt"
)

// ErrPersist matches every *PersistError.
var ErrPersist = errors.New("cart not persisted")

// PersistError reports that the durable copy could not be written. The
// in-memory cart already holds the new state when it is returned.
type PersistError struct {
	Key string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist cart %q: %v", e.Key, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

func (e *PersistError) Is(target error) bool {
	return target == ErrPersist
}

// IsPersistWarning reports whether err only signals a failed durable write,
// meaning the operation itself succeeded.
func IsPersistWarning(err error) bool {
	return errors.Is(err, ErrPersist)
}
