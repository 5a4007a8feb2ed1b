package differ

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is matched by every *InvalidInputError.
var ErrInvalidInput = errors.New("differ: invalid input")

// InvalidInputError is returned by Check and Diff when the collection is
// neither nil, a slice or array, nor an iterable.
type InvalidInputError struct {
	Value any
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("error trying to diff '%v' (%T): only slices, arrays and iterables are allowed", e.Value, e.Value)
}

// Is reports whether target is ErrInvalidInput.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NoDifferError is returned by Registry.Find when no factory supports the
// collection.
type NoDifferError struct {
	Value any
}

func (e *NoDifferError) Error() string {
	return fmt.Sprintf("cannot find a differ supporting object '%v' of type '%T'", e.Value, e.Value)
}
