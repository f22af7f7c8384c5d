package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidChild is returned when a child fails validation.
var ErrInvalidChild = errors.New("invalid child")

// ChildNotFoundError is returned when a lookup matches no child.
type ChildNotFoundError struct {
	ID        int64
	GUID      string
	Operation string // set when the lookup was an operation
}

func (e *ChildNotFoundError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("child not found: %s", e.Operation)
	}
	if e.GUID != "" {
		return fmt.Sprintf("child not found: guid=%s", e.GUID)
	}
	return fmt.Sprintf("child not found: id=%d", e.ID)
}

// IsNotFound reports whether err is or wraps a ChildNotFoundError.
func IsNotFound(err error) bool {
	var nf *ChildNotFoundError
	return errors.As(err, &nf)
}
