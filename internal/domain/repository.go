package domain

import (
	"context"

	"github.com/zjrosen/finder/internal/finder"
)

// AbstractChildRepository defines the persistence interface for AbstractChild.
// It satisfies list.Resolver[*AbstractChild] and list.Counter.
type AbstractChildRepository interface {
	// Save persists a child.
	// For new children (ID == 0), this creates a new record and sets the ID.
	// For existing children (ID > 0), this updates the record.
	// Returns ErrInvalidChild if the child fails Validate.
	Save(ctx context.Context, child *AbstractChild) error

	// FindByID retrieves a child by its database ID.
	// Returns ChildNotFoundError if no matching child exists.
	FindByID(ctx context.Context, id int64) (*AbstractChild, error)

	// FindByGUID retrieves a child by its GUID.
	// Returns ChildNotFoundError if no matching child exists.
	FindByGUID(ctx context.Context, guid string) (*AbstractChild, error)

	// Delete removes a child by ID.
	// Returns ChildNotFoundError if no matching child exists.
	Delete(ctx context.Context, id int64) error

	// DeleteAll removes every child matching op and returns how many were removed.
	DeleteAll(ctx context.Context, op finder.Operation) (int, error)

	// Resolve returns the children matching op in the given order.
	// An empty order falls back to AbstractChildSchema's default order.
	Resolve(ctx context.Context, op finder.Operation, orderBy []finder.OrderTerm) ([]*AbstractChild, error)

	// Count returns the number of children matching op.
	Count(ctx context.Context, op finder.Operation) (int, error)

	// Close releases any resources held by the repository.
	Close() error
}
