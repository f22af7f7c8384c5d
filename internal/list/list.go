// Package list provides List, the generic collection that typed domain lists
// are built on.
//
// A list is either adhoc, holding whatever was added to it, or
// operation-based, holding the objects matched by a finder.Operation. The
// contents of an operation-based list are loaded lazily by a Resolver and are
// read-only; AsAdhoc returns a mutable copy.
//
// Lists are not safe for concurrent use.
package list

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/zjrosen/finder/internal/finder"
	"github.com/zjrosen/finder/internal/log"
)

var (
	// ErrOperationBased is returned by mutators of an operation-based list.
	ErrOperationBased = errors.New("list is operation-based and cannot be modified")

	// ErrNilOperation is returned when an operation-based list has no operation to resolve.
	ErrNilOperation = errors.New("list has a nil operation")

	// ErrIndexOutOfRange is returned by index-based accessors.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNotResolved is returned by in-memory operations on an operation-based
	// list that has not been resolved yet.
	ErrNotResolved = errors.New("list has not been resolved")

	// ErrNotRecord is returned when in-memory evaluation needs elements that
	// implement finder.Record.
	ErrNotRecord = errors.New("list element does not implement finder.Record")
)

// Resolver loads the objects matching an operation in the given order.
type Resolver[T any] interface {
	Resolve(ctx context.Context, op finder.Operation, orderBy []finder.OrderTerm) ([]T, error)
}

// Counter counts the objects matching an operation without loading them.
type Counter interface {
	Count(ctx context.Context, op finder.Operation) (int, error)
}

// List is an ordered collection of T.
type List[T any] struct {
	items          []T
	op             finder.Operation
	operationBased bool
	resolved       bool
	orderBy        []finder.OrderTerm
}

// New returns an empty adhoc list.
func New[T any]() *List[T] {
	return &List[T]{}
}

// NewWithCapacity returns an empty adhoc list with room for n elements.
// It panics if n is negative, like make.
func NewWithCapacity[T any](n int) *List[T] {
	return &List[T]{items: make([]T, 0, n)}
}

// NewFromSeed returns an adhoc list holding a copy of seed in order.
// A nil seed gives an empty list.
func NewFromSeed[T any](seed []T) *List[T] {
	return &List[T]{items: slices.Clone(seed)}
}

// NewFromOperation returns an unresolved list for op. The operation is stored
// as given; nothing runs until Resolve.
func NewFromOperation[T any](op finder.Operation) *List[T] {
	return &List[T]{op: op, operationBased: true}
}

// Len returns the number of loaded elements. An unresolved operation-based
// list has length zero; use Count to ask the store.
func (l *List[T]) Len() int { return len(l.items) }

// Cap returns the capacity of the backing storage.
func (l *List[T]) Cap() int { return cap(l.items) }

// IsEmpty reports whether no elements are loaded.
func (l *List[T]) IsEmpty() bool { return len(l.items) == 0 }

// Get returns the element at i.
func (l *List[T]) Get(i int) (T, error) {
	if i < 0 || i >= len(l.items) {
		var zero T
		return zero, fmt.Errorf("get %d of %d: %w", i, len(l.items), ErrIndexOutOfRange)
	}
	return l.items[i], nil
}

// Items returns a copy of the loaded elements.
func (l *List[T]) Items() []T {
	return slices.Clone(l.items)
}

// All iterates over the loaded elements with their indexes.
func (l *List[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, item := range l.items {
			if !yield(i, item) {
				return
			}
		}
	}
}

// Add appends item.
func (l *List[T]) Add(item T) error {
	if l.operationBased {
		return ErrOperationBased
	}
	l.items = append(l.items, item)
	return nil
}

// AddAll appends items in order.
func (l *List[T]) AddAll(items ...T) error {
	if l.operationBased {
		return ErrOperationBased
	}
	l.items = append(l.items, items...)
	return nil
}

// Set replaces the element at i.
func (l *List[T]) Set(i int, item T) error {
	if l.operationBased {
		return ErrOperationBased
	}
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("set %d of %d: %w", i, len(l.items), ErrIndexOutOfRange)
	}
	l.items[i] = item
	return nil
}

// Remove deletes the element at i, shifting later elements down.
func (l *List[T]) Remove(i int) error {
	if l.operationBased {
		return ErrOperationBased
	}
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("remove %d of %d: %w", i, len(l.items), ErrIndexOutOfRange)
	}
	l.items = slices.Delete(l.items, i, i+1)
	return nil
}

// Clear removes every element and keeps the capacity.
func (l *List[T]) Clear() error {
	if l.operationBased {
		return ErrOperationBased
	}
	clear(l.items)
	l.items = l.items[:0]
	return nil
}

// Operation returns the operation the list was created for, or nil for an
// adhoc list.
func (l *List[T]) Operation() finder.Operation { return l.op }

// IsOperationBased reports whether the list was created from an operation.
func (l *List[T]) IsOperationBased() bool { return l.operationBased }

// IsResolved reports whether the contents are loaded. Adhoc lists are
// always resolved.
func (l *List[T]) IsResolved() bool { return !l.operationBased || l.resolved }

// OrderBy returns the order terms set on the list.
func (l *List[T]) OrderBy() []finder.OrderTerm { return slices.Clone(l.orderBy) }

// SetOrderBy sets the order of the list. An operation-based list passes the
// order to its resolver and is reloaded on the next Resolve. An adhoc list
// is sorted in memory, which requires elements implementing finder.Record.
func (l *List[T]) SetOrderBy(terms ...finder.OrderTerm) error {
	l.orderBy = slices.Clone(terms)

	if l.operationBased {
		l.resolved = false
		l.items = nil
		return nil
	}

	if len(terms) == 0 || len(l.items) < 2 {
		return nil
	}

	records := make([]finder.Record, len(l.items))
	for i, item := range l.items {
		rec, ok := any(item).(finder.Record)
		if !ok {
			return ErrNotRecord
		}
		records[i] = rec
	}

	var sortErr error
	order := make([]int, len(l.items))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		c, err := finder.CompareRecords(records[a], records[b], terms)
		if err != nil && sortErr == nil {
			sortErr = err
		}
		return c
	})
	if sortErr != nil {
		return fmt.Errorf("sort by %s: %w", finder.FormatOrderBy(terms), sortErr)
	}

	sorted := make([]T, len(order))
	for i, idx := range order {
		sorted[i] = l.items[idx]
	}
	copy(l.items, sorted)
	return nil
}

// Resolve loads an operation-based list through r. It does nothing for adhoc
// lists and for lists that are already resolved. On error the list stays
// unresolved.
func (l *List[T]) Resolve(ctx context.Context, r Resolver[T]) error {
	if l.IsResolved() {
		return nil
	}
	return l.load(ctx, r)
}

// ForceResolve reloads an operation-based list even when it is resolved.
func (l *List[T]) ForceResolve(ctx context.Context, r Resolver[T]) error {
	if !l.operationBased {
		return nil
	}
	return l.load(ctx, r)
}

func (l *List[T]) load(ctx context.Context, r Resolver[T]) error {
	if l.op == nil {
		return ErrNilOperation
	}

	items, err := r.Resolve(ctx, l.op, l.orderBy)
	if err != nil {
		log.ErrorErr(log.CatList, "resolve failed", err, "op", l.op.String())
		return fmt.Errorf("resolve %q: %w", l.op.String(), err)
	}

	l.items = items
	l.resolved = true
	log.Debug(log.CatList, "resolved", "op", l.op.String(), "count", len(items))
	return nil
}

// Count returns the number of elements. An unresolved operation-based list
// asks c instead of loading its contents.
func (l *List[T]) Count(ctx context.Context, c Counter) (int, error) {
	if l.IsResolved() {
		return len(l.items), nil
	}
	if l.op == nil {
		return 0, ErrNilOperation
	}
	n, err := c.Count(ctx, l.op)
	if err != nil {
		return 0, fmt.Errorf("count %q: %w", l.op.String(), err)
	}
	return n, nil
}

// Filter returns an adhoc list of the loaded elements matching op. Elements
// must implement finder.Record.
func (l *List[T]) Filter(op finder.Operation) (*List[T], error) {
	if !l.IsResolved() {
		return nil, ErrNotResolved
	}

	out := &List[T]{}
	for _, item := range l.items {
		rec, ok := any(item).(finder.Record)
		if !ok {
			return nil, ErrNotRecord
		}
		matched, err := finder.Evaluate(op, rec)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", op, err)
		}
		if matched {
			out.items = append(out.items, item)
		}
	}
	return out, nil
}

// AsAdhoc returns a mutable copy of the loaded elements. The copy keeps the
// order terms but not the operation.
func (l *List[T]) AsAdhoc() *List[T] {
	return &List[T]{
		items:   slices.Clone(l.items),
		orderBy: slices.Clone(l.orderBy),
	}
}
