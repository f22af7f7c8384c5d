package domain

import (
	"github.com/zjrosen/finder/internal/finder"
	"github.com/zjrosen/finder/internal/list"
)

// AbstractChildList is an ordered list of *AbstractChild. See package list
// for its behavior.
type AbstractChildList = list.List[*AbstractChild]

// NewAbstractChildList returns an empty list.
func NewAbstractChildList() *AbstractChildList {
	return list.New[*AbstractChild]()
}

// NewAbstractChildListWithCapacity returns an empty list with room for n children.
func NewAbstractChildListWithCapacity(n int) *AbstractChildList {
	return list.NewWithCapacity[*AbstractChild](n)
}

// NewAbstractChildListFrom returns a list holding a copy of seed.
func NewAbstractChildListFrom(seed []*AbstractChild) *AbstractChildList {
	return list.NewFromSeed(seed)
}

// NewAbstractChildListForOperation returns a list of the children matching op,
// loaded when the list is resolved.
func NewAbstractChildListForOperation(op finder.Operation) *AbstractChildList {
	return list.NewFromOperation[*AbstractChild](op)
}
