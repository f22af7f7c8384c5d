package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/finder/internal/domain"
)

// Builder accumulates children and saves them in insertion order, so ids
// follow the order of With calls.
type Builder struct {
	t        *testing.T
	repo     domain.AbstractChildRepository
	children []childData
}

// NewBuilder creates a builder that saves through repo.
func NewBuilder(t *testing.T, repo domain.AbstractChildRepository) *Builder {
	t.Helper()
	return &Builder{t: t, repo: repo}
}

// WithChild adds a child of parentID.
func (b *Builder) WithChild(parentID int64, name string, opts ...ChildOption) *Builder {
	c := defaultChild(parentID, name)
	for _, opt := range opts {
		opt(&c)
	}
	b.children = append(b.children, c)
	return b
}

// Build saves every accumulated child and returns them with ids assigned.
func (b *Builder) Build() []*domain.AbstractChild {
	b.t.Helper()
	out := make([]*domain.AbstractChild, 0, len(b.children))
	for _, c := range b.children {
		child := domain.ReconstituteAbstractChild(0, c.guid, c.parentID, c.name, c.status, c.createdAt, c.updatedAt)
		require.NoError(b.t, b.repo.Save(context.Background(), child), "saving %s", c.name)
		out = append(out, child)
	}
	return out
}
