package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an AbstractChild.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusArchived Status = "archived"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusActive, StatusInactive, StatusArchived}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is a recognized status.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusArchived:
		return true
	default:
		return false
	}
}

// ParseStatus converts s to a Status, ignoring case and surrounding space.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrInvalidChild, s)
	}
	return status, nil
}

// AbstractChild is a child object owned by a parent through ParentID.
// Fields are unexported; use NewAbstractChild or ReconstituteAbstractChild
// and the getters.
type AbstractChild struct {
	id        int64
	guid      string
	parentID  int64
	name      string
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

// NewAbstractChild creates an active child with a fresh GUID. The ID stays
// zero until the repository assigns one.
func NewAbstractChild(parentID int64, name string) *AbstractChild {
	now := time.Now()
	return &AbstractChild{
		guid:      uuid.NewString(),
		parentID:  parentID,
		name:      name,
		status:    StatusActive,
		createdAt: now,
		updatedAt: now,
	}
}

// ReconstituteAbstractChild rebuilds a child from stored data.
func ReconstituteAbstractChild(
	id int64,
	guid string,
	parentID int64,
	name string,
	status Status,
	createdAt, updatedAt time.Time,
) *AbstractChild {
	return &AbstractChild{
		id:        id,
		guid:      guid,
		parentID:  parentID,
		name:      name,
		status:    status,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the database identifier, or 0 if the child was never saved.
func (c *AbstractChild) ID() int64 { return c.id }

// GUID returns the globally unique identifier.
func (c *AbstractChild) GUID() string { return c.guid }

// ParentID returns the identifier of the owning parent.
func (c *AbstractChild) ParentID() int64 { return c.parentID }

// Name returns the display name.
func (c *AbstractChild) Name() string { return c.name }

// Status returns the lifecycle state.
func (c *AbstractChild) Status() Status { return c.status }

// CreatedAt returns when the child was created.
func (c *AbstractChild) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns when the child was last changed.
func (c *AbstractChild) UpdatedAt() time.Time { return c.updatedAt }

// Clone returns a copy that shares no state with c.
func (c *AbstractChild) Clone() *AbstractChild {
	cp := *c
	return &cp
}

// SetID sets the database identifier. Called by the repository after insert.
func (c *AbstractChild) SetID(id int64) {
	c.id = id
}

// SetName renames the child.
func (c *AbstractChild) SetName(name string) {
	c.name = name
	c.updatedAt = time.Now()
}

// SetParentID moves the child to another parent.
func (c *AbstractChild) SetParentID(parentID int64) {
	c.parentID = parentID
	c.updatedAt = time.Now()
}

// SetStatus changes the lifecycle state.
func (c *AbstractChild) SetStatus(status Status) {
	c.status = status
	c.updatedAt = time.Now()
}

// Validate reports whether the child can be persisted.
func (c *AbstractChild) Validate() error {
	if strings.TrimSpace(c.name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidChild)
	}
	if !c.status.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidChild, c.status)
	}
	if c.guid == "" {
		return fmt.Errorf("%w: guid is required", ErrInvalidChild)
	}
	return nil
}

// Attribute implements finder.Record using the names in AbstractChildSchema.
func (c *AbstractChild) Attribute(name string) (any, bool) {
	switch name {
	case AttrID:
		return c.id, true
	case AttrGUID:
		return c.guid, true
	case AttrParentID:
		return c.parentID, true
	case AttrName:
		return c.name, true
	case AttrStatus:
		return string(c.status), true
	case AttrCreated:
		return c.createdAt, true
	case AttrUpdated:
		return c.updatedAt, true
	}
	return nil, false
}
