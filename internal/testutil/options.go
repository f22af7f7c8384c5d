package testutil

import (
	"time"

	"github.com/zjrosen/finder/internal/domain"
)

// childData holds everything needed to insert one child.
type childData struct {
	guid      string
	parentID  int64
	name      string
	status    domain.Status
	createdAt time.Time
	updatedAt time.Time
}

func defaultChild(parentID int64, name string) childData {
	now := time.Now()
	return childData{
		guid:      name + "-guid",
		parentID:  parentID,
		name:      name,
		status:    domain.StatusActive,
		createdAt: now,
		updatedAt: now,
	}
}

// ChildOption configures a child during builder setup.
type ChildOption func(*childData)

// GUID overrides the default "<name>-guid".
func GUID(guid string) ChildOption {
	return func(c *childData) { c.guid = guid }
}

// Status sets the lifecycle state.
func Status(s domain.Status) ChildOption {
	return func(c *childData) { c.status = s }
}

// CreatedAt sets the creation time. UpdatedAt follows unless set after.
func CreatedAt(t time.Time) ChildOption {
	return func(c *childData) {
		c.createdAt = t
		c.updatedAt = t
	}
}

// UpdatedAt sets the last-modified time.
func UpdatedAt(t time.Time) ChildOption {
	return func(c *childData) { c.updatedAt = t }
}
