package sqlite

import (
	"time"

	"github.com/zjrosen/finder/internal/domain"
)

// AbstractChildModel represents a row of the abstract_child table.
// Times are Unix seconds.
type AbstractChildModel struct {
	ID        int64
	GUID      string
	ParentID  int64
	Name      string
	Status    string
	CreatedAt int64
	UpdatedAt int64
}

// toChildModel converts a domain AbstractChild to its row.
func toChildModel(c *domain.AbstractChild) *AbstractChildModel {
	return &AbstractChildModel{
		ID:        c.ID(),
		GUID:      c.GUID(),
		ParentID:  c.ParentID(),
		Name:      c.Name(),
		Status:    string(c.Status()),
		CreatedAt: c.CreatedAt().Unix(),
		UpdatedAt: c.UpdatedAt().Unix(),
	}
}

// toDomain converts a row to a domain AbstractChild.
func (m *AbstractChildModel) toDomain() *domain.AbstractChild {
	return domain.ReconstituteAbstractChild(
		m.ID,
		m.GUID,
		m.ParentID,
		m.Name,
		domain.Status(m.Status),
		time.Unix(m.CreatedAt, 0),
		time.Unix(m.UpdatedAt, 0),
	)
}
