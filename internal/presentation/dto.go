// Package presentation renders children for the CLI.
package presentation

import (
	"time"

	"github.com/zjrosen/finder/internal/domain"
)

// ChildDTO is the JSON shape of an AbstractChild.
type ChildDTO struct {
	ID        int64  `json:"id"`
	GUID      string `json:"guid"`
	ParentID  int64  `json:"parent_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// FromDomainChild converts a child to its DTO. Times are UTC RFC 3339.
func FromDomainChild(c *domain.AbstractChild) ChildDTO {
	return ChildDTO{
		ID:        c.ID(),
		GUID:      c.GUID(),
		ParentID:  c.ParentID(),
		Name:      c.Name(),
		Status:    c.Status().String(),
		CreatedAt: c.CreatedAt().UTC().Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt().UTC().Format(time.RFC3339),
	}
}

// FromDomainChildren converts children in order. Never returns nil.
func FromDomainChildren(children []*domain.AbstractChild) []ChildDTO {
	dtos := make([]ChildDTO, len(children))
	for i, c := range children {
		dtos[i] = FromDomainChild(c)
	}
	return dtos
}

// ExplainDTO describes how an operation compiles.
type ExplainDTO struct {
	Operation string `json:"operation"`
	OrderBy   string `json:"order_by,omitempty"`
	SQL       string `json:"sql"`
	Params    []any  `json:"params"`
}
