package domain

import "github.com/zjrosen/finder/internal/finder"

// Attribute names usable in operations over AbstractChild.
const (
	AttrID       = "id"
	AttrGUID     = "guid"
	AttrParentID = "parent_id"
	AttrName     = "name"
	AttrStatus   = "status"
	AttrCreated  = "created"
	AttrUpdated  = "updated"
)

// AbstractChildTable is the table AbstractChild rows live in.
const AbstractChildTable = "abstract_child"

// AbstractChildSchema maps AbstractChild attributes onto the abstract_child table.
var AbstractChildSchema = finder.NewSchema(AbstractChildTable, "c",
	finder.Attribute{Name: AttrID, Type: finder.FieldInt},
	finder.Attribute{Name: AttrGUID, Type: finder.FieldString},
	finder.Attribute{Name: AttrParentID, Type: finder.FieldInt},
	finder.Attribute{Name: AttrName, Type: finder.FieldString},
	finder.Attribute{Name: AttrStatus, Type: finder.FieldEnum, Enum: statusNames()},
	finder.Attribute{Name: AttrCreated, Column: "created_at", Type: finder.FieldDate},
	finder.Attribute{Name: AttrUpdated, Column: "updated_at", Type: finder.FieldDate},
).WithDefaultOrder(finder.OrderTerm{Attribute: AttrID})

func statusNames() []string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = string(s)
	}
	return names
}
