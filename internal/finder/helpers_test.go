package finder

import "time"

var testSchema = NewSchema("widgets", "w",
	Attribute{Name: "id", Type: FieldInt},
	Attribute{Name: "owner_id", Type: FieldInt},
	Attribute{Name: "name", Type: FieldString},
	Attribute{Name: "state", Column: "widget_state", Type: FieldEnum, Enum: []string{"new", "used", "broken"}},
	Attribute{Name: "shiny", Type: FieldBool},
	Attribute{Name: "created", Column: "created_at", Type: FieldDate},
).WithDefaultOrder(OrderTerm{Attribute: "id"})

// mapRecord is a Record backed by a map.
type mapRecord map[string]any

func (m mapRecord) Attribute(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

var fixedNow = time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC)
