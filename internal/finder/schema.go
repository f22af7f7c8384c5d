package finder

import (
	"slices"
	"sort"
)

// FieldType categorizes attributes for validation and compilation.
type FieldType int

const (
	FieldString FieldType = iota
	FieldEnum
	FieldInt
	FieldBool
	FieldDate
)

func (f FieldType) String() string {
	switch f {
	case FieldString:
		return "string"
	case FieldEnum:
		return "enum"
	case FieldInt:
		return "int"
	case FieldBool:
		return "bool"
	case FieldDate:
		return "date"
	default:
		return "unknown"
	}
}

// Attribute describes one queryable property of a domain object.
type Attribute struct {
	Name   string
	Column string // defaults to Name
	Type   FieldType
	Enum   []string // valid values for FieldEnum
}

// Schema maps attribute names onto a table. Date columns hold unix seconds.
type Schema struct {
	Table        string
	Alias        string
	DefaultOrder []OrderTerm

	attrs  []Attribute
	byName map[string]Attribute
}

// NewSchema builds a schema for table, addressed as alias in generated SQL.
func NewSchema(table, alias string, attrs ...Attribute) *Schema {
	s := &Schema{
		Table:  table,
		Alias:  alias,
		byName: make(map[string]Attribute, len(attrs)),
	}
	for _, a := range attrs {
		if a.Column == "" {
			a.Column = a.Name
		}
		s.attrs = append(s.attrs, a)
		s.byName[a.Name] = a
	}
	return s
}

// WithDefaultOrder sets the order used when a query has no ORDER BY.
func (s *Schema) WithDefaultOrder(terms ...OrderTerm) *Schema {
	s.DefaultOrder = terms
	return s
}

// Attribute looks up an attribute by name.
func (s *Schema) Attribute(name string) (Attribute, bool) {
	a, ok := s.byName[name]
	return a, ok
}

// Attributes returns the attributes in declaration order.
func (s *Schema) Attributes() []Attribute {
	return slices.Clone(s.attrs)
}

// Names returns the sorted attribute names.
func (s *Schema) Names() []string {
	names := make([]string, 0, len(s.attrs))
	for _, a := range s.attrs {
		names = append(names, a.Name)
	}
	sort.Strings(names)
	return names
}

// column returns the qualified column for an attribute.
func (s *Schema) column(name string) string {
	col := name
	if a, ok := s.byName[name]; ok {
		col = a.Column
	}
	if s.Alias == "" {
		return col
	}
	return s.Alias + "." + col
}
