package finder

import (
	"strconv"
	"strings"
)

// Node is the interface for all AST nodes.
type Node interface {
	node()
}

// Operation is a deferred query predicate. Building or parsing one never
// touches a data source; resolvers interpret it later.
type Operation interface {
	Node
	operation()
	String() string
}

// Query is a parsed operation plus its optional ordering.
type Query struct {
	Filter  Operation   // nil when the text only had an ORDER BY clause
	OrderBy []OrderTerm // may be empty
}

func (q *Query) node() {}

// String renders the query as operation text.
func (q *Query) String() string {
	var parts []string
	if q.Filter != nil {
		parts = append(parts, q.Filter.String())
	}
	if len(q.OrderBy) > 0 {
		parts = append(parts, "order by "+FormatOrderBy(q.OrderBy))
	}
	return strings.Join(parts, " ")
}

// AllOperation matches every object.
type AllOperation struct{}

func (a *AllOperation) node()          {}
func (a *AllOperation) operation()     {}
func (a *AllOperation) String() string { return "all" }

// BinaryOperation represents "op AND/OR op".
type BinaryOperation struct {
	Left  Operation
	Op    TokenType // TokenAnd or TokenOr
	Right Operation
}

func (b *BinaryOperation) node()      {}
func (b *BinaryOperation) operation() {}

func (b *BinaryOperation) String() string {
	left := b.Left.String()
	if needsParens(b.Op, b.Left, false) {
		left = "(" + left + ")"
	}
	right := b.Right.String()
	if needsParens(b.Op, b.Right, true) {
		right = "(" + right + ")"
	}
	return left + " " + b.Op.symbol() + " " + right
}

// needsParens reports whether child must be parenthesized under parent so the
// rendered text parses back to the same tree. AND binds tighter than OR and
// both associate to the left.
func needsParens(parent TokenType, child Operation, rightSide bool) bool {
	bin, ok := child.(*BinaryOperation)
	if !ok {
		return false
	}
	if parent == TokenAnd && bin.Op == TokenOr {
		return true
	}
	return rightSide && bin.Op == parent
}

// NotOperation represents "NOT op".
type NotOperation struct {
	Operation Operation
}

func (n *NotOperation) node()      {}
func (n *NotOperation) operation() {}

func (n *NotOperation) String() string {
	if _, ok := n.Operation.(*BinaryOperation); ok {
		return "not (" + n.Operation.String() + ")"
	}
	return "not " + n.Operation.String()
}

// CompareOperation represents "attribute op value".
type CompareOperation struct {
	Attribute string
	Op        TokenType
	Value     Value
}

func (c *CompareOperation) node()      {}
func (c *CompareOperation) operation() {}

func (c *CompareOperation) String() string {
	return c.Attribute + " " + c.Op.symbol() + " " + c.Value.Text()
}

// InOperation represents "attribute IN (values)" or "attribute NOT IN (values)".
type InOperation struct {
	Attribute string
	Values    []Value
	Not       bool
}

func (i *InOperation) node()      {}
func (i *InOperation) operation() {}

func (i *InOperation) String() string {
	vals := make([]string, len(i.Values))
	for idx, v := range i.Values {
		vals[idx] = v.Text()
	}
	op := " in ("
	if i.Not {
		op = " not in ("
	}
	return i.Attribute + op + strings.Join(vals, ", ") + ")"
}

// ValueType indicates the type of a Value.
type ValueType int

const (
	ValueString ValueType = iota
	ValueInt
	ValueBool
	ValueDate // today, yesterday, -7d, -24h, -3m, ISO dates
)

func (t ValueType) String() string {
	switch t {
	case ValueInt:
		return "integer"
	case ValueBool:
		return "boolean"
	case ValueDate:
		return "date"
	default:
		return "string"
	}
}

// Value represents a literal value in an operation.
type Value struct {
	Type   ValueType
	Raw    string // Original string representation
	String string // String value (for ValueString, ValueDate)
	Int    int64  // Integer value (for ValueInt)
	Bool   bool   // Boolean value (for ValueBool)
}

// Text renders the value as it would appear in operation text.
func (v Value) Text() string {
	switch v.Type {
	case ValueInt:
		return strconv.FormatInt(v.Int, 10)
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueDate:
		return v.String
	default:
		return `"` + stringEscaper.Replace(v.String) + `"`
	}
}

var stringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// OrderTerm represents a single ORDER BY term.
type OrderTerm struct {
	Attribute string
	Desc      bool // true for DESC, false for ASC (default)
}

// FormatOrderBy renders order terms as "a, b desc".
func FormatOrderBy(terms []OrderTerm) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.Attribute
		if t.Desc {
			parts[i] += " desc"
		}
	}
	return strings.Join(parts, ", ")
}
