package finder

import (
	"fmt"
	"strings"
)

// SQLBuilder converts a query to a parameterised WHERE and ORDER BY for a schema.
// The query must have passed Validate for the same schema.
type SQLBuilder struct {
	schema *Schema
	query  *Query
	params []any
}

// NewSQLBuilder creates a builder for the query.
func NewSQLBuilder(schema *Schema, query *Query) *SQLBuilder {
	return &SQLBuilder{schema: schema, query: query}
}

// Build generates the SQL WHERE clause and ORDER BY.
// The where clause is empty when the filter matches everything.
func (b *SQLBuilder) Build() (whereClause string, orderBy string, params []any) {
	if b.query.Filter != nil {
		if _, all := b.query.Filter.(*AllOperation); !all {
			whereClause = b.buildOperation(b.query.Filter)
		}
	}

	terms := b.query.OrderBy
	if len(terms) == 0 {
		terms = b.schema.DefaultOrder
	}
	if len(terms) > 0 {
		orderBy = b.buildOrderBy(terms)
	}

	return whereClause, orderBy, b.params
}

func (b *SQLBuilder) buildOperation(op Operation) string {
	switch o := op.(type) {
	case *AllOperation:
		return "1 = 1"

	case *BinaryOperation:
		left := b.buildOperation(o.Left)
		right := b.buildOperation(o.Right)
		sqlOp := "AND"
		if o.Op == TokenOr {
			sqlOp = "OR"
		}
		return fmt.Sprintf("(%s %s %s)", left, sqlOp, right)

	case *NotOperation:
		return fmt.Sprintf("NOT (%s)", b.buildOperation(o.Operation))

	case *CompareOperation:
		return b.buildCompare(o)

	case *InOperation:
		return b.buildIn(o)
	}

	return "1 = 0"
}

func (b *SQLBuilder) buildCompare(o *CompareOperation) string {
	attr, _ := b.schema.Attribute(o.Attribute)
	column := b.schema.column(o.Attribute)

	switch attr.Type {
	case FieldBool:
		// Booleans are INTEGER 0/1 in SQLite
		want := o.Value.Bool
		if o.Op == TokenNeq {
			want = !want
		}
		if want {
			return fmt.Sprintf("%s = 1", column)
		}
		return fmt.Sprintf("%s = 0", column)

	case FieldInt:
		b.params = append(b.params, o.Value.Int)
		return fmt.Sprintf("%s %s ?", column, opToSQL(o.Op))

	case FieldDate:
		spec, _ := parseDate(o.Value.String)
		expr, params := spec.sql()
		b.params = append(b.params, params...)
		return fmt.Sprintf("%s %s %s", column, opToSQL(o.Op), expr)
	}

	switch o.Op {
	case TokenContains:
		b.params = append(b.params, "%"+escapeLike(o.Value.String)+"%")
		return fmt.Sprintf(`%s LIKE ? ESCAPE '\'`, column)
	case TokenNotContains:
		b.params = append(b.params, "%"+escapeLike(o.Value.String)+"%")
		return fmt.Sprintf(`%s NOT LIKE ? ESCAPE '\'`, column)
	}

	b.params = append(b.params, o.Value.String)
	return fmt.Sprintf("%s %s ?", column, opToSQL(o.Op))
}

func (b *SQLBuilder) buildIn(o *InOperation) string {
	attr, _ := b.schema.Attribute(o.Attribute)
	column := b.schema.column(o.Attribute)

	placeholders := make([]string, len(o.Values))
	for i, v := range o.Values {
		placeholders[i] = "?"
		if attr.Type == FieldInt {
			b.params = append(b.params, v.Int)
		} else {
			b.params = append(b.params, v.String)
		}
	}

	op := "IN"
	if o.Not {
		op = "NOT IN"
	}

	return fmt.Sprintf("%s %s (%s)", column, op, strings.Join(placeholders, ", "))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike makes LIKE treat s literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func opToSQL(op TokenType) string {
	switch op {
	case TokenEq:
		return "="
	case TokenNeq:
		return "!="
	case TokenLt:
		return "<"
	case TokenGt:
		return ">"
	case TokenLte:
		return "<="
	case TokenGte:
		return ">="
	default:
		return "="
	}
}

func (b *SQLBuilder) buildOrderBy(terms []OrderTerm) string {
	parts := make([]string, 0, len(terms))
	for _, term := range terms {
		dir := "ASC"
		if term.Desc {
			dir = "DESC"
		}
		parts = append(parts, fmt.Sprintf("%s %s", b.schema.column(term.Attribute), dir))
	}
	return strings.Join(parts, ", ")
}
