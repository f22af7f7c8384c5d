package finder

import (
	"fmt"
	"strconv"
	"time"
)

// All returns the operation that matches every object.
func All() Operation { return &AllOperation{} }

// None returns the operation that matches nothing.
func None() Operation { return Not(All()) }

// Eq matches objects whose attribute equals v.
func Eq(attr string, v any) Operation { return compare(attr, TokenEq, v) }

// Neq matches objects whose attribute differs from v.
func Neq(attr string, v any) Operation { return compare(attr, TokenNeq, v) }

// Lt matches objects whose attribute is less than v.
func Lt(attr string, v any) Operation { return compare(attr, TokenLt, v) }

// Lte matches objects whose attribute is less than or equal to v.
func Lte(attr string, v any) Operation { return compare(attr, TokenLte, v) }

// Gt matches objects whose attribute is greater than v.
func Gt(attr string, v any) Operation { return compare(attr, TokenGt, v) }

// Gte matches objects whose attribute is greater than or equal to v.
func Gte(attr string, v any) Operation { return compare(attr, TokenGte, v) }

// Contains matches string attributes containing s, ignoring ASCII case.
func Contains(attr, s string) Operation { return compare(attr, TokenContains, s) }

// NotContains is the negation of Contains.
func NotContains(attr, s string) Operation { return compare(attr, TokenNotContains, s) }

func compare(attr string, op TokenType, v any) Operation {
	return &CompareOperation{Attribute: attr, Op: op, Value: ValueOf(v)}
}

// In matches objects whose attribute is one of vs.
func In(attr string, vs ...any) Operation {
	return &InOperation{Attribute: attr, Values: valuesOf(vs)}
}

// NotIn matches objects whose attribute is none of vs.
func NotIn(attr string, vs ...any) Operation {
	return &InOperation{Attribute: attr, Values: valuesOf(vs), Not: true}
}

func valuesOf(vs []any) []Value {
	values := make([]Value, len(vs))
	for i, v := range vs {
		values[i] = ValueOf(v)
	}
	return values
}

// And combines ops left to right. And() is All(); And(op) is op.
func And(ops ...Operation) Operation { return fold(TokenAnd, All(), ops) }

// Or combines ops left to right. Or() is None(); Or(op) is op.
func Or(ops ...Operation) Operation { return fold(TokenOr, None(), ops) }

func fold(op TokenType, empty Operation, ops []Operation) Operation {
	if len(ops) == 0 {
		return empty
	}
	result := ops[0]
	for _, next := range ops[1:] {
		result = &BinaryOperation{Left: result, Op: op, Right: next}
	}
	return result
}

// Not negates op.
func Not(op Operation) Operation { return &NotOperation{Operation: op} }

// StringValue returns a string literal.
func StringValue(s string) Value {
	return Value{Type: ValueString, Raw: s, String: s}
}

// IntValue returns an integer literal.
func IntValue(n int64) Value {
	return Value{Type: ValueInt, Raw: strconv.FormatInt(n, 10), Int: n}
}

// BoolValue returns a boolean literal.
func BoolValue(b bool) Value {
	return Value{Type: ValueBool, Raw: strconv.FormatBool(b), Bool: b}
}

// DateValue returns a date literal: today, yesterday, -Nd, -Nh, -Nm or an ISO date.
func DateValue(s string) Value {
	return Value{Type: ValueDate, Raw: s, String: s}
}

// ValueOf converts a Go value into a literal.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case Value:
		return x
	case string:
		return StringValue(x)
	case int:
		return IntValue(int64(x))
	case int32:
		return IntValue(int64(x))
	case int64:
		return IntValue(x)
	case bool:
		return BoolValue(x)
	case time.Time:
		return DateValue(x.UTC().Format(time.RFC3339))
	case fmt.Stringer:
		return StringValue(x.String())
	default:
		return StringValue(fmt.Sprint(x))
	}
}
