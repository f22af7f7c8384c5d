package finder

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Record exposes attribute values for in-memory evaluation.
// Values must be string, int, int64, bool or time.Time.
type Record interface {
	Attribute(name string) (any, bool)
}

// Evaluate reports whether rec satisfies op, resolving relative dates
// against the current time.
func Evaluate(op Operation, rec Record) (bool, error) {
	return EvaluateAt(op, rec, time.Now())
}

// EvaluateAt is Evaluate with an explicit clock. Semantics follow the SQL
// compilation: contains ignores ASCII case, dates compare at whole seconds.
func EvaluateAt(op Operation, rec Record, now time.Time) (bool, error) {
	switch o := op.(type) {
	case nil:
		return false, fmt.Errorf("nil operation")

	case *AllOperation:
		return true, nil

	case *BinaryOperation:
		left, err := EvaluateAt(o.Left, rec, now)
		if err != nil {
			return false, err
		}
		if o.Op == TokenAnd && !left {
			return false, nil
		}
		if o.Op == TokenOr && left {
			return true, nil
		}
		return EvaluateAt(o.Right, rec, now)

	case *NotOperation:
		matched, err := EvaluateAt(o.Operation, rec, now)
		if err != nil {
			return false, err
		}
		return !matched, nil

	case *CompareOperation:
		actual, ok := rec.Attribute(o.Attribute)
		if !ok {
			return false, fmt.Errorf("unknown attribute: %q", o.Attribute)
		}
		return compareValue(o.Attribute, actual, o.Op, o.Value, now)

	case *InOperation:
		actual, ok := rec.Attribute(o.Attribute)
		if !ok {
			return false, fmt.Errorf("unknown attribute: %q", o.Attribute)
		}
		// Every value is compared so a mismatched literal is reported even
		// after an earlier match.
		matched := false
		for _, v := range o.Values {
			eq, err := compareValue(o.Attribute, actual, TokenEq, v, now)
			if err != nil {
				return false, err
			}
			matched = matched || eq
		}
		return matched != o.Not, nil
	}

	return false, fmt.Errorf("unsupported operation %T", op)
}

// ErrTypeMismatch is returned when a literal cannot be compared with an
// attribute's value, mirroring what validation rejects before SQL is built.
var ErrTypeMismatch = errors.New("type mismatch")

func compareValue(attr string, actual any, op TokenType, v Value, now time.Time) (bool, error) {
	if _, isString := actual.(string); !isString && (op == TokenContains || op == TokenNotContains) {
		return false, fmt.Errorf("%w: operator %q needs a string attribute, %q is %T", ErrTypeMismatch, op, attr, actual)
	}

	switch a := actual.(type) {
	case string:
		if v.Type != ValueString {
			return false, mismatch(attr, actual, v)
		}
		switch op {
		case TokenContains:
			return strings.Contains(asciiLower(a), asciiLower(v.String)), nil
		case TokenNotContains:
			return !strings.Contains(asciiLower(a), asciiLower(v.String)), nil
		}
		return ordered(strings.Compare(a, v.String), op), nil

	case int:
		if v.Type != ValueInt {
			return false, mismatch(attr, actual, v)
		}
		return ordered(cmpInt(int64(a), v.Int), op), nil

	case int64:
		if v.Type != ValueInt {
			return false, mismatch(attr, actual, v)
		}
		return ordered(cmpInt(a, v.Int), op), nil

	case bool:
		if v.Type != ValueBool {
			return false, mismatch(attr, actual, v)
		}
		eq := a == v.Bool
		switch op {
		case TokenEq:
			return eq, nil
		case TokenNeq:
			return !eq, nil
		}
		return false, fmt.Errorf("%w: operator %q is not valid for boolean attribute %q", ErrTypeMismatch, op, attr)

	case time.Time:
		if v.Type != ValueDate && v.Type != ValueString {
			return false, mismatch(attr, actual, v)
		}
		spec, err := parseDate(v.String)
		if err != nil {
			return false, err
		}
		return ordered(cmpInt(a.Unix(), spec.resolve(now).Unix()), op), nil
	}

	return false, fmt.Errorf("unsupported attribute value %T", actual)
}

func mismatch(attr string, actual any, v Value) error {
	return fmt.Errorf("%w: attribute %q holds %T, got %s literal %s", ErrTypeMismatch, attr, actual, v.Type, v.Text())
}

// ordered applies a comparison operator to a three-way compare result.
func ordered(c int, op TokenType) bool {
	switch op {
	case TokenEq:
		return c == 0
	case TokenNeq:
		return c != 0
	case TokenLt:
		return c < 0
	case TokenLte:
		return c <= 0
	case TokenGt:
		return c > 0
	case TokenGte:
		return c >= 0
	}
	return false
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// asciiLower lowercases ASCII letters only, matching SQLite's LIKE.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// CompareRecords orders a and b by terms, returning -1, 0 or 1.
func CompareRecords(a, b Record, terms []OrderTerm) (int, error) {
	for _, term := range terms {
		av, ok := a.Attribute(term.Attribute)
		if !ok {
			return 0, fmt.Errorf("unknown attribute: %q", term.Attribute)
		}
		bv, ok := b.Attribute(term.Attribute)
		if !ok {
			return 0, fmt.Errorf("unknown attribute: %q", term.Attribute)
		}

		c, err := compareAny(av, bv)
		if err != nil {
			return 0, err
		}
		if term.Desc {
			c = -c
		}
		if c != 0 {
			return c, nil
		}
	}
	return 0, nil
}

func compareAny(a, b any) (int, error) {
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), nil
		}
	case int:
		if y, ok := b.(int); ok {
			return cmpInt(int64(x), int64(y)), nil
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmpInt(x, y), nil
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, nil
			case !x:
				return -1, nil
			}
			return 1, nil
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), nil
		}
	}
	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}
