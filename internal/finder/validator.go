package finder

import (
	"fmt"
	"slices"
	"strings"
)

// Validate checks q against schema and returns the first problem found.
func Validate(schema *Schema, q *Query) error {
	if q.Filter != nil {
		if err := ValidateOperation(schema, q.Filter); err != nil {
			return err
		}
	}

	for _, term := range q.OrderBy {
		if _, ok := schema.Attribute(term.Attribute); !ok {
			return fmt.Errorf("unknown attribute in ORDER BY: %q (valid: %s)", term.Attribute, strings.Join(schema.Names(), ", "))
		}
	}

	return nil
}

// ValidateOperation checks a single operation against schema.
func ValidateOperation(schema *Schema, op Operation) error {
	switch o := op.(type) {
	case nil:
		return fmt.Errorf("nil operation")

	case *AllOperation:
		return nil

	case *BinaryOperation:
		if err := ValidateOperation(schema, o.Left); err != nil {
			return err
		}
		return ValidateOperation(schema, o.Right)

	case *NotOperation:
		return ValidateOperation(schema, o.Operation)

	case *CompareOperation:
		return validateCompare(schema, o)

	case *InOperation:
		return validateIn(schema, o)
	}

	return fmt.Errorf("unsupported operation %T", op)
}

func validateCompare(schema *Schema, o *CompareOperation) error {
	attr, ok := schema.Attribute(o.Attribute)
	if !ok {
		return fmt.Errorf("unknown attribute: %q (valid: %s)", o.Attribute, strings.Join(schema.Names(), ", "))
	}

	if err := validateOperator(attr, o.Op); err != nil {
		return err
	}

	return validateValue(attr, o.Value)
}

func validateIn(schema *Schema, o *InOperation) error {
	attr, ok := schema.Attribute(o.Attribute)
	if !ok {
		return fmt.Errorf("unknown attribute: %q (valid: %s)", o.Attribute, strings.Join(schema.Names(), ", "))
	}

	if attr.Type == FieldBool || attr.Type == FieldDate {
		return fmt.Errorf("operator IN is not valid for %s attribute %q", attr.Type, attr.Name)
	}

	if len(o.Values) == 0 {
		return fmt.Errorf("operator IN needs at least one value for attribute %q", attr.Name)
	}

	for _, v := range o.Values {
		if err := validateValue(attr, v); err != nil {
			return err
		}
	}

	return nil
}

func validateOperator(attr Attribute, op TokenType) error {
	switch attr.Type {
	case FieldBool, FieldEnum:
		if op != TokenEq && op != TokenNeq {
			return fmt.Errorf("operator %q is not valid for %s attribute %q (use = or !=)", op, attr.Type, attr.Name)
		}

	case FieldString:
		if op != TokenEq && op != TokenNeq && op != TokenContains && op != TokenNotContains {
			return fmt.Errorf("operator %q is not valid for string attribute %q (use =, !=, ~, or !~)", op, attr.Name)
		}

	case FieldInt, FieldDate:
		if op == TokenContains || op == TokenNotContains {
			return fmt.Errorf("operator %q is not valid for %s attribute %q", op, attr.Type, attr.Name)
		}
	}

	return nil
}

func validateValue(attr Attribute, value Value) error {
	switch attr.Type {
	case FieldBool:
		if value.Type != ValueBool {
			return fmt.Errorf("attribute %q requires a boolean value (true or false)", attr.Name)
		}

	case FieldInt:
		if value.Type != ValueInt {
			return fmt.Errorf("attribute %q requires an integer value, got %q", attr.Name, value.Raw)
		}

	case FieldDate:
		if value.Type != ValueDate && value.Type != ValueString {
			return fmt.Errorf("attribute %q requires a date value (today, yesterday, -Nd, -Nh, -Nm, or ISO date), got %q", attr.Name, value.Raw)
		}
		if _, err := parseDate(value.String); err != nil {
			return fmt.Errorf("attribute %q: %w", attr.Name, err)
		}

	case FieldEnum:
		if value.Type != ValueString {
			return fmt.Errorf("attribute %q requires one of: %s", attr.Name, strings.Join(attr.Enum, ", "))
		}
		if !slices.Contains(attr.Enum, value.String) {
			return fmt.Errorf("invalid value %q for attribute %q (valid: %s)", value.String, attr.Name, strings.Join(attr.Enum, ", "))
		}

	case FieldString:
		if value.Type != ValueString {
			return fmt.Errorf("attribute %q requires a string value, got %q", attr.Name, value.Raw)
		}
	}

	return nil
}
