package finder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	inputs := []string{
		"all",
		"owner_id = 3",
		"id in (1, 2, 3)",
		"name ~ gear",
		"name !~ 'x'",
		"state = new",
		"state not in (new, broken)",
		"shiny = true",
		"created >= -7d",
		"created < 2024-01-15",
		"created > today and not shiny = false",
		"order by created desc",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			q, err := Parse(input)
			require.NoError(t, err)
			require.NoError(t, Validate(testSchema, q))
		})
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		input string
		err   string
	}{
		{"color = red", `unknown attribute: "color"`},
		{"order by color", "unknown attribute in ORDER BY"},
		{"shiny > true", "not valid for bool attribute"},
		{"shiny = yes", "requires a boolean value"},
		{"state ~ ne", "not valid for enum attribute"},
		{"state = lost", `invalid value "lost"`},
		{"state = 3", "requires one of"},
		{"name < b", `operator "<" is not valid for string attribute`},
		{"name = 3", "requires a string value"},
		{"id ~ 3", "not valid for int attribute"},
		{"id = abc", "requires an integer value"},
		{"created = 2024-13-45", "invalid date"},
		{"created in (today)", "IN is not valid for date attribute"},
		{"shiny in (true)", "IN is not valid for bool attribute"},
		{"id in (1, x)", "requires an integer value"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q, err := Parse(tt.input)
			require.NoError(t, err)
			err = Validate(testSchema, q)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestValidateOperation_Builders(t *testing.T) {
	require.NoError(t, ValidateOperation(testSchema, And(Eq("owner_id", 1), In("state", "new"))))
	require.Error(t, ValidateOperation(testSchema, nil))
	require.Error(t, ValidateOperation(testSchema, In("id")), "empty IN list")
	require.Error(t, ValidateOperation(testSchema, Not(Eq("nope", 1))))
}

func TestSchema_Lookup(t *testing.T) {
	attr, ok := testSchema.Attribute("state")
	require.True(t, ok)
	require.Equal(t, "widget_state", attr.Column)
	require.Equal(t, FieldEnum, attr.Type)

	attr, ok = testSchema.Attribute("name")
	require.True(t, ok)
	require.Equal(t, "name", attr.Column, "column defaults to name")

	require.Equal(t, []string{"created", "id", "name", "owner_id", "shiny", "state"}, testSchema.Names())
	require.Len(t, testSchema.Attributes(), 6)
	require.Equal(t, "w.created_at", testSchema.column("created"))
}
