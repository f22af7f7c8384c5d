package finder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEvaluateAt(t *testing.T) {
	rec := mapRecord{
		"id":       int64(7),
		"owner_id": 3,
		"name":     "Big Gear",
		"state":    "used",
		"shiny":    true,
		"created":  time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		input string
		want  bool
	}{
		{"all", true},
		{"not all", false},
		{"id = 7", true},
		{"id > 7", false},
		{"id >= 7", true},
		{"owner_id < 4", true},
		{"owner_id != 3", false},
		{"name = 'Big Gear'", true},
		{"name = 'big gear'", false},
		{"name ~ gear", true},
		{"name ~ GEAR", true},
		{"name !~ gear", false},
		{"name > 'Apple'", true},
		{"state in (new, used)", true},
		{"state not in (new, used)", false},
		{"id in (1, 2)", false},
		{"shiny = true", true},
		{"shiny != true", false},
		{"created >= today", true},
		{"created < today", false},
		{"created > -1h", false},
		{"created > -5h", true},
		{"created >= yesterday", true},
		{"created > -1m", true},
		{"created > 2025-06-15T08:00:00Z", false},
		{"created = 2025-06-15T08:00:00Z", true},
		{"owner_id = 3 and (state = new or shiny = true)", true},
		{"owner_id = 4 or state = broken", false},
		{"not (owner_id = 4 or state = broken)", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			op, err := ParseOperation(tt.input)
			require.NoError(t, err)
			got, err := EvaluateAt(op, rec, fixedNow)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateAt_ShortCircuit(t *testing.T) {
	rec := mapRecord{"id": int64(1)}

	// The right side references a missing attribute and is never reached.
	got, err := EvaluateAt(Or(Eq("id", 1), Eq("missing", 1)), rec, fixedNow)
	require.NoError(t, err)
	require.True(t, got)

	got, err = EvaluateAt(And(Eq("id", 2), Eq("missing", 1)), rec, fixedNow)
	require.NoError(t, err)
	require.False(t, got)
}

func TestEvaluateAt_Errors(t *testing.T) {
	rec := mapRecord{"ratio": 0.5, "created": time.Now()}

	_, err := EvaluateAt(Eq("missing", 1), rec, fixedNow)
	require.ErrorContains(t, err, "unknown attribute")

	_, err = EvaluateAt(In("missing", 1), rec, fixedNow)
	require.ErrorContains(t, err, "unknown attribute")

	_, err = EvaluateAt(Eq("ratio", 1), rec, fixedNow)
	require.ErrorContains(t, err, "unsupported attribute value")

	_, err = EvaluateAt(Not(Eq("created", DateValue("someday"))), rec, fixedNow)
	require.ErrorContains(t, err, "invalid date")

	_, err = EvaluateAt(nil, rec, fixedNow)
	require.Error(t, err)
}

func TestEvaluateAt_TypeMismatch(t *testing.T) {
	rec := mapRecord{
		"parent_id": int64(0),
		"name":      "gear",
		"shiny":     true,
		"created":   fixedNow,
	}

	tests := []struct {
		name string
		op   Operation
	}{
		{"string against int", Eq("parent_id", "abc")},
		{"bool against int", Eq("parent_id", false)},
		{"int against string", Eq("name", 0)},
		{"date against string", Eq("name", DateValue("today"))},
		{"string against bool", Eq("shiny", "true")},
		{"ordering on bool", Gt("shiny", false)},
		{"contains on int", Contains("parent_id", "0")},
		{"int against date", Lt("created", 5)},
		{"in with mixed values", In("parent_id", 1, "0")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EvaluateAt(tt.op, rec, fixedNow)
			require.ErrorIs(t, err, ErrTypeMismatch)
		})
	}

	// Dates may arrive as quoted strings, as in SQL compilation.
	got, err := EvaluateAt(Eq("created", fixedNow.UTC().Format(time.RFC3339)), rec, fixedNow)
	require.NoError(t, err)
	require.True(t, got)
}

func TestDateSpec_Resolve(t *testing.T) {
	tests := []struct {
		literal string
		want    time.Time
	}{
		{"today", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
		{"yesterday", time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)},
		{"-3d", time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)},
		{"-2h", time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)},
		{"-2m", time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-01-15T10:20", time.Date(2024, 1, 15, 10, 20, 0, 0, time.UTC)},
		{"2024-01-15T10:20:30+02:00", time.Date(2024, 1, 15, 8, 20, 30, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.literal, func(t *testing.T) {
			spec, err := parseDate(tt.literal)
			require.NoError(t, err)
			require.True(t, tt.want.Equal(spec.resolve(fixedNow)), "got %s", spec.resolve(fixedNow))
		})
	}

	_, err := parseDate("-xd")
	require.Error(t, err)
}

func TestCompareRecords(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := mapRecord{"name": "a", "owner_id": int64(2), "shiny": false, "created": early}
	b := mapRecord{"name": "b", "owner_id": int64(2), "shiny": true, "created": early.Add(time.Hour)}

	tests := []struct {
		name  string
		terms []OrderTerm
		want  int
	}{
		{"string asc", []OrderTerm{{Attribute: "name"}}, -1},
		{"string desc", []OrderTerm{{Attribute: "name", Desc: true}}, 1},
		{"tie then bool", []OrderTerm{{Attribute: "owner_id"}, {Attribute: "shiny"}}, -1},
		{"time desc", []OrderTerm{{Attribute: "created", Desc: true}}, 1},
		{"all equal", []OrderTerm{{Attribute: "owner_id"}}, 0},
		{"no terms", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompareRecords(a, b, tt.terms)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}

	_, err := CompareRecords(a, b, []OrderTerm{{Attribute: "missing"}})
	require.Error(t, err)

	_, err = CompareRecords(a, mapRecord{"name": 1}, []OrderTerm{{Attribute: "name"}})
	require.ErrorContains(t, err, "cannot compare")
}
