package queryexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name       string
		rule       Rule
		expression string
		parameters []any
	}{
		{
			name:       "nil rule",
			rule:       nil,
			expression: "",
			parameters: []any{},
		},
		{
			name:       "filter without field",
			rule:       &Filter{Value: 7},
			expression: "",
			parameters: []any{},
		},
		{
			name:       "empty group",
			rule:       &Group{},
			expression: "",
			parameters: []any{},
		},
		{
			name:       "group with only invalid children",
			rule:       And(&Filter{}, &Group{}),
			expression: "",
			parameters: []any{},
		},
		{
			name:       "bare filter is not parenthesized",
			rule:       Eq("Rank", 7),
			expression: "Rank == @0",
			parameters: []any{7},
		},
		{
			name:       "zero operator means equal",
			rule:       &Filter{Field: "Rank", Value: 7},
			expression: "Rank == @0",
			parameters: []any{7},
		},
		{
			name:       "not equal",
			rule:       Neq("Rank", 7),
			expression: "Rank != @0",
			parameters: []any{7},
		},
		{
			name:       "greater than",
			rule:       Gt("Rank", 5),
			expression: "Rank > @0",
			parameters: []any{5},
		},
		{
			name:       "greater than or equal",
			rule:       Gte("Rank", 5),
			expression: "Rank >= @0",
			parameters: []any{5},
		},
		{
			name:       "less than",
			rule:       Lt("Rank", 5),
			expression: "Rank < @0",
			parameters: []any{5},
		},
		{
			name:       "less than or equal",
			rule:       Lte("Rank", 5),
			expression: "Rank <= @0",
			parameters: []any{5},
		},
		{
			name:       "is null takes no parameter",
			rule:       Null("Note"),
			expression: "Note == NULL",
			parameters: []any{},
		},
		{
			name:       "is not null takes no parameter",
			rule:       NotNull("Note"),
			expression: "Note != NULL",
			parameters: []any{},
		},
		{
			name:       "single-child group stays parenthesized",
			rule:       Or(Eq("Rank", 7)),
			expression: "(Rank == @0)",
			parameters: []any{7},
		},
		{
			name:       "or of two filters",
			rule:       Or(Eq("Rank", 7), Eq("Name", "Apple")),
			expression: "(Rank == @0 or Name == @1)",
			parameters: []any{7, "Apple"},
		},
		{
			name:       "zero logic means and",
			rule:       &Group{Filters: []Rule{Eq("Rank", 7), Eq("Name", "Apple")}},
			expression: "(Rank == @0 and Name == @1)",
			parameters: []any{7, "Apple"},
		},
		{
			name: "nested groups",
			rule: And(
				Gt("Rank", 5),
				Or(Eq("Name", "Strawberry"), Eq("Name", "Blueberry")),
			),
			expression: "(Rank > @0 and (Name == @1 or Name == @2))",
			parameters: []any{5, "Strawberry", "Blueberry"},
		},
		{
			name: "invalid siblings are skipped without consuming indices",
			rule: And(
				Eq("Rank", 7),
				&Filter{Value: "ignored"},
				Eq("Name", "Apple"),
			),
			expression: "(Rank == @0 and Name == @1)",
			parameters: []any{7, "Apple"},
		},
		{
			name: "empty nested group contributes nothing",
			rule: And(
				Eq("Rank", 7),
				Or(&Filter{}),
			),
			expression: "(Rank == @0)",
			parameters: []any{7},
		},
		{
			name: "unary filters mix with binary ones",
			rule: And(
				Null("Note"),
				Eq("Name", "Apple"),
				NotNull("Rank"),
				Gt("Rank", 3),
			),
			expression: "(Note == NULL and Name == @0 and Rank != NULL and Rank > @1)",
			parameters: []any{"Apple", 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Build(tt.rule)
			assert.Equal(t, tt.expression, result.Expression)
			assert.Equal(t, tt.parameters, result.Parameters)
		})
	}
}

func TestBuildStringMatchFamily(t *testing.T) {
	tests := []struct {
		name       string
		rule       Rule
		expression string
	}{
		{name: "contains", rule: Contains("Name", "berry"), expression: "Name.Contains(@0, fold)"},
		{name: "not contains", rule: NotContains("Name", "berry"), expression: "!Name.Contains(@0, fold)"},
		{name: "starts with", rule: StartsWith("Name", "Str"), expression: "Name.StartsWith(@0, fold)"},
		{name: "not starts with", rule: NotStartsWith("Name", "Str"), expression: "!Name.StartsWith(@0, fold)"},
		{name: "ends with", rule: EndsWith("Name", "berry"), expression: "Name.EndsWith(@0, fold)"},
		{name: "not ends with", rule: NotEndsWith("Name", "berry"), expression: "!Name.EndsWith(@0, fold)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Build(tt.rule)
			assert.Equal(t, tt.expression, result.Expression)
			require.Len(t, result.Parameters, 1)
		})
	}
}

func TestBuildIdempotence(t *testing.T) {
	rule := And(
		Gt("Rank", 5),
		Or(Eq("Name", "Strawberry"), Eq("Name", "Blueberry")),
	)

	first := Build(rule)
	second := Build(rule)
	require.Equal(t, first, second)
}

func TestBuildParameterOrder(t *testing.T) {
	rule := Or(
		And(Eq("A", 1), Eq("B", 2)),
		And(Eq("C", 3), Or(Eq("D", 4), Eq("E", 5))),
	)

	result := Build(rule)
	require.Equal(t, "((A == @0 and B == @1) or (C == @2 and (D == @3 or E == @4)))", result.Expression)
	require.Equal(t, []any{1, 2, 3, 4, 5}, result.Parameters)
}
