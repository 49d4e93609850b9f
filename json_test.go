package queryexpr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRuleJSONRoundTrip(t *testing.T) {
	rule := And(
		Gt("Rank", float64(5)),
		Or(Eq("Name", "Strawberry"), Eq("Name", "Blueberry")),
		NotNull("Note"),
	)

	data, err := MarshalRule(rule)
	require.NoError(t, err)

	decoded, err := UnmarshalRule(data)
	require.NoError(t, err)
	require.Equal(t, rule, decoded)

	require.Equal(t, Build(rule), Build(decoded))
}

func TestUnmarshalRule(t *testing.T) {
	t.Run("bare filter", func(t *testing.T) {
		rule, err := UnmarshalRule([]byte(`{"Field":"Name","Operator":"Contains","Value":"berry"}`))
		require.NoError(t, err)
		require.Equal(t, Contains("Name", "berry"), rule)
	})

	t.Run("group sniffed by shape", func(t *testing.T) {
		rule, err := UnmarshalRule([]byte(`{
			"Logic": "Or",
			"Filters": [
				{"Field": "Rank", "Operator": "Equal", "Value": 7},
				{"Logic": "And", "Filters": [{"Field": "Name", "Value": "Apple"}]}
			]
		}`))
		require.NoError(t, err)

		result := Build(rule)
		require.Equal(t, "(Rank == @0 or (Name == @1))", result.Expression)
		require.Equal(t, []any{float64(7), "Apple"}, result.Parameters)
	})

	t.Run("empty input", func(t *testing.T) {
		rule, err := UnmarshalRule(nil)
		require.NoError(t, err)
		require.Nil(t, rule)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := UnmarshalRule([]byte(`{`))
		require.Error(t, err)
	})
}

func TestMarshalRuleNil(t *testing.T) {
	data, err := MarshalRule(nil)
	require.NoError(t, err)
	require.Nil(t, data)
}
