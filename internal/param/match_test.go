package param

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tinkerharness/internal/token"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name     string
		expected Parameter
		actual   any
		want     bool
	}{
		{"string", MustParse(`"marko"`), "marko", true},
		{"string mismatch", MustParse(`"marko"`), "vadas", false},
		{"int32", MustParse("d[29].i"), int32(29), true},
		{"int32 vs int64", MustParse("d[29].i"), int64(29), false},
		{"float64", MustParse("d[0.5].d"), 0.5, true},
		{"null", MustParse("null"), nil, true},
		{"single token", MustParse("T.label"), token.TLabel, true},
		{"token slice", MustParse("Column.values.Order.desc"), []token.Token{token.ColumnValues, token.OrderDesc}, true},
		{"token slice reversed", MustParse("Column.values.Order.desc"), []token.Token{token.OrderDesc, token.ColumnValues}, false},
		{"token vs string", MustParse("T.label"), "T.label", false},
		{"scalar vs token", MustParse(`"label"`), token.TLabel, false},
		{"parameter actual", MustParse("T.id"), MustTokens(token.TID), true},
		{"list actual never matches", MustParse("d[1].i"), []any{int32(1)}, false},
		{"map actual never matches", MustParse("d[1].i"), map[string]any{"a": int32(1)}, false},
		{"empty token slice", MustParse("T.id"), []token.Token{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.expected, tt.actual))
		})
	}
}

func TestMatchNilExpectation(t *testing.T) {
	assert.False(t, Match(nil, "anything"))
	assert.False(t, Match(nil, nil))
}

func TestFromActual(t *testing.T) {
	p, err := FromActual(token.ScopeGlobal)
	require.NoError(t, err)
	assert.Equal(t, KindToken, p.Kind())

	p, err = FromActual(int64(5))
	require.NoError(t, err)
	assert.Equal(t, KindScalar, p.Kind())

	_, err = FromActual(struct{}{})
	assert.Error(t, err)
}

func TestMatchSequence(t *testing.T) {
	expected, err := ParseAll([]string{`"marko"`, "d[29].i", "T.label"})
	require.NoError(t, err)

	err = MatchSequence(expected, []any{"marko", int32(29), token.TLabel})
	assert.NoError(t, err)

	err = MatchSequence(expected, []any{"marko", int32(30), token.TLabel})
	var mm *MismatchError
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, 1, mm.Index)
	assert.Contains(t, mm.Expected, "d[29].i")
	assert.Contains(t, mm.Actual, `"value":30`)
	assert.Contains(t, err.Error(), "Result [1] mismatch")

	err = MatchSequence(expected, []any{"marko"})
	require.ErrorAs(t, err, &mm)
	assert.Equal(t, -1, mm.Index)
	assert.Contains(t, err.Error(), "Result count mismatch")
	assert.Contains(t, mm.Expected, "3 results")
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, `{"kind":"token","parts":["T.key"]}`, Describe(token.TKey))
	assert.Equal(t, `[1,"a"]`, Describe([]any{1, "a"}))
	assert.Equal(t, "map[1:2]", Describe(map[any]any{1: 2}))
}
