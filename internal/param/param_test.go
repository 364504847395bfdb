package param

import (
	"reflect"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tinkerharness/internal/token"
)

// sequences returns every token sequence of length 1..3 over a small
// alphabet, including repeats.
func sequences() [][]token.Token {
	alphabet := []token.Token{token.TID, token.TLabel, token.OrderDesc}
	var out [][]token.Token
	var grow func(prefix []token.Token)
	grow = func(prefix []token.Token) {
		if len(prefix) > 0 {
			out = append(out, slices.Clone(prefix))
		}
		if len(prefix) == 3 {
			return
		}
		for _, t := range alphabet {
			grow(append(prefix, t))
		}
	}
	grow(nil)
	return out
}

func TestTokensEqualIffSequenceEqual(t *testing.T) {
	seqs := sequences()
	require.Len(t, seqs, 3+9+27)

	for _, a := range seqs {
		for _, b := range seqs {
			pa, pb := MustTokens(a...), MustTokens(b...)
			want := slices.Equal(a, b)
			assert.Equal(t, want, pa.Equal(pb), "%v vs %v", a, b)
			assert.Equal(t, want, Equal(pa, pb), "%v vs %v", a, b)
			if want {
				assert.Equal(t, pa.Hash(), pb.Hash(), "equal sequences must hash equal")
			}
		}
	}
}

func TestTokensHashDependsOnContentNotIdentity(t *testing.T) {
	a := []token.Token{token.ColumnValues, token.OrderDesc}
	b := slices.Clone(a)

	p1 := MustTokens(a...)
	p2 := MustTokens(b...)

	assert.Equal(t, p1.Hash(), p2.Hash())
	assert.True(t, p1.Equal(p2))

	byHash := map[string]Parameter{p1.Hash(): p1}
	_, found := byHash[p2.Hash()]
	assert.True(t, found, "distinct instances from equal sequences share a hash bucket")
}

func TestTokensLengthMismatch(t *testing.T) {
	x := MustTokens(token.TLabel)
	xy := MustTokens(token.TLabel, token.TID)

	assert.False(t, x.Equal(xy))
	assert.False(t, xy.Equal(x))
}

func TestTokensOrderMatters(t *testing.T) {
	xy := MustTokens(token.TLabel, token.TID)
	yx := MustTokens(token.TID, token.TLabel)

	assert.False(t, xy.Equal(yx))
	assert.NotEqual(t, xy.Hash(), yx.Hash())
}

func TestTokensRepeatsAreKept(t *testing.T) {
	once := MustTokens(token.TLabel)
	twice := MustTokens(token.TLabel, token.TLabel)

	assert.False(t, once.Equal(twice), "no deduplication")
	assert.Equal(t, 2, twice.Len())
}

func TestTokensValueAlwaysNotSupported(t *testing.T) {
	for _, seq := range sequences() {
		p := MustTokens(seq...)
		v, err := p.Value()
		assert.Nil(t, v)
		require.Error(t, err)
		assert.True(t, IsNotSupported(err), "Value() on %v", seq)
	}
}

func TestTokensMustValuePanics(t *testing.T) {
	p := MustTokens(token.TKey)
	assert.Panics(t, func() { p.MustValue() })
}

func TestTokensTypeWitnessIndependentOfContents(t *testing.T) {
	for _, seq := range sequences() {
		assert.Equal(t, TokenType, MustTokens(seq...).Type())
	}
	assert.Equal(t, reflect.TypeOf((*token.Token)(nil)).Elem(), TokenType)
}

func TestNewTokensRejectsEmptyAndInvalid(t *testing.T) {
	_, err := NewTokens()
	assert.ErrorContains(t, err, "at least one token")

	_, err = NewTokens(token.TLabel, token.Invalid)
	assert.ErrorContains(t, err, "parts[1]")

	assert.Panics(t, func() { MustTokens() })
}

func TestTokensZeroValueEqualsNothing(t *testing.T) {
	var zero Tokens
	assert.False(t, zero.Equal(Tokens{}))
	assert.False(t, zero.Equal(MustTokens(token.TLabel)))
	assert.False(t, MustTokens(token.TLabel).Equal(zero))
	assert.False(t, Match(zero, []token.Token{}))
}

func TestTokensImmutableAfterConstruction(t *testing.T) {
	src := []token.Token{token.TLabel, token.TID}
	p := MustTokens(src...)
	before := p.Hash()

	src[0] = token.OrderAsc
	assert.Equal(t, before, p.Hash(), "mutating the input must not affect the parameter")

	parts := p.Parts()
	parts[1] = token.OrderAsc
	assert.Equal(t, []token.Token{token.TLabel, token.TID}, p.Parts(), "Parts returns a copy")
}

func TestScalarValueAndType(t *testing.T) {
	tests := []struct {
		name  string
		value any
		typ   reflect.Type
	}{
		{"string", "marko", reflect.TypeOf((*string)(nil)).Elem()},
		{"bool", true, reflect.TypeOf((*bool)(nil)).Elem()},
		{"int", 7, reflect.TypeOf((*int)(nil)).Elem()},
		{"int32", int32(7), reflect.TypeOf((*int32)(nil)).Elem()},
		{"int64", int64(7), reflect.TypeOf((*int64)(nil)).Elem()},
		{"float32", float32(0.5), reflect.TypeOf((*float32)(nil)).Elem()},
		{"float64", 0.5, reflect.TypeOf((*float64)(nil)).Elem()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := MustScalar(tt.value)
			v, err := s.Value()
			require.NoError(t, err)
			assert.Equal(t, tt.value, v)
			assert.Equal(t, tt.typ, s.Type())
			assert.Equal(t, KindScalar, s.Kind())
		})
	}

	null := MustScalar(nil)
	v, err := null.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Nil(t, null.Type())
}

func TestScalarEqualityIsTypeStrict(t *testing.T) {
	assert.True(t, MustScalar(int32(1)).Equal(MustScalar(int32(1))))
	assert.False(t, MustScalar(int32(1)).Equal(MustScalar(int64(1))))
	assert.False(t, MustScalar(float32(1)).Equal(MustScalar(float64(1))))
	assert.False(t, MustScalar("1").Equal(MustScalar(int32(1))))
	assert.False(t, MustScalar(nil).Equal(MustScalar("")))
}

func TestScalarFloatEdgeCases(t *testing.T) {
	negZero := MustParse("d[-0].d")
	assert.True(t, MustScalar(0.0).Equal(negZero), "-0 and 0 compare equal")

	nan := MustParse("d[NaN].d")
	assert.True(t, nan.Equal(MustParse("d[NaN].d")), "NaN expectation matches NaN")
}

func TestCrossVariantEqualityIsFalse(t *testing.T) {
	s := MustScalar("T.label")
	tk := MustTokens(token.TLabel)

	assert.False(t, s.Equal(tk))
	assert.False(t, tk.Equal(s))
	assert.NotPanics(t, func() {
		_ = s.Equal(nil)
		_ = tk.Equal(nil)
	})
	assert.False(t, s.Equal(nil))
	assert.False(t, Equal(s, nil))
	assert.True(t, Equal(nil, nil))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "scalar", KindScalar.String())
	assert.Equal(t, "token", KindToken.String())
	assert.Equal(t, "unknown", Kind(0).String())
}

func TestConcurrentReads(t *testing.T) {
	p := MustTokens(token.ColumnKeys, token.OrderAsc)
	q := MustTokens(token.ColumnKeys, token.OrderAsc)
	want := p.Hash()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if p.Hash() != want || !p.Equal(q) {
					t.Error("concurrent read observed a different value")
					return
				}
			}
		}()
	}
	wg.Wait()
}
