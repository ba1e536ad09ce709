package sorter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairKey_Symmetric(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"plain", "apple", "banana", "apple,banana"},
		{"reversed input", "banana", "apple", "apple,banana"},
		{"same id", "x", "x", "x,x"},
		{"separator in id", "a,b", "c", `a\,b,c`},
		{"backslash in id", `a\`, "b", `a\\,b`},
		{"unicode", "żółw", "ant", "ant,żółw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PairKey(tt.a, tt.b))
			assert.Equal(t, PairKey(tt.a, tt.b), PairKey(tt.b, tt.a))
		})
	}
}

func TestPairKey_NoCollision(t *testing.T) {
	// Without escaping both pairs would produce "a,b,c".
	assert.NotEqual(t, PairKey("a,b", "c"), PairKey("a", "b,c"))
	assert.NotEqual(t, PairKey(`a\`, "b"), PairKey("a", `\b`))
}

func TestSplitPairKey(t *testing.T) {
	pairs := [][2]string{
		{"apple", "banana"},
		{"a,b", "c"},
		{"a", "b,c"},
		{`x\y`, `,`},
		{"", "z"},
	}
	for _, p := range pairs {
		a, b, ok := SplitPairKey(PairKey(p[0], p[1]))
		require.True(t, ok, "pair %v", p)
		assert.ElementsMatch(t, []string{p[0], p[1]}, []string{a, b})
	}
}

func TestSplitPairKey_Malformed(t *testing.T) {
	for _, key := range []string{"single", "a,b,c", `trailing\`} {
		_, _, ok := SplitPairKey(key)
		assert.False(t, ok, "key %q", key)
	}
}

func TestKeyReferences(t *testing.T) {
	key := PairKey("a,b", "c")
	assert.True(t, keyReferences(key, "a,b"))
	assert.True(t, keyReferences(key, "c"))
	assert.False(t, keyReferences(key, "a"))
	assert.False(t, keyReferences(key, "b"))
}

func TestCountBattles(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{-1, 0},
		{0, 0},
		{1, 0},
		{2, 2},
		{3, 5},
		{4, 8},
		{5, 12},
		{8, 24},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CountBattles(tt.n), "n=%d", tt.n)
	}
}
