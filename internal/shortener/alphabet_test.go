package shortener_test

import (
	"strings"
	"testing"

	"github.com/nmarks/kurz/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAlphabet(t *testing.T) {
	t.Run("empty string selects the default charset", func(t *testing.T) {
		a, err := shortener.NewAlphabet("")

		require.NoError(t, err)
		assert.Equal(t, shortener.DefaultAlphabet, a.String())
	})

	t.Run("rejects single character alphabets", func(t *testing.T) {
		_, err := shortener.NewAlphabet("x")

		assert.Error(t, err)
	})

	t.Run("rejects duplicate characters", func(t *testing.T) {
		_, err := shortener.NewAlphabet("abca")

		assert.Error(t, err)
	})

	t.Run("rejects non-ASCII overrides", func(t *testing.T) {
		// Encoding indexes bytes, so a multi-byte rune would be split into
		// meaningless digits instead of acting as one character.
		for _, chars := range []string{"abcé", "αβγδ", "abÿ"} {
			_, err := shortener.NewAlphabet(chars)

			require.Error(t, err, "chars %q", chars)
			assert.Contains(t, err.Error(), "ASCII")
		}
	})
}

func TestAlphabet_Encode(t *testing.T) {
	a := shortener.MustAlphabet("")

	t.Run("matches pinned golden values", func(t *testing.T) {
		// Pinned once against the documented algorithm: offset 200000,
		// base-N division, one extra leading character for the terminal
		// step.
		golden := map[uint64]shortener.Code{
			0:    "12C11",
			1:    "12C12",
			2:    "12C13",
			41:   "12C1Q",
			9999: "12GZZ",
		}

		for id, want := range golden {
			assert.Equal(t, want, a.Encode(id), "id %d", id)
		}
	})

	t.Run("is deterministic", func(t *testing.T) {
		assert.Equal(t, a.Encode(1), a.Encode(1))
	})

	t.Run("is injective over a contiguous id range", func(t *testing.T) {
		seen := make(map[shortener.Code]uint64)

		for id := uint64(0); id < 10000; id++ {
			code := a.Encode(id)

			prev, dup := seen[code]
			require.False(t, dup, "ids %d and %d encode to %q", prev, id, code)
			seen[code] = id
		}
	})

	t.Run("emits only alphabet characters and is never empty", func(t *testing.T) {
		for _, id := range []uint64{0, 1, 50, 2500, 125000, 1 << 40} {
			code := a.Encode(id)

			require.NotEmpty(t, code)

			for _, c := range string(code) {
				assert.True(t, strings.ContainsRune(shortener.DefaultAlphabet, c))
			}
		}
	})

	t.Run("respects alphabet order", func(t *testing.T) {
		// Same characters in a different order must change the output.
		reversed := reverse(shortener.DefaultAlphabet)
		b := shortener.MustAlphabet(reversed)

		assert.NotEqual(t, a.Encode(1), b.Encode(1))
	})
}

func TestAlphabet_Contains(t *testing.T) {
	a := shortener.MustAlphabet("")

	t.Run("accepts codes made of alphabet characters", func(t *testing.T) {
		assert.True(t, a.Contains("12C12"))
		assert.True(t, a.Contains("bcdBCD"))
	})

	t.Run("rejects empty codes", func(t *testing.T) {
		assert.False(t, a.Contains(""))
	})

	t.Run("rejects codes with any foreign character", func(t *testing.T) {
		// "0", "O" and "a" are deliberately excluded from the default set.
		assert.False(t, a.Contains("12C0"))
		assert.False(t, a.Contains("abc"))
		assert.False(t, a.Contains("12C12!"))
	})
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}

	return string(b)
}
