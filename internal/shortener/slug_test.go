package shortener_test

import (
	"context"
	"testing"

	"github.com/nmarks/kurz/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugProcessor_Process(t *testing.T) {
	t.Run("returns empty when no slug was requested", func(t *testing.T) {
		repo := newMockRepo()
		p := shortener.NewSlugProcessor(repo)

		code, err := p.Process(context.Background(), "")

		require.NoError(t, err)
		assert.Empty(t, code)
		// No store access on the auto-generated path.
		assert.Zero(t, repo.findByCodeCalls)
	})

	t.Run("normalizes the alias into a url safe slug", func(t *testing.T) {
		repo := newMockRepo()
		p := shortener.NewSlugProcessor(repo)

		cases := map[string]shortener.Code{
			"Hello World":      "hello-world",
			"  spaces   flat ": "spaces-flat",
			"Crème brûlée":     "creme-brulee",
			"already-fine":     "already-fine",
		}

		for raw, want := range cases {
			code, err := p.Process(context.Background(), raw)

			require.NoError(t, err, "raw %q", raw)
			assert.Equal(t, want, code, "raw %q", raw)
		}
	})

	t.Run("fails when the alias normalizes to nothing", func(t *testing.T) {
		repo := newMockRepo()
		p := shortener.NewSlugProcessor(repo)

		for _, raw := range []string{"!!!", "---", "   "} {
			_, err := p.Process(context.Background(), raw)

			var aliasErr *shortener.InvalidSlugError

			require.ErrorAs(t, err, &aliasErr, "raw %q", raw)
			assert.Equal(t, raw, aliasErr.Slug, "raw %q", raw)
		}

		// An unusable alias never reaches the store.
		assert.Zero(t, repo.findByCodeCalls)
	})

	t.Run("fails with NonUniqueSlugError when the slug maps to a code", func(t *testing.T) {
		repo := newMockRepo()
		repo.byCode["hello-world"] = &shortener.ShortURL{Code: "hello-world"}
		p := shortener.NewSlugProcessor(repo)

		_, err := p.Process(context.Background(), "Hello World")

		var slugErr *shortener.NonUniqueSlugError

		require.ErrorAs(t, err, &slugErr)
		// The error carries the normalized slug, not the raw alias.
		assert.Equal(t, "hello-world", slugErr.Slug)
	})

	t.Run("propagates unexpected store errors", func(t *testing.T) {
		repo := newMockRepo()
		repo.findByCodeErr = errMock
		p := shortener.NewSlugProcessor(repo)

		_, err := p.Process(context.Background(), "whatever")

		assert.ErrorIs(t, err, errMock)
	})
}
