package runner

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestBodyPreview(t *testing.T) {
	t.Run("Should keep short bodies intact", func(t *testing.T) {
		assert.Equal(t, `{"ok":true}`, bodyPreview([]byte(`{"ok":true}`)))
	})

	t.Run("Should cap long bodies at the preview limit", func(t *testing.T) {
		preview := bodyPreview([]byte(strings.Repeat("x", previewLimit+100)))
		assert.Len(t, preview, previewLimit)
	})

	t.Run("Should not split a multi-byte rune at the cap", func(t *testing.T) {
		// three-byte runes guarantee the byte cap lands mid-rune
		body := []byte(strings.Repeat("€", previewLimit))
		preview := bodyPreview(body)
		assert.True(t, utf8.ValidString(preview))
		assert.LessOrEqual(t, len(preview), previewLimit)
	})
}

func TestTrimToRuneBoundary(t *testing.T) {
	t.Run("Should drop an incomplete trailing rune", func(t *testing.T) {
		full := []byte("€€")
		cut := trimToRuneBoundary(full[:4])
		assert.True(t, utf8.Valid(cut))
		assert.Equal(t, []byte("€"), cut)
	})

	t.Run("Should leave complete sequences alone", func(t *testing.T) {
		assert.Equal(t, []byte("abc"), trimToRuneBoundary([]byte("abc")))
		assert.Equal(t, []byte("€"), trimToRuneBoundary([]byte("€")))
	})

	t.Run("Should handle empty input", func(t *testing.T) {
		assert.Empty(t, trimToRuneBoundary(nil))
	})
}
