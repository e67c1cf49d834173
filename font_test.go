package canopy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFont returns a font over atlas with every printable ASCII character as
// a w x h cell, laid out 16 to a row.
func testFont(t testing.TB, atlas AtlasID, w, h int, opts FontOptions) *BitmapFont {
	t.Helper()
	var glyphs []Glyph
	for r := rune(' '); r <= '~'; r++ {
		i := int(r - ' ')
		glyphs = append(glyphs, Glyph{Char: r, X: (i % 16) * w, Y: (i / 16) * h, Width: w, Height: h})
	}
	f, err := NewBitmapFont(atlas, glyphs, opts)
	require.NoError(t, err)
	return f
}

func TestNewBitmapFontLookup(t *testing.T) {
	glyphs := []Glyph{
		{Char: 'A', X: 0, Y: 0, Width: 8, Height: 10},
		{Char: 'g', X: 8, Y: 0, Width: 8, Height: 14},
		{Char: 'é', X: 16, Y: 0, Width: 8, Height: 12},
	}
	f, err := NewBitmapFont(3, glyphs, FontOptions{PaddingTop: 2, Spacing: 1, LineSpacing: 4})
	require.NoError(t, err)

	assert.Equal(t, AtlasID(3), f.Atlas())
	assert.Equal(t, 3, f.NumGlyphs())
	assert.Equal(t, 2.0, f.PaddingTop())
	assert.Equal(t, 1.0, f.Spacing())
	assert.Equal(t, 4.0, f.LineSpacing())
	assert.Equal(t, 14.0, f.LineHeight(), "line height defaults to the tallest glyph")

	g, ok := f.Glyph('é')
	require.True(t, ok)
	assert.Equal(t, glyphs[2], g)
	g, ok = f.Glyph('A')
	require.True(t, ok)
	assert.Equal(t, glyphs[0], g)

	_, ok = f.Glyph('B')
	assert.False(t, ok)
	_, ok = f.Glyph('☃')
	assert.False(t, ok)
}

func TestNewBitmapFontLineHeightOverride(t *testing.T) {
	f := testFont(t, 1, 8, 10, FontOptions{LineHeight: 16})
	assert.Equal(t, 16.0, f.LineHeight())
}

func TestNewBitmapFontBleed(t *testing.T) {
	def := testFont(t, 1, 8, 10, FontOptions{})
	assert.Equal(t, DefaultTexBleed, def.TexBleed())
	assert.Equal(t, DefaultVertBleed, def.VertBleed())

	none := testFont(t, 1, 8, 10, FontOptions{TexBleed: -1, VertBleed: -1})
	assert.Zero(t, none.TexBleed())
	assert.Zero(t, none.VertBleed())

	custom := testFont(t, 1, 8, 10, FontOptions{TexBleed: 0.5, VertBleed: 0.25})
	assert.Equal(t, 0.5, custom.TexBleed())
	assert.Equal(t, 0.25, custom.VertBleed())
}

func TestNewBitmapFontErrors(t *testing.T) {
	ok := Glyph{Char: 'A', Width: 8, Height: 10}
	cases := []struct {
		name   string
		atlas  AtlasID
		glyphs []Glyph
	}{
		{"no atlas", 0, []Glyph{ok}},
		{"empty table", 1, nil},
		{"zero width", 1, []Glyph{{Char: 'A', Width: 0, Height: 10}}},
		{"negative height", 1, []Glyph{{Char: 'A', Width: 8, Height: -1}}},
		{"negative x", 1, []Glyph{{Char: 'A', X: -1, Width: 8, Height: 10}}},
		{"negative y", 1, []Glyph{{Char: 'A', Y: -2, Width: 8, Height: 10}}},
		{"newline glyph", 1, []Glyph{{Char: '\n', Width: 8, Height: 10}}},
		{"duplicate ascii", 1, []Glyph{ok, ok}},
		{"duplicate extended", 1, []Glyph{{Char: 'é', Width: 1, Height: 1}, {Char: 'é', Width: 2, Height: 2}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := NewBitmapFont(tc.atlas, tc.glyphs, FontOptions{})
			assert.Nil(t, f)
			assert.True(t, errors.Is(err, ErrBadGlyph), "err = %v", err)
		})
	}
}

func TestNewBitmapFontZeroHeightGlyph(t *testing.T) {
	f, err := NewBitmapFont(1, []Glyph{{Char: ' ', Width: 4, Height: 0}, {Char: 'A', Width: 8, Height: 10}}, FontOptions{})
	require.NoError(t, err)
	g, ok := f.Glyph(' ')
	require.True(t, ok)
	assert.Zero(t, g.Height)
}

func TestFontWithAtlas(t *testing.T) {
	f := testFont(t, 1, 8, 10, FontOptions{Spacing: 2})
	g := f.WithAtlas(7)
	assert.Equal(t, AtlasID(1), f.Atlas(), "receiver unchanged")
	assert.Equal(t, AtlasID(7), g.Atlas())
	assert.Equal(t, f.NumGlyphs(), g.NumGlyphs())
	assert.Equal(t, 2.0, g.Spacing())
	a1, _ := f.Glyph('A')
	a2, _ := g.Glyph('A')
	assert.Equal(t, a1, a2)
}
