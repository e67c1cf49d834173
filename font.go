package canopy

import (
	"errors"
	"fmt"
)

// ErrBadGlyph reports an unusable glyph table passed to NewBitmapFont.
var ErrBadGlyph = errors.New("canopy: bad glyph")

// Default bleed-correction constants used by sprites and by fonts that do
// not set their own.
const (
	DefaultTexBleed  = 0.01 // texels trimmed from each edge of the sampled rect
	DefaultVertBleed = 0.01 // pixels added to each edge of the drawn quad
)

// Glyph is the location of one character inside the font atlas.
type Glyph struct {
	Char          rune
	X, Y          int
	Width, Height int
}

// FontOptions carries font-wide layout defaults. Zero values select the
// documented defaults.
type FontOptions struct {
	PaddingTop  float64 // initial cursor Y
	Spacing     float64 // extra advance after each glyph
	LineSpacing float64 // extra gap between lines
	LineHeight  float64 // newline advance; 0 = tallest glyph
	TexBleed    float64 // 0 = DefaultTexBleed; negative = none
	VertBleed   float64 // 0 = DefaultVertBleed; negative = none
}

const asciiGlyphCount = 128

// BitmapFont is an immutable glyph metrics table over a single atlas.
type BitmapFont struct {
	atlas AtlasID

	paddingTop  float64
	spacing     float64
	lineSpacing float64
	lineHeight  float64
	texBleed    float64
	vertBleed   float64

	asciiGlyphs [asciiGlyphCount]Glyph // fixed array for ASCII, zero-alloc lookup
	asciiSet    [asciiGlyphCount]bool  // which ASCII entries are populated
	extGlyphs   map[rune]Glyph         // extended Unicode
	count       int
}

// NewBitmapFont validates glyphs and builds a font over atlas. A glyph with
// non-positive width, negative height, negative coordinates, or a duplicate
// character fails with ErrBadGlyph.
func NewBitmapFont(atlas AtlasID, glyphs []Glyph, opts FontOptions) (*BitmapFont, error) {
	if atlas == 0 {
		return nil, fmt.Errorf("%w: font has no atlas", ErrBadGlyph)
	}
	if len(glyphs) == 0 {
		return nil, fmt.Errorf("%w: empty glyph table", ErrBadGlyph)
	}
	f := &BitmapFont{
		atlas:       atlas,
		paddingTop:  opts.PaddingTop,
		spacing:     opts.Spacing,
		lineSpacing: opts.LineSpacing,
		lineHeight:  opts.LineHeight,
		texBleed:    bleedOrDefault(opts.TexBleed, DefaultTexBleed),
		vertBleed:   bleedOrDefault(opts.VertBleed, DefaultVertBleed),
	}
	var tallest int
	for _, g := range glyphs {
		if g.Width <= 0 || g.Height < 0 || g.X < 0 || g.Y < 0 {
			return nil, fmt.Errorf("%w: %q has rect (%d,%d %dx%d)", ErrBadGlyph, g.Char, g.X, g.Y, g.Width, g.Height)
		}
		if g.Char == '\n' {
			return nil, fmt.Errorf("%w: newline cannot be a glyph", ErrBadGlyph)
		}
		if _, dup := f.Glyph(g.Char); dup {
			return nil, fmt.Errorf("%w: duplicate %q", ErrBadGlyph, g.Char)
		}
		if g.Char >= 0 && g.Char < asciiGlyphCount {
			f.asciiGlyphs[g.Char] = g
			f.asciiSet[g.Char] = true
		} else {
			if f.extGlyphs == nil {
				f.extGlyphs = make(map[rune]Glyph)
			}
			f.extGlyphs[g.Char] = g
		}
		tallest = max(tallest, g.Height)
		f.count++
	}
	if f.lineHeight <= 0 {
		f.lineHeight = float64(tallest)
	}
	return f, nil
}

func bleedOrDefault(v, def float64) float64 {
	switch {
	case v < 0:
		return 0
	case v == 0:
		return def
	}
	return v
}

// Glyph returns the metrics for r.
func (f *BitmapFont) Glyph(r rune) (Glyph, bool) {
	if r >= 0 && r < asciiGlyphCount {
		return f.asciiGlyphs[r], f.asciiSet[r]
	}
	g, ok := f.extGlyphs[r]
	return g, ok
}

// WithAtlas returns a copy of the font reading glyphs from another atlas with
// the same layout. The receiver is not modified.
func (f *BitmapFont) WithAtlas(atlas AtlasID) *BitmapFont {
	c := *f
	c.atlas = atlas
	return &c
}

// Atlas returns the atlas holding the glyph pixels.
func (f *BitmapFont) Atlas() AtlasID { return f.atlas }

// NumGlyphs returns the number of glyphs in the table.
func (f *BitmapFont) NumGlyphs() int { return f.count }

// PaddingTop returns the initial cursor Y of a layout.
func (f *BitmapFont) PaddingTop() float64 { return f.paddingTop }

// Spacing returns the default extra advance after each glyph.
func (f *BitmapFont) Spacing() float64 { return f.spacing }

// LineSpacing returns the default gap between lines.
func (f *BitmapFont) LineSpacing() float64 { return f.lineSpacing }

// LineHeight returns the advance used by an explicit newline.
func (f *BitmapFont) LineHeight() float64 { return f.lineHeight }

// TexBleed returns the font's texture-space bleed default.
func (f *BitmapFont) TexBleed() float64 { return f.texBleed }

// VertBleed returns the font's vertex-space bleed default.
func (f *BitmapFont) VertBleed() float64 { return f.vertBleed }
