// Package fontgen turns an x/image font.Face into a canopy bitmap font by
// rasterizing each glyph into one atlas image.
package fontgen

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/phanxgames/canopy"
)

// Options controls rasterization.
type Options struct {
	Runes   []rune // characters to include; nil = printable ASCII
	Columns int    // glyph cells per atlas row; 0 = 16
	Padding int    // transparent pixels between cells; 0 = 1, negative = none
	Font    canopy.FontOptions
}

func (o Options) withDefaults() Options {
	if o.Runes == nil {
		for r := rune(0x20); r < 0x7f; r++ {
			o.Runes = append(o.Runes, r)
		}
	}
	if o.Columns <= 0 {
		o.Columns = 16
	}
	switch {
	case o.Padding == 0:
		o.Padding = 1
	case o.Padding < 0:
		o.Padding = 0
	}
	return o
}

// Sheet is a rasterized face: the atlas image and the glyph table that
// indexes it.
type Sheet struct {
	Image  *image.RGBA
	Glyphs []canopy.Glyph
	Font   canopy.FontOptions
}

// Rasterize draws every requested rune the face has into a grid of equal
// cells, one line high and as wide as the widest advance. Runes the face
// lacks are left out.
func Rasterize(face font.Face, opts Options) (*Sheet, error) {
	if face == nil {
		return nil, errors.New("fontgen: nil face")
	}
	opts = opts.withDefaults()
	m := face.Metrics()
	lineH := (m.Ascent + m.Descent).Ceil()
	if lineH <= 0 {
		return nil, fmt.Errorf("fontgen: face has line height %d", lineH)
	}

	type cell struct {
		r   rune
		adv int
	}
	cells := make([]cell, 0, len(opts.Runes))
	cellW := 0
	for _, r := range opts.Runes {
		if r == '\n' {
			continue
		}
		adv, ok := face.GlyphAdvance(r)
		if !ok || adv.Ceil() <= 0 {
			continue
		}
		cells = append(cells, cell{r: r, adv: adv.Ceil()})
		cellW = max(cellW, adv.Ceil())
	}
	if len(cells) == 0 {
		return nil, errors.New("fontgen: face has none of the requested runes")
	}

	cols := min(opts.Columns, len(cells))
	rows := (len(cells) + cols - 1) / cols
	pad := opts.Padding
	img := image.NewRGBA(image.Rect(0, 0, cols*(cellW+pad)+pad, rows*(lineH+pad)+pad))

	d := font.Drawer{Dst: img, Src: image.NewUniform(color.White), Face: face}
	glyphs := make([]canopy.Glyph, 0, len(cells))
	for i, c := range cells {
		x := pad + (i%cols)*(cellW+pad)
		y := pad + (i/cols)*(lineH+pad)
		d.Dot = fixed.P(x, y+m.Ascent.Ceil())
		d.DrawString(string(c.r))
		glyphs = append(glyphs, canopy.Glyph{Char: c.r, X: x, Y: y, Width: c.adv, Height: lineH})
	}

	fo := opts.Font
	if fo.LineHeight == 0 {
		fo.LineHeight = float64(m.Height.Ceil())
	}
	return &Sheet{Image: img, Glyphs: glyphs, Font: fo}, nil
}

// Load rasterizes face, queues the atlas on engine, and builds the font.
func Load(engine *canopy.TextureEngine, face font.Face, opts Options) (*canopy.BitmapFont, error) {
	sheet, err := Rasterize(face, opts)
	if err != nil {
		return nil, err
	}
	id, err := engine.CreateAtlasFromImage(sheet.Image)
	if err != nil {
		return nil, fmt.Errorf("fontgen: %w", err)
	}
	return canopy.NewBitmapFont(id, sheet.Glyphs, sheet.Font)
}

// Basic loads the 7x13 fixed-width face from x/image as a bitmap font.
func Basic(engine *canopy.TextureEngine) (*canopy.BitmapFont, error) {
	return Load(engine, basicfont.Face7x13, Options{})
}
