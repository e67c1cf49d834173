package canopy

import (
	"fmt"
	"strings"
)

// WrapMargin is the number of glyph widths before the bound at which a line
// breaks. Lines wrap once drawX >= boundWidth - glyphWidth*WrapMargin.
const WrapMargin = 5

// ColorRun colors the runes in [Start, End) of the laid-out text.
type ColorRun struct {
	Start, End int
	Color      Color
}

// GlyphPlacement is one positioned glyph produced by Layout. X is the left
// edge and Y the bottom edge of the glyph in the text's local space.
type GlyphPlacement struct {
	Glyph Glyph
	X, Y  float64
	Color Color
	Index int // rune index in the source text
}

// LayoutParams controls a single Layout call.
type LayoutParams struct {
	BoundWidth  float64 // 0 disables wrapping
	BoundHeight float64 // 0 disables truncation
	Spacing     float64
	LineSpacing float64
	Color       Color      // color of runes not covered by Runs
	Runs        []ColorRun // sorted by Start, non-overlapping
}

// Layout places the glyphs of text and appends them to dst.
//
// The cursor starts at (0, font.PaddingTop()). Runes without a glyph are
// skipped. A '\n' breaks the line by font.LineHeight()+LineSpacing. Before a
// glyph is placed on a line that already holds something, the line breaks by
// glyph height + LineSpacing when drawX >= BoundWidth - width*WrapMargin; the
// glyph then starts the new line. Layout stops as soon as a line would end
// below BoundHeight.
func Layout(dst []GlyphPlacement, text string, font *BitmapFont, p LayoutParams) []GlyphPlacement {
	if font == nil {
		return dst
	}
	drawX, drawY := 0.0, font.PaddingTop()
	run := 0
	i := 0
	for _, r := range text {
		idx := i
		i++
		if r == '\n' {
			drawX = 0
			drawY += font.LineHeight() + p.LineSpacing
			if p.BoundHeight > 0 && drawY+font.LineHeight() > p.BoundHeight {
				return dst
			}
			continue
		}
		g, ok := font.Glyph(r)
		if !ok {
			continue
		}
		w, h := float64(g.Width), float64(g.Height)
		if p.BoundWidth > 0 && drawX > 0 && drawX >= p.BoundWidth-w*WrapMargin {
			drawX = 0
			drawY += h + p.LineSpacing
		}
		if p.BoundHeight > 0 && drawY+h > p.BoundHeight {
			return dst
		}

		for run < len(p.Runs) && p.Runs[run].End <= idx {
			run++
		}
		c := p.Color
		if run < len(p.Runs) && p.Runs[run].Start <= idx {
			c = p.Runs[run].Color
		}

		dst = append(dst, GlyphPlacement{Glyph: g, X: drawX, Y: drawY + h, Color: c, Index: idx})
		drawX += w + p.Spacing
	}
	return dst
}

// measure returns the size of the rectangle covering every placement.
func measure(glyphs []GlyphPlacement) (w, h float64) {
	for _, g := range glyphs {
		w = max(w, g.X+float64(g.Glyph.Width))
		h = max(h, g.Y)
	}
	return w, h
}

// ParseMarkup strips color directives from s and returns the plain text with
// the runs they describe. Rune indices in the runs refer to the plain text.
//
//	[#rrggbb] [#rrggbbaa] [name]  push a color
//	[]                            pop back to the previous color
//	[[                            literal '['
//
// Runs cover only text written while a color is pushed.
func ParseMarkup(s string) (string, []ColorRun, error) {
	var (
		out   strings.Builder
		runs  []ColorRun
		stack []Color
		n     int // runes written
		start int
	)
	closeRun := func() {
		if len(stack) > 0 && n > start {
			runs = append(runs, ColorRun{Start: start, End: n, Color: stack[len(stack)-1]})
		}
		start = n
	}
	for i := 0; i < len(s); {
		if s[i] != '[' {
			j := i + 1
			for j < len(s) && s[j] != '[' {
				j++
			}
			seg := s[i:j]
			out.WriteString(seg)
			n += len([]rune(seg))
			i = j
			continue
		}
		if strings.HasPrefix(s[i:], "[[") {
			out.WriteByte('[')
			n++
			i += 2
			continue
		}
		end := strings.IndexByte(s[i:], ']')
		if end < 0 {
			return "", nil, fmt.Errorf("canopy: unterminated color tag at byte %d", i)
		}
		tag := s[i+1 : i+end]
		i += end + 1
		closeRun()
		if tag == "" {
			if len(stack) == 0 {
				return "", nil, fmt.Errorf("canopy: color pop with empty stack at byte %d", i-1)
			}
			stack = stack[:len(stack)-1]
			continue
		}
		c, err := ParseColor(tag)
		if err != nil {
			return "", nil, fmt.Errorf("canopy: bad color tag: %w", err)
		}
		stack = append(stack, c)
	}
	closeRun()
	return out.String(), runs, nil
}
