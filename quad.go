package canopy

import "github.com/chewxy/math32"

// quadStyle is what every quad emitted by one node shares.
type quadStyle struct {
	texture   TextureHandle
	shader    ShaderID
	blend     BlendMode
	filter    Filter
	color     Color
	zOrder    int
	texBleed  float32
	vertBleed float32
}

// appendQuad emits the local rectangle (x0,y0)-(x1,y1) sampling the texel
// rectangle (u0,v0)-(u1,v1), placed by t. The texture bleed shrinks the
// sampled rectangle inward by that many texels; the vertex bleed grows the
// drawn quad outward by that many target pixels.
func appendQuad(dst []Quad, t Transform, s *quadStyle, x0, y0, x1, y1, u0, v0, u1, v1 float32) []Quad {
	sx, sy := float32(t.ScaleX), float32(t.ScaleY)
	if sx == 0 || sy == 0 {
		return dst
	}
	if tb := s.texBleed; tb > 0 {
		if u1-u0 > 2*tb {
			u0 += tb
			u1 -= tb
		}
		if v1-v0 > 2*tb {
			v0 += tb
			v1 -= tb
		}
	}
	if vb := s.vertBleed; vb > 0 {
		ex, ey := vb/math32.Abs(sx), vb/math32.Abs(sy)
		x0 -= ex
		x1 += ex
		y0 -= ey
		y1 += ey
	}

	sin, cos := float32(0), float32(1)
	if t.Rotation != 0 {
		sin, cos = math32.Sincos(float32(t.Rotation) * math32.Pi / 180)
	}
	tx, ty := float32(t.X), float32(t.Y)
	place := func(lx, ly, u, v float32) Vertex {
		x, y := lx*sx, ly*sy
		return Vertex{
			DstX: x*cos - y*sin + tx,
			DstY: x*sin + y*cos + ty,
			SrcX: u,
			SrcY: v,
		}
	}

	return append(dst, Quad{
		Texture: s.texture,
		Shader:  s.shader,
		Blend:   s.blend,
		Filter:  s.filter,
		Color:   s.color,
		ZOrder:  s.zOrder,
		V: [4]Vertex{
			place(x0, y0, u0, v0),
			place(x1, y0, u1, v0),
			place(x0, y1, u0, v1),
			place(x1, y1, u1, v1),
		},
	})
}

// appendRegionQuads emits the tiled grid for region r. Each axis gets
// ceil(repeat) tiles; the last tile's drawn size and texture span are scaled
// by the fractional remainder. A non-positive repeat emits nothing.
func appendRegionQuads(dst []Quad, t Transform, s *quadStyle, r TextureRegion, repeatX, repeatY float64) []Quad {
	if r.Width == 0 || r.Height == 0 || repeatX <= 0 || repeatY <= 0 {
		return dst
	}
	rx, ry := float32(repeatX), float32(repeatY)
	nx, ny := int(math32.Ceil(rx)), int(math32.Ceil(ry))
	w, h := float32(r.Width), float32(r.Height)
	u0, v0 := float32(r.X), float32(r.Y)
	for iy := 0; iy < ny; iy++ {
		fy := math32.Min(1, ry-float32(iy))
		y0 := float32(iy) * h
		for ix := 0; ix < nx; ix++ {
			fx := math32.Min(1, rx-float32(ix))
			x0 := float32(ix) * w
			dst = appendQuad(dst, t, s,
				x0, y0, x0+fx*w, y0+fy*h,
				u0, v0, u0+fx*w, v0+fy*h)
		}
	}
	return dst
}

// appendGlyphQuads emits one quad per placed glyph. Placements carry the
// glyph bottom in Y, so each quad spans [Y-height, Y].
func appendGlyphQuads(dst []Quad, t Transform, s *quadStyle, glyphs []GlyphPlacement) []Quad {
	tint := s.color
	for i := range glyphs {
		p := &glyphs[i]
		g := p.Glyph
		if g.Height == 0 {
			continue
		}
		s.color = tint.Mul(p.Color)
		x0, y1 := float32(p.X), float32(p.Y)
		dst = appendQuad(dst, t, s,
			x0, y1-float32(g.Height), x0+float32(g.Width), y1,
			float32(g.X), float32(g.Y), float32(g.X+g.Width), float32(g.Y+g.Height))
	}
	s.color = tint
	return dst
}
