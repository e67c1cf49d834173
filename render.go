package canopy

import "math"

// frameContext is the per-frame traversal state. It is reset at the start of
// every Draw; nothing in it outlives the next frame.
type frameContext struct {
	counter    int
	quads      []Quad
	drawn      []*Node     // drawn[z-1] received z-order z
	resolved   []Transform // resolved[z-1] is its pixel-aligned screen transform
	current    *Node       // node being drawn, for panic reports
	pixelAlign bool
	filter     Filter
	skipped    int
}

// reset clears the previous frame, including the z-order slots it assigned.
func (c *frameContext) reset(pixelAlign bool, filter Filter) {
	for _, n := range c.drawn {
		n.zOrder = 0
	}
	clear(c.drawn)
	c.drawn = c.drawn[:0]
	c.resolved = c.resolved[:0]
	c.quads = c.quads[:0]
	c.counter = 0
	c.current = nil
	c.pixelAlign = pixelAlign
	c.filter = filter
	c.skipped = 0
}

// traverseStage draws every child of the stage root. The root itself
// contributes no transform and takes no z-order slot.
func (s *Stage) traverseStage() {
	root := s.root
	if !root.Visible {
		return
	}
	for _, child := range root.children {
		s.traverse(child, IdentityTransform, root.Shader)
	}
}

// traverse visits n depth-first in pre-order. Invisible nodes are skipped
// with their whole subtree.
func (s *Stage) traverse(n *Node, parent Transform, shader ShaderID) {
	if !n.Visible {
		return
	}
	ctx := &s.ctx
	ctx.counter++
	n.zOrder = ctx.counter
	ctx.current = n

	// Children compose from the exact transform; only emitted geometry is
	// snapped to whole pixels.
	t := parent.Compose(n.Local())
	screen := t
	if ctx.pixelAlign {
		screen.X = math.Round(screen.X)
		screen.Y = math.Round(screen.Y)
	}
	ctx.drawn = append(ctx.drawn, n)
	ctx.resolved = append(ctx.resolved, screen)

	if n.Shader != 0 {
		shader = n.Shader
	}

	switch n.kind {
	case KindGroup, KindStage:
		for _, child := range n.children {
			s.traverse(child, t, shader)
		}
	case KindSprite:
		s.drawRegion(n, screen, shader, n.Region, n.RepeatX, n.RepeatY)
	case KindAnimated:
		r := n.Region
		if n.Animation != nil {
			r = n.Animation.Frame()
		}
		s.drawRegion(n, screen, shader, r, n.RepeatX, n.RepeatY)
	case KindText:
		s.drawText(n, screen, shader)
	}
}

func (s *Stage) nodeStyle(n *Node, t Transform, shader ShaderID, h TextureHandle) quadStyle {
	c := n.Color
	c.A *= t.Alpha
	return quadStyle{
		texture:   h,
		shader:    shader,
		blend:     n.BlendMode,
		filter:    s.ctx.filter,
		color:     c,
		zOrder:    n.zOrder,
		texBleed:  float32(n.TexBleed),
		vertBleed: float32(n.VertBleed),
	}
}

// bind resolves the atlas for drawing. An atlas that is still uploading,
// failed, or was evicted skips the draw for this frame.
func (s *Stage) bind(id AtlasID) (TextureHandle, bool) {
	if !s.engine.Bind(id) {
		s.ctx.skipped++
		return 0, false
	}
	return s.engine.Handle(id)
}

func (s *Stage) drawRegion(n *Node, t Transform, shader ShaderID, r TextureRegion, repeatX, repeatY float64) {
	if r.IsZero() {
		return
	}
	h, ok := s.bind(r.Atlas)
	if !ok {
		return
	}
	style := s.nodeStyle(n, t, shader, h)
	s.ctx.quads = appendRegionQuads(s.ctx.quads, t, &style, r, repeatX, repeatY)
}

func (s *Stage) drawText(n *Node, t Transform, shader ShaderID) {
	txt := n.Text
	if txt == nil || txt.Font == nil {
		return
	}
	if txt.CacheAsSprite {
		r, ok := txt.cachedRegion(s.engine, n.TexBleed, n.VertBleed)
		if !ok {
			return
		}
		h, ok := s.bind(r.Atlas)
		if !ok {
			return
		}
		style := s.nodeStyle(n, t, shader, h)
		style.texBleed, style.vertBleed = 0, 0
		s.ctx.quads = appendRegionQuads(s.ctx.quads, t, &style, r, 1, 1)
		return
	}
	if txt.cache.atlas != 0 {
		txt.releaseCache()
	}
	h, ok := s.bind(txt.Font.Atlas())
	if !ok {
		return
	}
	style := s.nodeStyle(n, t, shader, h)
	s.ctx.quads = appendGlyphQuads(s.ctx.quads, t, &style, txt.Layout())
}
