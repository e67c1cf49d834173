package canopy

import (
	"math"
	"slices"
)

// BitmapText holds text content, formatting, and the optional pre-rendered
// cache. Layout is recomputed on every draw and every Size call; only the
// cache-as-sprite texture persists between frames.
type BitmapText struct {
	Content     string
	Font        *BitmapFont
	Spacing     float64 // extra advance after each glyph
	LineSpacing float64 // extra gap between lines
	BoundWidth  float64 // wrap bound; 0 = no wrapping
	BoundHeight float64 // truncation bound; 0 = unbounded
	Color       Color
	Runs        []ColorRun // per-rune colors over Content (or its plain text when Markup is set)

	// Markup parses [#rrggbb]/[name]/[] color directives out of Content.
	Markup bool

	// CacheAsSprite renders the layout once into an offscreen target and
	// draws that target as a single quad until the text or style changes.
	CacheAsSprite bool

	glyphs []GlyphPlacement // scratch reused across layouts
	runBuf []ColorRun
	cache  textCache
}

type textCache struct {
	engine        *TextureEngine // owner of atlas
	atlas         AtlasID
	width, height int
	key           textCacheKey
	runs          []ColorRun
}

// textCacheKey is every input that changes the rendered pixels.
type textCacheKey struct {
	content     string
	font        *BitmapFont
	spacing     float64
	lineSpacing float64
	boundW      float64
	boundH      float64
	color       Color
	markup      bool
	texBleed    float64
	vertBleed   float64
}

func newBitmapText(content string, font *BitmapFont) *BitmapText {
	t := &BitmapText{Content: content, Font: font, Color: ColorWhite}
	if font != nil {
		t.Spacing = font.Spacing()
		t.LineSpacing = font.LineSpacing()
	}
	return t
}

// Layout runs the layout for the current content and returns the placed
// glyphs. The returned slice is reused by the next call.
func (t *BitmapText) Layout() []GlyphPlacement {
	content, runs := t.Content, t.Runs
	if t.Markup {
		plain, parsed, err := ParseMarkup(t.Content)
		if err != nil {
			Logger().Debug("canopy: text markup ignored", "err", err)
		} else {
			content = plain
			t.runBuf = append(append(t.runBuf[:0], parsed...), t.Runs...)
			slices.SortStableFunc(t.runBuf, func(a, b ColorRun) int { return a.Start - b.Start })
			runs = t.runBuf
		}
	}
	t.glyphs = Layout(t.glyphs[:0], content, t.Font, LayoutParams{
		BoundWidth:  t.BoundWidth,
		BoundHeight: t.BoundHeight,
		Spacing:     t.Spacing,
		LineSpacing: t.LineSpacing,
		Color:       t.Color,
		Runs:        runs,
	})
	return t.glyphs
}

// Size returns the width and height covered by the laid-out glyphs.
func (t *BitmapText) Size() (w, h float64) {
	return measure(t.Layout())
}

// Invalidate drops the cached texture so the next draw renders it again.
func (t *BitmapText) Invalidate() {
	t.cache.key = textCacheKey{}
}

// Cached returns the region of the pre-rendered texture, if one is current.
func (t *BitmapText) Cached() (TextureRegion, bool) {
	if t.cache.atlas == 0 {
		return TextureRegion{}, false
	}
	return NewRegion(t.cache.atlas, 0, 0, t.cache.width, t.cache.height), true
}

func (t *BitmapText) cacheKey(texBleed, vertBleed float64) textCacheKey {
	return textCacheKey{
		content:     t.Content,
		font:        t.Font,
		spacing:     t.Spacing,
		lineSpacing: t.LineSpacing,
		boundW:      t.BoundWidth,
		boundH:      t.BoundHeight,
		color:       t.Color,
		markup:      t.Markup,
		texBleed:    texBleed,
		vertBleed:   vertBleed,
	}
}

// cachedRegion returns the pre-rendered region, rendering it first when the
// text or style changed since the last render. Returns false when nothing can
// be drawn this frame, such as when the glyph atlas is still uploading.
func (t *BitmapText) cachedRegion(e *TextureEngine, texBleed, vertBleed float64) (TextureRegion, bool) {
	key := t.cacheKey(texBleed, vertBleed)
	if t.cache.atlas != 0 && t.cache.engine == e && t.cache.key == key && slices.Equal(t.cache.runs, t.Runs) {
		if _, ok := e.Handle(t.cache.atlas); ok {
			return t.Cached()
		}
	}
	if t.Font == nil || !e.Bind(t.Font.Atlas()) {
		return TextureRegion{}, false
	}
	glyphHandle, _ := e.Handle(t.Font.Atlas())

	glyphs := t.Layout()
	mw, mh := measure(glyphs)
	w, h := int(math.Ceil(mw)), int(math.Ceil(mh))
	if w == 0 || h == 0 {
		t.releaseCache()
		return TextureRegion{}, false
	}
	if w > math.MaxUint16 || h > math.MaxUint16 {
		// Regions address at most 65535 texels per axis.
		Logger().Warn("canopy: text too large to cache", "width", w, "height", h)
		t.releaseCache()
		return TextureRegion{}, false
	}

	if t.cache.atlas == 0 || t.cache.engine != e || t.cache.width != w || t.cache.height != h {
		t.releaseCache()
		id, err := e.CreateRenderTarget(w, h)
		if err != nil {
			Logger().Warn("canopy: text cache target failed", "err", err)
			return TextureRegion{}, false
		}
		t.cache.engine, t.cache.atlas, t.cache.width, t.cache.height = e, id, w, h
	}
	target, ok := e.Handle(t.cache.atlas)
	if !ok {
		t.releaseCache()
		return TextureRegion{}, false
	}

	style := quadStyle{
		texture:   glyphHandle,
		color:     ColorWhite,
		texBleed:  float32(texBleed),
		vertBleed: float32(vertBleed),
	}
	quads := appendGlyphQuads(nil, IdentityTransform, &style, glyphs)
	e.backend.Clear(target, Color{})
	e.backend.DrawQuads(target, quads)

	t.cache.key = key
	t.cache.runs = append(t.cache.runs[:0], t.Runs...)
	return t.Cached()
}

// releaseCache queues the cached texture for eviction on the engine that
// created it, whether or not the text is still on a stage.
func (t *BitmapText) releaseCache() {
	if e := t.cache.engine; t.cache.atlas != 0 && e != nil {
		if err := e.EnqueueEviction(t.cache.atlas); err != nil {
			Logger().Debug("canopy: text cache eviction", "atlas", t.cache.atlas, "err", err)
		}
	}
	t.cache = textCache{}
}
