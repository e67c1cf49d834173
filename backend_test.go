package canopy

import (
	"errors"
	"fmt"
	"sync"
)

// recordBackend is a Backend that records every call instead of touching a
// GPU. Handles are issued sequentially from 1.
type recordBackend struct {
	mu sync.Mutex // only CreateTexture tests race; everything else is single-threaded

	stage *Stage // when set, each call also records the stage's frame phase

	next     TextureHandle
	live     map[TextureHandle]textureRec
	calls    []string
	phases   []FramePhase
	draws    []drawRec
	deleted  []TextureHandle
	failNext bool // next CreateTexture fails

	// panicOnDraw makes DrawQuads panic, to exercise frame recovery.
	panicOnDraw bool
}

type textureRec struct {
	width, height int
	target        bool
	mipmaps       bool
}

type drawRec struct {
	target TextureHandle
	quads  []Quad
}

func newRecordBackend() *recordBackend {
	return &recordBackend{live: make(map[TextureHandle]textureRec)}
}

func (b *recordBackend) record(format string, args ...any) {
	b.calls = append(b.calls, fmt.Sprintf(format, args...))
	if b.stage != nil {
		b.phases = append(b.phases, b.stage.Phase())
	}
}

func (b *recordBackend) CreateTexture(pixels []byte, width, height int, opts TextureOptions) (TextureHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("create %dx%d", width, height)
	if b.failNext {
		b.failNext = false
		return 0, errors.New("out of video memory")
	}
	b.next++
	b.live[b.next] = textureRec{width: width, height: height}
	return b.next, nil
}

func (b *recordBackend) GenerateMipmaps(h TextureHandle) {
	b.record("mipmaps %d", h)
	rec := b.live[h]
	rec.mipmaps = true
	b.live[h] = rec
}

func (b *recordBackend) BindTexture(h TextureHandle) bool {
	_, ok := b.live[h]
	return ok
}

func (b *recordBackend) DeleteTexture(h TextureHandle) {
	b.record("delete %d", h)
	delete(b.live, h)
	b.deleted = append(b.deleted, h)
}

func (b *recordBackend) CreateRenderTarget(width, height int) (TextureHandle, error) {
	b.record("target %dx%d", width, height)
	b.next++
	b.live[b.next] = textureRec{width: width, height: height, target: true}
	return b.next, nil
}

func (b *recordBackend) SetViewport(width, height int) {
	b.record("viewport %dx%d", width, height)
}

func (b *recordBackend) Clear(target TextureHandle, c Color) {
	b.record("clear %d", target)
}

func (b *recordBackend) DrawQuads(target TextureHandle, quads []Quad) {
	b.record("draw %d x%d", target, len(quads))
	if b.panicOnDraw {
		panic("driver lost")
	}
	b.draws = append(b.draws, drawRec{target: target, quads: append([]Quad(nil), quads...)})
}

// screenQuads returns every quad drawn to the screen, in submission order.
func (b *recordBackend) screenQuads() []Quad {
	var out []Quad
	for _, d := range b.draws {
		if d.target == ScreenTarget {
			out = append(out, d.quads...)
		}
	}
	return out
}

func (b *recordBackend) reset() {
	b.calls = nil
	b.phases = nil
	b.draws = nil
	b.deleted = nil
}

// newTestStage returns a stage on a recording backend with mipmaps off.
func newTestStage() (*Stage, *recordBackend) {
	b := newRecordBackend()
	cfg := DefaultConfig()
	cfg.Mipmaps = false
	s := NewStage(b, cfg)
	b.stage = s
	return s, b
}

// solidPixels returns w*h opaque white RGBA8 pixels.
func solidPixels(w, h int) []byte {
	p := make([]byte, w*h*4)
	for i := range p {
		p[i] = 0xff
	}
	return p
}

// residentAtlas creates an atlas on s and flushes it so it binds at once.
func residentAtlas(s *Stage, w, h int) AtlasID {
	id, err := s.engine.CreateAtlas(solidPixels(w, h), w, h)
	if err != nil {
		panic(err)
	}
	s.engine.FlushUploads()
	return id
}

// exactSprite returns a sprite with no bleeding correction.
func exactSprite(name string, r TextureRegion) *Node {
	n := NewSprite(name, r)
	n.TexBleed, n.VertBleed = 0, 0
	return n
}
