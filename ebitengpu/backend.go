// Package ebitengpu implements canopy.Backend on Ebitengine.
//
// Textures are ebiten images; quad batches are submitted with
// DrawTriangles32, or DrawTrianglesShader32 when the batch names a shader
// registered with RegisterShader.
package ebitengpu

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/canopy"
)

type texture struct {
	img    *ebiten.Image
	filter canopy.Filter
}

// Backend draws canopy frames with Ebitengine. It must be used from the
// goroutine running the Ebitengine game loop.
type Backend struct {
	screen   *ebiten.Image
	textures map[canopy.TextureHandle]*texture
	next     canopy.TextureHandle
	bound    canopy.TextureHandle

	shaders  map[canopy.ShaderID]*shaderEntry
	nextSh   canopy.ShaderID
	width    int
	height   int
	verts    []ebiten.Vertex
	inds     []uint32
	triOp    ebiten.DrawTrianglesOptions
	shaderOp ebiten.DrawTrianglesShaderOptions
}

// New returns a backend with no textures. SetScreen must be called with the
// frame's screen image before each canopy.Stage.Draw.
func New() *Backend {
	return &Backend{
		textures: make(map[canopy.TextureHandle]*texture),
		shaders:  make(map[canopy.ShaderID]*shaderEntry),
	}
}

// SetScreen sets the image canopy.ScreenTarget draws into.
func (b *Backend) SetScreen(screen *ebiten.Image) {
	b.screen = screen
}

// CreateTexture uploads straight-alpha RGBA8 pixels as a new image.
func (b *Backend) CreateTexture(pixels []byte, width, height int, opts canopy.TextureOptions) (canopy.TextureHandle, error) {
	if len(pixels) != width*height*4 {
		return 0, fmt.Errorf("ebitengpu: %d bytes for %dx%d texture", len(pixels), width, height)
	}
	img := ebiten.NewImageWithOptions(image.Rect(0, 0, width, height), nil)
	img.WritePixels(premultiply(pixels))
	return b.store(img, opts.Filter), nil
}

// premultiply returns pixels with color scaled by alpha, as ebiten images
// store them. Fully opaque buffers are returned unchanged.
func premultiply(pixels []byte) []byte {
	var out []byte
	for i := 3; i < len(pixels); i += 4 {
		a := pixels[i]
		if a == 0xff {
			continue
		}
		if out == nil {
			out = make([]byte, len(pixels))
			copy(out, pixels)
		}
		for c := i - 3; c < i; c++ {
			out[c] = byte(uint16(pixels[c]) * uint16(a) / 0xff)
		}
	}
	if out == nil {
		return pixels
	}
	return out
}

func (b *Backend) store(img *ebiten.Image, filter canopy.Filter) canopy.TextureHandle {
	b.next++
	b.textures[b.next] = &texture{img: img, filter: filter}
	return b.next
}

// GenerateMipmaps is a no-op: Ebitengine builds mipmaps on demand when an
// image is drawn scaled down with linear filtering.
func (b *Backend) GenerateMipmaps(canopy.TextureHandle) {}

// BindTexture reports whether h is a live texture and remembers it.
func (b *Backend) BindTexture(h canopy.TextureHandle) bool {
	if _, ok := b.textures[h]; !ok {
		return false
	}
	b.bound = h
	return true
}

// DeleteTexture deallocates the image behind h.
func (b *Backend) DeleteTexture(h canopy.TextureHandle) {
	t, ok := b.textures[h]
	if !ok {
		return
	}
	t.img.Deallocate()
	delete(b.textures, h)
	if b.bound == h {
		b.bound = 0
	}
}

// CreateRenderTarget allocates an empty image that quads can be drawn into.
func (b *Backend) CreateRenderTarget(width, height int) (canopy.TextureHandle, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("ebitengpu: invalid render target %dx%d", width, height)
	}
	return b.store(ebiten.NewImage(width, height), canopy.FilterNearest), nil
}

// SetViewport records the logical screen size reported by Game.Layout.
func (b *Backend) SetViewport(width, height int) {
	b.width, b.height = width, height
}

// Viewport returns the size set by the last SetViewport.
func (b *Backend) Viewport() (width, height int) {
	return b.width, b.height
}

// Image returns the ebiten image behind h, for screenshots and debugging.
func (b *Backend) Image(h canopy.TextureHandle) (*ebiten.Image, bool) {
	if h == canopy.ScreenTarget {
		return b.screen, b.screen != nil
	}
	t, ok := b.textures[h]
	if !ok {
		return nil, false
	}
	return t.img, true
}

// Clear fills target with c.
func (b *Backend) Clear(target canopy.TextureHandle, c canopy.Color) {
	img, ok := b.Image(target)
	if !ok {
		return
	}
	if c.A == 0 {
		img.Clear()
		return
	}
	img.Fill(c.RGBA())
}

// DrawQuads draws quads sharing one texture, shader, and blend mode as a
// single triangle list.
func (b *Backend) DrawQuads(target canopy.TextureHandle, quads []canopy.Quad) {
	if len(quads) == 0 {
		return
	}
	dst, ok := b.Image(target)
	if !ok {
		return
	}
	src, ok := b.textures[quads[0].Texture]
	if !ok {
		return
	}

	b.verts = b.verts[:0]
	b.inds = b.inds[:0]
	for i := range quads {
		q := &quads[i]
		base := uint32(len(b.verts))
		for _, v := range q.V {
			b.verts = append(b.verts, ebiten.Vertex{
				DstX:   v.DstX,
				DstY:   v.DstY,
				SrcX:   v.SrcX,
				SrcY:   v.SrcY,
				ColorR: float32(q.Color.R),
				ColorG: float32(q.Color.G),
				ColorB: float32(q.Color.B),
				ColorA: float32(q.Color.A),
			})
		}
		// TL, TR, BL, BR
		b.inds = append(b.inds, base, base+1, base+2, base+1, base+3, base+2)
	}

	q := &quads[0]
	if sh, ok := b.shaders[q.Shader]; ok && q.Shader != 0 {
		b.shaderOp.Blend = EbitenBlend(q.Blend)
		b.shaderOp.Images[0] = src.img
		b.shaderOp.Uniforms = sh.uniforms
		dst.DrawTrianglesShader32(b.verts, b.inds, sh.shader, &b.shaderOp)
		b.shaderOp.Images[0] = nil
		return
	}
	b.triOp.Blend = EbitenBlend(q.Blend)
	b.triOp.Filter = ebitenFilter(q.Filter)
	b.triOp.ColorScaleMode = ebiten.ColorScaleModeStraightAlpha
	dst.DrawTriangles32(b.verts, b.inds, src.img, &b.triOp)
}

func ebitenFilter(f canopy.Filter) ebiten.Filter {
	if f == canopy.FilterLinear {
		return ebiten.FilterLinear
	}
	return ebiten.FilterNearest
}

var _ canopy.Backend = (*Backend)(nil)
