package canopy

// TextureHandle identifies a GPU-resident texture. Zero is never a valid
// handle; ScreenTarget (also zero) names the default framebuffer when used as
// a draw target.
type TextureHandle uint32

// ScreenTarget is the draw target for the visible frame.
const ScreenTarget TextureHandle = 0

// Filter selects texture sampling.
type Filter uint8

const (
	FilterNearest Filter = iota // default; keeps pixel art crisp
	FilterLinear
)

// TextureOptions controls texture creation on the backend.
type TextureOptions struct {
	Filter  Filter
	Mipmaps bool
}

// Vertex is one corner of a quad in target pixel space, with its source
// coordinate in texel space.
type Vertex struct {
	DstX, DstY float32
	SrcX, SrcY float32
}

// Quad is a single textured, tinted quadrilateral. Corners are ordered
// top-left, top-right, bottom-left, bottom-right in source space.
type Quad struct {
	Texture TextureHandle
	Shader  ShaderID
	Blend   BlendMode
	Filter  Filter
	V       [4]Vertex
	Color   Color // straight alpha; backends premultiply
	ZOrder  int
}

// Backend is the GPU collaborator. Every method is called on the goroutine
// that owns the GPU context, in frame order.
type Backend interface {
	// CreateTexture uploads RGBA8 pixels and returns a non-zero handle.
	CreateTexture(pixels []byte, width, height int, opts TextureOptions) (TextureHandle, error)
	// GenerateMipmaps builds the mip chain of an uploaded texture.
	GenerateMipmaps(h TextureHandle)
	// BindTexture reports whether h is resident and selects it for drawing.
	BindTexture(h TextureHandle) bool
	// DeleteTexture releases a texture. Unknown handles are ignored.
	DeleteTexture(h TextureHandle)
	// CreateRenderTarget allocates an empty texture that can be drawn into.
	CreateRenderTarget(width, height int) (TextureHandle, error)
	// SetViewport configures the projection for a target of the given size.
	SetViewport(width, height int)
	// Clear fills target with c.
	Clear(target TextureHandle, c Color)
	// DrawQuads submits quads that share a texture, shader, and blend mode.
	DrawQuads(target TextureHandle, quads []Quad)
}
