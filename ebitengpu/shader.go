package ebitengpu

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/canopy"
)

type shaderEntry struct {
	shader   *ebiten.Shader
	uniforms map[string]any
}

// FlashShaderSrc mixes every drawn pixel toward a flat color by Amount while
// keeping its alpha. Useful for hit flashes.
const FlashShaderSrc = `//kage:unit pixels
package main

var FlashColor vec3
var Amount float

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	c := imageSrc0At(srcPos) * color
	return vec4(mix(c.rgb, FlashColor*c.a, Amount), c.a)
}
`

// RegisterShader compiles Kage source and returns the ID nodes use to select
// it. Quads with an unregistered ShaderID draw with the default program.
func (b *Backend) RegisterShader(src []byte) (canopy.ShaderID, error) {
	s, err := ebiten.NewShader(src)
	if err != nil {
		return 0, fmt.Errorf("ebitengpu: compile shader: %w", err)
	}
	b.nextSh++
	b.shaders[b.nextSh] = &shaderEntry{shader: s, uniforms: make(map[string]any)}
	return b.nextSh, nil
}

// SetUniform sets a uniform for every draw with shader id.
func (b *Backend) SetUniform(id canopy.ShaderID, name string, value any) {
	if sh, ok := b.shaders[id]; ok {
		sh.uniforms[name] = value
	}
}

// UnregisterShader releases the shader. Nodes still naming it fall back to
// the default program.
func (b *Backend) UnregisterShader(id canopy.ShaderID) {
	if sh, ok := b.shaders[id]; ok {
		sh.shader.Deallocate()
		delete(b.shaders, id)
	}
}
