package ebitengpu

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"

	"github.com/phanxgames/canopy"
)

func TestPremultiplyOpaqueReturnsInput(t *testing.T) {
	px := []byte{10, 20, 30, 0xff, 40, 50, 60, 0xff}
	out := premultiply(px)
	assert.Equal(t, px, out)
	assert.Same(t, &px[0], &out[0], "opaque pixels are not copied")
}

func TestPremultiplyTranslucent(t *testing.T) {
	px := []byte{200, 100, 50, 0xff, 0xff, 0xff, 0xff, 0x80, 0xff, 0, 0, 0}
	out := premultiply(px)
	assert.Equal(t, []byte{200, 100, 50, 0xff, 0x80, 0x80, 0x80, 0x80, 0, 0, 0, 0}, out)
	assert.Equal(t, byte(0xff), px[4], "input untouched")
}

func TestEbitenBlend(t *testing.T) {
	assert.Equal(t, ebiten.BlendSourceOver, EbitenBlend(canopy.BlendNormal))
	assert.Equal(t, ebiten.BlendLighter, EbitenBlend(canopy.BlendAdd))
	assert.Equal(t, ebiten.BlendDestinationOut, EbitenBlend(canopy.BlendErase))
	assert.Equal(t, ebiten.BlendCopy, EbitenBlend(canopy.BlendNone))
	assert.Equal(t, ebiten.BlendFactorDestinationColor, EbitenBlend(canopy.BlendMultiply).BlendFactorSourceRGB)
	assert.Equal(t, ebiten.BlendFactorOneMinusSourceColor, EbitenBlend(canopy.BlendScreen).BlendFactorDestinationRGB)
	assert.Equal(t, ebiten.BlendSourceOver, EbitenBlend(canopy.BlendMode(99)))
}

func TestEbitenFilter(t *testing.T) {
	assert.Equal(t, ebiten.FilterLinear, ebitenFilter(canopy.FilterLinear))
	assert.Equal(t, ebiten.FilterNearest, ebitenFilter(canopy.FilterNearest))
}
