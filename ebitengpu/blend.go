package ebitengpu

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/canopy"
)

// EbitenBlend returns the ebiten.Blend for a canopy blend mode.
func EbitenBlend(b canopy.BlendMode) ebiten.Blend {
	switch b {
	case canopy.BlendNormal:
		return ebiten.BlendSourceOver
	case canopy.BlendAdd:
		return ebiten.BlendLighter
	case canopy.BlendMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case canopy.BlendScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case canopy.BlendErase:
		return ebiten.BlendDestinationOut
	case canopy.BlendNone:
		return ebiten.BlendCopy
	default:
		return ebiten.BlendSourceOver
	}
}
