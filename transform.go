package canopy

import "math"

// Transform is a resolved position, scale, rotation, alpha, and visibility.
// Rotation is in degrees. Unlike a full affine matrix, parent rotation does
// not move child positions: it only adds to the child's own rotation.
type Transform struct {
	X, Y           float64
	ScaleX, ScaleY float64
	Rotation       float64
	Alpha          float64
	Visible        bool
}

// IdentityTransform is the transform of the stage root and the cursor overlay.
var IdentityTransform = Transform{ScaleX: 1, ScaleY: 1, Alpha: 1, Visible: true}

// Compose returns the transform of a child whose local transform is local,
// placed under a parent resolved to t:
//
//	x        = local.X*t.ScaleX + t.X
//	scale    = local.Scale * t.Scale
//	alpha    = local.Alpha * t.Alpha
//	rotation = local.Rotation + t.Rotation
//	visible  = local.Visible && t.Visible
func (t Transform) Compose(local Transform) Transform {
	return Transform{
		X:        local.X*t.ScaleX + t.X,
		Y:        local.Y*t.ScaleY + t.Y,
		ScaleX:   local.ScaleX * t.ScaleX,
		ScaleY:   local.ScaleY * t.ScaleY,
		Rotation: local.Rotation + t.Rotation,
		Alpha:    local.Alpha * t.Alpha,
		Visible:  local.Visible && t.Visible,
	}
}

// Apply maps a point in the transformed node's local space to the space the
// transform resolves into. Scale is applied first, then rotation about the
// node origin, then translation.
func (t Transform) Apply(lx, ly float64) (float64, float64) {
	x, y := lx*t.ScaleX, ly*t.ScaleY
	if t.Rotation != 0 {
		sin, cos := math.Sincos(t.Rotation * math.Pi / 180)
		x, y = x*cos-y*sin, x*sin+y*cos
	}
	return x + t.X, y + t.Y
}

// Invert maps a resolved-space point back into local space. Returns
// ok=false when either scale is zero.
func (t Transform) Invert(x, y float64) (lx, ly float64, ok bool) {
	if t.ScaleX == 0 || t.ScaleY == 0 {
		return 0, 0, false
	}
	x -= t.X
	y -= t.Y
	if t.Rotation != 0 {
		sin, cos := math.Sincos(-t.Rotation * math.Pi / 180)
		x, y = x*cos-y*sin, x*sin+y*cos
	}
	return x / t.ScaleX, y / t.ScaleY, true
}

// Local returns the node's own transform fields as a Transform.
func (n *Node) Local() Transform {
	return Transform{
		X: n.X, Y: n.Y,
		ScaleX: n.ScaleX, ScaleY: n.ScaleY,
		Rotation: n.Rotation,
		Alpha:    n.Alpha,
		Visible:  n.Visible,
	}
}

// Absolute resolves the node's screen-space transform by walking its parent
// chain up to, but not including, the stage root. Each call recomputes the
// result; nothing is cached.
//
// A node whose chain does not reach a stage (detached, or under a detached
// group) returns its local values unmodified. A stage root returns identity.
func (n *Node) Absolute() Transform {
	if n.kind == KindStage {
		return IdentityTransform
	}
	t := n.Local()
	for p := n.Parent(); ; p = p.Parent() {
		if p == nil {
			return n.Local()
		}
		if p.kind == KindStage {
			return t
		}
		// Innermost to outermost: fold each ancestor over the running result.
		t = p.Local().Compose(t)
	}
}

// AbsoluteX returns the node's resolved screen X.
func (n *Node) AbsoluteX() float64 { return n.Absolute().X }

// AbsoluteY returns the node's resolved screen Y.
func (n *Node) AbsoluteY() float64 { return n.Absolute().Y }

// AbsoluteScaleX returns the product of ScaleX along the ancestor chain.
func (n *Node) AbsoluteScaleX() float64 { return n.Absolute().ScaleX }

// AbsoluteScaleY returns the product of ScaleY along the ancestor chain.
func (n *Node) AbsoluteScaleY() float64 { return n.Absolute().ScaleY }

// AbsoluteRotation returns the sum of rotations along the ancestor chain, in degrees.
func (n *Node) AbsoluteRotation() float64 { return n.Absolute().Rotation }

// AbsoluteAlpha returns the product of alphas along the ancestor chain.
func (n *Node) AbsoluteAlpha() float64 { return n.Absolute().Alpha }

// AbsoluteVisible reports whether the node and every ancestor are visible.
func (n *Node) AbsoluteVisible() bool { return n.Absolute().Visible }

// IsOnStage reports whether the node's ancestor chain reaches a stage root.
func (n *Node) IsOnStage() bool {
	return n.stageOf() != nil
}

// --- Transform property setters ---

// SetPosition sets the node's local X and Y.
func (n *Node) SetPosition(x, y float64) {
	n.X = x
	n.Y = y
}

// SetScale sets the node's ScaleX and ScaleY.
func (n *Node) SetScale(sx, sy float64) {
	n.ScaleX = sx
	n.ScaleY = sy
}

// SetRotation sets the node's rotation in degrees.
func (n *Node) SetRotation(deg float64) {
	n.Rotation = deg
}

// SetAlpha sets the node's alpha, clamped to [0, 1].
func (n *Node) SetAlpha(a float64) {
	n.Alpha = clamp01(a)
}

// --- Coordinate conversion ---

// LocalToScreen converts a point in this node's local space to screen space.
func (n *Node) LocalToScreen(lx, ly float64) (x, y float64) {
	return n.Absolute().Apply(lx, ly)
}

// ScreenToLocal converts a screen-space point to this node's local space.
// Returns ok=false if the node is collapsed to zero scale.
func (n *Node) ScreenToLocal(x, y float64) (lx, ly float64, ok bool) {
	return n.Absolute().Invert(x, y)
}
