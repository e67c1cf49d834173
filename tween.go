package canopy

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to four node properties together. Build one with
// TweenPosition, TweenScale, TweenAlpha, TweenRotation or TweenTint, then
// either call Update(dt) each frame or hand it to Stage.AddTween.
//
// A group whose node is disposed stops without writing.
type TweenGroup struct {
	tweens [4]*gween.Tween
	set    [4]func(float64)
	count  int
	target *Node
	Done   bool

	// OnComplete runs once, after the update that finishes the group.
	OnComplete func()
}

func newTweenGroup(node *Node) *TweenGroup {
	return &TweenGroup{target: node}
}

func (g *TweenGroup) add(from, to float64, duration float32, fn ease.TweenFunc, set func(float64)) {
	g.tweens[g.count] = gween.New(float32(from), float32(to), duration, fn)
	g.set[g.count] = set
	g.count++
}

// Update advances every tween by dt seconds and writes the eased values.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target != nil && g.target.IsDisposed() {
		g.Done = true
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		v, finished := g.tweens[i].Update(dt)
		g.set[i](float64(v))
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	if g.Done && g.OnComplete != nil {
		g.OnComplete()
	}
}

// TweenPosition animates X and Y to (toX, toY).
func TweenPosition(node *Node, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(node)
	g.add(node.X, toX, duration, fn, func(v float64) { node.X = v })
	g.add(node.Y, toY, duration, fn, func(v float64) { node.Y = v })
	return g
}

// TweenScale animates ScaleX and ScaleY to (toSX, toSY).
func TweenScale(node *Node, toSX, toSY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(node)
	g.add(node.ScaleX, toSX, duration, fn, func(v float64) { node.ScaleX = v })
	g.add(node.ScaleY, toSY, duration, fn, func(v float64) { node.ScaleY = v })
	return g
}

// TweenAlpha animates Alpha to a, clamped to [0, 1] on every write.
func TweenAlpha(node *Node, a float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(node)
	g.add(node.Alpha, a, duration, fn, node.SetAlpha)
	return g
}

// TweenRotation animates Rotation to deg degrees.
func TweenRotation(node *Node, deg float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(node)
	g.add(node.Rotation, deg, duration, fn, node.SetRotation)
	return g
}

// TweenTint animates all four components of the node's tint Color.
func TweenTint(node *Node, to Color, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := newTweenGroup(node)
	g.add(node.Color.R, to.R, duration, fn, func(v float64) { node.Color.R = v })
	g.add(node.Color.G, to.G, duration, fn, func(v float64) { node.Color.G = v })
	g.add(node.Color.B, to.B, duration, fn, func(v float64) { node.Color.B = v })
	g.add(node.Color.A, to.A, duration, fn, func(v float64) { node.Color.A = v })
	return g
}
