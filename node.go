package canopy

import (
	"errors"
	"fmt"
	"sync/atomic"
	"weak"
)

// Structural lookup errors returned by ChildByName.
var (
	ErrChildNotFound = errors.New("canopy: child not found")
	ErrDuplicateName = errors.New("canopy: duplicate child name")
)

// nodeIDCounter is atomic so loader goroutines can build nodes before
// handing them to the render goroutine.
var nodeIDCounter atomic.Uint32

func nextNodeID() uint32 {
	return nodeIDCounter.Add(1)
}

// Node is the fundamental scene graph element. A single flat struct is used for
// all node kinds; Kind selects which of the payload fields are meaningful.
type Node struct {
	// Identity
	ID   uint32
	Name string
	kind NodeKind

	// Hierarchy. The parent link is weak: a group owns its children, a child
	// never keeps its group alive.
	parent   weak.Pointer[Node]
	children []*Node
	stage    *Stage // non-nil only on a stage root

	// Transform (local). Rotation is in degrees, clockwise.
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
	Alpha    float64
	Visible  bool

	// Rendering
	Shader    ShaderID // 0 inherits the nearest ancestor's shader
	BlendMode BlendMode
	Color     Color // tint, multiplied into every quad the node emits

	// zOrder is written by the traversal only.
	zOrder int

	// Metadata
	UserData any

	// Sprite fields (KindSprite, KindAnimated)
	Region    TextureRegion
	RepeatX   float64
	RepeatY   float64
	TexBleed  float64 // texel inset applied to the sampled rectangle
	VertBleed float64 // pixel outset applied to the drawn quad

	// Animation fields (KindAnimated)
	Animation *Animation

	// Text fields (KindText)
	Text *BitmapText

	disposed bool
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.ScaleX = 1
	n.ScaleY = 1
	n.Alpha = 1
	n.Color = ColorWhite
	n.Visible = true
	n.RepeatX = 1
	n.RepeatY = 1
	n.TexBleed = DefaultTexBleed
	n.VertBleed = DefaultVertBleed
}

// NewGroup creates a group node with no visual representation.
func NewGroup(name string) *Node {
	n := &Node{Name: name, kind: KindGroup}
	nodeDefaults(n)
	return n
}

// NewSprite creates a sprite node that renders a texture region.
func NewSprite(name string, region TextureRegion) *Node {
	n := &Node{Name: name, kind: KindSprite, Region: region}
	nodeDefaults(n)
	return n
}

// NewAnimatedSprite creates a sprite node that plays a frame sequence.
// The first frame is shown until the animation is advanced.
func NewAnimatedSprite(name string, anim *Animation) *Node {
	n := &Node{Name: name, kind: KindAnimated, Animation: anim}
	nodeDefaults(n)
	if anim != nil {
		n.Region = anim.Frame()
	}
	return n
}

// NewText creates a text node with the given content and font. Bleed defaults
// come from the font.
func NewText(name string, content string, font *BitmapFont) *Node {
	n := &Node{Name: name, kind: KindText}
	nodeDefaults(n)
	n.Text = newBitmapText(content, font)
	if font != nil {
		n.TexBleed = font.TexBleed()
		n.VertBleed = font.VertBleed()
	}
	return n
}

// Kind returns the node variant.
func (n *Node) Kind() NodeKind {
	return n.kind
}

// Parent returns the owning group, or nil when detached.
func (n *Node) Parent() *Node {
	return n.parent.Value()
}

// ZOrder returns the draw-order rank assigned during the most recent frame.
// Zero means the node was not visited (invisible, detached, or never drawn).
func (n *Node) ZOrder() int {
	return n.zOrder
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if n cannot hold children, child is nil, child is a stage root,
// or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	n.checkAttach(child, "AddChild")
	n.detach(child)
	n.attach(child, len(n.children))
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild. The index is
// interpreted after child has been detached from any previous owner.
func (n *Node) AddChildAt(child *Node, index int) {
	n.checkAttach(child, "AddChildAt")
	n.detach(child)
	if index < 0 || index > len(n.children) {
		panic(fmt.Sprintf("canopy: child index %d out of range [0, %d]", index, len(n.children)))
	}
	n.attach(child, index)
}

func (n *Node) checkAttach(child *Node, op string) {
	if child == nil {
		panic("canopy: cannot add nil child")
	}
	if !n.kind.isContainer() {
		panic(fmt.Sprintf("canopy: %s on %s node %q, only groups hold children", op, n.kind, n.Name))
	}
	if child.kind == KindStage {
		panic("canopy: a stage root cannot be a child")
	}
	if globalDebug {
		debugCheckDisposed(n, op+" (parent)")
		debugCheckDisposed(child, op+" (child)")
	}
	if isAncestor(child, n) {
		panic("canopy: adding child would create a cycle")
	}
}

// detach removes child from its current owner, if any, and clears the back
// reference. Emits EventChildRemoved on the old owner's stage.
func (n *Node) detach(child *Node) {
	old := child.Parent()
	if old == nil {
		return
	}
	old.removeChildByPtr(child)
	child.parent = weak.Pointer[Node]{}
	old.emit(EventChildRemoved, child)
}

func (n *Node) attach(child *Node, index int) {
	child.parent = weak.Make(n)
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
	n.emit(EventChildAdded, child)
}

// RemoveChild detaches child from this node.
// Panics if child's parent is not n.
func (n *Node) RemoveChild(child *Node) {
	if child == nil || child.Parent() != n {
		panic("canopy: child's parent is not this node")
	}
	n.detach(child)
}

// RemoveChildAt removes and returns the child at the given index.
func (n *Node) RemoveChildAt(index int) *Node {
	n.checkIndex(index)
	child := n.children[index]
	n.detach(child)
	return child
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if p := n.Parent(); p != nil {
		p.detach(n)
	}
}

// RemoveChildren detaches all children from this node.
// Children are NOT disposed.
func (n *Node) RemoveChildren() {
	for len(n.children) > 0 {
		n.detach(n.children[len(n.children)-1])
	}
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	n.checkIndex(index)
	return n.children[index]
}

// ChildByName returns the only direct child with the given name.
// Fails with ErrChildNotFound or ErrDuplicateName.
func (n *Node) ChildByName(name string) (*Node, error) {
	var found *Node
	for _, c := range n.children {
		if c.Name != name {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: %q under %q", ErrDuplicateName, name, n.Name)
		}
		found = c
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %q under %q", ErrChildNotFound, name, n.Name)
	}
	return found, nil
}

// SetChildIndex moves child to a new index among its siblings.
func (n *Node) SetChildIndex(child *Node, index int) {
	if child.Parent() != n {
		panic("canopy: child's parent is not this node")
	}
	n.checkIndex(index)
	oldIndex := n.indexOf(child)
	if oldIndex == index {
		return
	}
	// Shift elements to fill the gap and open the target slot.
	if oldIndex < index {
		copy(n.children[oldIndex:], n.children[oldIndex+1:index+1])
	} else {
		copy(n.children[index+1:], n.children[index:oldIndex])
	}
	n.children[index] = child
}

func (n *Node) checkIndex(index int) {
	if index < 0 || index >= len(n.children) {
		panic(fmt.Sprintf("canopy: child index %d out of range [0, %d)", index, len(n.children)))
	}
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// --- Bounds ---

// Width returns the node's unscaled local width. For groups this is the width
// of the bounding box of all children's local rectangles.
func (n *Node) Width() float64 {
	return n.ContentBounds().Width
}

// Height returns the node's unscaled local height.
func (n *Node) Height() float64 {
	return n.ContentBounds().Height
}

// ContentBounds returns the node's extent in its own coordinate space,
// before its own position and scale are applied.
func (n *Node) ContentBounds() Rect {
	switch n.kind {
	case KindGroup, KindStage:
		var r Rect
		for _, c := range n.children {
			r = r.Union(c.LocalBounds())
		}
		return r
	case KindSprite, KindAnimated:
		return Rect{
			Width:  float64(n.Region.Width) * max(n.RepeatX, 0),
			Height: float64(n.Region.Height) * max(n.RepeatY, 0),
		}
	case KindText:
		if n.Text == nil {
			return Rect{}
		}
		w, h := n.Text.Size()
		return Rect{Width: w, Height: h}
	}
	return Rect{}
}

// LocalBounds returns the node's rectangle in its parent's coordinate space.
// Rotation is not applied.
func (n *Node) LocalBounds() Rect {
	cb := n.ContentBounds()
	r := Rect{
		X:      n.X + cb.X*n.ScaleX,
		Y:      n.Y + cb.Y*n.ScaleY,
		Width:  cb.Width * n.ScaleX,
		Height: cb.Height * n.ScaleY,
	}
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed,
// and recursively disposes all descendants. A cached text texture is queued
// for eviction on the engine that rendered it.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.parent = weak.Pointer[Node]{}
		child.dispose()
	}
	n.children = nil
	if n.Text != nil {
		n.Text.releaseCache()
		n.Text = nil
	}
	n.Animation = nil
	n.UserData = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is node or one of its ancestors.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent() {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing its parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	if i := n.indexOf(child); i >= 0 {
		copy(n.children[i:], n.children[i+1:])
		n.children[len(n.children)-1] = nil
		n.children = n.children[:len(n.children)-1]
	}
}

// stageOf returns the stage this node is attached to, or nil when the
// ancestor chain does not end at a stage root.
func (n *Node) stageOf() *Stage {
	p := n
	for {
		if p.kind == KindStage {
			return p.stage
		}
		next := p.Parent()
		if next == nil {
			return nil
		}
		p = next
	}
}

// emit queues a structural event on the owning stage, if any.
func (n *Node) emit(typ EventType, child *Node) {
	if s := n.stageOf(); s != nil {
		s.events.push(SceneEvent{Type: typ, ParentID: n.ID, ChildID: child.ID, Name: child.Name})
	}
}
