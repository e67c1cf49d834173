package canopy

import (
	"fmt"
	"time"
)

// FramePhase is the step of Stage.Draw currently running.
type FramePhase uint8

const (
	PhaseIdle FramePhase = iota
	PhaseFlushUploads
	PhaseClear
	PhaseTraverse
	PhaseCursor
	PhaseSubmit
	PhaseFlushEvictions
)

func (p FramePhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFlushUploads:
		return "flush-uploads"
	case PhaseClear:
		return "clear"
	case PhaseTraverse:
		return "traverse"
	case PhaseCursor:
		return "cursor"
	case PhaseSubmit:
		return "submit"
	case PhaseFlushEvictions:
		return "flush-evictions"
	}
	return fmt.Sprintf("FramePhase(%d)", uint8(p))
}

const defaultQuadCap = 1024

// Stage is the root of a scene: it owns the node tree, the texture engine,
// the viewport, and the per-frame render state. All methods must be called
// from the goroutine that owns the backend.
type Stage struct {
	// Background is the color the frame is cleared to.
	Background Color
	// PixelAlign rounds every drawn node's screen position to whole pixels.
	PixelAlign bool

	root    *Node
	cursor  *Node
	backend Backend
	engine  *TextureEngine

	width, height int

	events eventQueue
	tweens []*TweenGroup

	ctx   frameContext
	phase FramePhase
	frame uint64
	stats FrameStats
	debug bool
}

// NewStage creates a stage drawing through backend. An invalid cfg falls back
// to DefaultConfig values for the fields it cannot use.
func NewStage(backend Backend, cfg Config) *Stage {
	if backend == nil {
		panic("canopy: NewStage requires a backend")
	}
	def := DefaultConfig()
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	bg, err := cfg.BackgroundColor()
	if err != nil {
		Logger().Warn("canopy: bad background color, using black", "err", err)
		bg = ColorBlack
	}

	root := &Node{Name: "stage", kind: KindStage}
	nodeDefaults(root)

	s := &Stage{
		Background: bg,
		PixelAlign: cfg.PixelAlign,
		root:       root,
		backend:    backend,
		engine:     NewTextureEngine(backend),
		width:      cfg.Width,
		height:     cfg.Height,
	}
	s.ctx.quads = make([]Quad, 0, defaultQuadCap)
	s.engine.SetTextureOptions(cfg.TextureOptions())
	root.stage = s
	if cfg.Debug {
		s.SetDebugMode(true)
	}
	return s
}

// Root returns the stage root. Add scene content as its children.
func (s *Stage) Root() *Node { return s.root }

// Engine returns the texture engine owning the stage's atlases.
func (s *Stage) Engine() *TextureEngine { return s.engine }

// Size returns the viewport size.
func (s *Stage) Size() (width, height int) { return s.width, s.height }

// Resize changes the viewport and queues an EventStageResized.
func (s *Stage) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("canopy: invalid stage size %dx%d", width, height))
	}
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	s.events.push(SceneEvent{Type: EventStageResized, ParentID: s.root.ID, Width: width, Height: height})
}

// SetCursor sets the overlay node drawn after the stage tree with the
// identity transform. The cursor should not also be attached to the tree.
// Pass nil to remove it.
func (s *Stage) SetCursor(n *Node) {
	if n != nil && n.kind == KindStage {
		panic("canopy: a stage root cannot be a cursor")
	}
	s.cursor = n
}

// Cursor returns the overlay node, or nil.
func (s *Stage) Cursor() *Node { return s.cursor }

// Subscribe registers a sink for structural events. Events raised by tree
// changes are delivered from Update, never during Draw.
func (s *Stage) Subscribe(sink EventSink) {
	if sink == nil {
		return
	}
	s.events.sinks = append(s.events.sinks, sink)
}

// DispatchEvents delivers queued events now. Returns the number delivered.
func (s *Stage) DispatchEvents() int {
	return s.events.dispatch()
}

// AddTween runs g from Update until it is done.
func (s *Stage) AddTween(g *TweenGroup) {
	if g != nil && !g.Done {
		s.tweens = append(s.tweens, g)
	}
}

// Update advances tweens and animated sprites by dt seconds, then delivers
// queued events.
func (s *Stage) Update(dt float64) {
	live := s.tweens[:0]
	for _, g := range s.tweens {
		g.Update(float32(dt))
		if !g.Done {
			live = append(live, g)
		}
	}
	clear(s.tweens[len(live):])
	s.tweens = live

	advanceAnimations(s.root, dt)
	if s.cursor != nil {
		advanceAnimations(s.cursor, dt)
	}
	s.events.dispatch()
}

func advanceAnimations(n *Node, dt float64) {
	if n.kind == KindAnimated && n.Animation != nil {
		n.Animation.Update(dt)
		n.Region = n.Animation.Frame()
	}
	for _, c := range n.children {
		advanceAnimations(c, dt)
	}
}

// Draw renders one frame:
//
//	FlushUploads -> Clear -> Traverse -> Cursor -> Submit -> FlushEvictions
//
// A panic while drawing is recovered and logged; the quads gathered before
// it are still submitted and evictions still run.
func (s *Stage) Draw() {
	s.frame++
	st := FrameStats{Frame: s.frame}

	s.phase = PhaseFlushUploads
	st.Uploads = s.engine.FlushUploads()

	s.phase = PhaseClear
	s.backend.SetViewport(s.width, s.height)
	s.backend.Clear(ScreenTarget, s.Background)

	s.phase = PhaseTraverse
	s.ctx.reset(s.PixelAlign, s.engine.opts.Filter)
	t0 := time.Now()
	st.Recovered += s.guard(s.traverseStage)

	if s.cursor != nil {
		s.phase = PhaseCursor
		st.Recovered += s.guard(func() {
			s.traverse(s.cursor, IdentityTransform, 0)
		})
	}
	st.TraverseTime = time.Since(t0)
	st.Nodes = s.ctx.counter
	st.Quads = len(s.ctx.quads)
	st.Skipped = s.ctx.skipped

	s.phase = PhaseSubmit
	t0 = time.Now()
	st.Recovered += s.guard(func() {
		st.Batches = s.submitBatches(ScreenTarget, s.ctx.quads)
	})
	st.SubmitTime = time.Since(t0)

	s.phase = PhaseFlushEvictions
	st.Evictions = s.engine.FlushEvictions()

	s.phase = PhaseIdle
	s.stats = st
	s.debugLog(st)
}

// guard runs fn, converting a panic into a warning. Returns 1 if it
// recovered, 0 otherwise.
func (s *Stage) guard(fn func()) (recovered int) {
	defer func() {
		if r := recover(); r != nil {
			name := ""
			if s.ctx.current != nil {
				name = s.ctx.current.Name
			}
			Logger().Warn("canopy: recovered panic while drawing",
				"frame", s.frame, "phase", s.phase, "node", name, "panic", r)
			recovered = 1
		}
	}()
	fn()
	return 0
}

// Phase returns the step of Draw currently running.
func (s *Stage) Phase() FramePhase { return s.phase }

// Frame returns the number of frames drawn.
func (s *Stage) Frame() uint64 { return s.frame }

// Stats returns the counters of the most recent frame.
func (s *Stage) Stats() FrameStats { return s.stats }

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, and
// per-frame stats are logged at debug level.
func (s *Stage) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// NodeAt returns the node that received z-order z in the last frame.
func (s *Stage) NodeAt(z int) *Node {
	if z <= 0 || z > len(s.ctx.drawn) {
		return nil
	}
	return s.ctx.drawn[z-1]
}

// Pick returns the topmost sprite or text node of the last frame whose drawn
// rectangle contains the screen point (x, y). The cursor overlay is never
// picked. Returns nil when nothing is hit.
func (s *Stage) Pick(x, y float64) *Node {
	for i := len(s.ctx.drawn) - 1; i >= 0; i-- {
		n := s.ctx.drawn[i]
		if n == s.cursor || n.disposed {
			continue
		}
		switch n.kind {
		case KindSprite, KindAnimated, KindText:
		default:
			continue
		}
		lx, ly, ok := s.ctx.resolved[i].Invert(x, y)
		if !ok {
			continue
		}
		if n.ContentBounds().Contains(lx, ly) {
			return n
		}
	}
	return nil
}

// RetargetAtlas points every sprite and animation frame in the tree that
// references old at atlas instead, as after a hot reload. Fonts are immutable
// and are not touched; rebuild text nodes with BitmapFont.WithAtlas. Returns
// the number of nodes changed.
func (s *Stage) RetargetAtlas(old, atlas AtlasID) int {
	n := retarget(s.root, old, atlas)
	if s.cursor != nil {
		n += retarget(s.cursor, old, atlas)
	}
	return n
}

func retarget(n *Node, old, atlas AtlasID) int {
	count := 0
	changed := false
	if n.Region.Atlas == old && !n.Region.IsZero() {
		n.Region.Atlas = atlas
		changed = true
	}
	if n.Animation != nil && n.Animation.retarget(old, atlas) {
		changed = true
	}
	if changed {
		count++
	}
	for _, c := range n.children {
		count += retarget(c, old, atlas)
	}
	return count
}
