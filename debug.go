package canopy

import (
	"fmt"
	"time"
)

// FrameStats holds the counters of the most recent Stage.Draw.
type FrameStats struct {
	Frame     uint64
	Nodes     int // nodes that received a z-order index
	Quads     int
	Batches   int
	Uploads   int // textures created by FlushUploads
	Evictions int // textures deleted by FlushEvictions
	Skipped   int // draws skipped because an atlas was not bindable
	Recovered int // panics recovered while drawing

	TraverseTime time.Duration
	SubmitTime   time.Duration
}

// debugLog writes the frame counters at debug level.
func (s *Stage) debugLog(st FrameStats) {
	if !s.debug {
		return
	}
	Logger().Debug("canopy: frame",
		"frame", st.Frame,
		"nodes", st.Nodes,
		"quads", st.Quads,
		"batches", st.Batches,
		"uploads", st.Uploads,
		"evictions", st.Evictions,
		"skipped", st.Skipped,
		"traverse", st.TraverseTime,
		"submit", st.SubmitTime,
	)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("canopy debug: %s on disposed node %q", op, n.Name))
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent() {
		depth++
	}
	if depth > debugMaxTreeDepth {
		Logger().Warn("canopy: tree depth exceeds threshold", "node", n.Name, "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

// debugCheckChildCount warns if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		Logger().Warn("canopy: child count exceeds threshold", "node", n.Name, "children", len(n.children), "threshold", debugMaxChildCount)
	}
}

// globalDebug mirrors the most recently set Stage debug flag so that node
// operations (which lack a Stage pointer) can check it cheaply.
var globalDebug bool
