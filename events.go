package canopy

// EventType identifies a structural change on a stage.
type EventType uint8

const (
	EventChildAdded   EventType = iota // ChildID attached under ParentID
	EventChildRemoved                  // ChildID detached from ParentID
	EventStageResized                  // Width and Height hold the new viewport
)

func (t EventType) String() string {
	switch t {
	case EventChildAdded:
		return "child-added"
	case EventChildRemoved:
		return "child-removed"
	case EventStageResized:
		return "stage-resized"
	}
	return "unknown"
}

// SceneEvent is a queued structural notification.
type SceneEvent struct {
	Type     EventType
	ParentID uint32
	ChildID  uint32
	Name     string // child name at the time of the change
	Width    int
	Height   int
}

// EventSink receives scene events. Sinks observe; the tree is already in its
// new shape when they run and nothing waits on them.
type EventSink interface {
	EmitEvent(SceneEvent)
}

// EventFunc adapts a function to EventSink.
type EventFunc func(SceneEvent)

// EmitEvent calls f(ev).
func (f EventFunc) EmitEvent(ev SceneEvent) { f(ev) }

// eventQueue buffers events between dispatches. Structural changes only
// append; delivery happens in Stage.Update, never during traversal.
type eventQueue struct {
	pending []SceneEvent
	buf     []SceneEvent
	sinks   []EventSink
}

func (q *eventQueue) push(ev SceneEvent) {
	if len(q.sinks) == 0 {
		return
	}
	q.pending = append(q.pending, ev)
}

// dispatch delivers the current backlog. Events raised by sinks are queued
// for the next dispatch. A panicking sink is logged and skipped.
func (q *eventQueue) dispatch() int {
	if len(q.pending) == 0 {
		return 0
	}
	q.buf, q.pending = q.pending, q.buf[:0]
	for _, ev := range q.buf {
		for _, s := range q.sinks {
			deliver(s, ev)
		}
	}
	n := len(q.buf)
	clear(q.buf)
	q.buf = q.buf[:0]
	return n
}

func deliver(s EventSink, ev SceneEvent) {
	defer func() {
		if r := recover(); r != nil {
			Logger().Warn("canopy: event sink panicked", "event", ev.Type, "child", ev.ChildID, "panic", r)
		}
	}()
	s.EmitEvent(ev)
}
