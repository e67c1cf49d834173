package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/phanxgames/canopy"
)

func TestNewDonburiSink(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)
	require.NotNil(t, sink)
}

func TestDonburiSink_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var received []canopy.SceneEvent
	SceneEventType.Subscribe(world, func(w donburi.World, e canopy.SceneEvent) {
		received = append(received, e)
	})

	sink.EmitEvent(canopy.SceneEvent{Type: canopy.EventChildAdded, ParentID: 1, ChildID: 42, Name: "hero"})
	sink.EmitEvent(canopy.SceneEvent{Type: canopy.EventStageResized, Width: 800, Height: 600})

	// Events are queued; process them.
	SceneEventType.ProcessEvents(world)

	require.Len(t, received, 2)
	assert.Equal(t, canopy.EventChildAdded, received[0].Type)
	assert.Equal(t, uint32(42), received[0].ChildID)
	assert.Equal(t, "hero", received[0].Name)
	assert.Equal(t, canopy.EventStageResized, received[1].Type)
	assert.Equal(t, 800, received[1].Width)
}

func TestDonburiSink_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	sink := NewDonburiSink(world)

	var count1, count2 int
	SceneEventType.Subscribe(world, func(w donburi.World, e canopy.SceneEvent) { count1++ })
	SceneEventType.Subscribe(world, func(w donburi.World, e canopy.SceneEvent) { count2++ })

	sink.EmitEvent(canopy.SceneEvent{Type: canopy.EventChildRemoved})
	events.ProcessAllEvents(world)

	assert.Equal(t, 1, count1)
	assert.Equal(t, 1, count2)
}

func TestTrackAndEntityOf(t *testing.T) {
	world := donburi.NewWorld()
	a := canopy.NewGroup("a")
	b := canopy.NewGroup("b")
	ea := Track(world, a)
	eb := Track(world, b)

	got, ok := EntityOf(world, b.ID)
	require.True(t, ok)
	assert.Equal(t, eb, got)

	got, ok = EntityOf(world, a.ID)
	require.True(t, ok)
	assert.Equal(t, ea, got)

	_, ok = EntityOf(world, 0xffffffff)
	assert.False(t, ok)
}

func TestPruneDisposed(t *testing.T) {
	world := donburi.NewWorld()
	keep := canopy.NewGroup("keep")
	drop := canopy.NewGroup("drop")
	ek := Track(world, keep)
	ed := Track(world, drop)

	drop.Dispose()
	PruneDisposed(world, canopy.SceneEvent{Type: canopy.EventChildRemoved})

	assert.True(t, world.Valid(ek))
	assert.False(t, world.Valid(ed))
}

func TestStageEventsReachWorld(t *testing.T) {
	world := donburi.NewWorld()
	stage := canopy.NewStage(nopBackend{}, canopy.DefaultConfig())
	stage.Subscribe(NewDonburiSink(world))

	var added int
	SceneEventType.Subscribe(world, func(w donburi.World, e canopy.SceneEvent) {
		if e.Type == canopy.EventChildAdded {
			added++
		}
	})

	stage.Root().AddChild(canopy.NewGroup("layer"))
	assert.Equal(t, 0, added, "nothing delivered before Update")

	stage.Update(0)
	SceneEventType.ProcessEvents(world)
	assert.Equal(t, 1, added)
}

type nopBackend struct{}

func (nopBackend) CreateTexture([]byte, int, int, canopy.TextureOptions) (canopy.TextureHandle, error) {
	return 1, nil
}

func (nopBackend) CreateRenderTarget(int, int) (canopy.TextureHandle, error) {
	return 1, nil
}

func (nopBackend) GenerateMipmaps(canopy.TextureHandle) {}

func (nopBackend) BindTexture(canopy.TextureHandle) bool { return true }

func (nopBackend) DeleteTexture(canopy.TextureHandle) {}

func (nopBackend) SetViewport(int, int) {}

func (nopBackend) Clear(canopy.TextureHandle, canopy.Color) {}

func (nopBackend) DrawQuads(canopy.TextureHandle, []canopy.Quad) {}
