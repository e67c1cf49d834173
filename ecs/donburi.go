package ecs

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"

	"github.com/phanxgames/canopy"
)

// SceneEventType is the Donburi event type for canopy structural events.
// Subscribe to this in your ECS systems to react to nodes being attached,
// detached, or the stage being resized.
var SceneEventType = events.NewEventType[canopy.SceneEvent]()

// NodeData links an entity to a scene node.
type NodeData struct {
	Node *canopy.Node
}

// NodeComponent is the component carrying NodeData.
var NodeComponent = donburi.NewComponentType[NodeData]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Scene events
// are published to SceneEventType and can be consumed with events.Subscribe
// and ProcessEvents.
func NewDonburiSink(world donburi.World) canopy.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event canopy.SceneEvent) {
	SceneEventType.Publish(s.world, event)
}

// Track creates an entity holding a NodeComponent for n.
func Track(world donburi.World, n *canopy.Node) donburi.Entity {
	e := world.Create(NodeComponent)
	NodeComponent.Get(world.Entry(e)).Node = n
	return e
}

var nodeQuery = donburi.NewQuery(filter.Contains(NodeComponent))

// EntityOf returns the entity tracking the node with the given ID.
func EntityOf(world donburi.World, id uint32) (donburi.Entity, bool) {
	var found donburi.Entity
	ok := false
	nodeQuery.Each(world, func(entry *donburi.Entry) {
		if ok {
			return
		}
		if n := NodeComponent.Get(entry).Node; n != nil && n.ID == id {
			found, ok = entry.Entity(), true
		}
	})
	return found, ok
}

// PruneDisposed removes entities whose node has been disposed. Subscribe it
// to SceneEventType so detaching a disposed subtree cleans up its entities:
//
//	ecs.SceneEventType.Subscribe(world, ecs.PruneDisposed)
func PruneDisposed(world donburi.World, event canopy.SceneEvent) {
	if event.Type != canopy.EventChildRemoved {
		return
	}
	var dead []donburi.Entity
	nodeQuery.Each(world, func(entry *donburi.Entry) {
		if n := NodeComponent.Get(entry).Node; n == nil || n.IsDisposed() {
			dead = append(dead, entry.Entity())
		}
	})
	for _, e := range dead {
		world.Remove(e)
	}
}
