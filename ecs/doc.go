// Package ecs provides ECS adapters for canopy's scene event system.
//
// The primary adapter is [NewDonburiSink], which bridges canopy structural
// events (child added, child removed, stage resized) into a [Donburi] world
// as typed events. Subscribe to [SceneEventType] in your ECS systems to
// receive them.
//
// Usage:
//
//	stage.Subscribe(ecs.NewDonburiSink(world))
//	ecs.SceneEventType.Subscribe(world, ecs.PruneDisposed)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
