// Package ecs provides ECS adapters for animix.
//
// [MixerComponent] attaches an animix mixer to a [Donburi] entity and
// [AdvanceMixers] is the system that ticks every such mixer. [NewDonburiSink]
// bridges mixer events (loop, finished, binding errors) into the world as
// typed events; subscribe to [MixerEventType] in your systems to receive them.
//
// Usage:
//
//	entry := world.Entry(world.Create(ecs.MixerComponent))
//	ecs.MixerComponent.SetValue(entry, ecs.MixerData{Mixer: mixer})
//	mixer.SetEventSink(ecs.NewDonburiSink(world))
//
//	// every frame
//	ecs.AdvanceMixers(world, dt)
//	ecs.MixerEventType.ProcessEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
