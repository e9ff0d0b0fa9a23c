// Package ecs provides ECS adapters for animix.
package ecs

import (
	"github.com/phanxgames/animix"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
	"github.com/yohamta/donburi/filter"
)

// MixerData attaches a mixer to an entity. Speed scales the dt passed to
// AdvanceMixers, with zero meaning 1; Paused entities are skipped.
type MixerData struct {
	Mixer  *animix.Mixer
	Speed  float64
	Paused bool
}

// MixerComponent is the Donburi component type holding MixerData.
var MixerComponent = donburi.NewComponentType[MixerData]()

// MixerEventType is the Donburi event type for mixer events.
// Subscribe to this in your ECS systems to receive loop, finished and
// binding-error events.
var MixerEventType = events.NewEventType[animix.Event]()

var mixerQuery = donburi.NewQuery(filter.Contains(MixerComponent))

// AdvanceMixers advances the mixer of every entity carrying MixerComponent by
// dt scaled by the entity's Speed. It returns the number of mixers advanced.
func AdvanceMixers(world donburi.World, dt float64) int {
	n := 0
	mixerQuery.Each(world, func(entry *donburi.Entry) {
		data := MixerComponent.Get(entry)
		if data.Mixer == nil || data.Paused || data.Speed < 0 {
			return
		}
		speed := data.Speed
		if speed == 0 {
			speed = 1
		}
		data.Mixer.Advance(dt * speed)
		n++
	})
	return n
}

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world.
// Mixer events are published to MixerEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) animix.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event animix.Event) {
	MixerEventType.Publish(s.world, event)
}
