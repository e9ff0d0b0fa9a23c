// Package animix is a keyframe animation blending core.
//
// animix advances time-based keyframe data, blends the weighted contributions
// of several concurrently playing animations per property, and writes one
// resolved value onto each bound property per tick. It does no rendering and
// no I/O beyond decoding clip documents; the host decides when to tick.
//
// # Quick start
//
//	pos, _ := animix.NewTrack("position", []float64{0, 1}, []float64{0, 0, 100, 50}, 2, animix.InterpolateLinear)
//	walk, _ := animix.NewClip("walk", -1, pos)
//
//	hero := animix.NewNode("hero")
//	mixer := animix.NewMixer(hero)
//	mixer.Action(walk, nil).Play()
//
//	// once per frame
//	mixer.Advance(1.0 / 60)
//
// # Data
//
// A [Track] is an immutable series of keyframe times and stride-grouped
// values sampled with one [Interpolation] kernel: discrete, linear, cubic
// (Catmull-Rom) or quaternion slerp. A [Clip] is a named set of tracks with
// unique property paths and one duration. Clips are shared by reference and
// may be loaded from JSON ([LoadClip]) or YAML ([LoadClipYAML]).
//
// # Targets
//
// Anything implementing [Target] can be animated: it resolves a dotted
// property path such as "arm.hand.rotation" to an [Accessor]. [Node] is a
// small ready-made property tree implementing Target.
//
// # Blending
//
// A [Mixer] owns one [Action] per clip and root. Every tick each active
// action samples its tracks and accumulates them, scaled by its weight, into
// a [PropertyMixer] shared by everything animating the same property. After
// all actions ran, each touched property is written exactly once, so
// simultaneous actions blend in proportion to their weights regardless of
// processing order. Weight fades and crossfades ramp linearly by default and
// accept any easing function from [gween/ease].
//
// A property nobody animates any more returns to the value it had before the
// first action touched it.
//
// # Errors
//
// Malformed keyframe data fails at construction with a [*TrackError].
// Unresolvable or shape-changed property paths produce a [*BindingError];
// the mixer skips that property for the tick and reports it once through the
// [EventSink] instead of failing Advance. Invalid playback parameters return
// a [*ConfigError]. Programmer errors such as a negative dt panic.
//
// [gween/ease]: https://github.com/tanema/gween
package animix
