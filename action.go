package animix

import (
	"fmt"
	"math"

	"github.com/tanema/gween/ease"
)

// Action is a playback cursor over one clip bound to one target root. Actions
// are created and cached by a Mixer; see Mixer.Action.
//
// A new action is stopped, with weight 1, time scale 1, LoopRepeat and
// Infinite repetitions.
type Action struct {
	clip  *Clip
	mixer *Mixer
	root  Target
	key   actionKey

	time        float64
	weight      float64
	timeScale   float64
	enabled     bool
	paused      bool
	loop        LoopMode
	repetitions int
	loopCount   int
	reversed    bool

	fade      *ramp
	fadeStops bool
	warp      *ramp

	// props[i] mixes clip.tracks[i]; nil entries are tracks that could not be
	// bound. nil until the action is first played.
	props   []*PropertyMixer
	scratch []float64

	activeIndex int

	// ClampWhenFinished pauses the action on its last frame when it finishes
	// instead of stopping it, so it keeps contributing.
	ClampWhenFinished bool
}

func newAction(m *Mixer, clip *Clip, root Target, key actionKey) *Action {
	maxStride := 0
	for _, t := range clip.tracks {
		if t.stride > maxStride {
			maxStride = t.stride
		}
	}
	return &Action{
		clip:        clip,
		mixer:       m,
		root:        root,
		key:         key,
		weight:      1,
		timeScale:   1,
		loop:        LoopRepeat,
		repetitions: Infinite,
		scratch:     make([]float64, maxStride),
		activeIndex: -1,
	}
}

// Clip returns the clip this action plays.
func (a *Action) Clip() *Clip { return a.clip }

// Root returns the target the action's tracks are bound to.
func (a *Action) Root() Target { return a.root }

// Mixer returns the owning mixer.
func (a *Action) Mixer() *Mixer { return a.mixer }

// Time returns the clip-local time in seconds.
func (a *Action) Time() float64 { return a.time }

// SetTime moves the clip-local time.
func (a *Action) SetTime(t float64) { a.time = t }

// Weight returns the current effective weight.
func (a *Action) Weight() float64 { return a.weight }

// TimeScale returns the current effective time scale.
func (a *Action) TimeScale() float64 { return a.timeScale }

// IsEnabled reports whether the action is playing or paused.
func (a *Action) IsEnabled() bool { return a.enabled }

// IsPaused reports whether time is frozen.
func (a *Action) IsPaused() bool { return a.paused }

// IsRunning reports whether the action is enabled, unpaused, advancing time
// and registered with its mixer.
func (a *Action) IsRunning() bool {
	return a.enabled && !a.paused && a.timeScale != 0 && a.activeIndex >= 0
}

// IsScheduled reports whether the action is in its mixer's active set.
func (a *Action) IsScheduled() bool { return a.activeIndex >= 0 }

// IsFading reports whether a weight fade is in progress.
func (a *Action) IsFading() bool { return a.fade != nil }

// IsWarping reports whether a time-scale warp is in progress.
func (a *Action) IsWarping() bool { return a.warp != nil }

// Loop returns the loop mode.
func (a *Action) Loop() LoopMode { return a.loop }

// Repetitions returns the configured repetition count, or Infinite.
func (a *Action) Repetitions() int { return a.repetitions }

// LoopCount returns the number of loop boundaries crossed since the last Reset.
func (a *Action) LoopCount() int { return a.loopCount }

// --- State machine ---

// Play enables the action and registers it with the mixer. Panics if the
// action was uncached.
func (a *Action) Play() {
	a.enabled = true
	a.paused = false
	a.mixer.activate(a)
}

// Stop disables the action and removes it from the mixer's active set. Fades
// and warps are cancelled; the local time is kept.
func (a *Action) Stop() {
	a.enabled = false
	a.fade = nil
	a.warp = nil
	a.mixer.deactivate(a)
}

// Reset rewinds the action to time 0 and unpauses it. It does not change
// whether the action is enabled.
func (a *Action) Reset() {
	a.time = 0
	a.paused = false
	a.loopCount = 0
	a.reversed = false
}

// Pause freezes time. A paused action still contributes its current sample.
func (a *Action) Pause() { a.paused = true }

// Unpause resumes time.
func (a *Action) Unpause() { a.paused = false }

// SetLoop sets the loop mode and the number of times the clip plays.
// repetitions is a positive count or Infinite.
func (a *Action) SetLoop(mode LoopMode, repetitions int) error {
	if mode > LoopPingPong {
		return &ConfigError{Op: "set loop", Err: fmt.Errorf("%w: %d", ErrInvalidLoop, mode)}
	}
	if repetitions < Infinite {
		return &ConfigError{Op: "set loop", Err: fmt.Errorf("%w: %d", ErrInvalidRepetitions, repetitions)}
	}
	a.loop = mode
	a.repetitions = repetitions
	return nil
}

// SetEffectiveWeight sets the weight directly, cancelling any fade.
func (a *Action) SetEffectiveWeight(weight float64) error {
	if weight < 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return &ConfigError{Op: "set weight", Err: fmt.Errorf("%w: %v", ErrInvalidWeight, weight)}
	}
	a.fade = nil
	a.weight = weight
	return nil
}

// SetEffectiveTimeScale sets the time scale directly, cancelling any warp.
// Negative scales play backwards.
func (a *Action) SetEffectiveTimeScale(scale float64) error {
	if math.IsNaN(scale) || math.IsInf(scale, 0) {
		return &ConfigError{Op: "set time scale", Err: fmt.Errorf("%w: %v", ErrInvalidTimeScale, scale)}
	}
	a.warp = nil
	a.timeScale = scale
	return nil
}

// --- Fades ---

// FadeIn sets the weight to 0 and ramps it linearly to 1 over duration
// seconds.
func (a *Action) FadeIn(duration float64) error {
	return a.FadeInWith(duration, ease.Linear)
}

// FadeOut ramps the weight linearly from its current value to 0 over duration
// seconds. The action stops when the fade completes.
func (a *Action) FadeOut(duration float64) error {
	return a.FadeOutWith(duration, ease.Linear)
}

// FadeInWith is FadeIn with a custom easing curve.
func (a *Action) FadeInWith(duration float64, fn ease.TweenFunc) error {
	if err := checkDuration("fade in", duration); err != nil {
		return err
	}
	a.weight = 0
	a.scheduleFade(1, duration, fn, false)
	return nil
}

// FadeOutWith is FadeOut with a custom easing curve.
func (a *Action) FadeOutWith(duration float64, fn ease.TweenFunc) error {
	if err := checkDuration("fade out", duration); err != nil {
		return err
	}
	a.scheduleFade(0, duration, fn, true)
	return nil
}

// CrossFadeTo fades this action out and other in over duration seconds. When
// warp is set, other takes this action's current time scale. other must be
// played by the caller.
func (a *Action) CrossFadeTo(other *Action, duration float64, warp bool) error {
	if other == nil {
		panic("animix: CrossFadeTo nil action")
	}
	if err := checkDuration("cross fade", duration); err != nil {
		return err
	}
	if warp {
		other.warp = nil
		other.timeScale = a.timeScale
	}
	other.weight = 0
	a.scheduleFade(0, duration, ease.Linear, true)
	other.scheduleFade(1, duration, ease.Linear, false)
	return nil
}

// CrossFadeFrom is other.CrossFadeTo(a, duration, warp).
func (a *Action) CrossFadeFrom(other *Action, duration float64, warp bool) error {
	if other == nil {
		panic("animix: CrossFadeFrom nil action")
	}
	return other.CrossFadeTo(a, duration, warp)
}

// StopFading cancels a fade in progress, keeping the current weight.
func (a *Action) StopFading() { a.fade = nil }

func (a *Action) scheduleFade(target, duration float64, fn ease.TweenFunc, stops bool) {
	if duration == 0 {
		a.fade = nil
		a.weight = target
		if stops && target == 0 {
			a.Stop()
		}
		return
	}
	a.fade = newRamp(a.weight, target, duration, fn)
	a.fadeStops = stops
}

// --- Warps ---

// Warp ramps the time scale from startScale to endScale over duration seconds.
func (a *Action) Warp(startScale, endScale, duration float64) error {
	if err := checkDuration("warp", duration); err != nil {
		return err
	}
	for _, s := range [2]float64{startScale, endScale} {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return &ConfigError{Op: "warp", Err: fmt.Errorf("%w: %v", ErrInvalidTimeScale, s)}
		}
	}
	if duration == 0 {
		a.warp = nil
		a.timeScale = endScale
		return nil
	}
	a.timeScale = startScale
	a.warp = newRamp(startScale, endScale, duration, ease.Linear)
	return nil
}

// Halt decelerates the action to a time scale of 0 over duration seconds.
func (a *Action) Halt(duration float64) error {
	return a.Warp(a.timeScale, 0, duration)
}

// StopWarping cancels a warp in progress, keeping the current time scale.
func (a *Action) StopWarping() { a.warp = nil }

func checkDuration(op string, d float64) error {
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return &ConfigError{Op: op, Err: fmt.Errorf("%w: %v", ErrInvalidDuration, d)}
	}
	return nil
}

// --- Per-tick update ---

// update advances time, weight and loop state by dt. No-op unless the action
// is enabled and unpaused.
func (a *Action) update(dt float64) {
	if !a.enabled || a.paused {
		return
	}

	if a.warp != nil {
		s, done := a.warp.update(dt)
		a.timeScale = s
		if done {
			a.warp = nil
		}
	}

	if a.fade != nil {
		w, done := a.fade.update(dt)
		a.weight = w
		if done {
			a.fade = nil
			if a.fadeStops && w == 0 {
				a.Stop()
				return
			}
		}
	}

	a.updateTime(dt * a.timeScale)
}

// updateTime applies delta to the local time and resolves loop boundaries.
// Boundary crossings are computed in closed form, so a large delta costs the
// same as a small one.
func (a *Action) updateTime(delta float64) {
	d := a.clip.duration
	if a.loop == LoopPingPong && a.reversed {
		delta = -delta
	}
	t := a.time + delta
	if d == 0 {
		a.time = t
		return
	}

	switch a.loop {
	case LoopOnce:
		switch {
		case t >= d:
			a.time = d
			a.finish()
		case t <= 0 && delta < 0:
			a.time = 0
			a.finish()
		case t < 0:
			a.time = 0
		default:
			a.time = t
		}

	case LoopRepeat:
		if t <= d && t >= 0 {
			a.time = t
			return
		}
		wraps := math.Floor(t / d)
		n := int(math.Abs(wraps))
		if a.canLoop(n) {
			a.loopCount += n
			a.time = t - wraps*d
			a.mixer.emit(Event{Type: EventLoop, Action: a, Loops: n})
			return
		}
		crossed := a.remainingLoops()
		a.loopCount += crossed
		if crossed > 0 {
			a.mixer.emit(Event{Type: EventLoop, Action: a, Loops: crossed})
		}
		if t > d {
			a.time = d
		} else {
			a.time = 0
		}
		a.finish()

	case LoopPingPong:
		if t <= d && t >= 0 {
			a.time = t
			return
		}
		high := t > d
		excess := -t
		if high {
			excess = t - d
		}
		k := int(math.Ceil(excess / d))
		if a.canLoop(k) {
			r := excess - float64(k-1)*d
			odd := k%2 == 1
			if high == odd {
				a.time = d - r
			} else {
				a.time = r
			}
			if odd {
				a.reversed = !a.reversed
			}
			a.loopCount += k
			a.mixer.emit(Event{Type: EventLoop, Action: a, Loops: k})
			return
		}
		crossed := a.remainingLoops()
		// The boundary of the first refused crossing; crossings alternate
		// between the end first hit and the opposite one.
		if high == (crossed%2 == 0) {
			a.time = d
		} else {
			a.time = 0
		}
		if crossed%2 == 1 {
			a.reversed = !a.reversed
		}
		a.loopCount += crossed
		if crossed > 0 {
			a.mixer.emit(Event{Type: EventLoop, Action: a, Loops: crossed})
		}
		a.finish()
	}
}

// canLoop reports whether n more boundary crossings are allowed.
func (a *Action) canLoop(n int) bool {
	return a.repetitions == Infinite || a.loopCount+n <= a.repetitions-1
}

// remainingLoops returns how many boundary crossings are left before the
// repetitions are used up.
func (a *Action) remainingLoops() int {
	r := a.repetitions - 1 - a.loopCount
	if r < 0 {
		return 0
	}
	return r
}

func (a *Action) finish() {
	if a.ClampWhenFinished {
		a.paused = true
	} else {
		a.Stop()
	}
	a.mixer.emit(Event{Type: EventFinished, Action: a})
}

// accumulate samples every bound track at the current time into its property
// mixer.
func (a *Action) accumulate() {
	if a.props == nil {
		return
	}
	w := a.weight
	for i, t := range a.clip.tracks {
		pm := a.props[i]
		if pm == nil {
			continue
		}
		v := t.SampleInto(a.scratch[:t.stride], a.time)
		pm.Accumulate(v, w)
		a.mixer.enqueue(pm)
	}
}
