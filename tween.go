package animix

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ramp drives one float64 value (an action's weight or time scale) from a
// start to an end value. Elapsed time is kept in float64 and decides when the
// ramp ends; gween only supplies the eased value in between, since it works
// in float32.
type ramp struct {
	tween    *gween.Tween
	elapsed  float64
	duration float64
	end      float64
}

// rampEpsilon absorbs the rounding left by summing many float64 frame deltas,
// so a ramp driven at 1/60 s ends on the tick its duration elapses.
const rampEpsilon = 1e-9

// newRamp creates a ramp over duration seconds. A nil easing function means
// ease.Linear.
func newRamp(begin, end, duration float64, fn ease.TweenFunc) *ramp {
	if fn == nil {
		fn = ease.Linear
	}
	return &ramp{
		tween:    gween.New(float32(begin), float32(end), float32(duration), fn),
		duration: duration,
		end:      end,
	}
}

// update advances the ramp by dt seconds and returns the current value and
// whether the end was reached. The end value is returned exactly.
func (r *ramp) update(dt float64) (float64, bool) {
	r.elapsed += dt
	if r.elapsed >= r.duration-rampEpsilon {
		return r.end, true
	}
	v, _ := r.tween.Set(float32(r.elapsed))
	return float64(v), false
}
