package animix

import "fmt"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default node color.
var ColorWhite = Color{1, 1, 1, 1}

// Interpolation selects the kernel a Track uses between keyframes.
type Interpolation uint8

const (
	InterpolateLinear     Interpolation = iota // per-component lerp (default)
	InterpolateDiscrete                        // step to the left keyframe
	InterpolateCubic                           // Catmull-Rom over four neighbouring keyframes
	InterpolateQuaternion                      // spherical linear interpolation of [x, y, z, w]
)

var interpolationNames = [...]string{
	InterpolateLinear:     "linear",
	InterpolateDiscrete:   "discrete",
	InterpolateCubic:      "cubic",
	InterpolateQuaternion: "quaternion",
}

// String returns the lower-case name used in clip documents.
func (i Interpolation) String() string {
	if int(i) < len(interpolationNames) {
		return interpolationNames[i]
	}
	return fmt.Sprintf("Interpolation(%d)", uint8(i))
}

// MarshalText implements encoding.TextMarshaler.
func (i Interpolation) MarshalText() ([]byte, error) {
	if int(i) >= len(interpolationNames) {
		return nil, fmt.Errorf("animix: unknown interpolation %d", uint8(i))
	}
	return []byte(interpolationNames[i]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty string decodes
// to InterpolateLinear.
func (i *Interpolation) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		*i = InterpolateLinear
		return nil
	}
	for v, name := range interpolationNames {
		if name == s {
			*i = Interpolation(v)
			return nil
		}
	}
	return fmt.Errorf("animix: unknown interpolation %q", s)
}

// LoopMode selects what an Action does when its local time leaves the clip.
type LoopMode uint8

const (
	LoopRepeat   LoopMode = iota // wrap to the start (default)
	LoopOnce                     // clamp at the end and finish
	LoopPingPong                 // reverse direction at each end
)

var loopNames = [...]string{
	LoopRepeat:   "repeat",
	LoopOnce:     "once",
	LoopPingPong: "pingpong",
}

func (m LoopMode) String() string {
	if int(m) < len(loopNames) {
		return loopNames[m]
	}
	return fmt.Sprintf("LoopMode(%d)", uint8(m))
}

// ParseLoopMode converts "repeat", "once" or "pingpong" to a LoopMode.
func ParseLoopMode(s string) (LoopMode, error) {
	for v, name := range loopNames {
		if name == s {
			return LoopMode(v), nil
		}
	}
	return 0, &ConfigError{Op: "parse loop mode", Err: fmt.Errorf("%w: %q", ErrInvalidLoop, s)}
}

// Infinite is the repetition count for actions that loop forever.
const Infinite = -1
