package animix

import (
	"math"
	"sort"
)

// Track is an immutable series of keyframes for one property path. Values are
// stored flat: keyframe i occupies values[i*stride : (i+1)*stride].
//
// Tracks are read-only after construction and may be shared by any number of
// clips, actions and mixers. Administrative operations (Shift, Scale, Trim,
// WithInterpolation) return new tracks.
type Track struct {
	path   string
	times  []float64
	values []float64
	stride int
	interp Interpolation
}

// NewTrack validates and copies the given keyframe data.
func NewTrack(path string, times, values []float64, stride int, interp Interpolation) (*Track, error) {
	t := &Track{
		path:   path,
		times:  append([]float64(nil), times...),
		values: append([]float64(nil), values...),
		stride: stride,
		interp: interp,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Path returns the dotted property path this track animates.
func (t *Track) Path() string { return t.path }

// Stride returns the number of components per keyframe.
func (t *Track) Stride() int { return t.stride }

// Interpolation returns the kernel used between keyframes.
func (t *Track) Interpolation() Interpolation { return t.interp }

// Len returns the number of keyframes.
func (t *Track) Len() int { return len(t.times) }

// Times returns the keyframe times. The returned slice MUST NOT be mutated.
func (t *Track) Times() []float64 { return t.times }

// Values returns the flat keyframe values. The returned slice MUST NOT be mutated.
func (t *Track) Values() []float64 { return t.values }

// StartTime returns the time of the first keyframe.
func (t *Track) StartTime() float64 { return t.times[0] }

// EndTime returns the time of the last keyframe.
func (t *Track) EndTime() float64 { return t.times[len(t.times)-1] }

// Validate checks the track invariants and returns a *TrackError describing
// the first violation found.
func (t *Track) Validate() error {
	fail := func(err error) error { return &TrackError{Path: t.path, Err: err} }

	if len(t.times) == 0 {
		return fail(ErrNoKeyframes)
	}
	if len(t.values) == 0 {
		return fail(ErrNoValues)
	}
	if t.stride <= 0 {
		return fail(ErrInvalidStride)
	}
	if len(t.values)%len(t.times) != 0 || len(t.values) != len(t.times)*t.stride {
		return fail(ErrStrideMismatch)
	}
	if t.interp == InterpolateQuaternion && t.stride != 4 {
		return fail(ErrQuaternionStride)
	}
	for i, tm := range t.times {
		if math.IsNaN(tm) || math.IsInf(tm, 0) {
			return fail(ErrNonFinite)
		}
		if i > 0 && tm <= t.times[i-1] {
			return fail(ErrUnsortedTimes)
		}
	}
	for _, v := range t.values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fail(ErrNonFinite)
		}
	}
	return nil
}

// keyframe returns the value slice of keyframe i.
func (t *Track) keyframe(i int) []float64 {
	return t.values[i*t.stride : (i+1)*t.stride]
}

// Sample returns a newly allocated stride-length value at the given time.
func (t *Track) Sample(time float64) []float64 {
	return t.SampleInto(make([]float64, t.stride), time)
}

// SampleInto writes the value at the given time into dst[:Stride()] and
// returns that slice. Times before the first keyframe or after the last one
// clamp to the nearest keyframe; there is no extrapolation.
func (t *Track) SampleInto(dst []float64, time float64) []float64 {
	dst = dst[:t.stride]
	n := len(t.times)

	if n == 1 || time <= t.times[0] {
		copy(dst, t.keyframe(0))
		return dst
	}
	if time >= t.times[n-1] {
		copy(dst, t.keyframe(n-1))
		return dst
	}

	// Last keyframe with times[i] <= time.
	i := sort.Search(n, func(k int) bool { return t.times[k] > time }) - 1
	t0, t1 := t.times[i], t.times[i+1]
	alpha := (time - t0) / (t1 - t0)

	switch t.interp {
	case InterpolateDiscrete:
		Discrete(dst, t.keyframe(i), t.keyframe(i+1), alpha)
	case InterpolateCubic:
		prev := i - 1
		if prev < 0 {
			prev = 0
		}
		next := i + 2
		if next > n-1 {
			next = n - 1
		}
		Cubic(dst, t.keyframe(prev), t.keyframe(i), t.keyframe(i+1), t.keyframe(next), alpha)
	case InterpolateQuaternion:
		Slerp(dst, t.keyframe(i), t.keyframe(i+1), alpha)
	default:
		Linear(dst, t.keyframe(i), t.keyframe(i+1), alpha)
	}
	return dst
}

// Clone returns a deep copy of the track. The copy shares no slices with t.
func (t *Track) Clone() *Track {
	return &Track{
		path:   t.path,
		times:  append([]float64(nil), t.times...),
		values: append([]float64(nil), t.values...),
		stride: t.stride,
		interp: t.interp,
	}
}

// Shift returns a copy of the track with every keyframe moved by offset seconds.
func (t *Track) Shift(offset float64) *Track {
	c := t.Clone()
	for i := range c.times {
		c.times[i] += offset
	}
	return c
}

// Scale returns a copy of the track with every keyframe time multiplied by
// factor. The factor must be positive so the ordering of keyframes survives.
func (t *Track) Scale(factor float64) (*Track, error) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, &TrackError{Path: t.path, Err: ErrInvalidScale}
	}
	c := t.Clone()
	for i := range c.times {
		c.times[i] *= factor
	}
	return c, nil
}

// Trim returns a copy of the track keeping only keyframes with
// start <= time <= end. Value groups are sliced whole, preserving the stride.
func (t *Track) Trim(start, end float64) (*Track, error) {
	from := sort.SearchFloat64s(t.times, start)
	to := sort.Search(len(t.times), func(k int) bool { return t.times[k] > end })
	if from >= to {
		return nil, &TrackError{Path: t.path, Err: ErrEmptyTrim}
	}
	return &Track{
		path:   t.path,
		times:  append([]float64(nil), t.times[from:to]...),
		values: append([]float64(nil), t.values[from*t.stride:to*t.stride]...),
		stride: t.stride,
		interp: t.interp,
	}, nil
}

// WithInterpolation returns a copy of the track using a different kernel.
func (t *Track) WithInterpolation(interp Interpolation) (*Track, error) {
	c := &Track{path: t.path, times: t.times, values: t.values, stride: t.stride, interp: interp}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
