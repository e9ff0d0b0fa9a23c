package animix

import (
	"errors"
	"fmt"
)

// Track errors. Malformed sample data is always fatal at construction or
// validation time.
var (
	ErrNoKeyframes      = errors.New("no keyframes")
	ErrNoValues         = errors.New("no values")
	ErrInvalidStride    = errors.New("stride must be positive")
	ErrStrideMismatch   = errors.New("values length does not match times and stride")
	ErrUnsortedTimes    = errors.New("keyframe times must be strictly increasing")
	ErrNonFinite        = errors.New("non-finite keyframe data")
	ErrQuaternionStride = errors.New("quaternion tracks require stride 4")
	ErrEmptyTrim        = errors.New("trim range contains no keyframes")
	ErrInvalidScale     = errors.New("time scale factor must be positive and finite")
)

// Binding errors. These are recovered locally by the mixer: the affected
// property is skipped for the tick.
var (
	ErrSegmentNotFound = errors.New("path segment not found")
	ErrUnknownProperty = errors.New("unknown property")
	ErrTargetDisposed  = errors.New("target disposed")
	ErrShapeChanged    = errors.New("target property changed shape")
	ErrEmptyPath       = errors.New("empty property path")
)

// Configuration errors, returned by the call that introduced them.
var (
	ErrInvalidDuration    = errors.New("duration must be non-negative and finite")
	ErrInvalidLoop        = errors.New("unknown loop mode")
	ErrInvalidRepetitions = errors.New("repetitions must be non-negative or Infinite")
	ErrInvalidWeight      = errors.New("weight must be non-negative and finite")
	ErrInvalidTimeScale   = errors.New("time scale must be finite")
	ErrDuplicateTrack     = errors.New("duplicate track path")
)

// TrackError reports malformed keyframe data for the track at Path.
type TrackError struct {
	Path string
	Err  error
}

func (e *TrackError) Error() string {
	return fmt.Sprintf("animix: track %q: %v", e.Path, e.Err)
}

func (e *TrackError) Unwrap() error { return e.Err }

// BindingError reports a property path that could not be resolved on its
// target, or whose target no longer matches the cached accessor. Segment is
// the path segment that failed, when known.
type BindingError struct {
	Path    string
	Segment string
	Err     error
}

func (e *BindingError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("animix: binding %q: segment %q: %v", e.Path, e.Segment, e.Err)
	}
	return fmt.Sprintf("animix: binding %q: %v", e.Path, e.Err)
}

func (e *BindingError) Unwrap() error { return e.Err }

// ConfigError reports an invalid playback or clip parameter passed to Op.
type ConfigError struct {
	Op  string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("animix: %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
