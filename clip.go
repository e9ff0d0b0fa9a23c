package animix

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Clip is a named, immutable collection of tracks sharing one duration. A clip
// is built once and shared by reference across actions and mixers.
type Clip struct {
	id       uuid.UUID
	name     string
	duration float64
	tracks   []*Track
	byPath   map[string]*Track
}

// NewClip builds a clip from the given tracks. A negative duration means the
// duration is taken from the latest keyframe across all tracks. Track paths
// must be unique.
func NewClip(name string, duration float64, tracks ...*Track) (*Clip, error) {
	return newClip(uuid.New(), name, duration, tracks)
}

func newClip(id uuid.UUID, name string, duration float64, tracks []*Track) (*Clip, error) {
	if math.IsNaN(duration) || math.IsInf(duration, 0) {
		return nil, &ConfigError{Op: "new clip " + name, Err: ErrInvalidDuration}
	}
	c := &Clip{
		id:     id,
		name:   name,
		tracks: make([]*Track, 0, len(tracks)),
		byPath: make(map[string]*Track, len(tracks)),
	}
	for _, t := range tracks {
		if t == nil {
			continue
		}
		if _, dup := c.byPath[t.path]; dup {
			return nil, &ConfigError{Op: "new clip " + name, Err: fmt.Errorf("%w: %q", ErrDuplicateTrack, t.path)}
		}
		c.byPath[t.path] = t
		c.tracks = append(c.tracks, t)
	}
	if duration < 0 {
		duration = maxEndTime(c.tracks)
	}
	c.duration = duration
	return c, nil
}

func maxEndTime(tracks []*Track) float64 {
	var end float64
	for _, t := range tracks {
		if len(t.times) > 0 && t.EndTime() > end {
			end = t.EndTime()
		}
	}
	return end
}

// ID returns the clip's unique identifier.
func (c *Clip) ID() uuid.UUID { return c.id }

// Name returns the clip name.
func (c *Clip) Name() string { return c.name }

// Duration returns the clip duration in seconds.
func (c *Clip) Duration() float64 { return c.duration }

// Tracks returns the clip's tracks. The returned slice MUST NOT be mutated.
func (c *Clip) Tracks() []*Track { return c.tracks }

// Track returns the track animating path, or nil.
func (c *Clip) Track(path string) *Track { return c.byPath[path] }

// Validate re-checks every track.
func (c *Clip) Validate() error {
	for _, t := range c.tracks {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ResetDuration returns a clip with the same tracks whose duration is the
// latest keyframe time. The new clip has a fresh ID.
func (c *Clip) ResetDuration() *Clip {
	out, _ := newClip(uuid.New(), c.name, -1, c.tracks)
	return out
}

// Trim returns a clip whose tracks are trimmed to [0, Duration()]. Tracks
// with no keyframes inside the range are dropped.
func (c *Clip) Trim() *Clip {
	tracks := make([]*Track, 0, len(c.tracks))
	for _, t := range c.tracks {
		trimmed, err := t.Trim(0, c.duration)
		if err != nil {
			continue
		}
		tracks = append(tracks, trimmed)
	}
	out, _ := newClip(uuid.New(), c.name, c.duration, tracks)
	return out
}

// Clone returns a copy of the clip with deep-copied tracks and a fresh ID.
func (c *Clip) Clone() *Clip {
	tracks := make([]*Track, len(c.tracks))
	for i, t := range c.tracks {
		tracks[i] = t.Clone()
	}
	out, _ := newClip(uuid.New(), c.name, c.duration, tracks)
	return out
}
