package animix

import (
	"context"
	"errors"
	"math"
	"testing"
)

type eventLog []Event

func (l *eventLog) EmitEvent(e Event) { *l = append(*l, e) }

func (l eventLog) count(typ EventType) int {
	n := 0
	for _, e := range l {
		if e.Type == typ {
			n++
		}
	}
	return n
}

func TestNewMixerNilRootPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for nil root")
		}
	}()
	NewMixer(nil)
}

func TestMixerActionCached(t *testing.T) {
	root := NewNode("root")
	other := NewNode("other")
	m := NewMixer(root)
	clip := rampClip(t, 1)

	a := m.Action(clip, nil)
	if m.Action(clip, nil) != a || m.Action(clip, root) != a {
		t.Error("same clip and root returned different actions")
	}
	if m.Action(clip, other) == a {
		t.Error("different roots share an action")
	}
	if m.ExistingAction(clip, root) != a {
		t.Error("ExistingAction did not find cached action")
	}
	if m.ExistingAction(rampClip(t, 1), root) != nil {
		t.Error("ExistingAction created an action")
	}
	if m.NumActions() != 2 {
		t.Errorf("NumActions = %d, want 2", m.NumActions())
	}
}

func TestMixerAdvanceWritesTrack(t *testing.T) {
	n := NewNode("n")
	m := NewMixer(n)
	m.Action(rampClip(t, 1), nil).Play()

	m.Advance(0.25)
	if n.X != 2.5 {
		t.Errorf("X = %v, want 2.5", n.X)
	}
	if m.Time() != 0.25 {
		t.Errorf("Time = %v, want 0.25", m.Time())
	}
}

func TestMixerSharesPropertyMixers(t *testing.T) {
	n := NewNode("n")
	m := NewMixer(n)
	a := m.Action(constClip(t, "a", 4, 1), nil)
	b := m.Action(constClip(t, "b", 8, 1), nil)
	a.Play()
	b.Play()
	if m.NumBindings() != 1 {
		t.Fatalf("NumBindings = %d, want 1 shared binding", m.NumBindings())
	}

	m.Advance(0.1)
	// Both at weight 1: normalised by the total weight.
	if n.X != 6 {
		t.Errorf("X = %v, want 6", n.X)
	}
}

func TestMixerOrderIndependent(t *testing.T) {
	run := func(first, second float64) float64 {
		n := NewNode("n")
		m := NewMixer(n)
		a := m.Action(constClip(t, "a", first, 1), nil)
		b := m.Action(constClip(t, "b", second, 1), nil)
		_ = a.SetEffectiveWeight(0.3)
		_ = b.SetEffectiveWeight(0.7)
		a.Play()
		b.Play()
		m.Advance(0.1)
		return n.X
	}
	x1 := run(2, 12)
	n := NewNode("n")
	m := NewMixer(n)
	b := m.Action(constClip(t, "b", 12, 1), nil)
	a := m.Action(constClip(t, "a", 2, 1), nil)
	_ = a.SetEffectiveWeight(0.3)
	_ = b.SetEffectiveWeight(0.7)
	b.Play()
	a.Play()
	m.Advance(0.1)
	if !approxEqual(x1, n.X, 1e-12) {
		t.Errorf("order dependent: %v vs %v", x1, n.X)
	}
	if !approxEqual(x1, 9, 1e-12) {
		t.Errorf("X = %v, want 9", x1)
	}
}

func TestMixerStopAllRestoresOriginal(t *testing.T) {
	n := NewNode("n")
	n.X = 42
	n.Alpha = 0.5
	clip := rampClip(t, 1)
	alpha := mustTrack(t, "alpha", []float64{0, 1}, []float64{0, 0.2}, 1, InterpolateLinear)
	fade, _ := NewClip("fade", -1, alpha)

	m := NewMixer(n)
	m.Action(clip, nil).Play()
	m.Action(fade, nil).Play()
	m.Advance(0.5)
	if n.X == 42 || n.Alpha == 0.5 {
		t.Fatalf("properties not animated: X=%v Alpha=%v", n.X, n.Alpha)
	}

	m.StopAllActions()
	if m.NumActiveActions() != 0 {
		t.Errorf("NumActiveActions = %d after StopAllActions", m.NumActiveActions())
	}
	m.Advance(0.1)
	if n.X != 42 || n.Alpha != 0.5 {
		t.Errorf("X=%v Alpha=%v, want original 42 and 0.5", n.X, n.Alpha)
	}
}

func TestMixerRestoreRecapturesAfterReplay(t *testing.T) {
	n := NewNode("n")
	n.X = 1
	m := NewMixer(n)
	a := m.Action(rampClip(t, 1), nil)
	a.Play()
	m.Advance(0.5)
	a.Stop()
	m.Advance(0)
	if n.X != 1 {
		t.Fatalf("X = %v, want 1 after stop", n.X)
	}

	n.X = 7
	a.Play()
	a.Stop()
	m.Advance(0)
	if n.X != 7 {
		t.Errorf("X = %v, want new rest pose 7", n.X)
	}
}

func TestMixerStoppedMidTickStillContributes(t *testing.T) {
	n := NewNode("n")
	m := NewMixer(n)
	a := m.Action(constClip(t, "a", 3, 1), nil)
	b := m.Action(constClip(t, "b", 9, 1), nil)
	a.Play()
	b.Play()

	// a wraps first in the tick and its loop handler stops b.
	m.SetEventSink(EventSinkFunc(func(e Event) {
		if e.Type == EventLoop && e.Action == a {
			b.Stop()
		}
	}))
	m.Advance(1.5)
	if b.IsEnabled() {
		t.Fatal("b not stopped by handler")
	}
	if n.X != 6 {
		t.Errorf("X = %v, want 6 (b still contributes this tick)", n.X)
	}
	m.Advance(0.1)
	if n.X != 3 {
		t.Errorf("X = %v, want 3 once b is gone", n.X)
	}
}

func TestMixerBrokenBindingIsolated(t *testing.T) {
	n := NewNode("n")
	good := mustTrack(t, "x", []float64{0, 1}, []float64{0, 10}, 1, InterpolateLinear)
	bad := mustTrack(t, "leg.x", []float64{0, 1}, []float64{0, 10}, 1, InterpolateLinear)
	clip, _ := NewClip("c", -1, bad, good)

	var events eventLog
	m := NewMixer(n)
	m.SetEventSink(&events)
	a := m.Action(clip, nil)
	a.Play()

	m.Advance(0.5)
	m.Advance(0.1)
	if !approxEqual(n.X, 6, 1e-12) {
		t.Errorf("X = %v, want 6 despite broken sibling binding", n.X)
	}
	if got := events.count(EventBindingError); got != 1 {
		t.Fatalf("binding error events = %d, want 1", got)
	}
	e := events[0]
	if e.Path != "leg.x" || !errors.Is(e.Err, ErrSegmentNotFound) {
		t.Errorf("event = %+v", e)
	}

	// Once the path resolves the property recovers.
	leg := NewNode("leg")
	n.AddChild(leg)
	m.Advance(0.1)
	if !approxEqual(leg.X, 7, 1e-12) {
		t.Errorf("leg.X = %v, want 7", leg.X)
	}
}

func TestMixerStrideConflictSkipsTrack(t *testing.T) {
	n := NewNode("n")
	n.SetChannel("w", []float64{0})
	one := mustTrack(t, "w", []float64{0, 1}, []float64{0, 1}, 1, InterpolateLinear)
	two := mustTrack(t, "w", []float64{0, 1}, []float64{0, 0, 1, 1}, 2, InterpolateLinear)
	c1, _ := NewClip("one", -1, one)
	c2, _ := NewClip("two", -1, two)

	var events eventLog
	m := NewMixer(n)
	m.SetEventSink(&events)
	m.Action(c1, nil).Play()
	m.Action(c2, nil).Play()

	if got := events.count(EventBindingError); got != 1 {
		t.Fatalf("binding error events = %d, want 1", got)
	}
	if !errors.Is(events[0].Err, ErrStrideMismatch) {
		t.Errorf("err = %v", events[0].Err)
	}
	m.Advance(0.5)
	if n.Channel("w")[0] != 0.5 {
		t.Errorf("w = %v, want 0.5", n.Channel("w"))
	}
}

func TestMixerUncacheClip(t *testing.T) {
	n := NewNode("n")
	n.X = 3
	m := NewMixer(n)
	clip := rampClip(t, 1)
	a := m.Action(clip, nil)
	a.Play()
	m.Advance(0.5)

	m.UncacheClip(clip)
	if m.ExistingAction(clip, nil) != nil || m.NumActions() != 0 {
		t.Fatal("clip still cached")
	}
	if m.NumActiveActions() != 0 {
		t.Error("uncached action still active")
	}
	m.Advance(0.1)
	if n.X != 3 {
		t.Errorf("X = %v, want rest pose 3", n.X)
	}
	if m.NumBindings() != 0 {
		t.Errorf("NumBindings = %d, want 0", m.NumBindings())
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic playing an uncached action")
		}
	}()
	a.Play()
}

func TestMixerUncacheRootKeepsSharedBindings(t *testing.T) {
	root := NewNode("root")
	other := NewNode("other")
	m := NewMixer(root)
	clip := rampClip(t, 1)
	m.Action(clip, root).Play()
	m.Action(clip, other).Play()
	m.Advance(0.5)
	if m.NumBindings() != 2 {
		t.Fatalf("NumBindings = %d, want 2", m.NumBindings())
	}

	m.UncacheRoot(other)
	m.Advance(0.1)
	if m.NumBindings() != 1 || m.NumActions() != 1 {
		t.Errorf("bindings=%d actions=%d, want 1/1", m.NumBindings(), m.NumActions())
	}
	if !approxEqual(root.X, 6, 1e-12) {
		t.Errorf("root.X = %v, want 6", root.X)
	}
	if other.X != 0 {
		t.Errorf("other.X = %v, want rest pose 0", other.X)
	}
}

func TestMixerUncacheAction(t *testing.T) {
	m := NewMixer(NewNode("n"))
	c1 := rampClip(t, 1)
	c2 := rampClip(t, 2)
	m.Action(c1, nil)
	m.Action(c2, nil)
	m.UncacheAction(c1, nil)
	if m.ExistingAction(c1, nil) != nil || m.ExistingAction(c2, nil) == nil {
		t.Error("UncacheAction removed the wrong action")
	}
}

func TestMixerEvents(t *testing.T) {
	var events eventLog
	m := NewMixer(NewNode("n"))
	m.SetEventSink(&events)
	a := m.Action(rampClip(t, 1), nil)
	_ = a.SetLoop(LoopRepeat, 3)
	a.Play()

	m.Advance(1.5)
	m.Advance(5)
	if events.count(EventLoop) != 2 {
		t.Errorf("loop events = %d, want 2", events.count(EventLoop))
	}
	if events.count(EventFinished) != 1 {
		t.Errorf("finished events = %d, want 1", events.count(EventFinished))
	}
	if last := events[len(events)-1]; last.Type != EventFinished || last.Action != a {
		t.Errorf("last event = %+v", last)
	}
}

func TestMixerSetTime(t *testing.T) {
	n := NewNode("n")
	m := NewMixer(n)
	a := m.Action(rampClip(t, 1), nil)
	a.Play()
	m.Advance(0.9)

	m.SetTime(0.3)
	if m.Time() != 0.3 || a.Time() != 0.3 {
		t.Errorf("mixer %v action %v, want 0.3", m.Time(), a.Time())
	}
	if !approxEqual(n.X, 3, 1e-12) {
		t.Errorf("X = %v, want 3", n.X)
	}
}

func TestMixerSetTimeClearsLoopState(t *testing.T) {
	m := NewMixer(NewNode("n"))
	a := m.Action(rampClip(t, 1), nil)
	_ = a.SetLoop(LoopRepeat, 2)
	a.Play()
	m.Advance(1.5)
	if a.LoopCount() != 1 {
		t.Fatalf("LoopCount = %d, want 1", a.LoopCount())
	}

	m.SetTime(1.5)
	if !a.IsEnabled() || a.LoopCount() != 1 || !approxEqual(a.Time(), 0.5, 1e-12) {
		t.Errorf("after SetTime: enabled=%v loops=%d time=%v, want replay to 0.5",
			a.IsEnabled(), a.LoopCount(), a.Time())
	}

	p := m.Action(rampClip(t, 1), NewNode("p"))
	_ = p.SetLoop(LoopPingPong, Infinite)
	p.Play()
	m.SetTime(1.5)
	m.SetTime(0.25)
	if !approxEqual(p.Time(), 0.25, 1e-12) {
		t.Errorf("ping-pong time after SetTime = %v, want 0.25 played forward", p.Time())
	}
}

func TestMixerPartialWeightIgnoresRestPose(t *testing.T) {
	n := NewNode("n")
	n.X = 100
	m := NewMixer(n)
	a := m.Action(constClip(t, "c", 10, 1), nil)
	_ = a.SetEffectiveWeight(0.5)
	a.Play()
	m.Advance(0.1)
	if n.X != 5 {
		t.Errorf("X = %v, want weighted sum 5", n.X)
	}

	a.Stop()
	m.Advance(0)
	if n.X != 100 {
		t.Errorf("X = %v, want rest pose 100 after stop", n.X)
	}
}

func TestMixerAdvancePanics(t *testing.T) {
	for _, dt := range []float64{-1, math.NaN()} {
		func() {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("Advance(%v) did not panic", dt)
				}
			}()
			NewMixer(NewNode("n")).Advance(dt)
		}()
	}
}

func TestMixerDispose(t *testing.T) {
	n := NewNode("n")
	n.Y = 2
	track := mustTrack(t, "y", []float64{0, 1}, []float64{10, 20}, 1, InterpolateLinear)
	clip, _ := NewClip("c", -1, track)
	m := NewMixer(n)
	m.Action(clip, nil).Play()
	m.Advance(0.5)

	m.Dispose()
	if n.Y != 2 {
		t.Errorf("Y = %v, want rest pose 2", n.Y)
	}
	m.Dispose() // idempotent

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic using a disposed mixer")
		}
	}()
	m.Advance(0.1)
}

func TestMixerDisposedTargetDoesNotAbort(t *testing.T) {
	root := NewNode("root")
	child := NewNode("child")
	root.AddChild(child)
	tr := mustTrack(t, "child.x", []float64{0, 1}, []float64{0, 10}, 1, InterpolateLinear)
	y := mustTrack(t, "y", []float64{0, 1}, []float64{0, 10}, 1, InterpolateLinear)
	clip, _ := NewClip("c", -1, tr, y)

	var events eventLog
	m := NewMixer(root)
	m.SetEventSink(&events)
	m.Action(clip, nil).Play()
	m.Advance(0.5)
	child.Dispose()
	m.Advance(0.25)

	if root.Y != 7.5 {
		t.Errorf("Y = %v, want 7.5", root.Y)
	}
	if events.count(EventBindingError) != 1 {
		t.Errorf("binding error events = %d, want 1", events.count(EventBindingError))
	}
}

func TestMixerAdvanceDoesNotAllocate(t *testing.T) {
	n := NewNode("n")
	n.SetChannel("rot", []float64{0, 0, 0, 1})
	q0 := quatAxisAngle(0, 0, 1, 0)
	q1 := quatAxisAngle(0, 0, 1, 2)
	rot := mustTrack(t, "rot", []float64{0, 1}, append(append([]float64{}, q0...), q1...), 4, InterpolateQuaternion)
	pos := mustTrack(t, "position", []float64{0, 0.5, 1}, []float64{0, 0, 5, 5, 10, 0}, 2, InterpolateCubic)
	c1, _ := NewClip("a", -1, rot, pos)
	c2 := rampClip(t, 1)

	m := NewMixer(n)
	m.Action(c1, nil).Play()
	m.Action(c2, nil).Play()
	m.Advance(0.01)

	allocs := testing.AllocsPerRun(100, func() {
		m.Advance(0.01)
	})
	if allocs != 0 {
		t.Errorf("Advance allocated %v times per run", allocs)
	}
}

func TestAdvanceAll(t *testing.T) {
	nodes := make([]*Node, 8)
	mixers := make([]*Mixer, 8)
	clip := rampClip(t, 1)
	for i := range mixers {
		nodes[i] = NewNode("n")
		mixers[i] = NewMixer(nodes[i])
		mixers[i].Action(clip, nil).Play()
	}

	if err := AdvanceAll(context.Background(), 0.5, mixers...); err != nil {
		t.Fatal(err)
	}
	for i, n := range nodes {
		if n.X != 5 {
			t.Errorf("node %d X = %v, want 5", i, n.X)
		}
	}
}

func TestAdvanceAllCancelled(t *testing.T) {
	n := NewNode("n")
	m := NewMixer(n)
	m.Action(rampClip(t, 1), nil).Play()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := AdvanceAll(ctx, 0.5, m); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if n.X != 0 {
		t.Errorf("cancelled mixer advanced: X = %v", n.X)
	}
}
