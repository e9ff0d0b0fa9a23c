package animix

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
)

// actionKey identifies a cached action: one per clip and root.
type actionKey struct {
	clip uuid.UUID
	root uint32
}

// propertyKey identifies a shared property mixer: one per root and path.
type propertyKey struct {
	root uint32
	path string
}

// Mixer plays actions against a target root and writes each animated
// property exactly once per tick.
//
// A Mixer is not safe for concurrent use. Independent mixers driving disjoint
// targets may be advanced in parallel with AdvanceAll.
type Mixer struct {
	root Target
	time float64

	actions map[actionKey]*Action
	cached  []*Action // insertion order
	active  []*Action // insertion order

	properties map[propertyKey]*PropertyMixer

	// Property mixers touched since the last apply. spare is the second
	// buffer swapped in while the queue is drained.
	queue []*PropertyMixer
	spare []*PropertyMixer

	tickBuf []*Action

	sink     EventSink
	debug    bool
	disposed bool
}

// NewMixer creates a mixer whose default target is root. Panics if root is
// nil.
func NewMixer(root Target) *Mixer {
	if root == nil {
		panic("animix: NewMixer with nil root")
	}
	return &Mixer{
		root:       root,
		actions:    make(map[actionKey]*Action),
		properties: make(map[propertyKey]*PropertyMixer),
	}
}

// Root returns the mixer's default target.
func (m *Mixer) Root() Target { return m.root }

// Time returns the global time: the sum of every dt passed to Advance since
// creation or the last SetTime.
func (m *Mixer) Time() float64 { return m.time }

// NumActions returns the number of cached actions.
func (m *Mixer) NumActions() int { return len(m.cached) }

// NumActiveActions returns the number of actions in the active set.
func (m *Mixer) NumActiveActions() int { return len(m.active) }

// NumBindings returns the number of live property mixers.
func (m *Mixer) NumBindings() int { return len(m.properties) }

// SetEventSink sets the receiver of loop, finished and binding-error events.
// nil disables events.
func (m *Mixer) SetEventSink(sink EventSink) { m.sink = sink }

// SetDebugMode enables per-tick stats on stderr and logging of binding
// failures.
func (m *Mixer) SetDebugMode(enabled bool) { m.debug = enabled }

func (m *Mixer) checkAlive(op string) {
	if m.disposed {
		panic("animix: " + op + " on disposed mixer")
	}
}

// --- Action cache ---

// Action returns the action playing clip on root, creating and caching it on
// first request. A nil root means the mixer's root. Repeated calls with the
// same clip and root return the same action.
func (m *Mixer) Action(clip *Clip, root Target) *Action {
	m.checkAlive("Action")
	if clip == nil {
		panic("animix: Action with nil clip")
	}
	if root == nil {
		root = m.root
	}
	key := actionKey{clip: clip.id, root: root.TargetID()}
	if a, ok := m.actions[key]; ok {
		return a
	}
	a := newAction(m, clip, root, key)
	m.actions[key] = a
	m.cached = append(m.cached, a)
	return a
}

// ExistingAction returns the cached action for clip and root, or nil.
func (m *Mixer) ExistingAction(clip *Clip, root Target) *Action {
	m.checkAlive("ExistingAction")
	if clip == nil {
		return nil
	}
	if root == nil {
		root = m.root
	}
	return m.actions[actionKey{clip: clip.id, root: root.TargetID()}]
}

// Actions returns the cached actions in creation order. The returned slice
// MUST NOT be mutated.
func (m *Mixer) Actions() []*Action { return m.cached }

// StopAllActions stops every cached action. Animated properties return to
// their rest pose on the next Advance.
func (m *Mixer) StopAllActions() {
	m.checkAlive("StopAllActions")
	for _, a := range m.cached {
		a.Stop()
	}
}

// UncacheClip removes every action playing clip.
func (m *Mixer) UncacheClip(clip *Clip) {
	m.checkAlive("UncacheClip")
	m.uncacheWhere(func(a *Action) bool { return a.key.clip == clip.id })
}

// UncacheRoot removes every action bound to root.
func (m *Mixer) UncacheRoot(root Target) {
	m.checkAlive("UncacheRoot")
	id := root.TargetID()
	m.uncacheWhere(func(a *Action) bool { return a.key.root == id })
}

// UncacheAction removes the action for clip and root, if cached. A nil root
// means the mixer's root.
func (m *Mixer) UncacheAction(clip *Clip, root Target) {
	m.checkAlive("UncacheAction")
	if a := m.ExistingAction(clip, root); a != nil {
		m.uncache(a)
	}
}

func (m *Mixer) uncacheWhere(match func(*Action) bool) {
	for i := len(m.cached) - 1; i >= 0; i-- {
		if a := m.cached[i]; match(a) {
			m.uncache(a)
		}
	}
}

// uncache stops a, releases its property mixers and drops it from the cache.
// Property mixers left without actions restore their rest pose on the next
// apply and are then removed.
func (m *Mixer) uncache(a *Action) {
	if a.activeIndex >= 0 {
		a.Stop()
	}
	for _, pm := range a.props {
		if pm == nil {
			continue
		}
		pm.refs--
		m.enqueue(pm)
	}
	a.props = nil
	delete(m.actions, a.key)
	for i, c := range m.cached {
		if c == a {
			copy(m.cached[i:], m.cached[i+1:])
			m.cached[len(m.cached)-1] = nil
			m.cached = m.cached[:len(m.cached)-1]
			break
		}
	}
}

// --- Activation ---

func (m *Mixer) activate(a *Action) {
	m.checkAlive("Play")
	if m.actions[a.key] != a {
		panic("animix: Play on an uncached action")
	}
	if a.activeIndex >= 0 {
		return
	}
	if a.props == nil {
		m.bind(a)
	}
	a.activeIndex = len(m.active)
	m.active = append(m.active, a)
	for _, pm := range a.props {
		if pm == nil {
			continue
		}
		if pm.active == 0 {
			// Unresolvable bindings are reported when applied.
			_ = pm.SaveOriginalState()
		}
		pm.active++
	}
}

func (m *Mixer) deactivate(a *Action) {
	if a.activeIndex < 0 {
		return
	}
	i := a.activeIndex
	copy(m.active[i:], m.active[i+1:])
	m.active[len(m.active)-1] = nil
	m.active = m.active[:len(m.active)-1]
	for _, b := range m.active[i:] {
		b.activeIndex--
	}
	a.activeIndex = -1
	for _, pm := range a.props {
		if pm == nil {
			continue
		}
		pm.active--
		m.enqueue(pm)
	}
}

// bind connects each track of a's clip to the shared property mixer for its
// path on a's root, creating mixers as needed. A track whose stride differs
// from the mixer already bound to that property is skipped and reported.
func (m *Mixer) bind(a *Action) {
	rootID := a.root.TargetID()
	a.props = make([]*PropertyMixer, len(a.clip.tracks))
	for i, t := range a.clip.tracks {
		key := propertyKey{root: rootID, path: t.path}
		pm, ok := m.properties[key]
		if !ok {
			pm = NewPropertyMixer(NewPropertyBinding(a.root, t.path, t.stride), t.interp)
			pm.key = key
			m.properties[key] = pm
		} else if pm.stride != t.stride {
			err := &BindingError{
				Path: t.path,
				Err:  fmt.Errorf("%w: track has %d components, property is bound with %d", ErrStrideMismatch, t.stride, pm.stride),
			}
			m.reportBindingError(a, t.path, err)
			continue
		}
		pm.refs++
		a.props[i] = pm
	}
}

// --- Tick ---

// Advance moves global time forward by dt seconds, advances every active
// action and writes each touched property once. Actions stopped during the
// tick still contribute to it. Panics if dt is negative or NaN, or the mixer
// was disposed.
func (m *Mixer) Advance(dt float64) {
	m.checkAlive("Advance")
	if dt < 0 || math.IsNaN(dt) {
		panic(fmt.Sprintf("animix: Advance with invalid dt %v", dt))
	}

	var start time.Time
	if m.debug {
		start = time.Now()
	}

	m.time += dt
	m.tickBuf = append(m.tickBuf[:0], m.active...)
	for _, a := range m.tickBuf {
		a.update(dt)
		a.accumulate()
	}
	clear(m.tickBuf)
	applied := m.applyQueue()

	if m.debug {
		m.debugLog(tickStats{
			actions:    len(m.tickBuf),
			properties: applied,
			bindings:   len(m.properties),
			elapsed:    time.Since(start),
		})
	}
}

// SetTime rewinds every cached action and the global time to 0, clearing
// loop counts and ping-pong direction, then advances by t seconds.
func (m *Mixer) SetTime(t float64) {
	m.checkAlive("SetTime")
	m.time = 0
	for _, a := range m.cached {
		a.time = 0
		a.loopCount = 0
		a.reversed = false
	}
	m.Advance(t)
}

func (m *Mixer) enqueue(pm *PropertyMixer) {
	if pm.queued {
		return
	}
	pm.queued = true
	m.queue = append(m.queue, pm)
}

// applyQueue applies every queued property mixer once and returns how many
// were applied. Mixers with no playing action restore their rest pose, and
// are dropped once no cached action references them either.
func (m *Mixer) applyQueue() int {
	q := m.queue
	m.queue = m.spare[:0]
	for _, pm := range q {
		pm.queued = false
		m.applyProperty(pm)
	}
	n := len(q)
	clear(q)
	m.spare = q[:0]
	return n
}

func (m *Mixer) applyProperty(pm *PropertyMixer) {
	var err error
	if pm.active == 0 && pm.weight == 0 {
		pm.reset()
		err = pm.RestoreOriginalState()
		if pm.refs == 0 && m.properties[pm.key] == pm {
			delete(m.properties, pm.key)
		}
	} else {
		err = pm.Apply()
		if pm.active == 0 {
			// Contribution from an action stopped this tick; restore next tick.
			m.enqueue(pm)
		}
	}

	if err != nil {
		if !pm.degraded {
			pm.degraded = true
			m.reportBindingError(nil, pm.binding.path, err)
		}
		return
	}
	pm.degraded = false
}

func (m *Mixer) emit(e Event) {
	if m.sink != nil {
		m.sink.EmitEvent(e)
	}
}

func (m *Mixer) reportBindingError(a *Action, path string, err error) {
	if m.debug {
		log.Print(err)
	}
	m.emit(Event{Type: EventBindingError, Action: a, Path: path, Err: err})
}

// --- Teardown ---

// Dispose stops every action, restores every animated property to its rest
// pose and releases all caches. Any later use of the mixer panics; Dispose
// itself may be called again.
func (m *Mixer) Dispose() {
	if m.disposed {
		return
	}
	for _, a := range m.cached {
		a.enabled = false
		a.fade = nil
		a.warp = nil
		a.activeIndex = -1
		a.props = nil
	}
	for _, pm := range m.properties {
		pm.reset()
		_ = pm.RestoreOriginalState()
	}
	clear(m.queue)
	clear(m.tickBuf)
	m.queue = nil
	m.spare = nil
	m.tickBuf = nil
	m.active = nil
	m.cached = nil
	m.actions = nil
	m.properties = nil
	m.disposed = true
}
