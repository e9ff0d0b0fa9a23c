package animix

// EventType identifies what happened to an action or binding.
type EventType uint8

const (
	// EventLoop is emitted when a looping action crosses one or more loop
	// boundaries in a tick. Event.Loops holds the number crossed.
	EventLoop EventType = iota
	// EventFinished is emitted when an action runs out of repetitions or
	// reaches the end of a LoopOnce clip.
	EventFinished
	// EventBindingError is emitted once when a property starts failing to
	// resolve or write. Event.Path and Event.Err describe the failure.
	EventBindingError
)

func (t EventType) String() string {
	switch t {
	case EventLoop:
		return "loop"
	case EventFinished:
		return "finished"
	case EventBindingError:
		return "binding-error"
	}
	return "unknown"
}

// Event is delivered to a mixer's EventSink during Advance.
type Event struct {
	Type   EventType
	Action *Action
	Loops  int
	Path   string
	Err    error
}

// EventSink receives mixer events. Handlers run synchronously inside
// Mixer.Advance; they may play or stop actions, which takes effect on the
// next tick.
type EventSink interface {
	EmitEvent(event Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(Event)

// EmitEvent implements EventSink.
func (f EventSinkFunc) EmitEvent(event Event) { f(event) }
