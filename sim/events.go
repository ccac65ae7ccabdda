package sim

// EventKind identifies world-level happenings the driver may show.
type EventKind string

const (
	EventLevelLoaded  EventKind = "level_loaded"
	EventPropUsed     EventKind = "prop_used"
	EventPropExamined EventKind = "prop_examined"
	EventItemPicked   EventKind = "item_picked"
	EventLevelFailed  EventKind = "level_failed"
)

// Event is a generic world event payload.
type Event struct {
	Kind EventKind
	Data any
}

type LevelLoaded struct {
	Name string
}

type PropInteraction struct {
	PropID   int
	Caption  string
	Handlers int
}

type ItemPicked struct {
	DBID string
	Name string
}

type LevelFailed struct {
	Name string
	Err  error
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(kind EventKind, data any) {
	if q == nil {
		return
	}
	q.items = append(q.items, Event{Kind: kind, Data: data})
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}
