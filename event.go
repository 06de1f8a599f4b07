package marks

import "time"

// Event types fired by the scene graph. Pointer and key events are fired by
// renderers that support input.
const (
	EventBuild      = "build"
	EventUpdate     = "update"
	EventMouseEnter = "mouseEnter"
	EventMouseExit  = "mouseExit"
	EventMousePress = "mousePress"
	EventMouseClick = "mouseClick"
	EventMouseMove  = "mouseMove"
	EventMouseWheel = "mouseWheel"
	EventKeyPress   = "keyPress"
)

// Event carries the context of a fired event. X and Y are in the
// coordinate space of the receiving item's group.
type Event struct {
	Type   string
	When   time.Time
	X, Y   float64
	Button int
	Wheel  float64
	Key    string
}

// EventHandler reacts to an event delivered to an item.
type EventHandler func(e *Event, it *Item)

// NewEvent returns an event of the given type stamped with the current time.
func NewEvent(typ string) *Event {
	return &Event{Type: typ, When: time.Now()}
}

// Handlers returns the handlers registered for typ on the group's mark.
func (g *GroupItem) Handlers(typ string) []EventHandler {
	if g.handlers == nil {
		return nil
	}
	return g.handlers[typ]
}

// Interactive reports whether pointer events should be routed into the
// group: panels always, other groups only when they have handlers.
func (g *GroupItem) Interactive() bool {
	return g.typ == MarkPanel || len(g.handlers) > 0
}

// Fire delivers e to every handler of the group, passing it as the target.
// A nil item targets the group itself.
func (g *GroupItem) Fire(e *Event, it *Item) {
	if it == nil {
		it = &g.Item
	}
	for _, h := range g.Handlers(e.Type) {
		h(e, it)
	}
}

// FireItem delivers e to the handlers of the group owning it.
func FireItem(e *Event, it *Item) {
	if it == nil || it.Group == nil {
		return
	}
	it.Group.Fire(e, it)
}
