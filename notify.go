package jsonelem

import "context"

// Notification is the payload delivered to observers after a flush: the
// element that changed, the patches since the previous flush (diffing
// instances only), and the assembly error if the tree could not produce JSON.
type Notification struct {
	Element *Element
	Patches []Op
	Err     error
}

// Observe registers fn to run after every flush of this element. Observers
// registered during dispatch do not see the in-flight notification.
func (e *Element) Observe(fn func(Notification)) {
	if fn == nil {
		return
	}
	e.observers = append(e.observers, fn)
}

// Connect marks a root element live on its loop and queues its first flush.
// Elements assigned into a slot are connected implicitly.
func (e *Element) Connect() { e.connect() }

func (e *Element) connect() {
	e.schedule()
}

// schedule moves the element from Idle to PendingFlush. Every further change
// before the flush runs coalesces into that one queued task: N mutations in a
// turn yield exactly one notification.
func (e *Element) schedule() {
	if e.pending || e.loop == nil {
		return
	}
	e.pending = true
	e.loop.Schedule(e.flush)
}

// PendingFlush reports whether a flush is queued for this element.
func (e *Element) PendingFlush() bool { return e.pending }

// flush returns the element to Idle before assembling, so mutations performed
// by observers re-enter the state machine cleanly and land in a later turn.
func (e *Element) flush() {
	e.pending = false
	n := Notification{Element: e}
	v, err := e.JSON(context.Background())
	if err != nil {
		n.Err = err
	} else if e.diffing {
		var prev any
		if e.hasSnapshot {
			prev = e.snapshot
		}
		n.Patches = Diff(prev, v)
		e.snapshot = v
		e.hasSnapshot = true
	}
	e.dispatch(n)
	if e.parent != nil {
		e.parent.childChanged(e)
	}
}

// dispatch fires over a copy of the observer list so handlers may register or
// remove observers without perturbing the in-flight delivery.
func (e *Element) dispatch(n Notification) {
	obs := make([]func(Notification), len(e.observers))
	copy(obs, e.observers)
	for _, fn := range obs {
		fn(n)
	}
}

// childChanged is the ownership edge: a flushed child tells its parent, and
// the parent schedules its own flush for the next turn. Propagation therefore
// climbs exactly one level per turn until the root settles.
func (e *Element) childChanged(*Element) {
	e.schedule()
}
