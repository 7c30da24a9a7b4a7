package jsonelem

// Loop is a cooperative, single-goroutine task queue standing in for the
// microtask scheduler: triggering a change never recomputes JSON
// synchronously, it only queues a flush. A Loop and the elements attached to
// it must be confined to one goroutine; there are no locks.
type Loop struct {
	tasks []func()
}

func NewLoop() *Loop { return &Loop{} }

// Schedule appends a task. Tasks always run; there is no cancellation.
func (l *Loop) Schedule(fn func()) {
	if fn == nil {
		return
	}
	l.tasks = append(l.tasks, fn)
}

// Pending reports the number of queued tasks.
func (l *Loop) Pending() int { return len(l.tasks) }

// Turn runs exactly the tasks queued at entry, in scheduling order, and
// returns how many ran. Tasks scheduled while a turn runs land in the next
// turn; this is what makes tree updates settle one level per turn.
func (l *Loop) Turn() int {
	n := len(l.tasks)
	if n == 0 {
		return 0
	}
	batch := l.tasks[:n]
	l.tasks = append([]func(){}, l.tasks[n:]...)
	for _, fn := range batch {
		fn()
	}
	return n
}

// Settle runs turns until the queue is quiet, propagating a deeply nested
// change all the way to the root.
func (l *Loop) Settle() {
	for l.Turn() > 0 {
	}
}
