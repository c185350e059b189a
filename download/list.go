package download

// Task is the interaction loop's view of one download.
type Task struct {
	ID       string
	URL      string
	Dest     string
	Status   Status
	Received int64
	Total    int64
	Err      string
}

// List is the visible task list. It is owned by the interaction loop alone,
// which folds manager events into it; nothing else writes it.
type List struct {
	order []string
	tasks map[string]*Task
}

// NewList creates an empty task list.
func NewList() *List {
	return &List{tasks: make(map[string]*Task)}
}

// Apply folds one manager event into the list, inserting the task on first
// sight. Events for dismissed tasks re-insert them so late progress never
// panics; in practice only terminal tasks are dismissed.
func (l *List) Apply(ev Event) {
	t, ok := l.tasks[ev.ID]
	if !ok {
		t = &Task{ID: ev.ID, URL: ev.URL, Dest: ev.Dest, Total: -1}
		l.tasks[ev.ID] = t
		l.order = append(l.order, ev.ID)
	}
	t.Status = ev.Status
	if ev.Received > t.Received {
		t.Received = ev.Received
	}
	if ev.Total > 0 {
		t.Total = ev.Total
	}
	if ev.Err != "" {
		t.Err = ev.Err
	}
}

// Dismiss removes finished tasks (Completed, Failed, Cancelled). Queued and
// in-progress tasks are untouched.
func (l *List) Dismiss() {
	kept := l.order[:0]
	for _, id := range l.order {
		if l.tasks[id].Status.Terminal() {
			delete(l.tasks, id)
			continue
		}
		kept = append(kept, id)
	}
	l.order = kept
}

// Tasks returns the tasks in enqueue order.
func (l *List) Tasks() []*Task {
	out := make([]*Task, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.tasks[id])
	}
	return out
}

// Active reports whether any task is queued or transferring.
func (l *List) Active() bool {
	for _, t := range l.tasks {
		if !t.Status.Terminal() {
			return true
		}
	}
	return false
}

// Len returns the number of visible tasks.
func (l *List) Len() int { return len(l.order) }
