package script

import (
	"maps"
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/crawler/levels"
)

type moveTask struct {
	prop     *levels.Prop
	from     cp.Vector
	to       cp.Vector
	duration float64
	elapsed  float64
}

// Tasks runs scripted prop moves. A prop is locked against use while its
// move is in flight.
type Tasks struct {
	running map[int]*moveTask
	notes   *Notifications
}

func NewTasks(notes *Notifications) *Tasks {
	return &Tasks{running: map[int]*moveTask{}, notes: notes}
}

// Move starts moving p to target over duration seconds, replacing any move
// already running for p.
func (t *Tasks) Move(p *levels.Prop, target cp.Vector, duration float64) {
	if t == nil || p == nil {
		return
	}
	p.DisableUsage = true
	if duration <= 0 {
		delete(t.running, p.ID)
		t.finish(&moveTask{prop: p, to: target})
		return
	}
	t.running[p.ID] = &moveTask{
		prop:     p,
		from:     p.Position,
		to:       target,
		duration: duration,
	}
}

// Advance moves every running task forward by dt seconds. Tasks run in
// prop ID order.
func (t *Tasks) Advance(dt float64) {
	if t == nil || len(t.running) == 0 {
		return
	}
	for _, id := range slices.Sorted(maps.Keys(t.running)) {
		task := t.running[id]
		task.elapsed += dt
		if task.elapsed >= task.duration {
			delete(t.running, id)
			t.finish(task)
			continue
		}
		task.prop.Position = task.from.Lerp(task.to, task.elapsed/task.duration)
		t.notes.Push(NotifyEntityMoved, EntityMoved{PropID: id, Position: task.prop.Position})
	}
}

// Cancel stops the move of prop id, leaving the prop at its target.
func (t *Tasks) Cancel(id int) bool {
	if t == nil {
		return false
	}
	task, ok := t.running[id]
	if !ok {
		return false
	}
	delete(t.running, id)
	t.finish(task)
	return true
}

// CancelAll stops every running move. Called before a level swap.
func (t *Tasks) CancelAll() {
	if t == nil {
		return
	}
	for _, id := range slices.Sorted(maps.Keys(t.running)) {
		t.Cancel(id)
	}
}

func (t *Tasks) Busy(id int) bool {
	if t == nil {
		return false
	}
	_, ok := t.running[id]
	return ok
}

func (t *Tasks) Len() int {
	if t == nil {
		return 0
	}
	return len(t.running)
}

func (t *Tasks) finish(task *moveTask) {
	task.prop.Position = task.to
	task.prop.DisableUsage = false
	t.notes.Push(NotifyEntityMoved, EntityMoved{PropID: task.prop.ID, Position: task.to})
}
