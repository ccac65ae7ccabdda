package sim

import (
	"math"

	"github.com/milk9111/crawler/levels"
)

// DefaultSystems returns the fixed step order: input, movement with
// collision, scripted moves, interaction dispatch, then daytime. Moves
// advance before dispatch so a move started by a handler first advances
// on the following step.
func DefaultSystems() []System {
	return []System{
		&InputSystem{},
		&MovementSystem{},
		&TaskSystem{},
		&InteractionSystem{},
		&DaytimeSystem{},
	}
}

// InputSystem turns pointer offsets into heading and pitch.
type InputSystem struct{}

func (s *InputSystem) Name() string { return "input" }

func (s *InputSystem) Update(w *World, dt float64) {
	in := w.input
	if in.Turn == 0 && in.Look == 0 {
		return
	}
	h, v := w.state.Player.Rotation()
	speed := w.state.Config.RotationSpeed * dt
	w.state.Player.SetRotation(h-in.Turn*speed, v+in.Look*speed)
}

// MovementSystem walks the player through the collision resolver.
type MovementSystem struct{}

func (s *MovementSystem) Name() string { return "movement" }

func (s *MovementSystem) Update(w *World, dt float64) {
	in := w.input
	if !in.moving() || dt <= 0 {
		return
	}
	amount := math.Min(1, math.Hypot(in.Forward, in.Strafe))
	heading, _ := w.state.Player.Rotation()
	direction := heading + math.Atan2(-in.Strafe, in.Forward)*180/math.Pi
	remaining := w.state.Config.MoveSpeed * dt * amount

	pos := w.state.Player.Position()
	for remaining > 0 {
		step := math.Min(remaining, MaxStepDistance)
		pos = w.state.Resolver.Move(pos, direction, step)
		remaining -= step
	}
	w.state.Player.SetPosition(pos)
}

// InteractionSystem fires use, examine and pickup on whatever is nearest
// to the player.
type InteractionSystem struct{}

func (s *InteractionSystem) Name() string { return "interaction" }

func (s *InteractionSystem) Update(w *World, dt float64) {
	in := w.input
	if !in.Use && !in.Examine && !in.Pickup {
		return
	}
	level := w.state.Level
	if level == nil {
		return
	}
	at := w.state.Player.Logical()
	params := map[string]any{"player_x": at.X, "player_y": at.Y}

	if in.Use {
		if p, ok := level.PropNear(at, w.state.Config.UseDistance); ok {
			w.interact(p, levels.EventUse, EventPropUsed, params)
		}
	}
	if in.Examine {
		if p, ok := level.PropNear(at, w.state.Config.UseDistance); ok {
			w.interact(p, levels.EventExamine, EventPropExamined, params)
		} else if it, ok := level.ItemNear(at, w.state.Config.UseDistance); ok {
			w.interact(&it.Prop, levels.EventExamine, EventPropExamined, params)
		}
	}
	if in.Pickup {
		if it, ok := level.ItemNear(at, w.state.Config.PickupDistance); ok {
			w.pickup(it, params)
		}
	}
	w.applyLevelRequest()
}

type TaskSystem struct{}

func (s *TaskSystem) Name() string { return "tasks" }

func (s *TaskSystem) Update(w *World, dt float64) {
	w.state.Host.Update(dt)
}

// DaytimeSystem advances the clock and re-evaluates lighting on the
// clock's cadence.
type DaytimeSystem struct{}

func (s *DaytimeSystem) Name() string { return "daytime" }

func (s *DaytimeSystem) Update(w *World, dt float64) {
	clock := w.state.Clock
	clock.Advance(dt)
	if w.state.Level == nil {
		return
	}
	st, recomputed, err := clock.Update(w.state.Level)
	if err != nil {
		w.logger.Printf("sim: daytime: %v", err)
		return
	}
	if recomputed {
		w.state.Daytime = st
	}
}
