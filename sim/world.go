package sim

import (
	"context"
	"fmt"
	"log"

	"github.com/milk9111/crawler/collision"
	"github.com/milk9111/crawler/daytime"
	"github.com/milk9111/crawler/levels"
	"github.com/milk9111/crawler/prefabs"
	"github.com/milk9111/crawler/script"
)

// LevelSource loads levels by name. store.Storage satisfies it.
type LevelSource interface {
	LoadLevel(ctx context.Context, name string) (*levels.Level, error)
}

type Options struct {
	Config   Config
	Registry *script.Registry
	Database *prefabs.Database
	Levels   LevelSource
	Logger   *log.Logger
	// Systems replaces DefaultSystems when set.
	Systems []System
}

// World owns the simulation state and advances it one step at a time. It
// is not safe for concurrent use.
type World struct {
	state     *State
	scheduler *Scheduler
	events    *EventQueue
	levels    LevelSource
	logger    *log.Logger
	input     Input
}

func NewWorld(opts Options) *World {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	cfg := opts.Config
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	registry := opts.Registry
	if registry == nil {
		registry = script.NewRegistry(prefabs.LoadScript)
	}

	player := &Player{}
	clock := daytime.NewClock(cfg.StartDaytime, cfg.CycleSeconds, cfg.SkipFrames)
	resolver := collision.NewResolver(nil)
	host := script.NewHost(script.Options{
		Player:   player,
		Clock:    clock,
		Mask:     resolver,
		Registry: registry,
		Logger:   logger,
	})

	systems := opts.Systems
	if systems == nil {
		systems = DefaultSystems()
	}

	return &World{
		state: &State{
			Config:   cfg,
			Player:   player,
			Clock:    clock,
			Resolver: resolver,
			Host:     host,
			Database: opts.Database,
		},
		scheduler: NewScheduler(systems...),
		events:    &EventQueue{},
		levels:    opts.Levels,
		logger:    logger,
	}
}

func (w *World) State() *State {
	return w.state
}

func (w *World) Scheduler() *Scheduler {
	return w.scheduler
}

// Events drains world events raised since the last call.
func (w *World) Events() []Event {
	return w.events.Drain()
}

// Notifications drains state changes made by scripts and scripted moves.
func (w *World) Notifications() []script.Notification {
	return w.state.Host.Notifications().Drain()
}

// SetLevel makes l the active level. Running moves are finished, the
// collision mask is rebuilt, the player is placed at the level start and
// load handlers run.
func (w *World) SetLevel(l *levels.Level) error {
	if l == nil {
		return fmt.Errorf("sim: set level: nil level")
	}
	if err := l.Validate(); err != nil {
		return fmt.Errorf("sim: set level: %w", err)
	}
	host := w.state.Host

	host.SetLevel(l)
	w.state.Level = l
	w.state.Resolver.Sync(l)

	start, rotation := l.Start()
	host.SetPlayerPosition(start.X, start.Y)
	host.SetPlayerRotation(rotation, 0)

	host.DispatchLoad()
	// a load handler may itself ask for another level; the first swap wins
	_, _ = host.TakeLevelRequest()

	w.state.Clock.Invalidate()
	if st, _, err := w.state.Clock.Update(l); err == nil {
		w.state.Daytime = st
	}
	w.events.Push(EventLevelLoaded, LevelLoaded{Name: l.Name()})
	return nil
}

// LoadLevel fetches name from the level source and activates it.
func (w *World) LoadLevel(ctx context.Context, name string) error {
	if w.levels == nil {
		return fmt.Errorf("sim: load %s: no level source", name)
	}
	l, err := w.levels.LoadLevel(ctx, name)
	if err != nil {
		return fmt.Errorf("sim: load %s: %w", name, err)
	}
	if l.Name() == "" {
		l.SetName(name)
	}
	return w.SetLevel(l)
}

// Step advances the simulation by dt seconds using in as this frame's
// controls.
func (w *World) Step(dt float64, in Input) {
	w.input = in
	w.scheduler.Update(w, dt)
	w.input = Input{}
}

func (w *World) interact(p *levels.Prop, kind levels.EventKind, evKind EventKind, params map[string]any) {
	n := w.state.Host.Dispatch(p, kind, params)
	w.events.Push(evKind, PropInteraction{PropID: p.ID, Caption: p.Caption, Handlers: n})
}

// pickup fires the item's pickup handlers, then moves it into the
// inventory.
func (w *World) pickup(it *levels.Item, params map[string]any) {
	name := it.Caption
	if t, ok := w.state.Database.Item(it.DBID); ok {
		name = t.Name
	} else if it.DBID != "" {
		w.logger.Printf("sim: item %d has unknown db_id %q", it.ID, it.DBID)
	}
	if name == "" {
		name = it.DBID
	}

	withItem := make(map[string]any, len(params)+2)
	for k, v := range params {
		withItem[k] = v
	}
	withItem["item_id"] = it.DBID
	withItem["item_name"] = name

	w.state.Host.Dispatch(&it.Prop, levels.EventPickup, withItem)
	if !w.state.Level.RemoveItem(it.ID) {
		// a pickup handler already took it
		return
	}
	w.state.Inventory = append(w.state.Inventory, it.DBID)
	w.events.Push(EventItemPicked, ItemPicked{DBID: it.DBID, Name: name})
}

// applyLevelRequest performs a level change asked for by a handler during
// this step.
func (w *World) applyLevelRequest() {
	req, ok := w.state.Host.TakeLevelRequest()
	if !ok {
		return
	}
	if err := w.LoadLevel(context.Background(), req.Name); err != nil {
		w.logger.Printf("sim: level change to %s: %v", req.Name, err)
		w.events.Push(EventLevelFailed, LevelFailed{Name: req.Name, Err: err})
		return
	}
	w.state.Host.SetPlayerPosition(req.X, req.Y)
	w.state.Host.SetPlayerRotation(req.Rotation, 0)
}
