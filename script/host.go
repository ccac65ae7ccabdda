package script

import (
	"fmt"
	"log"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/crawler/common"
	"github.com/milk9111/crawler/levels"
)

// playerOffset converts between the player's collision space, where tile
// centres are integers, and the logical space scripts see.
const playerOffset = 0.5

// ToLogical maps a collision-space player position to logical space.
func ToLogical(v cp.Vector) cp.Vector {
	return cp.Vector{X: v.X + playerOffset, Y: v.Y + playerOffset}
}

// FromLogical is the inverse of ToLogical.
func FromLogical(v cp.Vector) cp.Vector {
	return cp.Vector{X: v.X - playerOffset, Y: v.Y - playerOffset}
}

type Options struct {
	Level    *levels.Level
	Player   Player
	Clock    Clock
	Mask     MaskInvalidator
	Registry *Registry
	Logger   *log.Logger
}

// Host dispatches prop events to their handlers and implements API on
// top of the live level, player and clock.
type Host struct {
	level    *levels.Level
	player   Player
	clock    Clock
	mask     MaskInvalidator
	registry *Registry
	logger   *log.Logger
	tasks    *Tasks
	notes    *Notifications
	request  *LevelRequest
}

var _ API = (*Host)(nil)

func NewHost(opts Options) *Host {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	registry := opts.Registry
	if registry == nil {
		registry = NewRegistry(nil)
	}
	notes := &Notifications{}
	return &Host{
		level:    opts.Level,
		player:   opts.Player,
		clock:    opts.Clock,
		mask:     opts.Mask,
		registry: registry,
		logger:   logger,
		tasks:    NewTasks(notes),
		notes:    notes,
	}
}

func (h *Host) Level() *levels.Level { return h.level }
func (h *Host) Registry() *Registry { return h.registry }
func (h *Host) Tasks() *Tasks { return h.tasks }
func (h *Host) Notifications() *Notifications { return h.notes }
func (h *Host) SetMaskInvalidator(m MaskInvalidator) { h.mask = m }

// SetLevel swaps the active level. Running moves belong to the old level
// and are finished first.
func (h *Host) SetLevel(level *levels.Level) {
	h.tasks.CancelAll()
	h.level = level
}

// Dispatch runs every handler p lists for kind, in order, and returns how
// many of them completed without error. A failing handler is logged and
// does not stop the rest. Use events on a prop locked by a running move
// are dropped.
func (h *Host) Dispatch(p *levels.Prop, kind levels.EventKind, params map[string]any) int {
	if p == nil {
		return 0
	}
	if kind == levels.EventUse && p.DisableUsage {
		return 0
	}
	names := p.Scripts.For(kind)
	if len(names) == 0 {
		return 0
	}
	ctx := &Context{API: h, Source: p, Event: kind, Params: params}
	ok := 0
	for _, name := range names {
		if err := h.run(name, ctx); err != nil {
			h.logger.Printf("script: prop=%d event=%s handler=%s error: %v", p.ID, kind, name, err)
			continue
		}
		ok++
	}
	return ok
}

// DispatchLoad fires load on every prop, then every item.
func (h *Host) DispatchLoad() int {
	if h.level == nil {
		return 0
	}
	n := 0
	for _, p := range h.level.Props() {
		n += h.Dispatch(p, levels.EventLoad, nil)
	}
	for _, it := range h.level.Items() {
		n += h.Dispatch(&it.Prop, levels.EventLoad, nil)
	}
	return n
}

func (h *Host) run(name string, ctx *Context) (err error) {
	handler, err := h.registry.Resolve(name)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return handler.Handle(ctx)
}

// Update advances running moves.
func (h *Host) Update(dt float64) {
	h.tasks.Advance(dt)
}

func (h *Host) PlayerPosition() (float64, float64) {
	if h.player == nil {
		return 0, 0
	}
	p := ToLogical(h.player.Position())
	return p.X, p.Y
}

func (h *Host) SetPlayerPosition(x, y float64) {
	if h.player == nil {
		return
	}
	pos := FromLogical(cp.Vector{X: x, Y: y})
	h.player.SetPosition(pos)
	h.notes.Push(NotifyPlayerMoved, PlayerMoved{Position: pos})
}

func (h *Host) PlayerRotation() (float64, float64) {
	if h.player == nil {
		return 0, 0
	}
	return h.player.Rotation()
}

func (h *Host) SetPlayerRotation(hor, ver float64) {
	if h.player == nil {
		return
	}
	h.player.SetRotation(hor, ver)
	h.notes.Push(NotifyPlayerRotated, PlayerRotated{H: hor, V: ver})
}

func (h *Host) LevelSize() (int, int) {
	if h.level == nil {
		return 0, 0
	}
	return h.level.Size()
}

func (h *Host) Daytime() float64 {
	if h.clock == nil {
		return 0
	}
	return h.clock.Daytime()
}

func (h *Host) SetDaytime(v float64) {
	if h.clock == nil {
		return
	}
	h.clock.SetDaytime(v)
	h.notes.Push(NotifyDaytimeChanged, DaytimeChanged{Daytime: common.Wrap01(v)})
}

// Prop looks up a prop or item by ID.
func (h *Host) Prop(id int) (*levels.Prop, bool) {
	if h.level == nil {
		return nil, false
	}
	if p, ok := h.level.Prop(id); ok {
		return p, true
	}
	for _, it := range h.level.Items() {
		if it.ID == id {
			return &it.Prop, true
		}
	}
	return nil, false
}

func (h *Host) Position(p *levels.Prop) (float64, float64) {
	return p.Position.X, p.Position.Y
}

func (h *Host) Data(p *levels.Prop) string {
	return p.Data
}

func (h *Host) Caption(p *levels.Prop) string {
	return p.Caption
}

func (h *Host) SetCaption(p *levels.Prop, caption string) {
	p.Caption = caption
	h.notes.Push(NotifyCaptionChanged, CaptionChanged{PropID: p.ID, Caption: caption})
}

// SetPosition teleports p, finishing any move it was making.
func (h *Host) SetPosition(p *levels.Prop, x, y float64) {
	h.tasks.Cancel(p.ID)
	p.Position = cp.Vector{X: x, Y: y}
	h.notes.Push(NotifyEntityMoved, EntityMoved{PropID: p.ID, Position: p.Position})
}

func (h *Host) Move(p *levels.Prop, x, y, duration float64) {
	h.tasks.Move(p, cp.Vector{X: x, Y: y}, duration)
}

// TileSteppable reports false outside the grid.
func (h *Host) TileSteppable(x, y int) bool {
	if h.level == nil {
		return false
	}
	ok, err := h.level.Steppable(x, y)
	return err == nil && ok
}

func (h *Host) SetTileSteppable(x, y int, steppable bool) {
	if h.level == nil || !h.level.InBounds(x, y) {
		return
	}
	h.level.SetSteppable(x, y, steppable)
	if h.mask != nil {
		h.mask.InvalidateTile(x, y, steppable)
	}
	h.notes.Push(NotifyTileChanged, TileChanged{X: x, Y: y, Steppable: steppable})
}

func (h *Host) ChangeLevel(name string, x, y, rotation float64) {
	h.request = &LevelRequest{Name: name, X: x, Y: y, Rotation: rotation}
}

// TakeLevelRequest returns and clears the pending level change.
func (h *Host) TakeLevelRequest() (LevelRequest, bool) {
	if h.request == nil {
		return LevelRequest{}, false
	}
	req := *h.request
	h.request = nil
	return req, true
}

func (h *Host) Logf(format string, args ...any) {
	h.logger.Printf("script: "+format, args...)
}
