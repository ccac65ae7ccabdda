package levels

import (
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/crawler/common"
)

// Color is an RGB triple with components in [0,1].
type Color struct {
	R, G, B float64
}

func (c Color) Scale(f float64) Color {
	return Color{R: c.R * f, G: c.G * f, B: c.B * f}
}

func (c Color) Lerp(to Color, t float64) Color {
	return Color{
		R: common.Lerp(c.R, to.R, t),
		G: common.Lerp(c.G, to.G, t),
		B: common.Lerp(c.B, to.B, t),
	}
}

// AnimatedTextureModel describes a model drawn with a static texture or a
// looping sequence of textures. The core only copies and compares it.
type AnimatedTextureModel struct {
	ModelName    string
	TextureNames []string
	Framerate    float64
}

func NewAnimatedTextureModel() AnimatedTextureModel {
	return AnimatedTextureModel{Framerate: 1}
}

func (m AnimatedTextureModel) Clone() AnimatedTextureModel {
	m.TextureNames = slices.Clone(m.TextureNames)
	return m
}

func (m AnimatedTextureModel) Equal(o AnimatedTextureModel) bool {
	return m.ModelName == o.ModelName &&
		m.Framerate == o.Framerate &&
		slices.Equal(m.TextureNames, o.TextureNames)
}

// Tile is one grid cell. Steppable starts out as !Wall but is tracked
// separately and is the only field collision looks at.
type Tile struct {
	Wall             bool
	Ceiling          bool
	CeilingHeight    float64
	FloorOrientation int
	WallModel        AnimatedTextureModel
	FloorModel       AnimatedTextureModel
	CeilingModel     AnimatedTextureModel
	Steppable        bool
}

func NewTile() Tile {
	return Tile{
		CeilingHeight: 1,
		WallModel:     NewAnimatedTextureModel(),
		FloorModel:    NewAnimatedTextureModel(),
		CeilingModel:  NewAnimatedTextureModel(),
		Steppable:     true,
	}
}

// NewWallTile returns a solid, non-steppable tile.
func NewWallTile() Tile {
	t := NewTile()
	t.Wall = true
	t.Steppable = false
	return t
}

func (t Tile) Clone() Tile {
	t.WallModel = t.WallModel.Clone()
	t.FloorModel = t.FloorModel.Clone()
	t.CeilingModel = t.CeilingModel.Clone()
	return t
}

func (t Tile) Equal(o Tile) bool {
	return t.Wall == o.Wall &&
		t.Ceiling == o.Ceiling &&
		t.CeilingHeight == o.CeilingHeight &&
		t.FloorOrientation == o.FloorOrientation &&
		t.Steppable == o.Steppable &&
		t.WallModel.Equal(o.WallModel) &&
		t.FloorModel.Equal(o.FloorModel) &&
		t.CeilingModel.Equal(o.CeilingModel)
}

// IsEmpty reports whether the visible face of the tile has no model. An
// empty tile can still carry a ceiling.
func (t Tile) IsEmpty() bool {
	if t.Wall {
		return t.WallModel.ModelName == ""
	}
	return t.FloorModel.ModelName == ""
}

type EventKind string

const (
	EventLoad    EventKind = "load"
	EventUse     EventKind = "use"
	EventExamine EventKind = "examine"
	EventPickup  EventKind = "pickup"
)

var EventKinds = []EventKind{EventLoad, EventUse, EventExamine, EventPickup}

// Scripts holds the ordered handler identifiers bound to each event.
type Scripts struct {
	Load    []string
	Use     []string
	Examine []string
	Pickup  []string
}

func (s Scripts) For(kind EventKind) []string {
	switch kind {
	case EventLoad:
		return s.Load
	case EventUse:
		return s.Use
	case EventExamine:
		return s.Examine
	case EventPickup:
		return s.Pickup
	}
	return nil
}

func (s *Scripts) Set(kind EventKind, names []string) {
	names = slices.Clone(names)
	switch kind {
	case EventLoad:
		s.Load = names
	case EventUse:
		s.Use = names
	case EventExamine:
		s.Examine = names
	case EventPickup:
		s.Pickup = names
	}
}

func (s Scripts) Clone() Scripts {
	return Scripts{
		Load:    slices.Clone(s.Load),
		Use:     slices.Clone(s.Use),
		Examine: slices.Clone(s.Examine),
		Pickup:  slices.Clone(s.Pickup),
	}
}

func (s Scripts) Equal(o Scripts) bool {
	for _, k := range EventKinds {
		if !slices.Equal(s.For(k), o.For(k)) {
			return false
		}
	}
	return true
}

// Prop is an interactable, non-colliding level object. Positions are in
// logical coordinates: tile (i,j) covers [i,i+1)x[j,j+1).
type Prop struct {
	ID          int
	Model       AnimatedTextureModel
	Position    cp.Vector
	Orientation float64
	Caption     string
	Data        string
	Scripts     Scripts

	// DisableUsage is set while a scripted move is running.
	DisableUsage bool
}

func NewProp() Prop {
	return Prop{Model: NewAnimatedTextureModel()}
}

// Clone copies everything but the identity and transient usage lock.
func (p Prop) Clone() Prop {
	p.ID = 0
	p.DisableUsage = false
	p.Model = p.Model.Clone()
	p.Scripts = p.Scripts.Clone()
	return p
}

// Equal compares persisted fields only.
func (p Prop) Equal(o Prop) bool {
	return p.Position == o.Position &&
		p.Orientation == o.Orientation &&
		p.Caption == o.Caption &&
		p.Data == o.Data &&
		p.Model.Equal(o.Model) &&
		p.Scripts.Equal(o.Scripts)
}

// Item is a prop that can be picked up. DBID keys the item database.
type Item struct {
	Prop
	DBID string
}

func (it Item) Clone() Item {
	it.Prop = it.Prop.Clone()
	return it
}

func (it Item) Equal(o Item) bool {
	return it.DBID == o.DBID && it.Prop.Equal(o.Prop)
}
