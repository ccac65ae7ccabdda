package script

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/crawler/levels"
)

// API is everything a handler is allowed to read or change. Player and
// prop coordinates are logical: tile (i,j) covers [i,i+1)x[j,j+1).
type API interface {
	PlayerPosition() (float64, float64)
	SetPlayerPosition(x, y float64)
	PlayerRotation() (float64, float64)
	SetPlayerRotation(h, v float64)
	LevelSize() (int, int)
	Daytime() float64
	SetDaytime(v float64)

	Prop(id int) (*levels.Prop, bool)
	Position(p *levels.Prop) (float64, float64)
	Data(p *levels.Prop) string
	Caption(p *levels.Prop) string
	SetCaption(p *levels.Prop, caption string)
	SetPosition(p *levels.Prop, x, y float64)
	Move(p *levels.Prop, x, y, duration float64)

	TileSteppable(x, y int) bool
	SetTileSteppable(x, y int, steppable bool)

	// ChangeLevel asks the owner of the host to switch levels once the
	// current dispatch is over, placing the player at x, y.
	ChangeLevel(name string, x, y, rotation float64)

	Logf(format string, args ...any)
}

// Player is the movable viewpoint. Its position is in collision space,
// where tile centres sit on integer coordinates.
type Player interface {
	Position() cp.Vector
	SetPosition(cp.Vector)
	Rotation() (float64, float64)
	SetRotation(h, v float64)
}

type Clock interface {
	Daytime() float64
	SetDaytime(float64)
}

// MaskInvalidator is told about every steppability change so collision
// never reads a stale snapshot.
type MaskInvalidator interface {
	InvalidateTile(x, y int, steppable bool)
}

// LevelRequest is a pending level change made by a handler.
type LevelRequest struct {
	Name     string
	X, Y     float64
	Rotation float64
}

// Context is passed to every handler call.
type Context struct {
	API    API
	Source *levels.Prop
	Event  levels.EventKind
	Params map[string]any
}
