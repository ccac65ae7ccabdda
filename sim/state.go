package sim

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/crawler/collision"
	"github.com/milk9111/crawler/common"
	"github.com/milk9111/crawler/daytime"
	"github.com/milk9111/crawler/levels"
	"github.com/milk9111/crawler/prefabs"
	"github.com/milk9111/crawler/script"
)

// Player is the viewpoint. Position is in collision space: the centre of
// tile (i,j) is (i,j).
type Player struct {
	position cp.Vector
	heading  float64
	pitch    float64
}

func (p *Player) Position() cp.Vector {
	return p.position
}

func (p *Player) SetPosition(v cp.Vector) {
	p.position = v
}

// Rotation returns heading and pitch in degrees. Heading 0 faces +x and
// grows counter-clockwise.
func (p *Player) Rotation() (float64, float64) {
	return p.heading, p.pitch
}

func (p *Player) SetRotation(h, v float64) {
	p.heading = wrapDegrees(h)
	p.pitch = common.Clamp(v, -90, 90)
}

// Logical returns the position in the coordinates props and scripts use.
func (p *Player) Logical() cp.Vector {
	return script.ToLogical(p.position)
}

func (p *Player) Tile() (int, int) {
	return collision.PositionToTile(p.position)
}

func wrapDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// State is everything one simulation step reads and writes.
type State struct {
	Config    Config
	Level     *levels.Level
	Player    *Player
	Clock     *daytime.Clock
	Resolver  *collision.Resolver
	Host      *script.Host
	Database  *prefabs.Database
	Inventory []string
	// Daytime holds the last evaluated lighting and skybox.
	Daytime daytime.State
}
