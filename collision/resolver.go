package collision

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/crawler/levels"
)

// Resolver moves the player against a borrowed steppability snapshot. The
// snapshot only changes through Sync and InvalidateTile.
type Resolver struct {
	mask *levels.CollisionMask
}

func NewResolver(level *levels.Level) *Resolver {
	r := &Resolver{}
	r.Sync(level)
	return r
}

// Sync re-takes the snapshot from level. A nil level leaves nothing
// walkable.
func (r *Resolver) Sync(level *levels.Level) {
	if level == nil {
		r.mask = levels.NewCollisionMask(0, 0)
		return
	}
	r.mask = level.CollisionMask()
}

// InvalidateTile patches a single cell after its steppability changed.
func (r *Resolver) InvalidateTile(x, y int, steppable bool) {
	r.mask.Set(x, y, steppable)
}

func (r *Resolver) Walkable(x, y int) bool {
	return r.mask.Walkable(x, y)
}

func (r *Resolver) Move(pos cp.Vector, direction, distance float64) cp.Vector {
	return MoveWithCollisions(r.mask, pos, direction, distance)
}
