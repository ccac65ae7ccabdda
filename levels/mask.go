package levels

// CollisionMask is a snapshot of per-tile steppability. Cells outside the
// grid are never walkable.
type CollisionMask struct {
	width  int
	height int
	cells  []bool
}

func NewCollisionMask(width, height int) *CollisionMask {
	width = max(width, 0)
	height = max(height, 0)
	return &CollisionMask{width: width, height: height, cells: make([]bool, width*height)}
}

func (m *CollisionMask) Size() (int, int) {
	if m == nil {
		return 0, 0
	}
	return m.width, m.height
}

func (m *CollisionMask) Walkable(x, y int) bool {
	if m == nil || x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.cells[x*m.height+y]
}

// Set patches one cell. Out of range coordinates are ignored.
func (m *CollisionMask) Set(x, y int, walkable bool) {
	if m == nil || x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}
	m.cells[x*m.height+y] = walkable
}
