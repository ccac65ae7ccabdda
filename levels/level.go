package levels

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/jakecoffman/cp"
)

var (
	ErrOutOfBounds     = errors.New("tile out of bounds")
	ErrNoDiffuseLights = errors.New("level needs at least one diffuse light")
	ErrInvalidSize     = errors.New("invalid level size")
)

// MaxTiles caps width*height for levels read from documents or tools.
const MaxTiles = 1 << 20

const (
	DefaultAmbientLightAmount = 0.5
	DefaultFogDistance        = 10
)

func DefaultDiffuseLights() []Color {
	return []Color{{R: 1, G: 1, B: 1}, {R: 0.5, G: 0.5, B: 0.5}}
}

func DefaultFogColor() Color {
	return Color{R: 0.5, G: 0.5, B: 0.5}
}

// Level is the tile grid plus everything placed on it. Tiles are stored
// column-major, matching the x-then-y addressing used everywhere else.
type Level struct {
	name   string
	width  int
	height int
	tiles  []Tile

	props  []*Prop
	items  []*Item
	nextID int

	skyboxTextures     []string
	ambientLightAmount float64
	diffuseLights      []Color
	fogColor           Color
	fogDistance        float64

	start         cp.Vector
	startRotation float64
}

// New allocates a width x height level. Every cell gets its own copy of
// defaultTile, or a fresh floor tile when defaultTile is nil.
func New(width, height int, defaultTile *Tile) *Level {
	width = max(width, 0)
	height = max(height, 0)

	l := &Level{
		width:              width,
		height:             height,
		tiles:              make([]Tile, width*height),
		ambientLightAmount: DefaultAmbientLightAmount,
		diffuseLights:      DefaultDiffuseLights(),
		fogColor:           DefaultFogColor(),
		fogDistance:        DefaultFogDistance,
		start:              cp.Vector{X: 1.5, Y: 1.5},
	}
	for i := range l.tiles {
		if defaultTile != nil {
			l.tiles[i] = defaultTile.Clone()
		} else {
			l.tiles[i] = NewTile()
		}
	}
	return l
}

func (l *Level) Width() int { return l.width }
func (l *Level) Height() int { return l.height }

func (l *Level) Size() (int, int) {
	return l.width, l.height
}

func (l *Level) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < l.width && y < l.height
}

func (l *Level) index(x, y int) int {
	return x*l.height + y
}

// CheckSize reports ErrInvalidSize for negative dimensions or grids larger
// than MaxTiles.
func CheckSize(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if width > MaxTiles || height > MaxTiles || (height > 0 && width > MaxTiles/height) {
		return fmt.Errorf("%w: %dx%d exceeds %d tiles", ErrInvalidSize, width, height, MaxTiles)
	}
	return nil
}

// Resize keeps every tile whose index exists in both grids and fills the
// rest with fresh floor tiles.
func (l *Level) Resize(width, height int) {
	width = max(width, 0)
	height = max(height, 0)

	tiles := make([]Tile, width*height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			i := x*height + y
			if l.InBounds(x, y) {
				tiles[i] = l.tiles[l.index(x, y)]
			} else {
				tiles[i] = NewTile()
			}
		}
	}

	l.width = width
	l.height = height
	l.tiles = tiles
}

// Tile returns the tile at (x,y) for in-place edits.
func (l *Level) Tile(x, y int) (*Tile, error) {
	if !l.InBounds(x, y) {
		return nil, fmt.Errorf("levels: tile (%d,%d) in %dx%d level: %w", x, y, l.width, l.height, ErrOutOfBounds)
	}
	return &l.tiles[l.index(x, y)], nil
}

// MustTile is Tile for callers that already checked bounds.
func (l *Level) MustTile(x, y int) *Tile {
	t, err := l.Tile(x, y)
	if err != nil {
		panic(err)
	}
	return t
}

// SetTile stores a copy of tile. Out of range coordinates are ignored.
func (l *Level) SetTile(x, y int, tile Tile) {
	if !l.InBounds(x, y) {
		return
	}
	l.tiles[l.index(x, y)] = tile.Clone()
}

// IsWall treats everything outside the grid as solid wall. Wall face
// culling depends on this.
func (l *Level) IsWall(x, y int) bool {
	if !l.InBounds(x, y) {
		return true
	}
	return l.tiles[l.index(x, y)].Wall
}

func (l *Level) Steppable(x, y int) (bool, error) {
	t, err := l.Tile(x, y)
	if err != nil {
		return false, err
	}
	return t.Steppable, nil
}

func (l *Level) SetSteppable(x, y int, steppable bool) {
	if !l.InBounds(x, y) {
		return
	}
	l.tiles[l.index(x, y)].Steppable = steppable
}

// CollisionMask snapshots tile steppability. It is not kept in sync.
func (l *Level) CollisionMask() *CollisionMask {
	m := NewCollisionMask(l.width, l.height)
	for x := 0; x < l.width; x++ {
		for y := 0; y < l.height; y++ {
			m.Set(x, y, l.tiles[l.index(x, y)].Steppable)
		}
	}
	return m
}

func (l *Level) Name() string { return l.name }
func (l *Level) SetName(name string) { l.name = name }

func (l *Level) SkyboxTextures() []string {
	return l.skyboxTextures
}

func (l *Level) SetSkyboxTextures(names []string) {
	l.skyboxTextures = slices.Clone(names)
}

func (l *Level) AmbientLightAmount() float64 {
	return l.ambientLightAmount
}

func (l *Level) DiffuseLights() []Color {
	return l.diffuseLights
}

// SetLightProperties sets the ambient amount and the diffuse light cycle.
// The cycle needs at least one color.
func (l *Level) SetLightProperties(ambientLightAmount float64, diffuseLights []Color) error {
	if len(diffuseLights) == 0 {
		return fmt.Errorf("levels: set light properties: %w", ErrNoDiffuseLights)
	}
	l.ambientLightAmount = ambientLightAmount
	l.diffuseLights = slices.Clone(diffuseLights)
	return nil
}

func (l *Level) FogColor() Color { return l.fogColor }
func (l *Level) SetFogColor(c Color) { l.fogColor = c }
func (l *Level) FogDistance() float64 { return l.fogDistance }
func (l *Level) SetFogDistance(d float64) { l.fogDistance = d }

// Start is the logical player start position and heading in degrees.
func (l *Level) Start() (cp.Vector, float64) {
	return l.start, l.startRotation
}

func (l *Level) SetStart(pos cp.Vector, rotation float64) {
	l.start = pos
	l.startRotation = rotation
}

func (l *Level) allocID() int {
	l.nextID++
	return l.nextID
}

// AddProp stores a copy of p under a fresh identity and returns it.
func (l *Level) AddProp(p Prop) *Prop {
	stored := p.Clone()
	stored.ID = l.allocID()
	l.props = append(l.props, &stored)
	return &stored
}

func (l *Level) Props() []*Prop {
	return l.props
}

func (l *Level) Prop(id int) (*Prop, bool) {
	for _, p := range l.props {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (l *Level) RemoveProp(id int) bool {
	for i, p := range l.props {
		if p.ID == id {
			l.props = slices.Delete(l.props, i, i+1)
			return true
		}
	}
	return false
}

// DuplicateProp copies a prop and drops the copy at (1,1).
func (l *Level) DuplicateProp(id int) (*Prop, bool) {
	src, ok := l.Prop(id)
	if !ok {
		return nil, false
	}
	dup := src.Clone()
	dup.Position = cp.Vector{X: 1, Y: 1}
	return l.AddProp(dup), true
}

// PropNear returns the prop closest to pos within radius.
func (l *Level) PropNear(pos cp.Vector, radius float64) (*Prop, bool) {
	var best *Prop
	bestDist := math.Inf(1)
	for _, p := range l.props {
		d := p.Position.Distance(pos)
		if d < radius && d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, best != nil
}

func (l *Level) AddItem(it Item) *Item {
	stored := it.Clone()
	stored.ID = l.allocID()
	l.items = append(l.items, &stored)
	return &stored
}

func (l *Level) Items() []*Item {
	return l.items
}

func (l *Level) RemoveItem(id int) bool {
	for i, it := range l.items {
		if it.ID == id {
			l.items = slices.Delete(l.items, i, i+1)
			return true
		}
	}
	return false
}

func (l *Level) ItemNear(pos cp.Vector, radius float64) (*Item, bool) {
	var best *Item
	bestDist := math.Inf(1)
	for _, it := range l.items {
		d := it.Position.Distance(pos)
		if d < radius && d < bestDist {
			best, bestDist = it, d
		}
	}
	return best, best != nil
}

// Validate checks the invariants loaders and editors are expected to keep.
func (l *Level) Validate() error {
	if len(l.tiles) != l.width*l.height {
		return fmt.Errorf("levels: grid has %d tiles, want %dx%d", len(l.tiles), l.width, l.height)
	}
	if len(l.diffuseLights) == 0 {
		return fmt.Errorf("levels: validate: %w", ErrNoDiffuseLights)
	}
	if l.ambientLightAmount < 0 || l.ambientLightAmount > 1 {
		return fmt.Errorf("levels: ambient light amount %v outside [0,1]", l.ambientLightAmount)
	}
	for x := 0; x < l.width; x++ {
		for y := 0; y < l.height; y++ {
			if o := l.tiles[l.index(x, y)].FloorOrientation; o < 0 || o > 3 {
				return fmt.Errorf("levels: tile (%d,%d) floor orientation %d outside 0..3", x, y, o)
			}
		}
	}
	return nil
}
