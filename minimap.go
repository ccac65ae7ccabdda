package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/crawler/common"
	"github.com/milk9111/crawler/levels"
	"github.com/milk9111/crawler/prefabs"
	"github.com/milk9111/crawler/sim"
)

// Top-left corner of the map, below the debug text.
const (
	minimapX = 16
	minimapY = 120
)

// Minimap draws the active level from above. Tiles are cached in an image
// that is rebuilt when the level or a tile changes.
type Minimap struct {
	spec  prefabs.MinimapSpec
	tiles *ebiten.Image
	level *levels.Level
	dirty bool
}

func NewMinimap(spec prefabs.MinimapSpec) *Minimap {
	return &Minimap{spec: spec, dirty: true}
}

func (m *Minimap) SetSpec(spec prefabs.MinimapSpec) {
	m.spec = spec
	m.Invalidate()
}

func (m *Minimap) Invalidate() {
	m.dirty = true
}

func (m *Minimap) Draw(screen *ebiten.Image, st *sim.State) {
	if st.Level == nil {
		return
	}
	if m.dirty || m.level != st.Level || m.tiles == nil {
		m.rebuild(st.Level)
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(minimapX, minimapY)
	screen.DrawImage(m.tiles, op)

	ts := float32(m.spec.TileSize)

	for _, p := range st.Level.Props() {
		m.drawMarker(screen, p.Position.X, p.Position.Y, ts/3, m.spec.Prop.RGBA8())
	}
	for _, it := range st.Level.Items() {
		m.drawMarker(screen, it.Position.X, it.Position.Y, ts/4, m.spec.Item.RGBA8())
	}

	pos := st.Player.Logical()
	px, py := pos.X, pos.Y
	playerColor := m.spec.Player.RGBA8()
	m.drawMarker(screen, px, py, ts/4, playerColor)

	heading, _ := st.Player.Rotation()
	rad := heading * math.Pi / 180
	x0, y0 := m.toScreen(px, py)
	x1, y1 := m.toScreen(px+math.Cos(rad)*0.75, py-math.Sin(rad)*0.75)
	vector.StrokeLine(screen, x0, y0, x1, y1, 2, playerColor, true)

	m.drawLightSwatch(screen, st)
}

func (m *Minimap) rebuild(l *levels.Level) {
	ts := m.spec.TileSize
	w, h := l.Width()*ts, l.Height()*ts
	if m.tiles == nil || m.tiles.Bounds().Dx() != w || m.tiles.Bounds().Dy() != h {
		if m.tiles != nil {
			m.tiles.Deallocate()
		}
		m.tiles = ebiten.NewImage(max(w, 1), max(h, 1))
	}
	m.tiles.Clear()

	for x := 0; x < l.Width(); x++ {
		for y := 0; y < l.Height(); y++ {
			tile := l.MustTile(x, y)
			vector.FillRect(m.tiles, float32(x*ts), float32(y*ts), float32(ts-1), float32(ts-1), m.tileColor(tile), false)
		}
	}
	m.level = l
	m.dirty = false
}

func (m *Minimap) tileColor(t *levels.Tile) color.RGBA {
	switch {
	case t.Wall:
		return m.spec.Wall.RGBA8()
	case !t.Steppable:
		return m.spec.Blocked.RGBA8()
	case t.Ceiling:
		return m.spec.Ceiling.RGBA8()
	}
	return m.spec.Floor.RGBA8()
}

// toScreen maps logical level coordinates to screen pixels.
func (m *Minimap) toScreen(x, y float64) (float32, float32) {
	ts := float64(m.spec.TileSize)
	return float32(minimapX + x*ts), float32(minimapY + y*ts)
}

func (m *Minimap) drawMarker(screen *ebiten.Image, x, y float64, size float32, clr color.RGBA) {
	sx, sy := m.toScreen(x, y)
	vector.FillRect(screen, sx-size/2, sy-size/2, size, size, clr, false)
}

// drawLightSwatch shows the current diffuse and ambient colors next to the
// map.
func (m *Minimap) drawLightSwatch(screen *ebiten.Image, st *sim.State) {
	const size = 24
	x := float32(minimapX + st.Level.Width()*m.spec.TileSize + 16)
	vector.FillRect(screen, x, minimapY, size, size, toRGBA(st.Daytime.Lighting.Diffuse), false)
	vector.FillRect(screen, x, minimapY+size+4, size, size, toRGBA(st.Daytime.Lighting.Ambient), false)
	vector.StrokeRect(screen, x, minimapY, size, size*2+4, 1, color.White, false)
}

func toRGBA(c levels.Color) color.RGBA {
	channel := func(v float64) uint8 {
		return uint8(math.Round(common.Clamp(v, 0, 1) * 255))
	}
	return color.RGBA{R: channel(c.R), G: channel(c.G), B: channel(c.B), A: 0xff}
}
