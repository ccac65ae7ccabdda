package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/crawler/prefabs"
	"github.com/milk9111/crawler/script"
	"github.com/milk9111/crawler/sim"
	"github.com/milk9111/crawler/store"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	maxMessages = 6
)

type GameOptions struct {
	Level string
	Store string
	Debug bool
	Watch bool
}

type Game struct {
	frames int
	debug  bool

	spec    prefabs.GameSpec
	storage store.Storage
	world   *sim.World
	watcher *prefabs.Watcher
	minimap *Minimap

	pauseUI *ebitenui.UI
	paused  bool
	quit    bool

	messages []string
}

func NewGame(opts GameOptions) (*Game, error) {
	spec, err := prefabs.LoadGameSpec()
	if err != nil {
		log.Printf("game: game.yaml: %v, using defaults", err)
	}
	db, err := prefabs.LoadDatabase()
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	storage, err := store.Open(context.Background(), opts.Store)
	if err != nil {
		return nil, fmt.Errorf("game: open store: %w", err)
	}

	g := &Game{
		debug:   opts.Debug,
		spec:    spec,
		storage: storage,
		minimap: NewMinimap(spec.Minimap),
	}
	g.world = sim.NewWorld(sim.Options{
		Config:   sim.ConfigFromSpec(spec),
		Database: db,
		Levels:   storage,
	})
	g.pauseUI = NewPauseUI(g)

	name := opts.Level
	if name == "" {
		name = spec.StartLevel
	}
	if err := g.world.LoadLevel(context.Background(), name); err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("game: %w", err)
	}

	if opts.Watch {
		g.watcher = startWatcher(opts.Store)
	}
	return g, nil
}

// startWatcher watches whichever of the prefab, script and level
// directories exist on disk. Running from a binary without the source tree
// simply disables hot reload.
func startWatcher(storeURI string) *prefabs.Watcher {
	var dirs []string
	candidates := []string{"prefabs", filepath.Join("prefabs", "scripts")}
	if storeURI != "" && !strings.Contains(storeURI, "://") {
		candidates = append(candidates, storeURI)
	}
	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return nil
	}
	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		log.Printf("game: watch %v: %v", dirs, err)
		return nil
	}
	return w
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	if err := g.storage.Close(); err != nil {
		log.Printf("game: close store: %v", err)
	}
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	g.drainChanges()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	g.frames++
	g.world.Step(1/float64(ebiten.TPS()), readInput())

	for _, ev := range g.world.Events() {
		g.handleEvent(ev)
	}
	for _, n := range g.world.Notifications() {
		g.handleNotification(n)
	}
	return nil
}

func (g *Game) handleEvent(ev sim.Event) {
	switch data := ev.Data.(type) {
	case sim.LevelLoaded:
		g.minimap.Invalidate()
		g.pushMessage(fmt.Sprintf("entered %s", data.Name))
	case sim.PropInteraction:
		if data.Handlers == 0 {
			g.pushMessage(fmt.Sprintf("nothing happens (%s)", data.Caption))
		}
	case sim.ItemPicked:
		g.pushMessage(fmt.Sprintf("picked up %s", data.Name))
	case sim.LevelFailed:
		g.pushMessage(fmt.Sprintf("cannot reach %s", data.Name))
	}
}

func (g *Game) handleNotification(n script.Notification) {
	switch n.Kind {
	case script.NotifyTileChanged:
		g.minimap.Invalidate()
	case script.NotifyCaptionChanged:
		if c, ok := n.Data.(script.CaptionChanged); ok {
			g.pushMessage(c.Caption)
		}
	}
	if g.debug {
		log.Printf("game: %s %+v", n.Kind, n.Data)
	}
}

func (g *Game) pushMessage(msg string) {
	g.messages = append(g.messages, msg)
	if len(g.messages) > maxMessages {
		g.messages = g.messages[len(g.messages)-maxMessages:]
	}
}

// drainChanges applies every pending watcher change without blocking.
func (g *Game) drainChanges() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case c, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.applyChange(c)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("game: watcher: %v", err)
		default:
			return
		}
	}
}

func (g *Game) applyChange(c prefabs.Change) {
	switch c.Kind {
	case prefabs.ChangeScript:
		name := prefabs.ScriptName(c.Path)
		n := g.world.State().Host.Registry().Invalidate(name)
		log.Printf("game: reloaded %s (%d cached)", name, n)
	case prefabs.ChangeSpec:
		switch filepath.Base(c.Path) {
		case "game.yaml":
			g.reloadSpec()
		case "database.yaml":
			g.reloadDatabase()
		default:
			g.reloadLevelFile(c.Path)
		}
	}
}

func (g *Game) reloadSpec() {
	spec, err := prefabs.LoadGameSpec()
	if err != nil {
		log.Printf("game: reload game.yaml: %v", err)
		return
	}
	g.spec = spec
	g.world.State().Config = sim.ConfigFromSpec(spec)
	g.minimap.SetSpec(spec.Minimap)
	log.Printf("game: reloaded game.yaml")
}

func (g *Game) reloadDatabase() {
	db, err := prefabs.LoadDatabase()
	if err != nil {
		log.Printf("game: reload database.yaml: %v", err)
		return
	}
	g.world.State().Database = db
	log.Printf("game: reloaded database.yaml")
}

// reloadLevelFile restarts the active level when its file was edited.
func (g *Game) reloadLevelFile(path string) {
	current := g.world.State().Level
	if current == nil {
		return
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if name != current.Name() {
		return
	}
	g.reloadLevel()
}

func (g *Game) reloadLevel() {
	current := g.world.State().Level
	if current == nil {
		return
	}
	if err := g.world.LoadLevel(context.Background(), current.Name()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Printf("game: level %s was removed", current.Name())
			return
		}
		log.Printf("game: reload level %s: %v", current.Name(), err)
	}
}

// reloadScripts drops every compiled script so the next dispatch reads
// them again.
func (g *Game) reloadScripts() {
	n := g.world.State().Host.Registry().InvalidateAll()
	g.pushMessage(fmt.Sprintf("reloaded %d scripts", n))
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(g.spec.Minimap.Background.RGBA8())

	st := g.world.State()
	g.minimap.Draw(screen, st)

	ebitenutil.DebugPrint(screen, g.hud(st))

	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) hud(st *sim.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Frames: %d    FPS: %.2f\n", g.frames, ebiten.ActualFPS())
	if st.Level != nil {
		fmt.Fprintf(&b, "Level: %s (%dx%d)\n", st.Level.Name(), st.Level.Width(), st.Level.Height())
	}
	h, v := st.Player.Rotation()
	tx, ty := st.Player.Tile()
	fmt.Fprintf(&b, "Tile: %d,%d  Heading: %.0f  Pitch: %.0f\n", tx, ty, h, v)
	fmt.Fprintf(&b, "Daytime: %.3f", st.Daytime.Daytime)
	if st.Daytime.HasSkybox {
		sky := st.Daytime.Skybox
		fmt.Fprintf(&b, "  Sky: %s -> %s (%.2f)", sky.Texture, sky.NextTexture, sky.Ratio)
	}
	b.WriteString("\n")
	if len(st.Inventory) > 0 {
		fmt.Fprintf(&b, "Inventory: %s\n", strings.Join(st.Inventory, ", "))
	}
	if g.debug {
		fmt.Fprintf(&b, "Moves: %d\n", st.Host.Tasks().Len())
	}
	for _, msg := range g.messages {
		b.WriteString("> " + msg + "\n")
	}
	return b.String()
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
