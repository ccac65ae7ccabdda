package levels

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jakecoffman/cp"
)

func sampleLevel() *Level {
	l := New(4, 3, nil)
	l.SetName("sample")
	l.SetSkyboxTextures([]string{"night.png", "day.png"})
	_ = l.SetLightProperties(0.25, []Color{{R: 1, G: 0.9, B: 0.8}, {R: 0.1, G: 0.1, B: 0.3}, {R: 0.5, G: 0.5, B: 0.5}})
	l.SetFogColor(Color{R: 0.3, G: 0.3, B: 0.35})
	l.SetFogDistance(12.5)
	l.SetStart(cp.Vector{X: 2.5, Y: 1.5}, 90)

	wall := NewWallTile()
	wall.WallModel = AnimatedTextureModel{ModelName: "wall_flat.obj", TextureNames: []string{"wall.png", "wall2.png"}, Framerate: 10}
	l.SetTile(0, 0, wall)

	ceil := NewTile()
	ceil.Ceiling = true
	ceil.CeilingHeight = 1.5
	ceil.FloorOrientation = 2
	ceil.CeilingModel.ModelName = "ceiling_flat.obj"
	l.SetTile(3, 2, ceil)
	l.SetSteppable(2, 1, false)

	p := NewProp()
	p.Position = cp.Vector{X: 1.5, Y: 2.5}
	p.Orientation = 45
	p.Caption = "crate"
	p.Data = "m;1.5;2.5;90"
	p.Model.ModelName = "crate.obj"
	p.Scripts.Load = []string{"crate.tengo"}
	p.Scripts.Use = []string{"crate.tengo", "log.tengo"}
	l.AddProp(p)

	it := Item{Prop: NewProp(), DBID: "lantern"}
	it.Position = cp.Vector{X: 3.5, Y: 0.5}
	it.Scripts.Pickup = []string{"pickup.tengo"}
	l.AddItem(it)
	return l
}

func assertLevelsEqual(t *testing.T, want, got *Level) {
	t.Helper()
	if got.Name() != want.Name() {
		t.Fatalf("name = %q, want %q", got.Name(), want.Name())
	}
	if got.Width() != want.Width() || got.Height() != want.Height() {
		t.Fatalf("size = %dx%d, want %dx%d", got.Width(), got.Height(), want.Width(), want.Height())
	}
	for x := 0; x < want.Width(); x++ {
		for y := 0; y < want.Height(); y++ {
			if !got.MustTile(x, y).Equal(*want.MustTile(x, y)) {
				t.Fatalf("tile (%d,%d) = %+v, want %+v", x, y, *got.MustTile(x, y), *want.MustTile(x, y))
			}
		}
	}
	if len(got.Props()) != len(want.Props()) {
		t.Fatalf("props = %d, want %d", len(got.Props()), len(want.Props()))
	}
	for i := range want.Props() {
		if !got.Props()[i].Equal(*want.Props()[i]) {
			t.Fatalf("prop %d = %+v, want %+v", i, *got.Props()[i], *want.Props()[i])
		}
	}
	if len(got.Items()) != len(want.Items()) {
		t.Fatalf("items = %d, want %d", len(got.Items()), len(want.Items()))
	}
	for i := range want.Items() {
		if !got.Items()[i].Equal(*want.Items()[i]) {
			t.Fatalf("item %d = %+v, want %+v", i, *got.Items()[i], *want.Items()[i])
		}
	}
	if len(got.SkyboxTextures()) != len(want.SkyboxTextures()) {
		t.Fatalf("skybox = %v, want %v", got.SkyboxTextures(), want.SkyboxTextures())
	}
	for i, name := range want.SkyboxTextures() {
		if got.SkyboxTextures()[i] != name {
			t.Fatalf("skybox = %v, want %v", got.SkyboxTextures(), want.SkyboxTextures())
		}
	}
	if got.AmbientLightAmount() != want.AmbientLightAmount() {
		t.Fatalf("ambient = %v, want %v", got.AmbientLightAmount(), want.AmbientLightAmount())
	}
	if len(got.DiffuseLights()) != len(want.DiffuseLights()) {
		t.Fatalf("diffuse = %v, want %v", got.DiffuseLights(), want.DiffuseLights())
	}
	for i, c := range want.DiffuseLights() {
		if got.DiffuseLights()[i] != c {
			t.Fatalf("diffuse = %v, want %v", got.DiffuseLights(), want.DiffuseLights())
		}
	}
	if got.FogColor() != want.FogColor() || got.FogDistance() != want.FogDistance() {
		t.Fatalf("fog = %v/%v, want %v/%v", got.FogColor(), got.FogDistance(), want.FogColor(), want.FogDistance())
	}
	gp, gr := got.Start()
	wp, wr := want.Start()
	if gp != wp || gr != wr {
		t.Fatalf("start = %v/%v, want %v/%v", gp, gr, wp, wr)
	}
}

func TestRoundTrip(t *testing.T) {
	want := sampleLevel()

	var buf bytes.Buffer
	if err := Save(&buf, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertLevelsEqual(t, want, got)
}

func TestRoundTripFile(t *testing.T) {
	want := sampleLevel()
	path := t.TempDir() + "/sample.yaml"
	if err := SaveFile(path, want); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	assertLevelsEqual(t, want, got)
}

func TestLoadOldSaveUsesDefaults(t *testing.T) {
	// written before fog, skybox lists, steppable, props and start existed
	old := []byte(`
name: old
width: 2
height: 2
ambient_light_amount: 0.7
tiles:
  - - {wall: true}
    - {ceiling: true, ceiling_model: {model_name: roof.obj}}
  - - {}
    - {floor_orientation: 1}
`)
	l, err := Unmarshal(old)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if l.AmbientLightAmount() != 0.7 {
		t.Fatalf("ambient = %v", l.AmbientLightAmount())
	}
	if l.FogDistance() != DefaultFogDistance || l.FogColor() != DefaultFogColor() {
		t.Fatalf("fog defaults not applied: %v %v", l.FogDistance(), l.FogColor())
	}
	if len(l.DiffuseLights()) != len(DefaultDiffuseLights()) {
		t.Fatalf("diffuse defaults not applied: %v", l.DiffuseLights())
	}
	if l.MustTile(0, 0).Steppable {
		t.Fatalf("wall without steppable key should derive steppable=false")
	}
	if !l.MustTile(1, 0).Steppable {
		t.Fatalf("empty tile should keep default steppable")
	}
	roof := l.MustTile(0, 1)
	if !roof.Ceiling || roof.CeilingHeight != 1 || roof.CeilingModel.Framerate != 1 {
		t.Fatalf("partial tile lost defaults: %+v", roof)
	}
	if l.MustTile(1, 1).FloorOrientation != 1 {
		t.Fatalf("floor orientation not loaded")
	}
	if err := l.Validate(); err != nil {
		t.Fatalf("loaded level invalid: %v", err)
	}
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	data := []byte(`
name: future
music: theme.ogg
width: 1
height: 1
tiles: [[{wall: false, glow: 3}]]
props:
  - position: [0.5, 0.5]
    sound: creak.wav
    scripts: {use: [door.tengo], hover: [x.tengo]}
`)
	l, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(l.Props()) != 1 || l.Props()[0].Scripts.Use[0] != "door.tengo" {
		t.Fatalf("props not loaded: %+v", l.Props())
	}
}

func TestLoadSizeMismatch(t *testing.T) {
	data := []byte(`
width: 3
height: 2
tiles:
  - - {wall: true}
`)
	l, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if l.Width() != 3 || l.Height() != 2 {
		t.Fatalf("size = %dx%d", l.Width(), l.Height())
	}
	if !l.IsWall(0, 0) || l.IsWall(2, 1) {
		t.Fatalf("tiles not placed by index")
	}
}

func TestLoadRejectsEmptyDiffuseLights(t *testing.T) {
	_, err := Unmarshal([]byte("width: 1\nheight: 1\ndiffuse_lights: []\n"))
	if !errors.Is(err, ErrNoDiffuseLights) {
		t.Fatalf("expected ErrNoDiffuseLights, got %v", err)
	}
}

func TestLoadAcceptsJSON(t *testing.T) {
	data := []byte(`{"name": "json", "width": 1, "height": 1, "fog_color": {"r": 1, "g": 0, "b": 0}, "tiles": [[{"wall": true}]]}`)
	l, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if l.Name() != "json" || !l.IsWall(0, 0) || l.FogColor() != (Color{R: 1}) {
		t.Fatalf("json level not decoded")
	}
}

func TestLoadIntoPartial(t *testing.T) {
	l := sampleLevel()
	props := len(l.Props())

	err := LoadInto(l, []byte("fog_distance: 3\nskybox_textures: [storm.png]\n"))
	if err != nil {
		t.Fatalf("LoadInto: %v", err)
	}
	if l.FogDistance() != 3 || len(l.SkyboxTextures()) != 1 {
		t.Fatalf("present fields not applied")
	}
	if l.Name() != "sample" || len(l.Props()) != props || l.Width() != 4 {
		t.Fatalf("absent fields were overwritten")
	}
	if !l.IsWall(0, 0) {
		t.Fatalf("tiles were reset")
	}
}

func TestLoadRejectsOversizedGrid(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"huge", "width: 4000000000\nheight: 4000000000\n"},
		{"product_over_cap", "width: 100000\nheight: 100000\n"},
		{"negative", "width: -3\nheight: 2\n"},
		{"float_overflow", "width: 1e300\nheight: 1\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(c.doc))
			if !errors.Is(err, ErrInvalidSize) {
				t.Fatalf("expected ErrInvalidSize, got %v", err)
			}
		})
	}

	l, err := Unmarshal([]byte("width: 1048576\nheight: 0\n"))
	if err != nil {
		t.Fatalf("width at the cap should load: %v", err)
	}
	if l.Width() != MaxTiles || l.Height() != 0 {
		t.Fatalf("size = %dx%d", l.Width(), l.Height())
	}
}

func TestLoadIntoFailureLeavesLevelUntouched(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"empty_lights", "name: clobbered\nfog_distance: 1\ndiffuse_lights: []\n", ErrNoDiffuseLights},
		{"bad_size", "name: clobbered\nfog_distance: 1\nwidth: -1\n", ErrInvalidSize},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			l := sampleLevel()
			err := LoadInto(l, []byte(c.doc))
			if !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
			assertLevelsEqual(t, sampleLevel(), l)
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	if _, err := Unmarshal([]byte("width: [1, 2\n")); err == nil {
		t.Fatalf("expected a decode error")
	}
}

func TestBundledLevels(t *testing.T) {
	names := BundledLevels()
	if len(names) == 0 {
		t.Fatalf("no bundled levels")
	}
	for _, name := range names {
		l, err := LoadLevelFromFS(name)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		if err := l.Validate(); err != nil {
			t.Fatalf("validate %s: %v", name, err)
		}
	}

	l, err := LoadLevelFromFS("courtyard")
	if err != nil {
		t.Fatalf("load courtyard: %v", err)
	}
	if l.Width() != 8 || l.Height() != 6 || len(l.Props()) != 4 || len(l.Items()) != 1 {
		t.Fatalf("unexpected courtyard shape %dx%d props=%d items=%d", l.Width(), l.Height(), len(l.Props()), len(l.Items()))
	}
	if l.MustTile(4, 1).Steppable || !l.MustTile(1, 1).Steppable {
		t.Fatalf("courtyard steppability derived wrong")
	}
}
