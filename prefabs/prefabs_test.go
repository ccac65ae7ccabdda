package prefabs

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestCleanScriptPath(t *testing.T) {
	cases := map[string]string{
		"door.tengo":                 "scripts/door.tengo",
		"scripts/door.tengo":         "scripts/door.tengo",
		"prefabs/scripts/door.tengo": "scripts/door.tengo",
		"prefabs/door.tengo":         "scripts/door.tengo",
		"":                           "",
	}
	for in, want := range cases {
		if got := cleanScriptPath(in); got != want {
			t.Fatalf("cleanScriptPath(%q) = %q, want %q", in, got, want)
		}
	}
	if got := ScriptName(filepath.Join("prefabs", "scripts", "crate.tengo")); got != "crate.tengo" {
		t.Fatalf("ScriptName = %q", got)
	}
}

func TestBundledScripts(t *testing.T) {
	for _, name := range []string{"door.tengo", "crate.tengo", "examine.tengo", "pickup.tengo"} {
		src, err := LoadScript(name)
		if err != nil {
			t.Fatalf("LoadScript(%s): %v", name, err)
		}
		if len(src) == 0 {
			t.Fatalf("%s is empty", name)
		}
	}
	if _, err := LoadScript("missing.tengo"); err == nil {
		t.Fatalf("expected an error for a missing script")
	}
}

func TestLoadGameSpec(t *testing.T) {
	spec, err := LoadGameSpec()
	if err != nil {
		t.Fatalf("LoadGameSpec: %v", err)
	}
	if spec.MoveSpeed != 9 || spec.RotationSpeed != 1500 || spec.UseDistance != 1.5 {
		t.Fatalf("unexpected movement config: %+v", spec)
	}
	if spec.Daytime.CycleSeconds != 20 || spec.Daytime.SkipFrames != 32 || spec.Daytime.Start != 0.5 {
		t.Fatalf("unexpected daytime config: %+v", spec.Daytime)
	}
	if spec.Minimap.Floor.RGBA8() != (color.RGBA{R: 0x55, G: 0x6b, B: 0x2f, A: 0xff}) {
		t.Fatalf("floor color = %v", spec.Minimap.Floor.RGBA8())
	}
}

func TestGameSpecPartialKeepsDefaults(t *testing.T) {
	spec := DefaultGameSpec()
	if err := yaml.Unmarshal([]byte("move_speed: 4\nminimap: {wall: '#ff0000'}\n"), &spec); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if spec.MoveSpeed != 4 || spec.RotationSpeed != 1500 {
		t.Fatalf("speeds = %v/%v", spec.MoveSpeed, spec.RotationSpeed)
	}
	if spec.Minimap.Wall.RGBA8() != (color.RGBA{R: 255, A: 255}) {
		t.Fatalf("wall = %v", spec.Minimap.Wall.RGBA8())
	}
	if spec.Minimap.TileSize != 32 || spec.Minimap.Player.Color == nil {
		t.Fatalf("untouched minimap fields lost: %+v", spec.Minimap)
	}
}

func TestGameSpecValidate(t *testing.T) {
	bad := DefaultGameSpec()
	bad.Daytime.CycleSeconds = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected a validation error")
	}
}

func TestYAMLColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"'#102030'", color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, true},
		{"'#10203080'", color.RGBA{R: 0x08, G: 0x10, B: 0x18, A: 0x80}, true},
		{"Gold", color.RGBA{R: 255, G: 215, A: 255}, true},
		{"'#12'", color.RGBA{}, false},
		{"[1, 2, 3]", color.RGBA{}, false},
		{"'#zz0000'", color.RGBA{}, false},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			var got YAMLColor
			err := yaml.Unmarshal([]byte(c.in), &got)
			if (err == nil) != c.ok {
				t.Fatalf("err = %v, want ok=%v", err, c.ok)
			}
			if c.ok && got.RGBA8() != c.want {
				t.Fatalf("color = %v, want %v", got.RGBA8(), c.want)
			}
		})
	}
}

func TestLoadDatabase(t *testing.T) {
	db, err := LoadDatabase()
	if err != nil {
		t.Fatalf("LoadDatabase: %v", err)
	}
	lantern, ok := db.Item("lantern")
	if !ok || lantern.Name != "Lantern" {
		t.Fatalf("lantern = %+v, %v", lantern, ok)
	}
	keeper, ok := db.NPC("keeper")
	if !ok || keeper.MaxHealth != 100 || keeper.MaxEnergy != 100 {
		t.Fatalf("npc defaults not applied: %+v", keeper)
	}
	rat, _ := db.NPC("rat")
	if rat.MaxHealth != 10 || rat.MaxEnergy != 40 {
		t.Fatalf("rat = %+v", rat)
	}
	if ids := db.ItemIDs(); strings.Join(ids, ",") != "key,lantern,rope" {
		t.Fatalf("ItemIDs = %v", ids)
	}
}

func TestDatabaseRejectsDuplicates(t *testing.T) {
	cases := []DatabaseSpec{
		{Items: []ItemType{{ID: "a"}, {ID: "a"}}},
		{Items: []ItemType{{Name: "nameless"}}},
		{NPCs: []any{map[string]any{"id": "x"}, map[string]any{"id": "x"}}},
		{NPCs: []any{map[string]any{"name": "no id"}}},
	}
	for i, spec := range cases {
		if _, err := NewDatabase(spec); err == nil {
			t.Fatalf("case %d: expected an error", i)
		}
	}
}

func TestWatcherReportsScriptEdits(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	script := filepath.Join(dir, "crate.tengo")
	if err := os.WriteFile(script, []byte("x := 1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case change := <-w.Events:
		if change.Kind != ChangeScript || filepath.Base(change.Path) != "crate.tengo" {
			t.Fatalf("change = %+v", change)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no change reported")
	}
}

func TestClassify(t *testing.T) {
	if k, ok := classify("a/b/game.YAML"); !ok || k != ChangeSpec {
		t.Fatalf("yaml not classified as spec")
	}
	if k, ok := classify("door.tengo"); !ok || k != ChangeScript {
		t.Fatalf("tengo not classified as script")
	}
	if _, ok := classify("door.lua"); ok {
		t.Fatalf("unexpected classification")
	}
}
