package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/crawler/levels"
)

func runTool(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), args, &out)
	return out.String(), err
}

func TestNewInfoResize(t *testing.T) {
	dir := t.TempDir()

	if _, err := runTool(t, "new", "-store", dir, "-width", "6", "-height", "4", "crypt"); err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := runTool(t, "info", "-store", dir, "crypt")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if !strings.Contains(out, "size:     6x4") || !strings.Contains(out, "16 walls") {
		t.Fatalf("info output:\n%s", out)
	}

	if _, err := runTool(t, "resize", "-store", dir, "-width", "3", "-height", "3", "crypt"); err != nil {
		t.Fatalf("resize: %v", err)
	}
	l, err := levels.LoadFile(filepath.Join(dir, "crypt.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if l.Width() != 3 || l.Height() != 3 {
		t.Fatalf("size after resize = %dx%d", l.Width(), l.Height())
	}

	out, err = runTool(t, "list", "-store", dir)
	if err != nil || strings.TrimSpace(out) != "crypt" {
		t.Fatalf("list = %q, %v", out, err)
	}
}

func TestDuplicateAndRemoveProp(t *testing.T) {
	dir := t.TempDir()
	l := levels.New(4, 4, nil)
	p := levels.NewProp()
	p.Position = cp.Vector{X: 2.5, Y: 2.5}
	p.Caption = "barrel"
	l.AddProp(p)
	if err := levels.SaveFile(filepath.Join(dir, "store.yaml"), l); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}

	// ids are assigned on load, starting at 1
	out, err := runTool(t, "dup", "-store", dir, "-id", "1", "store")
	if err != nil {
		t.Fatalf("dup: %v", err)
	}
	if !strings.Contains(out, "at (1.00, 1.00)") {
		t.Fatalf("dup output = %q", out)
	}
	got, _ := levels.LoadFile(filepath.Join(dir, "store.yaml"))
	if len(got.Props()) != 2 || got.Props()[1].Caption != "barrel" {
		t.Fatalf("props after dup = %d", len(got.Props()))
	}

	if _, err := runTool(t, "rm", "-store", dir, "-id", "1", "store"); err != nil {
		t.Fatalf("rm: %v", err)
	}
	got, _ = levels.LoadFile(filepath.Join(dir, "store.yaml"))
	if len(got.Props()) != 1 || got.Props()[0].Position != (cp.Vector{X: 1, Y: 1}) {
		t.Fatalf("props after rm = %+v", got.Props())
	}

	if _, err := runTool(t, "rm", "-store", dir, "-id", "42", "store"); err == nil {
		t.Fatalf("expected an error for a missing prop")
	}
}

func TestConvertJSON(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "old.json")
	if err := os.WriteFile(in, []byte(`{"width": 2, "height": 1, "tiles": [[{"wall": true}], [{}]]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	dst := filepath.Join(dir, "new.yaml")
	if _, err := runTool(t, "convert", in, dst); err != nil {
		t.Fatalf("convert: %v", err)
	}
	l, err := levels.LoadFile(dst)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if l.Name() != "new" || !l.IsWall(0, 0) || l.IsWall(1, 0) {
		t.Fatalf("converted level wrong: %s", l.Name())
	}
}

func TestInfoBundled(t *testing.T) {
	out, err := runTool(t, "info", "courtyard")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if !strings.Contains(out, `"cellar hatch"`) || !strings.Contains(out, "item") {
		t.Fatalf("info output:\n%s", out)
	}
}

func TestNewRejectsOversizedLevel(t *testing.T) {
	dir := t.TempDir()
	_, err := runTool(t, "new", "-store", dir, "-width", "100000", "-height", "100000", "vast")
	if !errors.Is(err, levels.ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "vast.yaml")); !os.IsNotExist(err) {
		t.Fatalf("oversized level was written: %v", err)
	}
}

func TestDatabaseListing(t *testing.T) {
	out, err := runTool(t, "db")
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	for _, want := range []string{`item lantern: "Lantern"`, "npc rat:", "npc keeper:", "health=100 energy=100"} {
		if !strings.Contains(out, want) {
			t.Fatalf("db output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "item key") > strings.Index(out, "item lantern") {
		t.Fatalf("items not sorted:\n%s", out)
	}
}

func TestUsageErrors(t *testing.T) {
	cases := [][]string{
		nil,
		{"bogus"},
		{"info"},
		{"resize", "-store", t.TempDir(), "x"},
		{"convert", "only-one"},
		{"new", "-nope"},
		{"db", "extra"},
	}
	for _, args := range cases {
		if _, err := runTool(t, args...); !errors.Is(err, errUsage) {
			t.Fatalf("args %v: expected usage error, got %v", args, err)
		}
	}
}
