package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/milk9111/crawler/daytime"
	"github.com/milk9111/crawler/levels"
	"github.com/milk9111/crawler/prefabs"
	"github.com/milk9111/crawler/store"
)

func openStore(ctx context.Context, uri string) (store.Storage, error) {
	s, err := store.Open(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}

func cmdNew(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("new")
	uri := fs.String("store", "levels", "Level directory or postgres:// DSN")
	width := fs.Int("width", 10, "Level width in tiles")
	height := fs.Int("height", 10, "Level height in tiles")
	walls := fs.Bool("walls", true, "Surround the level with walls")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("new: %v: %w", err, errUsage)
	}
	name, err := oneName(fs)
	if err != nil {
		return err
	}
	if *width < 1 || *height < 1 {
		return fmt.Errorf("new: size must be at least 1x1")
	}
	if err := levels.CheckSize(*width, *height); err != nil {
		return fmt.Errorf("new: %w", err)
	}

	l := levels.New(*width, *height, nil)
	l.SetName(name)
	if *walls {
		for x := 0; x < *width; x++ {
			for y := 0; y < *height; y++ {
				if x == 0 || y == 0 || x == *width-1 || y == *height-1 {
					l.SetTile(x, y, levels.NewWallTile())
				}
			}
		}
	}

	s, err := openStore(ctx, *uri)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.SaveLevel(ctx, name, l); err != nil {
		return err
	}
	fmt.Fprintf(out, "created %s (%dx%d)\n", name, *width, *height)
	return nil
}

func cmdInfo(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("info")
	uri := fs.String("store", "", "Level directory or postgres:// DSN; empty uses bundled levels")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("info: %v: %w", err, errUsage)
	}
	name, err := oneName(fs)
	if err != nil {
		return err
	}
	s, err := openStore(ctx, *uri)
	if err != nil {
		return err
	}
	defer s.Close()

	l, err := s.LoadLevel(ctx, name)
	if err != nil {
		return err
	}
	return describeLevel(out, l)
}

func describeLevel(out io.Writer, l *levels.Level) error {
	w, h := l.Size()
	walls, blocked, roofed := 0, 0, 0
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			t := l.MustTile(x, y)
			if t.Wall {
				walls++
			}
			if !t.Steppable {
				blocked++
			}
			if t.Ceiling {
				roofed++
			}
		}
	}
	start, rot := l.Start()

	fmt.Fprintf(out, "name:     %s\n", l.Name())
	fmt.Fprintf(out, "size:     %dx%d\n", w, h)
	fmt.Fprintf(out, "tiles:    %d walls, %d blocked, %d roofed\n", walls, blocked, roofed)
	fmt.Fprintf(out, "start:    (%.2f, %.2f) facing %.0f\n", start.X, start.Y, rot)
	fmt.Fprintf(out, "skybox:   %v\n", l.SkyboxTextures())
	fmt.Fprintf(out, "lights:   %d diffuse, ambient %.2f\n", len(l.DiffuseLights()), l.AmbientLightAmount())
	fmt.Fprintf(out, "fog:      %v at %.1f\n", l.FogColor(), l.FogDistance())

	// noon preview, handy when tuning light lists
	if st, err := daytime.Evaluate(0.5, l); err == nil {
		fmt.Fprintf(out, "noon:     diffuse %.2f %.2f %.2f\n", st.Lighting.Diffuse.R, st.Lighting.Diffuse.G, st.Lighting.Diffuse.B)
	}

	for _, p := range l.Props() {
		fmt.Fprintf(out, "prop %d:   %q at (%.2f, %.2f) data=%q\n", p.ID, p.Caption, p.Position.X, p.Position.Y, p.Data)
	}
	for _, it := range l.Items() {
		fmt.Fprintf(out, "item %d:   %s %q at (%.2f, %.2f)\n", it.ID, it.DBID, it.Caption, it.Position.X, it.Position.Y)
	}
	return l.Validate()
}

func cmdList(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("list")
	uri := fs.String("store", "", "Level directory or postgres:// DSN; empty uses bundled levels")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("list: %v: %w", err, errUsage)
	}
	s, err := openStore(ctx, *uri)
	if err != nil {
		return err
	}
	defer s.Close()
	names, err := s.ListLevels(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return nil
}

func cmdResize(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("resize")
	uri := fs.String("store", "levels", "Level directory or postgres:// DSN")
	width := fs.Int("width", 0, "New width in tiles")
	height := fs.Int("height", 0, "New height in tiles")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("resize: %v: %w", err, errUsage)
	}
	name, err := oneName(fs)
	if err != nil {
		return err
	}
	if *width < 1 || *height < 1 {
		return fmt.Errorf("resize: -width and -height must be at least 1: %w", errUsage)
	}
	if err := levels.CheckSize(*width, *height); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	return editLevel(ctx, *uri, name, func(l *levels.Level) error {
		l.Resize(*width, *height)
		fmt.Fprintf(out, "resized %s to %dx%d\n", name, *width, *height)
		return nil
	})
}

func cmdDuplicate(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("dup")
	uri := fs.String("store", "levels", "Level directory or postgres:// DSN")
	id := fs.Int("id", -1, "Prop id as shown by info")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("dup: %v: %w", err, errUsage)
	}
	name, err := oneName(fs)
	if err != nil {
		return err
	}
	return editLevel(ctx, *uri, name, func(l *levels.Level) error {
		dup, ok := l.DuplicateProp(*id)
		if !ok {
			return fmt.Errorf("dup: no prop %d in %s", *id, name)
		}
		fmt.Fprintf(out, "duplicated prop %d as %d at (%.2f, %.2f)\n", *id, dup.ID, dup.Position.X, dup.Position.Y)
		return nil
	})
}

func cmdRemoveProp(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("rm")
	uri := fs.String("store", "levels", "Level directory or postgres:// DSN")
	id := fs.Int("id", -1, "Prop id as shown by info")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("rm: %v: %w", err, errUsage)
	}
	name, err := oneName(fs)
	if err != nil {
		return err
	}
	return editLevel(ctx, *uri, name, func(l *levels.Level) error {
		if !l.RemoveProp(*id) {
			return fmt.Errorf("rm: no prop %d in %s", *id, name)
		}
		fmt.Fprintf(out, "removed prop %d\n", *id)
		return nil
	})
}

// editLevel loads name, applies fn and saves the result back.
func editLevel(ctx context.Context, uri, name string, fn func(l *levels.Level) error) error {
	s, err := openStore(ctx, uri)
	if err != nil {
		return err
	}
	defer s.Close()

	l, err := s.LoadLevel(ctx, name)
	if err != nil {
		return err
	}
	if err := fn(l); err != nil {
		return err
	}
	return s.SaveLevel(ctx, name, l)
}

// cmdConvert rewrites any readable level document (YAML or JSON) as
// canonical YAML.
func cmdConvert(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("convert")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("convert: %v: %w", err, errUsage)
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("convert: expected IN and OUT: %w", errUsage)
	}
	in, dst := fs.Arg(0), fs.Arg(1)
	l, err := levels.LoadFile(in)
	if err != nil {
		return err
	}
	if l.Name() == "" {
		base := filepath.Base(dst)
		l.SetName(base[:len(base)-len(filepath.Ext(base))])
	}
	if err := l.Validate(); err != nil {
		return err
	}
	if err := levels.SaveFile(dst, l); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", dst)
	return nil
}

// cmdDatabase prints the item and NPC types levels can refer to.
func cmdDatabase(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("db")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("db: %v: %w", err, errUsage)
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("db: unexpected arguments: %w", errUsage)
	}
	db, err := prefabs.LoadDatabase()
	if err != nil {
		return err
	}
	for _, id := range db.ItemIDs() {
		it, _ := db.Item(id)
		fmt.Fprintf(out, "item %s: %q\n", id, it.Name)
	}
	for _, id := range db.NPCIDs() {
		npc, _ := db.NPC(id)
		fmt.Fprintf(out, "npc %s: %q health=%d energy=%d\n", id, npc.Name, npc.MaxHealth, npc.MaxEnergy)
	}
	return nil
}
