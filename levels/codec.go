package levels

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"
)

// Level files are YAML. Tiles are stored column by column (tiles[x][y]).
// Loading goes through a generic map so that files written by older or
// newer versions load without errors: absent keys keep their defaults and
// unknown keys are ignored.

type levelDoc struct {
	Name               string      `yaml:"name"`
	Width              int         `yaml:"width"`
	Height             int         `yaml:"height"`
	Start              [2]float64  `yaml:"start,flow"`
	StartRotation      float64     `yaml:"start_rotation"`
	SkyboxTextures     []string    `yaml:"skybox_textures"`
	AmbientLightAmount float64     `yaml:"ambient_light_amount"`
	DiffuseLights      [][]float64 `yaml:"diffuse_lights,flow"`
	FogColor           []float64   `yaml:"fog_color,flow"`
	FogDistance        float64     `yaml:"fog_distance"`
	Tiles              [][]tileDoc `yaml:"tiles"`
	Props              []propDoc   `yaml:"props,omitempty"`
	Items              []itemDoc   `yaml:"items,omitempty"`
}

type modelDoc struct {
	ModelName    string   `yaml:"model_name,omitempty"`
	TextureNames []string `yaml:"texture_names,omitempty,flow"`
	Framerate    float64  `yaml:"framerate"`
}

type tileDoc struct {
	Wall             bool     `yaml:"wall"`
	Ceiling          bool     `yaml:"ceiling"`
	CeilingHeight    float64  `yaml:"ceiling_height"`
	FloorOrientation int      `yaml:"floor_orientation"`
	Steppable        bool     `yaml:"steppable"`
	WallModel        modelDoc `yaml:"wall_model"`
	FloorModel       modelDoc `yaml:"floor_model"`
	CeilingModel     modelDoc `yaml:"ceiling_model"`
}

type scriptsDoc struct {
	Load    []string `yaml:"load,omitempty,flow"`
	Use     []string `yaml:"use,omitempty,flow"`
	Examine []string `yaml:"examine,omitempty,flow"`
	Pickup  []string `yaml:"pickup,omitempty,flow"`
}

type propDoc struct {
	Position    [2]float64 `yaml:"position,flow"`
	Orientation float64    `yaml:"orientation"`
	Caption     string     `yaml:"caption,omitempty"`
	Data        string     `yaml:"data,omitempty"`
	Model       modelDoc   `yaml:"model"`
	Scripts     scriptsDoc `yaml:"scripts"`
}

type itemDoc struct {
	DBID    string `yaml:"db_id"`
	propDoc `yaml:",inline"`
}

func toModelDoc(m AnimatedTextureModel) modelDoc {
	return modelDoc{ModelName: m.ModelName, TextureNames: m.TextureNames, Framerate: m.Framerate}
}

func toPropDoc(p *Prop) propDoc {
	return propDoc{
		Position:    [2]float64{p.Position.X, p.Position.Y},
		Orientation: p.Orientation,
		Caption:     p.Caption,
		Data:        p.Data,
		Model:       toModelDoc(p.Model),
		Scripts: scriptsDoc{
			Load:    p.Scripts.Load,
			Use:     p.Scripts.Use,
			Examine: p.Scripts.Examine,
			Pickup:  p.Scripts.Pickup,
		},
	}
}

func colorSlice(c Color) []float64 {
	return []float64{c.R, c.G, c.B}
}

// Marshal encodes the persisted state of l. Transient prop state (identity,
// usage lock) is not written.
func Marshal(l *Level) ([]byte, error) {
	doc := levelDoc{
		Name:               l.name,
		Width:              l.width,
		Height:             l.height,
		Start:              [2]float64{l.start.X, l.start.Y},
		StartRotation:      l.startRotation,
		SkyboxTextures:     l.skyboxTextures,
		AmbientLightAmount: l.ambientLightAmount,
		FogColor:           colorSlice(l.fogColor),
		FogDistance:        l.fogDistance,
		Tiles:              make([][]tileDoc, l.width),
	}
	for _, c := range l.diffuseLights {
		doc.DiffuseLights = append(doc.DiffuseLights, colorSlice(c))
	}
	for x := 0; x < l.width; x++ {
		col := make([]tileDoc, l.height)
		for y := 0; y < l.height; y++ {
			t := l.tiles[l.index(x, y)]
			col[y] = tileDoc{
				Wall:             t.Wall,
				Ceiling:          t.Ceiling,
				CeilingHeight:    t.CeilingHeight,
				FloorOrientation: t.FloorOrientation,
				Steppable:        t.Steppable,
				WallModel:        toModelDoc(t.WallModel),
				FloorModel:       toModelDoc(t.FloorModel),
				CeilingModel:     toModelDoc(t.CeilingModel),
			}
		}
		doc.Tiles[x] = col
	}
	for _, p := range l.props {
		doc.Props = append(doc.Props, toPropDoc(p))
	}
	for _, it := range l.items {
		doc.Items = append(doc.Items, itemDoc{DBID: it.DBID, propDoc: toPropDoc(&it.Prop)})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("levels: encode %q: %w", l.name, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("levels: encode %q: %w", l.name, err)
	}
	return buf.Bytes(), nil
}

func Save(w io.Writer, l *Level) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func SaveFile(path string, l *Level) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("levels: write %s: %w", path, err)
	}
	return nil
}

// Unmarshal decodes a level document on top of a default level.
func Unmarshal(data []byte) (*Level, error) {
	l := New(0, 0, nil)
	if err := LoadInto(l, data); err != nil {
		return nil, err
	}
	return l, nil
}

func Load(r io.Reader) (*Level, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("levels: read: %w", err)
	}
	return Unmarshal(data)
}

func LoadFile(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", path, err)
	}
	l, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("levels: load %s: %w", path, err)
	}
	return l, nil
}

// LoadInto overwrites the fields of l that are present in data. Props and
// items are replaced as whole lists when their key is present.
func LoadInto(l *Level, data []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("levels: decode: %w", err)
	}
	if raw == nil {
		return nil
	}

	// everything that can fail is checked before l is touched
	_, hasLights := raw["diffuse_lights"]
	var lights []Color
	if hasLights {
		list, _ := raw["diffuse_lights"].([]any)
		for _, c := range list {
			if col, ok := asColor(c); ok {
				lights = append(lights, col)
			}
		}
		if len(lights) == 0 {
			return fmt.Errorf("levels: decode diffuse_lights: %w", ErrNoDiffuseLights)
		}
	}

	columns, hasTiles := raw["tiles"].([]any)
	width, height := l.width, l.height
	if hasTiles {
		width = len(columns)
		height = 0
		for _, col := range columns {
			if rows, ok := col.([]any); ok {
				height = max(height, len(rows))
			}
		}
	}
	if err := readDimension(raw, "width", &width); err != nil {
		return err
	}
	if err := readDimension(raw, "height", &height); err != nil {
		return err
	}
	if err := CheckSize(width, height); err != nil {
		return fmt.Errorf("levels: decode: %w", err)
	}

	setString(raw, "name", &l.name)
	if hasLights {
		l.diffuseLights = lights
	}
	setFloat(raw, "ambient_light_amount", &l.ambientLightAmount)
	if v, ok := raw["skybox_textures"]; ok {
		l.skyboxTextures, _ = asStrings(v)
	}
	if c, ok := asColor(raw["fog_color"]); ok {
		l.fogColor = c
	}
	setFloat(raw, "fog_distance", &l.fogDistance)
	if v, ok := asVector(raw["start"]); ok {
		l.start = v
	}
	setFloat(raw, "start_rotation", &l.startRotation)

	if width != l.width || height != l.height {
		l.Resize(width, height)
	}

	for x, col := range columns {
		rows, _ := col.([]any)
		for y, rt := range rows {
			m, ok := rt.(map[string]any)
			if !ok || !l.InBounds(x, y) {
				continue
			}
			applyTile(&l.tiles[l.index(x, y)], m)
		}
	}

	if v, ok := raw["props"]; ok {
		l.props = nil
		list, _ := v.([]any)
		for _, rp := range list {
			m, ok := rp.(map[string]any)
			if !ok {
				continue
			}
			p := NewProp()
			applyProp(&p, m)
			l.AddProp(p)
		}
	}
	if v, ok := raw["items"]; ok {
		l.items = nil
		list, _ := v.([]any)
		for _, ri := range list {
			m, ok := ri.(map[string]any)
			if !ok {
				continue
			}
			it := Item{Prop: NewProp()}
			applyProp(&it.Prop, m)
			setString(m, "db_id", &it.DBID)
			l.AddItem(it)
		}
	}
	return nil
}

func applyTile(t *Tile, m map[string]any) {
	setBool(m, "wall", &t.Wall)
	setBool(m, "ceiling", &t.Ceiling)
	setFloat(m, "ceiling_height", &t.CeilingHeight)
	setInt(m, "floor_orientation", &t.FloorOrientation)
	applyModel(&t.WallModel, m["wall_model"])
	applyModel(&t.FloorModel, m["floor_model"])
	applyModel(&t.CeilingModel, m["ceiling_model"])
	if !setBool(m, "steppable", &t.Steppable) {
		if _, ok := m["wall"]; ok {
			t.Steppable = !t.Wall
		}
	}
}

func applyModel(dst *AnimatedTextureModel, v any) {
	m, ok := v.(map[string]any)
	if !ok {
		return
	}
	setString(m, "model_name", &dst.ModelName)
	setFloat(m, "framerate", &dst.Framerate)
	if names, ok := asStrings(m["texture_names"]); ok {
		dst.TextureNames = names
	}
}

func applyProp(p *Prop, m map[string]any) {
	if v, ok := asVector(m["position"]); ok {
		p.Position = v
	}
	setFloat(m, "orientation", &p.Orientation)
	setString(m, "caption", &p.Caption)
	setString(m, "data", &p.Data)
	applyModel(&p.Model, m["model"])
	if sm, ok := m["scripts"].(map[string]any); ok {
		for _, kind := range EventKinds {
			if names, ok := asStrings(sm[string(kind)]); ok {
				p.Scripts.Set(kind, names)
			}
		}
	}
}

func setString(m map[string]any, key string, dst *string) bool {
	v, ok := m[key]
	if !ok || v == nil {
		return false
	}
	switch s := v.(type) {
	case string:
		*dst = s
	default:
		*dst = fmt.Sprint(s)
	}
	return true
}

func setBool(m map[string]any, key string, dst *bool) bool {
	b, ok := m[key].(bool)
	if ok {
		*dst = b
	}
	return ok
}

func setFloat(m map[string]any, key string, dst *float64) bool {
	f, ok := asFloat(m[key])
	if ok {
		*dst = f
	}
	return ok
}

// readDimension reads a grid dimension, rejecting values an int cannot
// hold before they are converted.
func readDimension(m map[string]any, key string, dst *int) error {
	f, ok := asFloat(m[key])
	if !ok {
		return nil
	}
	if !(f >= 0 && f <= MaxTiles) {
		return fmt.Errorf("levels: decode %s: %w: %v", key, ErrInvalidSize, f)
	}
	*dst = int(f)
	return nil
}

func setInt(m map[string]any, key string, dst *int) bool {
	f, ok := asFloat(m[key])
	if ok {
		*dst = int(f)
	}
	return ok
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asStrings(v any) ([]string, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out, true
}

// asColor accepts [r, g, b] or {r:, g:, b:}.
func asColor(v any) (Color, bool) {
	switch c := v.(type) {
	case []any:
		if len(c) < 3 {
			return Color{}, false
		}
		r, ok1 := asFloat(c[0])
		g, ok2 := asFloat(c[1])
		b, ok3 := asFloat(c[2])
		return Color{R: r, G: g, B: b}, ok1 && ok2 && ok3
	case map[string]any:
		var col Color
		ok1 := setFloat(c, "r", &col.R)
		ok2 := setFloat(c, "g", &col.G)
		ok3 := setFloat(c, "b", &col.B)
		return col, ok1 && ok2 && ok3
	}
	return Color{}, false
}

// asVector accepts [x, y] or {x:, y:}.
func asVector(v any) (cp.Vector, bool) {
	switch c := v.(type) {
	case []any:
		if len(c) < 2 {
			return cp.Vector{}, false
		}
		x, ok1 := asFloat(c[0])
		y, ok2 := asFloat(c[1])
		return cp.Vector{X: x, Y: y}, ok1 && ok2
	case map[string]any:
		var out cp.Vector
		ok1 := setFloat(c, "x", &out.X)
		ok2 := setFloat(c, "y", &out.Y)
		return out, ok1 && ok2
	}
	return cp.Vector{}, false
}
