package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var spec T
	if err := LoadSpecInto(filename, &spec); err != nil {
		var zero T
		return zero, err
	}
	return spec, nil
}

// LoadSpecInto decodes filename over spec. Keys missing from the file keep
// whatever spec already held.
func LoadSpecInto[T any](filename string, spec *T) error {
	data, err := Load(filename)
	if err != nil {
		return fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	if err := yaml.Unmarshal(data, spec); err != nil {
		return fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	return nil
}

type GameSpec struct {
	StartLevel string `yaml:"start_level"`
	// MoveSpeed is in tiles per second.
	MoveSpeed float64 `yaml:"move_speed"`
	// RotationSpeed is in degrees per second at full input.
	RotationSpeed  float64     `yaml:"rotation_speed"`
	UseDistance    float64     `yaml:"use_distance"`
	PickupDistance float64     `yaml:"pickup_distance"`
	Daytime        DaytimeSpec `yaml:"daytime"`
	Minimap        MinimapSpec `yaml:"minimap"`
}

type DaytimeSpec struct {
	CycleSeconds float64 `yaml:"cycle_seconds"`
	SkipFrames   int     `yaml:"skip_frames"`
	Start        float64 `yaml:"start"`
}

type MinimapSpec struct {
	TileSize   int       `yaml:"tile_size"`
	Floor      YAMLColor `yaml:"floor"`
	Wall       YAMLColor `yaml:"wall"`
	Blocked    YAMLColor `yaml:"blocked"`
	Ceiling    YAMLColor `yaml:"ceiling"`
	Player     YAMLColor `yaml:"player"`
	Prop       YAMLColor `yaml:"prop"`
	Item       YAMLColor `yaml:"item"`
	Background YAMLColor `yaml:"background"`
}

func DefaultGameSpec() GameSpec {
	return GameSpec{
		StartLevel:     "courtyard",
		MoveSpeed:      9,
		RotationSpeed:  1500,
		UseDistance:    1.5,
		PickupDistance: 1,
		Daytime: DaytimeSpec{
			CycleSeconds: 20,
			SkipFrames:   32,
			Start:        0.5,
		},
		Minimap: MinimapSpec{
			TileSize:   32,
			Floor:      YAMLColor{colornames.Darkolivegreen},
			Wall:       YAMLColor{colornames.Dimgray},
			Blocked:    YAMLColor{colornames.Saddlebrown},
			Ceiling:    YAMLColor{colornames.Darkslategray},
			Player:     YAMLColor{colornames.Gold},
			Prop:       YAMLColor{colornames.Peru},
			Item:       YAMLColor{colornames.Deepskyblue},
			Background: YAMLColor{colornames.Black},
		},
	}
}

// LoadGameSpec reads game.yaml over the defaults.
func LoadGameSpec() (GameSpec, error) {
	spec := DefaultGameSpec()
	if err := LoadSpecInto("game.yaml", &spec); err != nil {
		return DefaultGameSpec(), err
	}
	if err := spec.Validate(); err != nil {
		return DefaultGameSpec(), err
	}
	return spec, nil
}

func (s GameSpec) Validate() error {
	switch {
	case s.MoveSpeed <= 0:
		return fmt.Errorf("prefabs: game.yaml: move_speed must be positive")
	case s.Daytime.CycleSeconds <= 0:
		return fmt.Errorf("prefabs: game.yaml: daytime.cycle_seconds must be positive")
	case s.UseDistance <= 0 || s.PickupDistance <= 0:
		return fmt.Errorf("prefabs: game.yaml: interaction distances must be positive")
	}
	return nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	if named, ok := colornames.Map[strings.ToLower(value.Value)]; ok {
		c.Color = named
		return nil
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}

// RGBA8 returns the color as 8-bit channels, falling back to opaque black.
func (c YAMLColor) RGBA8() color.RGBA {
	if c.Color == nil {
		return color.RGBA{A: 255}
	}
	return color.RGBAModel.Convert(c.Color).(color.RGBA)
}
