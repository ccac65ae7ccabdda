package daytime

import (
	"errors"

	"github.com/milk9111/crawler/common"
	"github.com/milk9111/crawler/levels"
)

// TransitionRange is the share of each skybox slot spent cross-fading into
// the next texture. The fade is centred on the slot midpoint.
const TransitionRange = 0.2

var ErrNoLights = errors.New("daytime: no diffuse lights")

// Environment is the part of a level the day cycle reads.
type Environment interface {
	SkyboxTextures() []string
	DiffuseLights() []levels.Color
	AmbientLightAmount() float64
}

// Skybox is the visible texture pair and how far the second one is faded
// in.
type Skybox struct {
	Index       int
	NextIndex   int
	Texture     string
	NextTexture string
	Ratio       float64
}

type Lighting struct {
	Index   int
	Ratio   float64
	Diffuse levels.Color
	Ambient levels.Color
}

// State is everything a renderer needs for one daytime value.
type State struct {
	Daytime   float64
	Skybox    Skybox
	HasSkybox bool
	Lighting  Lighting
}

// ease keeps a texture fully visible for most of its slot and fades only
// inside the centred transition window.
func ease(raw float64) float64 {
	edge := (1 - TransitionRange) / 2
	switch {
	case raw < edge:
		return 0
	case raw > 1-edge:
		return 1
	}
	return (raw - edge) / TransitionRange
}

// SkyboxAt maps daytime to a texture pair. It reports false when there are
// no textures, in which case the skybox should be left alone.
func SkyboxAt(daytime float64, textures []string) (Skybox, bool) {
	n := len(textures)
	if n == 0 {
		return Skybox{}, false
	}
	index, raw := common.Slot(common.Wrap01(daytime), n)
	next := (index + 1) % n
	return Skybox{
		Index:       index,
		NextIndex:   next,
		Texture:     textures[index],
		NextTexture: textures[next],
		Ratio:       ease(raw),
	}, true
}

// LightingAt blends linearly between neighbouring diffuse colors. Ambient
// light is the diffuse color scaled by ambientAmount.
func LightingAt(daytime float64, lights []levels.Color, ambientAmount float64) (Lighting, error) {
	m := len(lights)
	if m == 0 {
		return Lighting{}, ErrNoLights
	}
	index, ratio := common.Slot(common.Wrap01(daytime), m)
	diffuse := lights[index].Lerp(lights[(index+1)%m], ratio)
	return Lighting{
		Index:   index,
		Ratio:   ratio,
		Diffuse: diffuse,
		Ambient: diffuse.Scale(ambientAmount),
	}, nil
}

// Evaluate combines the skybox and lighting cycles for env.
func Evaluate(daytime float64, env Environment) (State, error) {
	daytime = common.Wrap01(daytime)
	lighting, err := LightingAt(daytime, env.DiffuseLights(), env.AmbientLightAmount())
	if err != nil {
		return State{}, err
	}
	sky, ok := SkyboxAt(daytime, env.SkyboxTextures())
	return State{
		Daytime:   daytime,
		Skybox:    sky,
		HasSkybox: ok,
		Lighting:  lighting,
	}, nil
}
