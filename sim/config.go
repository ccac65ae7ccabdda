package sim

import (
	"github.com/milk9111/crawler/daytime"
	"github.com/milk9111/crawler/prefabs"
)

// MaxStepDistance caps a single collision query so a long frame cannot
// carry the player across a whole tile.
const MaxStepDistance = 0.2

type Config struct {
	MoveSpeed      float64
	RotationSpeed  float64
	UseDistance    float64
	PickupDistance float64
	CycleSeconds   float64
	SkipFrames     int
	StartDaytime   float64
}

func DefaultConfig() Config {
	return ConfigFromSpec(prefabs.DefaultGameSpec())
}

func ConfigFromSpec(spec prefabs.GameSpec) Config {
	cfg := Config{
		MoveSpeed:      spec.MoveSpeed,
		RotationSpeed:  spec.RotationSpeed,
		UseDistance:    spec.UseDistance,
		PickupDistance: spec.PickupDistance,
		CycleSeconds:   spec.Daytime.CycleSeconds,
		SkipFrames:     spec.Daytime.SkipFrames,
		StartDaytime:   spec.Daytime.Start,
	}
	if cfg.CycleSeconds <= 0 {
		cfg.CycleSeconds = daytime.DefaultCycleSeconds
	}
	if cfg.SkipFrames <= 0 {
		cfg.SkipFrames = daytime.DefaultSkipFrames
	}
	return cfg
}
