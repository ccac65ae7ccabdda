package daytime

import (
	"github.com/milk9111/crawler/common"
)

const (
	DefaultCycleSeconds = 20
	DefaultSkipFrames   = 32
)

// Clock owns the cyclic daytime value and throttles how often the
// environment state is recomputed. Recomputation happens every SkipFrames
// updates, or on the next update after the daytime was set explicitly.
type Clock struct {
	CycleSeconds float64
	SkipFrames   int

	daytime float64
	frame   int
	dirty   bool
	valid   bool
	state   State
}

func NewClock(start, cycleSeconds float64, skipFrames int) *Clock {
	if cycleSeconds <= 0 {
		cycleSeconds = DefaultCycleSeconds
	}
	return &Clock{
		CycleSeconds: cycleSeconds,
		SkipFrames:   skipFrames,
		daytime:      common.Wrap01(start),
	}
}

func (c *Clock) Daytime() float64 {
	return c.daytime
}

func (c *Clock) SetDaytime(v float64) {
	c.daytime = common.Wrap01(v)
	c.dirty = true
}

// Advance moves the cycle forward by dt seconds.
func (c *Clock) Advance(dt float64) {
	if c.CycleSeconds <= 0 {
		return
	}
	c.daytime = common.Wrap01(c.daytime + dt/c.CycleSeconds)
}

// Invalidate forces the next Update to recompute, e.g. after a level swap.
func (c *Clock) Invalidate() {
	c.dirty = true
}

// State returns the last computed state.
func (c *Clock) State() State {
	return c.state
}

// Update returns the current environment state and whether it was
// recomputed on this call.
func (c *Clock) Update(env Environment) (State, bool, error) {
	c.frame++
	due := !c.valid || c.dirty || c.SkipFrames <= 1 || c.frame >= c.SkipFrames
	if !due {
		return c.state, false, nil
	}

	st, err := Evaluate(c.daytime, env)
	if err != nil {
		return c.state, false, err
	}
	c.state = st
	c.valid = true
	c.dirty = false
	c.frame = 0
	return st, true, nil
}
