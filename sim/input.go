package sim

// Input is one frame of sampled controls.
type Input struct {
	// Forward and Strafe are in [-1,1]; positive strafe is to the right.
	Forward float64
	Strafe  float64
	// Turn and Look are normalized pointer offsets from the window centre.
	Turn float64
	Look float64

	Use     bool
	Examine bool
	Pickup  bool
}

func (in Input) moving() bool {
	return in.Forward != 0 || in.Strafe != 0
}
