package collision

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/crawler/levels"
)

const eps = 1e-9

// openMask returns a 6x6 mask with every listed tile blocked.
func openMask(blocked ...[2]int) *levels.CollisionMask {
	m := levels.NewCollisionMask(6, 6)
	for x := 0; x < 6; x++ {
		for y := 0; y < 6; y++ {
			m.Set(x, y, true)
		}
	}
	for _, b := range blocked {
		m.Set(b[0], b[1], false)
	}
	return m
}

func near(a, b cp.Vector) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

func TestPositionToTile(t *testing.T) {
	cases := []struct {
		p      cp.Vector
		tx, ty int
	}{
		{cp.Vector{X: 0, Y: 0}, 0, 0},
		{cp.Vector{X: 0.49, Y: 0.51}, 0, 1},
		{cp.Vector{X: 2.5, Y: 1.5}, 3, 2},
		{cp.Vector{X: -0.4, Y: 3.2}, 0, 3},
	}
	for _, c := range cases {
		tx, ty := PositionToTile(c.p)
		if tx != c.tx || ty != c.ty {
			t.Fatalf("PositionToTile(%v) = (%d,%d), want (%d,%d)", c.p, tx, ty, c.tx, c.ty)
		}
	}
}

func TestCollides(t *testing.T) {
	cases := []struct {
		name    string
		blocked [][2]int
		p       cp.Vector
		want    Sides
	}{
		{"centre", nil, cp.Vector{X: 2, Y: 2}, 0},
		{"inside_blocked", [][2]int{{2, 2}}, cp.Vector{X: 2, Y: 2}, AllSides},
		{"outside_grid", nil, cp.Vector{X: -3, Y: 2}, AllSides},
		{"west", [][2]int{{1, 2}}, cp.Vector{X: 1.65, Y: 2}, Sides(West)},
		{"east", [][2]int{{3, 2}}, cp.Vector{X: 2.35, Y: 2}, Sides(East)},
		{"north", [][2]int{{2, 1}}, cp.Vector{X: 2, Y: 1.65}, Sides(North)},
		{"south", [][2]int{{2, 3}}, cp.Vector{X: 2, Y: 2.35}, Sides(South)},
		{"padding_but_open", nil, cp.Vector{X: 1.65, Y: 2.35}, 0},
		{"west_wins_over_north", [][2]int{{1, 2}, {2, 1}}, cp.Vector{X: 1.65, Y: 1.65}, Sides(West)},
		{"x_open_falls_through_to_y", [][2]int{{2, 1}}, cp.Vector{X: 1.65, Y: 1.65}, Sides(North)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Collides(openMask(c.blocked...), c.p)
			if got != c.want {
				t.Fatalf("Collides(%v) = %s, want %s", c.p, got, c.want)
			}
		})
	}
}

func TestStepAxes(t *testing.T) {
	cases := []struct {
		dir  float64
		want cp.Vector
	}{
		{0, cp.Vector{X: 3, Y: 2}},
		{90, cp.Vector{X: 2, Y: 1}},
		{180, cp.Vector{X: 1, Y: 2}},
		{270, cp.Vector{X: 2, Y: 3}},
	}
	for _, c := range cases {
		if got := Step(cp.Vector{X: 2, Y: 2}, c.dir, 1); !near(got, c.want) {
			t.Fatalf("Step(dir=%v) = %v, want %v", c.dir, got, c.want)
		}
	}
}

func TestMoveFree(t *testing.T) {
	mask := openMask()
	got := MoveWithCollisions(mask, cp.Vector{X: 2, Y: 2}, 90, 0.5)
	if !near(got, cp.Vector{X: 2, Y: 1.5}) {
		t.Fatalf("free move = %v", got)
	}
}

func TestMoveIntoWallStopsAtPadding(t *testing.T) {
	mask := openMask([2]int{3, 2})
	got := MoveWithCollisions(mask, cp.Vector{X: 2, Y: 2}, 0, 0.5)
	want := cp.Vector{X: 2 + 0.5 - Padding - Bias, Y: 2}
	if !near(got, want) {
		t.Fatalf("move into east wall = %v, want %v", got, want)
	}
	if !Collides(mask, got).Empty() {
		t.Fatalf("resolved position still collides")
	}
}

func TestWallSlide(t *testing.T) {
	cases := []struct {
		name    string
		blocked [2]int
		start   cp.Vector
		dir     float64
		// axis that must stay put
		blockedX bool
	}{
		{"east_wall_slide_north", [2]int{3, 2}, cp.Vector{X: 2 + 0.5 - Padding - Bias, Y: 2}, 45, true},
		{"west_wall_slide_south", [2]int{1, 2}, cp.Vector{X: 2 - 0.5 + Padding + Bias, Y: 2}, 225, true},
		{"north_wall_slide_east", [2]int{2, 1}, cp.Vector{X: 2, Y: 2 - 0.5 + Padding + Bias}, 45, false},
		{"south_wall_slide_west", [2]int{2, 3}, cp.Vector{X: 2, Y: 2 + 0.5 - Padding - Bias}, 225, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			mask := openMask(c.blocked)
			got := MoveWithCollisions(mask, c.start, c.dir, 0.2)
			free := Step(c.start, c.dir, 0.2)
			if c.blockedX {
				if math.Abs(got.X-c.start.X) > eps {
					t.Fatalf("blocked x moved: %v -> %v", c.start, got)
				}
				if math.Abs(got.Y-free.Y) > eps {
					t.Fatalf("free y not advanced: got %v, want y=%v", got, free.Y)
				}
			} else {
				if math.Abs(got.Y-c.start.Y) > eps {
					t.Fatalf("blocked y moved: %v -> %v", c.start, got)
				}
				if math.Abs(got.X-free.X) > eps {
					t.Fatalf("free x not advanced: got %v, want x=%v", got, free.X)
				}
			}
		})
	}
}

func TestCornerResolvesBothAxes(t *testing.T) {
	mask := openMask([2]int{3, 2}, [2]int{2, 1})
	start := cp.Vector{X: 2.29, Y: 1.71}
	got := MoveWithCollisions(mask, start, 45, 0.2)
	want := cp.Vector{X: 2 + 0.5 - Padding - Bias, Y: 2 - 0.5 + Padding + Bias}
	if !near(got, want) {
		t.Fatalf("corner move = %v, want %v", got, want)
	}
}

func TestFullBlockReturnsInput(t *testing.T) {
	// standing on a tile that became blocked: every clamp stays inside it
	mask := openMask([2]int{2, 2})
	start := cp.Vector{X: 2.1, Y: 1.9}
	for _, dir := range []float64{0, 45, 90, 180, 300} {
		got := MoveWithCollisions(mask, start, dir, 0.3)
		if got != start {
			t.Fatalf("dir %v: got %v, want unchanged %v", dir, got, start)
		}
	}
}

func TestMoveIsPure(t *testing.T) {
	mask := openMask([2]int{3, 2}, [2]int{2, 1})
	start := cp.Vector{X: 2.2, Y: 1.8}
	first := MoveWithCollisions(mask, start, 30, 0.4)
	for i := 0; i < 10; i++ {
		if got := MoveWithCollisions(mask, start, 30, 0.4); got != first {
			t.Fatalf("call %d returned %v, first returned %v", i, got, first)
		}
	}
}

func TestResolverInvalidateTile(t *testing.T) {
	l := levels.New(5, 5, nil)
	r := NewResolver(l)
	if !r.Walkable(3, 2) {
		t.Fatalf("fresh level should be walkable")
	}

	l.SetSteppable(3, 2, false)
	if !r.Walkable(3, 2) {
		t.Fatalf("resolver must not see level edits before a sync or patch")
	}
	r.InvalidateTile(3, 2, false)
	if r.Walkable(3, 2) {
		t.Fatalf("patched tile still walkable")
	}

	got := r.Move(cp.Vector{X: 2, Y: 2}, 0, 0.5)
	if got.X >= 2.3 {
		t.Fatalf("moved into patched tile: %v", got)
	}

	l.SetSteppable(3, 2, true)
	r.Sync(l)
	if !r.Walkable(3, 2) {
		t.Fatalf("sync did not pick up the level")
	}
}
