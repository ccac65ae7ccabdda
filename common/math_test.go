package common

import (
	"math"
	"testing"
)

func TestWrap01(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{0.25, 0.25},
		{1, 0},
		{1.5, 0.5},
		{-0.25, 0.75},
		{3, 0},
	}
	for _, c := range cases {
		if got := Wrap01(c.in); math.Abs(got-c.want) > 1e-12 {
			t.Fatalf("Wrap01(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSlot(t *testing.T) {
	cases := []struct {
		name      string
		t         float64
		n         int
		wantIndex int
		wantRatio float64
	}{
		{"two_slots_start", 0, 2, 0, 0},
		{"two_slots_quarter", 0.25, 2, 0, 0.5},
		{"two_slots_second", 0.75, 2, 1, 0.5},
		{"three_slots", 0.5, 3, 1, 0.5},
		{"empty", 0.5, 0, 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			idx, ratio := Slot(c.t, c.n)
			if idx != c.wantIndex {
				t.Fatalf("index = %d, want %d", idx, c.wantIndex)
			}
			if math.Abs(ratio-c.wantRatio) > 1e-9 {
				t.Fatalf("ratio = %v, want %v", ratio, c.wantRatio)
			}
		})
	}
}
