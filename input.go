package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/crawler/sim"
)

// keyTurn is the pointer offset the arrow keys stand in for.
const keyTurn = 0.1

// readInput samples one frame of controls. WASD moves, the arrow keys or
// a held right mouse button turn, E uses, X examines and F picks up.
func readInput() sim.Input {
	var in sim.Input

	if ebiten.IsKeyPressed(ebiten.KeyW) {
		in.Forward++
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		in.Forward--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) {
		in.Strafe++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) {
		in.Strafe--
	}

	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		in.Turn += keyTurn
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		in.Turn -= keyTurn
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		in.Look += keyTurn
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		in.Look -= keyTurn
	}

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		x, y := ebiten.CursorPosition()
		in.Turn = (float64(x) - baseWidth/2) / baseWidth
		in.Look = (baseHeight/2 - float64(y)) / baseHeight
	}

	in.Use = inpututil.IsKeyJustPressed(ebiten.KeyE) || inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	in.Examine = inpututil.IsKeyJustPressed(ebiten.KeyX)
	in.Pickup = inpututil.IsKeyJustPressed(ebiten.KeyF)
	return in
}
