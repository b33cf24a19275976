package app

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/Tank-Arena/internal/game"
)

// keyMap binds engine keys to physical keys.
var keyMap = map[game.Key]ebiten.Key{
	game.KeyW:     ebiten.KeyW,
	game.KeyA:     ebiten.KeyA,
	game.KeyS:     ebiten.KeyS,
	game.KeyD:     ebiten.KeyD,
	game.KeyJ:     ebiten.KeyJ,
	game.KeyUp:    ebiten.KeyArrowUp,
	game.KeyDown:  ebiten.KeyArrowDown,
	game.KeyLeft:  ebiten.KeyArrowLeft,
	game.KeyRight: ebiten.KeyArrowRight,
	game.Key1:     ebiten.KeyDigit1,
}

// Keyboard feeds the ebiten keyboard into the engine. It must be polled
// from ebiten's Update.
type Keyboard struct{}

func (Keyboard) Poll(state *game.InputState) {
	for k, ek := range keyMap {
		state.Set(k, ebiten.IsKeyPressed(ek))
	}
}
