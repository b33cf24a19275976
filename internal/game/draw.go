package game

import (
	"image/color"
	"math"
)

var (
	backgroundColor = color.RGBA{R: 0xe8, G: 0xe4, B: 0xd8, A: 0xff}
	wallColor       = color.RGBA{R: 0x3a, G: 0x3f, B: 0x47, A: 0xff}
	bulletColor     = color.RGBA{R: 0x1c, G: 0x1c, B: 0x1c, A: 0xff}
	barrelColor     = color.RGBA{R: 0x22, G: 0x26, B: 0x2b, A: 0xff}
)

// Draw renders walls, live tanks and active bullets onto s.
func (g *Game) Draw(s Surface) {
	s.Clear(backgroundColor)

	for _, w := range g.arena.Walls() {
		s.FillRect(w.Position.X, w.Position.Y, w.Width, w.Height, wallColor)
	}

	for _, p := range g.players {
		drawTank(s, p.Tank)
	}

	for _, b := range g.bullets {
		s.FillCircle(b.Position.X, b.Position.Y, BulletRadius, bulletColor)
	}
}

func drawTank(s Surface, t *Tank) {
	if !t.IsAlive {
		return
	}
	half := t.Size / 2
	s.Save()
	s.Translate(t.Position.X, t.Position.Y)
	s.Rotate(t.Direction * math.Pi / 180)
	s.FillRect(-half, -half, t.Size, t.Size, t.Color)
	// Barrel points along +x in tank space.
	s.FillRect(0, -t.Size/10, half+muzzleGap, t.Size/5, barrelColor)
	s.Restore()
}
