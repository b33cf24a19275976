package match

import (
	"math"
	"math/rand"

	"github.com/Garsondee/Tank-Arena/internal/game"
)

const (
	botFireCooldown = 20 // ticks between trigger pulls
	botLookAhead    = 40.0
	botAimTolerance = game.RotationStep
)

// Bot drives one seat through PrimaryBindings. It turns toward the enemy
// and fires whenever the line of sight is clear, and otherwise roams,
// turning away from walls ahead.
type Bot struct {
	g        *game.Game
	slot     int
	rng      *rand.Rand
	cooldown int
	turn     float64 // current roaming turn direction, -1 or +1
	turning  int     // ticks left in the current roaming turn
}

// NewBot creates a bot for the given slot of g.
func NewBot(g *game.Game, slot int, rng *rand.Rand) *Bot {
	return &Bot{g: g, slot: slot, rng: rng, turn: 1}
}

// Poll implements game.InputSource.
func (b *Bot) Poll(s *game.InputState) {
	keys := game.PrimaryBindings
	for _, k := range []game.Key{keys.Forward, keys.Backward, keys.Left, keys.Right, keys.Fire} {
		s.Release(k)
	}
	if b.cooldown > 0 {
		b.cooldown--
	}

	me, foe := b.g.Slot(b.slot), b.g.Slot(1-b.slot)
	if me == nil || foe == nil || !me.Tank.IsAlive || !foe.Tank.IsAlive {
		return
	}
	walls := b.g.Walls()
	pos := me.Tank.Position

	if game.HasLineOfSight(pos, foe.Tank.Position, walls) {
		to := foe.Tank.Position.Sub(pos)
		diff := angleDiff(math.Atan2(to.Y, to.X)*180/math.Pi, me.Tank.Direction)
		switch {
		case diff > botAimTolerance:
			s.Press(keys.Right)
		case diff < -botAimTolerance:
			s.Press(keys.Left)
		case b.cooldown == 0 && me.Tank.AmmoCount > 0:
			s.Press(keys.Fire)
			b.cooldown = botFireCooldown
		}
		return
	}

	if b.turning > 0 {
		b.turning--
		b.press(s, keys)
		return
	}
	rad := me.Tank.Direction * math.Pi / 180
	probe := pos.Add(game.Vec(math.Cos(rad), math.Sin(rad)).Scale(me.Tank.Size/2 + botLookAhead))
	if _, blocked := game.FirstWallHit(pos, probe, walls); blocked {
		if b.rng.Intn(2) == 0 {
			b.turn = -b.turn
		}
		b.turning = 10 + b.rng.Intn(30)
		b.press(s, keys)
		return
	}
	s.Press(keys.Forward)
}

func (b *Bot) press(s *game.InputState, keys game.Bindings) {
	if b.turn < 0 {
		s.Press(keys.Left)
		return
	}
	s.Press(keys.Right)
}

// angleDiff returns target-current wrapped into (-180, 180].
func angleDiff(target, current float64) float64 {
	d := math.Mod(target-current, 360)
	if d > 180 {
		d -= 360
	}
	if d <= -180 {
		d += 360
	}
	return d
}
