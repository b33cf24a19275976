package game

import "image/color"

const (
	TankSpeed      = 2.0
	TankHealth     = 100
	MaxAmmo        = 5
	ReloadInterval = 5000.0 // ms per round
	// RotationStep is the heading change in degrees applied per tick while a
	// rotate key is held.
	RotationStep = 3.0
	// muzzleGap is the distance beyond the hull edge where bullets spawn.
	muzzleGap = 5.0
)

// Tank is a square hull driven by one player.
type Tank struct {
	Position    Vector2D
	Direction   float64 // degrees in [0, 360)
	Speed       float64
	Health      int
	Size        float64
	AmmoCount   int
	ReloadTimer float64 // ms accumulated toward the next round
	IsAlive     bool
	Color       color.RGBA
}

// NewTank creates a live tank with a full magazine.
func NewTank(pos Vector2D, dir, size float64, clr color.RGBA) *Tank {
	return &Tank{
		Position:  pos,
		Direction: normalizeDegrees(dir),
		Speed:     TankSpeed,
		Health:    TankHealth,
		Size:      size,
		AmmoCount: MaxAmmo,
		IsAlive:   true,
		Color:     clr,
	}
}

// Move advances the tank one step along its heading, or backwards when
// forward is false. A step that would overlap any wall is rejected and the
// tank is left untouched. It reports whether the move happened.
func (t *Tank) Move(forward bool, walls []Wall) bool {
	step := heading(t.Direction).Scale(t.Speed)
	if !forward {
		step = step.Scale(-1)
	}
	next := t.Position.Add(step)
	if t.collides(next, walls) {
		return false
	}
	t.Position = next
	return true
}

// Rotate turns the tank by delta degrees, keeping the heading in [0, 360).
func (t *Tank) Rotate(delta float64) {
	t.Direction = normalizeDegrees(t.Direction + delta)
}

// Shoot fires one round. It returns nil when the magazine is empty.
func (t *Tank) Shoot(walls []Wall) *Bullet {
	if t.AmmoCount <= 0 {
		return nil
	}
	t.AmmoCount--
	return NewBullet(t.muzzle(), t.Direction, walls)
}

// AddAmmo adds one round. It returns false, leaving the count unchanged,
// when the magazine is already full.
func (t *Tank) AddAmmo() bool {
	if t.AmmoCount >= MaxAmmo {
		return false
	}
	t.AmmoCount++
	return true
}

// Update advances the reload timer by dt milliseconds. Every full
// ReloadInterval below the cap grants one round.
func (t *Tank) Update(dt float64) {
	if t.AmmoCount >= MaxAmmo {
		t.ReloadTimer = 0
		return
	}
	t.ReloadTimer += dt
	if t.ReloadTimer >= ReloadInterval {
		t.AddAmmo()
		t.ReloadTimer = 0
	}
}

// SetState overwrites position and heading from a remote update. No
// collision check is made; the owning peer is trusted.
func (t *Tank) SetState(pos Vector2D, dir float64) {
	t.Position = pos
	t.Direction = normalizeDegrees(dir)
}

// Destroy marks the tank as dead. Dead tanks never revive.
func (t *Tank) Destroy() {
	t.IsAlive = false
	t.Health = 0
}

func (t *Tank) muzzle() Vector2D {
	return t.Position.Add(heading(t.Direction).Scale(t.Size/2 + muzzleGap))
}

func (t *Tank) collides(center Vector2D, walls []Wall) bool {
	half := t.Size / 2
	for _, w := range walls {
		if w.overlapsBox(center, half, half) {
			return true
		}
	}
	return false
}
