package game

import "math"

const (
	BulletSpeed    = 7.0
	BulletRadius   = 5.0
	BulletLifetime = 10000.0 // ms
	// FrameMs is the reference frame length in ms the speeds are tuned to.
	FrameMs = 16.67
	// pushOutMargin is the extra distance a bullet is pushed clear of a wall
	// after reflecting.
	pushOutMargin = 0.1
)

// Bullet is a projectile that bounces off walls until it hits a tank or its
// lifetime runs out.
type Bullet struct {
	Position   Vector2D
	Direction  float64 // degrees in [0, 360)
	Speed      float64
	IsActive   bool
	LifetimeMs float64
	Bounces    int

	walls []Wall
}

// NewBullet creates an active bullet that collides with walls.
func NewBullet(pos Vector2D, dir float64, walls []Wall) *Bullet {
	return &Bullet{
		Position:   pos,
		Direction:  normalizeDegrees(dir),
		Speed:      BulletSpeed,
		IsActive:   true,
		LifetimeMs: BulletLifetime,
		walls:      walls,
	}
}

// Update advances the bullet by dt milliseconds, reflects it off at most one
// wall, and checks it against the given tanks. It returns the tank that was
// hit, or nil.
func (b *Bullet) Update(dt float64, tanks []*Tank) *Tank {
	if !b.IsActive {
		return nil
	}
	b.advance(dt)
	if b.bounce() {
		b.Bounces++
	}

	var hit *Tank
	for _, t := range tanks {
		if !t.IsAlive {
			continue
		}
		if b.Position.DistanceTo(t.Position) < BulletRadius+t.Size/2 {
			b.IsActive = false
			t.Destroy()
			hit = t
			break
		}
	}

	b.LifetimeMs -= dt
	if b.LifetimeMs <= 0 {
		b.IsActive = false
	}
	return hit
}

// AdjustForDelay fast-forwards a bullet reconstructed from a remote shot by
// the observed network delay. Walls are not checked during the catch-up.
func (b *Bullet) AdjustForDelay(delayMs float64) {
	if delayMs <= 0 {
		return
	}
	b.advance(delayMs)
	b.LifetimeMs -= delayMs
	if b.LifetimeMs <= 0 {
		b.IsActive = false
	}
}

func (b *Bullet) advance(dt float64) {
	b.Position = b.Position.Add(heading(b.Direction).Scale(b.Speed * dt / FrameMs))
}

// bounce reflects the bullet off the first wall it overlaps and reports
// whether a reflection happened.
func (b *Bullet) bounce() bool {
	for _, w := range b.walls {
		if !w.overlapsBox(b.Position, BulletRadius, BulletRadius) {
			continue
		}
		overlapX := math.Min(b.Position.X+BulletRadius-w.minX(), w.maxX()-(b.Position.X-BulletRadius))
		overlapY := math.Min(b.Position.Y+BulletRadius-w.minY(), w.maxY()-(b.Position.Y-BulletRadius))

		c := w.Center()
		var n Vector2D
		var overlap float64
		if overlapX < overlapY {
			n = Vector2D{X: 1}
			if b.Position.X < c.X {
				n.X = -1
			}
			overlap = overlapX
		} else {
			n = Vector2D{Y: 1}
			if b.Position.Y < c.Y {
				n.Y = -1
			}
			overlap = overlapY
		}

		v := heading(b.Direction)
		d := v.X*n.X + v.Y*n.Y
		r := v.Sub(n.Scale(2 * d))
		b.Direction = normalizeDegrees(math.Atan2(r.Y, r.X) * 180 / math.Pi)
		b.Position = b.Position.Add(n.Scale(overlap + pushOutMargin))
		return true
	}
	return false
}
