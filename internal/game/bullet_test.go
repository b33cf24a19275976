package game

import (
	"math"
	"testing"
)

const eps = 1e-6

func TestBullet_ReflectsOffVerticalWall(t *testing.T) {
	walls := []Wall{NewWall(100, 0, 10, 200)}
	b := NewBullet(Vec(95, 100), 0, walls)
	b.Update(FrameMs, nil)

	if math.Abs(b.Direction-180) > eps {
		t.Fatalf("direction = %v, want 180", b.Direction)
	}
	if b.Speed != BulletSpeed {
		t.Fatalf("speed changed to %v", b.Speed)
	}
	if math.Abs(b.Position.X-94.9) > eps {
		t.Fatalf("pushed out to x=%v, want 94.9", b.Position.X)
	}
	if b.Bounces != 1 {
		t.Fatalf("bounces = %d", b.Bounces)
	}
}

func TestBullet_ReflectionFlipsNormalComponentOnly(t *testing.T) {
	walls := []Wall{NewWall(100, 0, 10, 400)}
	b := NewBullet(Vec(94, 200), 45, walls)
	before := heading(b.Direction)
	b.Update(FrameMs, nil)
	after := heading(b.Direction)

	if math.Abs(after.X+before.X) > eps {
		t.Fatalf("x component not flipped: %v -> %v", before.X, after.X)
	}
	if math.Abs(after.Y-before.Y) > eps {
		t.Fatalf("y component changed: %v -> %v", before.Y, after.Y)
	}
	if math.Abs(after.Len()-1) > eps {
		t.Fatalf("heading not unit length: %v", after.Len())
	}
	if math.Abs(b.Direction-135) > eps {
		t.Fatalf("direction = %v, want 135", b.Direction)
	}
}

func TestBullet_ReflectsOffHorizontalWall(t *testing.T) {
	walls := []Wall{NewWall(0, 300, 400, 10)}
	b := NewBullet(Vec(200, 294), 90, walls)
	b.Update(FrameMs, nil)
	if math.Abs(b.Direction-270) > eps {
		t.Fatalf("direction = %v, want 270", b.Direction)
	}
	if b.Position.Y >= 300-BulletRadius {
		t.Fatalf("bullet not pushed clear of wall: y=%v", b.Position.Y)
	}
}

func TestBullet_HitsTank(t *testing.T) {
	target := NewTank(Vec(50, 0), 0, 50, GuestColor)
	b := NewBullet(Vec(20, 0), 0, nil)
	hit := b.Update(FrameMs, []*Tank{target})
	if hit != target {
		t.Fatal("expected bullet to hit the tank")
	}
	if b.IsActive || target.IsAlive {
		t.Fatalf("after hit: bullet active=%v tank alive=%v", b.IsActive, target.IsAlive)
	}
}

func TestBullet_MissesOutsideRadius(t *testing.T) {
	target := NewTank(Vec(100, 0), 0, 50, GuestColor)
	b := NewBullet(Vec(20, 0), 0, nil)
	if hit := b.Update(FrameMs, []*Tank{target}); hit != nil {
		t.Fatal("bullet 73px away should not hit")
	}
}

func TestBullet_LifetimeExpires(t *testing.T) {
	b := NewBullet(Vec(0, 0), 0, nil)
	b.Update(BulletLifetime-1, nil)
	if !b.IsActive {
		t.Fatal("bullet expired early")
	}
	b.Update(1, nil)
	if b.IsActive {
		t.Fatal("bullet should expire once lifetime reaches zero")
	}
}

func TestBullet_AdjustForDelay(t *testing.T) {
	b := NewBullet(Vec(10, 20), 0, nil)
	b.AdjustForDelay(250)
	want := 10 + BulletSpeed*250/FrameMs
	if math.Abs(b.Position.X-want) > eps || math.Abs(b.Position.Y-20) > eps {
		t.Fatalf("position = %+v, want x=%v", b.Position, want)
	}
	if b.LifetimeMs != BulletLifetime-250 {
		t.Fatalf("lifetime = %v", b.LifetimeMs)
	}
}

func TestBullet_AdjustForNegativeDelayIsNoop(t *testing.T) {
	b := NewBullet(Vec(10, 20), 0, nil)
	b.AdjustForDelay(-50)
	if b.Position != Vec(10, 20) || b.LifetimeMs != BulletLifetime {
		t.Fatalf("negative delay moved bullet: %+v life=%v", b.Position, b.LifetimeMs)
	}
}
