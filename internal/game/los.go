package game

import "math"

// HasLineOfSight returns true if the segment from a to b does not cross
// any wall rectangle. Uses simple ray-vs-AABB tests.
func HasLineOfSight(a, b Vector2D, walls []Wall) bool {
	for _, w := range walls {
		if rayIntersectsAABB(a.X, a.Y, b.X, b.Y, w.minX(), w.minY(), w.maxX(), w.maxY()) {
			return false
		}
	}
	return true
}

// FirstWallHit returns the distance along the segment from a to b at which
// it first enters a wall. The bool is false when the segment is clear.
func FirstWallHit(a, b Vector2D, walls []Wall) (float64, bool) {
	best := math.Inf(1)
	found := false
	for _, w := range walls {
		t, ok := rayAABBHitT(a.X, a.Y, b.X, b.Y, w.minX(), w.minY(), w.maxX(), w.maxY())
		if ok && t < best {
			best = t
			found = true
		}
	}
	if !found {
		return 0, false
	}
	return best * a.DistanceTo(b), true
}

// rayAABBHitT returns the first segment parameter t in [0,1] where the line
// from (ox,oy)->(ex,ey) enters the AABB. The bool is false when no hit exists.
func rayAABBHitT(ox, oy, ex, ey, minX, minY, maxX, maxY float64) (float64, bool) {
	dx := ex - ox
	dy := ey - oy

	tMin := 0.0
	tMax := 1.0

	// Check X slab
	if math.Abs(dx) < 1e-12 {
		if ox < minX || ox > maxX {
			return 0, false
		}
	} else {
		invD := 1.0 / dx
		t1 := (minX - ox) * invD
		t2 := (maxX - ox) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	// Check Y slab
	if math.Abs(dy) < 1e-12 {
		if oy < minY || oy > maxY {
			return 0, false
		}
	} else {
		invD := 1.0 / dy
		t1 := (minY - oy) * invD
		t2 := (maxY - oy) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}

	if tMax < 0 || tMin > 1 {
		return 0, false
	}

	if tMin < 0 {
		tMin = 0
	}
	if tMin > 1 {
		return 0, false
	}

	return tMin, true
}

// rayIntersectsAABB checks if the line segment from (ox,oy)->(ex,ey)
// intersects the axis-aligned bounding box defined by (minX,minY)-(maxX,maxY).
func rayIntersectsAABB(ox, oy, ex, ey, minX, minY, maxX, maxY float64) bool {
	_, hit := rayAABBHitT(ox, oy, ex, ey, minX, minY, maxX, maxY)
	return hit
}
