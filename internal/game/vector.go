package game

import "math"

// Vector2D is a point or displacement on the canvas. Methods never mutate
// the receiver.
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec is shorthand for Vector2D{x, y}.
func Vec(x, y float64) Vector2D {
	return Vector2D{X: x, Y: y}
}

func (v Vector2D) Add(o Vector2D) Vector2D {
	return Vector2D{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector2D) Sub(o Vector2D) Vector2D {
	return Vector2D{X: v.X - o.X, Y: v.Y - o.Y}
}

func (v Vector2D) Scale(k float64) Vector2D {
	return Vector2D{X: v.X * k, Y: v.Y * k}
}

func (v Vector2D) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// DistanceTo returns the Euclidean distance between v and o.
func (v Vector2D) DistanceTo(o Vector2D) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// heading returns the unit vector for a direction given in degrees.
func heading(deg float64) Vector2D {
	rad := deg * math.Pi / 180
	return Vector2D{X: math.Cos(rad), Y: math.Sin(rad)}
}

// normalizeDegrees wraps deg into [0, 360).
func normalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}
