package game

// WallThickness is the width of interior maze segments and the boundary frame.
const WallThickness = 10.0

// Wall is an axis-aligned rectangle covering [x, x+w] × [y, y+h].
// Walls are never changed after the arena is built.
type Wall struct {
	Position Vector2D `json:"position"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
}

// NewWall creates a wall with its top-left corner at (x, y).
func NewWall(x, y, w, h float64) Wall {
	return Wall{Position: Vector2D{X: x, Y: y}, Width: w, Height: h}
}

// Center returns the midpoint of the wall rectangle.
func (w Wall) Center() Vector2D {
	return Vector2D{X: w.Position.X + w.Width/2, Y: w.Position.Y + w.Height/2}
}

func (w Wall) minX() float64 { return w.Position.X }
func (w Wall) minY() float64 { return w.Position.Y }
func (w Wall) maxX() float64 { return w.Position.X + w.Width }
func (w Wall) maxY() float64 { return w.Position.Y + w.Height }

// overlapsBox reports whether the wall strictly overlaps the box centred at
// c with half extents hx, hy. Touching edges do not count.
func (w Wall) overlapsBox(c Vector2D, hx, hy float64) bool {
	return c.X-hx < w.maxX() && c.X+hx > w.minX() &&
		c.Y-hy < w.maxY() && c.Y+hy > w.minY()
}

// WallRecord is the plain serializable form of a wall used on the wire.
type WallRecord struct {
	Position Vector2D `json:"position"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
}

// Record converts the wall to its wire record.
func (w Wall) Record() WallRecord {
	return WallRecord(w)
}

// Wall converts a wire record back into a wall. The conversion is lossless.
func (r WallRecord) Wall() Wall {
	return Wall(r)
}

// WallRecords converts a wall list in order.
func WallRecords(walls []Wall) []WallRecord {
	out := make([]WallRecord, len(walls))
	for i, w := range walls {
		out[i] = w.Record()
	}
	return out
}

// WallsFromRecords converts wire records back into walls in order.
func WallsFromRecords(recs []WallRecord) []Wall {
	out := make([]Wall, len(recs))
	for i, r := range recs {
		out[i] = r.Wall()
	}
	return out
}
