package game

import "math/rand"

const (
	minMazeDim = 3
	maxMazeDim = 4
	// doorwayScale is the doorway width in tank sizes.
	doorwayScale = 3.0
)

// RoomEdge joins two adjacent rooms of the maze grid, identified by
// row-major index.
type RoomEdge struct {
	A, B int
}

// MazeLayout is the room grid an arena was generated from. Doors lists the
// edges that carry a doorway.
type MazeLayout struct {
	Rows  int
	Cols  int
	Doors []RoomEdge
}

// Rooms returns the number of rooms in the grid.
func (m *MazeLayout) Rooms() int {
	return m.Rows * m.Cols
}

// DoorCount returns how many doorways touch the given room.
func (m *MazeLayout) DoorCount(room int) int {
	n := 0
	for _, d := range m.Doors {
		if d.A == room || d.B == room {
			n++
		}
	}
	return n
}

// Connected flood-fills the room graph from room 0 through doorways and
// reports whether every room was reached.
func (m *MazeLayout) Connected() bool {
	total := m.Rooms()
	if total == 0 {
		return false
	}
	adj := make([][]int, total)
	for _, d := range m.Doors {
		adj[d.A] = append(adj[d.A], d.B)
		adj[d.B] = append(adj[d.B], d.A)
	}
	seen := make([]bool, total)
	seen[0] = true
	stack := []int{0}
	reached := 1
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range adj[cur] {
			if seen[n] {
				continue
			}
			seen[n] = true
			reached++
			stack = append(stack, n)
		}
	}
	return reached == total
}

// Arena is the ordered wall set for one match.
type Arena struct {
	walls  []Wall
	layout *MazeLayout
}

// NewArenaFromWalls builds an arena from walls received from the host. No
// generation happens and Layout returns nil.
func NewArenaFromWalls(walls []Wall) *Arena {
	cp := make([]Wall, len(walls))
	copy(cp, walls)
	return &Arena{walls: cp}
}

// Walls returns the arena walls in generation order.
func (a *Arena) Walls() []Wall {
	return a.walls
}

// Layout returns the maze grid the arena was generated from, or nil when
// the walls were supplied externally.
func (a *Arena) Layout() *MazeLayout {
	return a.layout
}

// GenerateArena carves a random maze into the canvas. The grid has 3–4 rows
// and columns; a spanning tree over the room adjacency graph decides which
// shared edges get a doorway wide enough for a tank to pass.
func GenerateArena(rng *rand.Rand, canvasW, canvasH, tankSize float64) *Arena {
	rows := minMazeDim + rng.Intn(maxMazeDim-minMazeDim+1)
	cols := minMazeDim + rng.Intn(maxMazeDim-minMazeDim+1)
	roomW := canvasW / float64(cols)
	roomH := canvasH / float64(rows)
	doorway := tankSize * doorwayScale

	var edges []RoomEdge
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			room := r*cols + c
			if r > 0 {
				edges = append(edges, RoomEdge{A: room, B: room - cols})
			}
			if c > 0 {
				edges = append(edges, RoomEdge{A: room, B: room - 1})
			}
		}
	}
	rng.Shuffle(len(edges), func(i, j int) { edges[i], edges[j] = edges[j], edges[i] })

	ds := newDisjointSet(rows * cols)
	open := make(map[RoomEdge]bool, len(edges))
	for _, e := range edges {
		if ds.union(e.A, e.B) {
			open[e] = true
		}
	}

	layout := &MazeLayout{Rows: rows, Cols: cols}
	for _, e := range edges {
		if open[e] {
			layout.Doors = append(layout.Doors, e)
		}
	}

	// Rooms left without a doorway get one towards the room above, or to the
	// left on the top row.
	for room := 0; room < rows*cols; room++ {
		if layout.DoorCount(room) > 0 {
			continue
		}
		var e RoomEdge
		switch {
		case room >= cols:
			e = RoomEdge{A: room, B: room - cols}
		case room%cols > 0:
			e = RoomEdge{A: room, B: room - 1}
		default:
			continue
		}
		open[e] = true
		layout.Doors = append(layout.Doors, e)
	}

	arena := &Arena{layout: layout}
	for _, e := range edges {
		r, c := e.A/cols, e.A%cols
		if e.B == e.A-cols {
			// Horizontal segment along the top edge of room A.
			x0 := float64(c) * roomW
			y := float64(r) * roomH
			arena.addSegment(rng, x0, y, roomW, true, open[e], doorway)
		} else {
			// Vertical segment along the left edge of room A.
			x := float64(c) * roomW
			y0 := float64(r) * roomH
			arena.addSegment(rng, x, y0, roomH, false, open[e], doorway)
		}
	}

	arena.walls = append(arena.walls,
		NewWall(0, 0, canvasW, WallThickness),
		NewWall(0, canvasH-WallThickness, canvasW, WallThickness),
		NewWall(0, 0, WallThickness, canvasH),
		NewWall(canvasW-WallThickness, 0, WallThickness, canvasH),
	)
	return arena
}

// addSegment emits the wall pieces for one grid edge starting at (x, y) and
// running length along the x axis when horizontal, else along y.
func (a *Arena) addSegment(rng *rand.Rand, x, y, length float64, horizontal, door bool, doorway float64) {
	if !door {
		a.addStub(x, y, 0, length, horizontal)
		return
	}
	if length <= doorway {
		return
	}
	offset := rng.Float64() * (length - doorway)
	a.addStub(x, y, 0, offset, horizontal)
	a.addStub(x, y, offset+doorway, length, horizontal)
}

// addStub covers [from, to) of a segment with a wall centred on the grid line.
func (a *Arena) addStub(x, y, from, to float64, horizontal bool) {
	if to-from <= 0 {
		return
	}
	half := WallThickness / 2
	if horizontal {
		a.walls = append(a.walls, NewWall(x+from, y-half, to-from, WallThickness))
		return
	}
	a.walls = append(a.walls, NewWall(x-half, y+from, WallThickness, to-from))
}

// disjointSet is a union-find forest with path compression.
type disjointSet struct {
	parent []int
}

func newDisjointSet(n int) *disjointSet {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &disjointSet{parent: p}
}

func (d *disjointSet) find(x int) int {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

// union merges the sets of a and b and reports whether they were distinct.
func (d *disjointSet) union(a, b int) bool {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return false
	}
	d.parent[ra] = rb
	return true
}
