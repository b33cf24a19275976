package game

import (
	"math/rand"
	"testing"
	"time"
)

// testMatch is a headless match harness. It builds a Game with explicit
// walls and poses so scenarios are deterministic.
type testMatch struct {
	t       *testing.T
	g       *Game
	keys    *InputState
	out     *recordingOutbound
	ended   []Outcome
	opts    Options
	walls   []Wall
	seats   []testSeat
	hasMaze bool
}

type testSeat struct {
	name string
	pos  Vector2D
	dir  float64
}

type matchOptionKind int

const (
	matchOptInfra  matchOptionKind = iota // seed, walls, slot - applied first
	matchOptPlayer                        // seats - applied after the game exists
)

type matchOption struct {
	kind matchOptionKind
	fn   func(*testMatch)
}

func withSeed(seed int64) matchOption {
	return matchOption{matchOptInfra, func(tm *testMatch) {
		tm.opts.Rand = rand.New(rand.NewSource(seed)) // #nosec G404 -- test harness
	}}
}

func withWall(x, y, w, h float64) matchOption {
	return matchOption{matchOptInfra, func(tm *testMatch) {
		tm.walls = append(tm.walls, NewWall(x, y, w, h))
	}}
}

// withMaze keeps the generated arena instead of explicit walls.
func withMaze() matchOption {
	return matchOption{matchOptInfra, func(tm *testMatch) {
		tm.hasMaze = true
	}}
}

func withLocalSlot(slot int) matchOption {
	return matchOption{matchOptInfra, func(tm *testMatch) {
		tm.opts.LocalSlot = slot
	}}
}

func withPlayer(name string, x, y, dir float64) matchOption {
	return matchOption{matchOptPlayer, func(tm *testMatch) {
		tm.seats = append(tm.seats, testSeat{name: name, pos: Vec(x, y), dir: dir})
	}}
}

func newTestMatch(t *testing.T, opts ...matchOption) *testMatch {
	t.Helper()
	tm := &testMatch{
		t:    t,
		keys: &InputState{},
		out:  &recordingOutbound{},
		opts: DefaultOptions(),
	}
	tm.opts.Rand = rand.New(rand.NewSource(42)) // #nosec G404 -- test harness
	tm.opts.Clock = func() time.Time { return time.UnixMilli(1_000_000) }
	tm.opts.Events = NewMatchLog(true)
	for _, o := range opts {
		if o.kind == matchOptInfra {
			o.fn(tm)
		}
	}
	for _, o := range opts {
		if o.kind == matchOptPlayer {
			o.fn(tm)
		}
	}

	tm.opts.DeferArena = !tm.hasMaze
	tm.opts.Outbound = tm.out
	tm.opts.Input = InputFunc(func(s *InputState) { *s = mergeKeys(*s, *tm.keys) })
	tm.opts.OnMatchEnded = func(o Outcome) { tm.ended = append(tm.ended, o) }
	tm.g = New(tm.opts)
	if !tm.hasMaze {
		if err := tm.g.SetArenaWalls(tm.walls); err != nil {
			t.Fatalf("SetArenaWalls: %v", err)
		}
	}
	for _, s := range tm.seats {
		if _, err := tm.g.AddPlayerAt(s.name, s.pos, s.dir); err != nil {
			t.Fatalf("AddPlayerAt(%s): %v", s.name, err)
		}
	}
	return tm
}

// mergeKeys copies the held keys from src while keeping dst's latch history.
func mergeKeys(dst, src InputState) InputState {
	dst.down = src.down
	return dst
}

func (tm *testMatch) start() {
	tm.t.Helper()
	if err := tm.g.Start(); err != nil {
		tm.t.Fatalf("Start: %v", err)
	}
}

// step runs n ticks of one reference frame each.
func (tm *testMatch) step(n int) {
	for i := 0; i < n; i++ {
		tm.g.Step(FrameMs)
	}
}

func (tm *testMatch) hold(k Key)    { tm.keys.Press(k) }
func (tm *testMatch) release(k Key) { tm.keys.Release(k) }

// tap presses k for one tick and releases it for the next.
func (tm *testMatch) tap(k Key) {
	tm.hold(k)
	tm.step(1)
	tm.release(k)
	tm.step(1)
}

type sentShot struct {
	pos Vector2D
	dir float64
	at  time.Time
}

type recordingOutbound struct {
	positions []Vector2D
	shots     []sentShot
}

func (r *recordingOutbound) SendPosition(pos Vector2D, _ float64) {
	r.positions = append(r.positions, pos)
}

func (r *recordingOutbound) SendShoot(pos Vector2D, dir float64, at time.Time) {
	r.shots = append(r.shots, sentShot{pos: pos, dir: dir, at: at})
}
