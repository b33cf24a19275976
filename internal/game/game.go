package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
)

const (
	// MaxPlayers is the number of seats in a match.
	MaxPlayers = 2
	// HotSeat makes both seats keyboard-controlled on this machine.
	HotSeat = -1

	maxSpawnAttempts = 100
	// maxTickDelta caps the time step after a stalled frame.
	maxTickDelta = 100.0
)

var (
	ErrNoSpawnPosition  = errors.New("no free spawn position")
	ErrNotEnoughPlayers = errors.New("match needs two players")
	ErrNotIdle          = errors.New("match already started")
	ErrEmptySlot        = errors.New("no live player in slot")
)

// State is the match lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Outbound receives the local player's actions for relay to the peer.
type Outbound interface {
	SendPosition(pos Vector2D, dir float64)
	SendShoot(pos Vector2D, dir float64, at time.Time)
}

// Options configures a Game. Zero values fall back to DefaultOptions.
type Options struct {
	CanvasWidth  float64
	CanvasHeight float64
	TankSize     float64
	SpawnBuffer  float64

	// LocalSlot is the seat driven by PrimaryBindings, or HotSeat to drive
	// slot 0 with PrimaryBindings and slot 1 with SecondaryBindings.
	LocalSlot int
	// DeferArena leaves the arena empty until SetArenaWalls is called.
	DeferArena bool

	Rand         *rand.Rand
	Clock        func() time.Time
	Logger       zerolog.Logger
	Events       *MatchLog
	Input        InputSource
	Outbound     Outbound
	OnMatchEnded func(Outcome)
}

// DefaultOptions returns the standard 800x600 arena settings.
func DefaultOptions() Options {
	return Options{
		CanvasWidth:  800,
		CanvasHeight: 600,
		TankSize:     50,
		SpawnBuffer:  50,
		Logger:       zerolog.Nop(),
	}
}

// Game is the simulation engine for one match. It is not safe for
// concurrent use; all calls must come from the game loop.
type Game struct {
	opts   Options
	rng    *rand.Rand
	now    func() time.Time
	log    zerolog.Logger
	events *MatchLog

	arena   *Arena
	players []*Player // live players in join order
	slots   [MaxPlayers]*Player
	bullets []*Bullet

	input    InputState
	state    State
	outcome  Outcome
	lastTick time.Time
	tick     int
}

// New creates an idle match. Unless DeferArena is set a maze is generated
// immediately.
func New(opts Options) *Game {
	def := DefaultOptions()
	if opts.CanvasWidth <= 0 {
		opts.CanvasWidth = def.CanvasWidth
	}
	if opts.CanvasHeight <= 0 {
		opts.CanvasHeight = def.CanvasHeight
	}
	if opts.TankSize <= 0 {
		opts.TankSize = def.TankSize
	}
	if opts.SpawnBuffer < 0 {
		opts.SpawnBuffer = def.SpawnBuffer
	}

	g := &Game{
		opts:   opts,
		rng:    opts.Rand,
		now:    opts.Clock,
		log:    opts.Logger.With().Str("component", "engine").Logger(),
		events: opts.Events,
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 -- gameplay randomness
	}
	if g.now == nil {
		g.now = time.Now
	}
	if g.events == nil {
		g.events = NewMatchLog(false)
	}

	if opts.DeferArena {
		g.arena = NewArenaFromWalls(nil)
	} else {
		g.arena = GenerateArena(g.rng, opts.CanvasWidth, opts.CanvasHeight, opts.TankSize)
		g.events.Add(0, "--", "match", "arena", fmt.Sprintf("%d walls", len(g.arena.Walls())), float64(len(g.arena.Walls())))
	}
	return g
}

// SetOutbound installs the relay for local actions.
func (g *Game) SetOutbound(o Outbound) { g.opts.Outbound = o }

// SetInput installs the input source polled each tick.
func (g *Game) SetInput(src InputSource) { g.opts.Input = src }

// SetArenaWalls replaces the arena with walls received from the host.
func (g *Game) SetArenaWalls(walls []Wall) error {
	if g.state != StateIdle {
		return ErrNotIdle
	}
	g.arena = NewArenaFromWalls(walls)
	for _, b := range g.bullets {
		b.walls = g.arena.Walls()
	}
	g.events.Add(g.tick, "--", "match", "arena", fmt.Sprintf("%d walls received", len(walls)), float64(len(walls)))
	return nil
}

// AddPlayer seats a new player at a random free spawn point. When the match
// is full the request is logged and ignored, returning a nil player.
func (g *Game) AddPlayer(name string) (*Player, error) {
	slot, ok := g.freeSlot(name)
	if !ok {
		return nil, nil
	}
	pos, err := g.randomSpawn()
	if err != nil {
		return nil, fmt.Errorf("add player %q: %w", name, err)
	}
	dir := float64(g.rng.Intn(360))
	return g.seat(slot, name, pos, dir), nil
}

// AddPlayerAt seats a player at an exact pose, as dictated by the host.
func (g *Game) AddPlayerAt(name string, pos Vector2D, dir float64) (*Player, error) {
	slot, ok := g.freeSlot(name)
	if !ok {
		return nil, nil
	}
	return g.seat(slot, name, pos, dir), nil
}

func (g *Game) freeSlot(name string) (int, bool) {
	for i, p := range g.slots {
		if p == nil {
			return i, true
		}
	}
	g.log.Warn().Str("player", name).Int("capacity", MaxPlayers).Msg("match full, player rejected")
	return 0, false
}

func (g *Game) seat(slot int, name string, pos Vector2D, dir float64) *Player {
	p := &Player{
		Name: name,
		Slot: slot,
		Tank: NewTank(pos, dir, g.opts.TankSize, slotColor(slot)),
	}
	g.slots[slot] = p
	g.players = append(g.players, p)
	g.log.Debug().Str("player", name).Int("slot", slot).
		Float64("x", pos.X).Float64("y", pos.Y).Msg("player seated")
	g.events.Add(g.tick, name, "spawn", "seated",
		fmt.Sprintf("slot=%d at (%.0f,%.0f) dir=%.0f", slot, pos.X, pos.Y, dir), float64(slot))
	return p
}

// randomSpawn rejection-samples a point whose tank box is clear of walls and
// keeps a buffer from every seated tank.
func (g *Game) randomSpawn() (Vector2D, error) {
	size := g.opts.TankSize
	half := size / 2
	for attempt := 0; attempt < maxSpawnAttempts; attempt++ {
		pos := Vector2D{
			X: half + g.rng.Float64()*(g.opts.CanvasWidth-size),
			Y: half + g.rng.Float64()*(g.opts.CanvasHeight-size),
		}
		if g.spawnClear(pos) {
			return pos, nil
		}
	}
	return Vector2D{}, ErrNoSpawnPosition
}

func (g *Game) spawnClear(pos Vector2D) bool {
	size := g.opts.TankSize
	for _, w := range g.arena.Walls() {
		if w.overlapsBox(pos, size/2, size/2) {
			return false
		}
	}
	for _, p := range g.players {
		minDist := (size+p.Tank.Size)/2 + g.opts.SpawnBuffer
		if pos.DistanceTo(p.Tank.Position) <= minDist {
			return false
		}
	}
	return true
}

// Start moves the match from idle to running.
func (g *Game) Start() error {
	if g.state != StateIdle {
		return ErrNotIdle
	}
	if len(g.players) < MaxPlayers {
		return fmt.Errorf("start with %d players: %w", len(g.players), ErrNotEnoughPlayers)
	}
	g.state = StateRunning
	g.lastTick = time.Time{}
	g.log.Info().Str("host", g.slots[0].Name).Str("guest", g.slots[1].Name).Msg("match started")
	g.events.Add(g.tick, "--", "match", "start", fmt.Sprintf("%s vs %s", g.slots[0].Name, g.slots[1].Name), 0)
	return nil
}

// Tick advances the match by the wall time elapsed since the previous call.
// The first tick after Start uses a zero delta.
func (g *Game) Tick(now time.Time) {
	if g.state != StateRunning {
		g.lastTick = time.Time{}
		return
	}
	dt := 0.0
	if !g.lastTick.IsZero() {
		dt = float64(now.Sub(g.lastTick)) / float64(time.Millisecond)
	}
	g.lastTick = now
	if dt < 0 {
		dt = 0
	}
	if dt > maxTickDelta {
		dt = maxTickDelta
	}
	g.Step(dt)
}

// Step runs one simulation tick of dt milliseconds. It does nothing unless
// the match is running.
func (g *Game) Step(dt float64) {
	if g.state != StateRunning {
		return
	}
	g.tick++

	// 1. Poll input.
	if g.opts.Input != nil {
		g.opts.Input.Poll(&g.input)
	}

	// 2. Apply local intents.
	if g.opts.LocalSlot == HotSeat {
		g.applySeat(g.slots[0], PrimaryBindings, false)
		g.applySeat(g.slots[1], SecondaryBindings, false)
	} else {
		g.applySeat(g.localPlayer(), PrimaryBindings, true)
	}
	g.input.latch()

	// 3. Advance bullets.
	tanks := make([]*Tank, 0, len(g.players))
	for _, p := range g.players {
		tanks = append(tanks, p.Tank)
	}
	for _, b := range g.bullets {
		bounces := b.Bounces
		if hit := b.Update(dt, tanks); hit != nil {
			victim := g.playerFor(hit)
			g.log.Info().Str("player", victim.Name).Int("tick", g.tick).Msg("tank destroyed")
			g.events.Add(g.tick, victim.Name, "bullet", "hit", "tank destroyed", 0)
		}
		if b.Bounces > bounces {
			g.events.AddVerbose(g.tick, "--", "bullet", "bounce",
				fmt.Sprintf("(%.0f,%.0f) dir=%.0f", b.Position.X, b.Position.Y, b.Direction), b.Direction)
		}
	}

	// 4. Reload.
	for _, p := range g.players {
		p.Tank.Update(dt)
	}

	// 5. Drop spent bullets and dead players.
	live := g.bullets[:0]
	for _, b := range g.bullets {
		if b.IsActive {
			live = append(live, b)
			continue
		}
		g.events.Add(g.tick, "--", "bullet", "removed", fmt.Sprintf("bounces=%d", b.Bounces), float64(b.Bounces))
	}
	g.bullets = live

	alive := g.players[:0]
	for _, p := range g.players {
		if p.Tank.IsAlive {
			alive = append(alive, p)
		}
	}
	g.players = alive

	// 6. Termination.
	if out := determineOutcome(g.players, g.tick); out.Result != ResultUndecided {
		g.end(out)
	}
}

func (g *Game) applySeat(p *Player, b Bindings, relay bool) {
	if p == nil || !p.Tank.IsAlive {
		return
	}
	in := b.read(&g.input)
	t := p.Tank
	if in.rotate != 0 {
		t.Rotate(in.rotate)
	}
	switch {
	case in.forward && !in.backward:
		t.Move(true, g.arena.Walls())
	case in.backward && !in.forward:
		t.Move(false, g.arena.Walls())
	}
	g.events.AddVerbose(g.tick, p.Name, "move", "pose",
		fmt.Sprintf("(%.1f,%.1f) dir=%.0f", t.Position.X, t.Position.Y, t.Direction), t.Direction)

	if in.fire {
		if bullet := t.Shoot(g.arena.Walls()); bullet != nil {
			g.bullets = append(g.bullets, bullet)
			g.events.Add(g.tick, p.Name, "fire", "shot", fmt.Sprintf("ammo=%d", t.AmmoCount), float64(t.AmmoCount))
			if relay && g.opts.Outbound != nil {
				g.opts.Outbound.SendShoot(bullet.Position, bullet.Direction, g.now())
			}
		} else {
			g.events.Add(g.tick, p.Name, "fire", "empty", "no ammo", 0)
		}
	}

	if relay && g.opts.Outbound != nil {
		g.opts.Outbound.SendPosition(t.Position, t.Direction)
	}
}

func (g *Game) end(out Outcome) {
	g.state = StateEnded
	g.outcome = out
	if out.Winner != nil {
		out.Winner.Score++
	}
	g.log.Info().Str("result", out.Result.String()).Int("tick", out.Tick).Msg(out.Description())
	g.events.Add(g.tick, "--", "match", "end", out.Description(), float64(out.Tick))
	if g.opts.OnMatchEnded != nil {
		g.opts.OnMatchEnded(out)
	}
}

// ApplyRemotePosition overwrites the mirrored tank in slot with the pose
// reported by its owner.
func (g *Game) ApplyRemotePosition(slot int, pos Vector2D, dir float64) error {
	p, err := g.remote(slot)
	if err != nil {
		return err
	}
	p.Tank.SetState(pos, dir)
	return nil
}

// ApplyRemoteShoot spawns a bullet fired by the remote player and
// fast-forwards it by the observed delay.
func (g *Game) ApplyRemoteShoot(slot int, pos Vector2D, dir float64, delay time.Duration) error {
	p, err := g.remote(slot)
	if err != nil {
		return err
	}
	if delay < 0 {
		delay = 0
	}
	b := NewBullet(pos, dir, g.arena.Walls())
	b.AdjustForDelay(float64(delay) / float64(time.Millisecond))
	if b.IsActive {
		g.bullets = append(g.bullets, b)
	}
	g.events.Add(g.tick, p.Name, "remote", "shot", fmt.Sprintf("delay=%s", delay), float64(delay.Milliseconds()))
	return nil
}

func (g *Game) remote(slot int) (*Player, error) {
	if slot < 0 || slot >= MaxPlayers || g.slots[slot] == nil || !g.slots[slot].Tank.IsAlive {
		return nil, fmt.Errorf("slot %d: %w", slot, ErrEmptySlot)
	}
	return g.slots[slot], nil
}

func (g *Game) localPlayer() *Player {
	if g.opts.LocalSlot < 0 || g.opts.LocalSlot >= MaxPlayers {
		return nil
	}
	return g.slots[g.opts.LocalSlot]
}

func (g *Game) playerFor(t *Tank) *Player {
	for _, p := range g.slots {
		if p != nil && p.Tank == t {
			return p
		}
	}
	return &Player{Name: "?"}
}

// State returns the lifecycle phase.
func (g *Game) State() State { return g.state }

// IsRunning reports whether the match is in progress.
func (g *Game) IsRunning() bool { return g.state == StateRunning }

// Outcome returns the result once the match has ended.
func (g *Game) Outcome() Outcome { return g.outcome }

// Slot returns the player seated in slot i, dead or alive, or nil.
func (g *Game) Slot(i int) *Player {
	if i < 0 || i >= MaxPlayers {
		return nil
	}
	return g.slots[i]
}

// Players returns the live players in join order.
func (g *Game) Players() []*Player {
	out := make([]*Player, len(g.players))
	copy(out, g.players)
	return out
}

// Bullets returns the active bullets.
func (g *Game) Bullets() []*Bullet {
	out := make([]*Bullet, len(g.bullets))
	copy(out, g.bullets)
	return out
}

// Walls returns the arena walls.
func (g *Game) Walls() []Wall { return g.arena.Walls() }

// Arena returns the arena in play.
func (g *Game) Arena() *Arena { return g.arena }

// Events returns the structured match log.
func (g *Game) Events() *MatchLog { return g.events }

// TickCount returns the number of simulation steps run.
func (g *Game) TickCount() int { return g.tick }

// CanvasSize returns the playfield dimensions.
func (g *Game) CanvasSize() (float64, float64) {
	return g.opts.CanvasWidth, g.opts.CanvasHeight
}
