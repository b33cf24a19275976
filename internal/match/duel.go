// Package match runs complete networked matches between two bots without a
// window, for reports and integration tests.
package match

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/Garsondee/Tank-Arena/internal/game"
	"github.com/Garsondee/Tank-Arena/internal/peer"
	"github.com/Garsondee/Tank-Arena/internal/transport"
)

// ErrHandshakeTimeout is returned when the sessions do not both start in time.
var ErrHandshakeTimeout = errors.New("handshake did not complete")

// Config configures a Duel.
type Config struct {
	Seed      int64
	Latency   time.Duration
	HostName  string
	GuestName string
	Verbose   bool
	Logger    zerolog.Logger
}

// Duel is a host and a guest engine joined by an in-memory pipe, each
// driven by its own bot.
type Duel struct {
	Host         *game.Game
	Guest        *game.Game
	HostSession  *peer.Session
	GuestSession *peer.Session

	hostEnd  *transport.PipeEnd
	guestEnd *transport.PipeEnd
	seed     int64
}

// Result summarizes one duel from both peers' point of view.
type Result struct {
	Seed         int64
	Ticks        int
	HostOutcome  game.Outcome
	GuestOutcome game.Outcome
	Shots        int
	Bounces      int
	Hits         int
	Dropped      int
}

// Agreed reports whether both peers reached the same result.
func (r Result) Agreed() bool {
	if r.HostOutcome.Result != r.GuestOutcome.Result {
		return false
	}
	if r.HostOutcome.Winner == nil || r.GuestOutcome.Winner == nil {
		return r.HostOutcome.Winner == r.GuestOutcome.Winner
	}
	return r.HostOutcome.Winner.Name == r.GuestOutcome.Winner.Name
}

// NewDuel wires both engines, sessions and bots. No message flows until
// Handshake or Run pumps the sessions.
func NewDuel(cfg Config) (*Duel, error) {
	if cfg.HostName == "" {
		cfg.HostName = "host-bot"
	}
	if cfg.GuestName == "" {
		cfg.GuestName = "guest-bot"
	}
	hostRng := rand.New(rand.NewSource(cfg.Seed))      // #nosec G404 -- seeded simulation
	guestRng := rand.New(rand.NewSource(cfg.Seed + 1)) // #nosec G404 -- seeded simulation

	d := &Duel{seed: cfg.Seed}
	d.hostEnd, d.guestEnd = transport.Pipe(cfg.Latency)

	hostOpts := game.DefaultOptions()
	hostOpts.Rand = hostRng
	hostOpts.LocalSlot = peer.RoleHost.Slot()
	hostOpts.Logger = cfg.Logger
	hostOpts.Events = game.NewMatchLog(cfg.Verbose)
	d.Host = game.New(hostOpts)
	d.Host.SetInput(NewBot(d.Host, peer.RoleHost.Slot(), hostRng))

	guestOpts := game.DefaultOptions()
	guestOpts.Rand = guestRng
	guestOpts.LocalSlot = peer.RoleGuest.Slot()
	guestOpts.DeferArena = true
	guestOpts.Logger = cfg.Logger
	guestOpts.Events = game.NewMatchLog(cfg.Verbose)
	d.Guest = game.New(guestOpts)
	d.Guest.SetInput(NewBot(d.Guest, peer.RoleGuest.Slot(), guestRng))

	var err error
	d.HostSession, err = peer.New(peer.Config{
		Role: peer.RoleHost, LocalName: cfg.HostName,
		Channel: d.hostEnd, Engine: d.Host, Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("host session: %w", err)
	}
	d.GuestSession, err = peer.New(peer.Config{
		Role: peer.RoleGuest, LocalName: cfg.GuestName,
		Channel: d.guestEnd, Engine: d.Guest, Logger: cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("guest session: %w", err)
	}
	d.Host.SetOutbound(d.HostSession)
	d.Guest.SetOutbound(d.GuestSession)
	return d, nil
}

// Handshake pumps both sessions until both engines are running.
func (d *Duel) Handshake(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for !(d.HostSession.Started() && d.GuestSession.Started()) {
		if time.Now().After(deadline) {
			return fmt.Errorf("seed %d: %w", d.seed, ErrHandshakeTimeout)
		}
		d.HostSession.Pump()
		d.GuestSession.Pump()
		time.Sleep(time.Millisecond)
	}
	return nil
}

// Run steps both engines one reference frame at a time until both report
// an ended match or maxTicks is reached.
func (d *Duel) Run(maxTicks int) Result {
	ticks := 0
	for ticks < maxTicks && (d.Host.IsRunning() || d.Guest.IsRunning()) {
		d.HostSession.Pump()
		d.GuestSession.Pump()
		d.Host.Step(game.FrameMs)
		d.Guest.Step(game.FrameMs)
		ticks++
	}
	return d.result(ticks)
}

func (d *Duel) result(ticks int) Result {
	r := Result{
		Seed:         d.seed,
		Ticks:        ticks,
		HostOutcome:  d.Host.Outcome(),
		GuestOutcome: d.Guest.Outcome(),
		Dropped:      d.HostSession.Dropped() + d.GuestSession.Dropped(),
	}
	r.Shots = d.Host.Events().Count("fire", "shot") + d.Guest.Events().Count("fire", "shot")
	// Both peers simulate every bullet; the host's view is reported.
	for _, e := range d.Host.Events().Filter("bullet", "removed") {
		r.Bounces += int(e.NumVal)
	}
	r.Hits = d.Host.Events().Count("bullet", "hit")
	return r
}

// Close shuts both pipe ends and sessions.
func (d *Duel) Close() {
	d.HostSession.Close()
	d.GuestSession.Close()
	_ = d.hostEnd.Close()
	_ = d.guestEnd.Close()
}
