// Package app is the ebiten shell around one engine and, in network modes,
// its peer session.
package app

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Tank-Arena/internal/config"
	"github.com/Garsondee/Tank-Arena/internal/game"
	"github.com/Garsondee/Tank-Arena/internal/peer"
	"github.com/Garsondee/Tank-Arena/internal/render"
	"github.com/Garsondee/Tank-Arena/internal/transport"
)

const hudMargin = 16

// App implements ebiten.Game.
type App struct {
	cfg config.Config
	log zerolog.Logger
	rng *rand.Rand

	game    *game.Game
	session *peer.Session
	conn    io.Closer
	lost    <-chan struct{}
	cancel  context.CancelFunc

	feed    EventFeed
	seen    int // MatchLog entries already mirrored to the feed
	scores  map[string]int
	status  string
	joinURL string
}

// New builds the shell for cfg.Mode. Host mode starts listening at once;
// join mode starts dialling in the background.
func New(cfg config.Config, logger zerolog.Logger) (*App, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	a := &App{
		cfg:    cfg,
		log:    logger.With().Str("component", "app").Logger(),
		rng:    rand.New(rand.NewSource(seed)), // #nosec G404 -- gameplay randomness
		scores: make(map[string]int),
	}

	switch cfg.Mode {
	case config.ModeLocal:
		if err := a.newLocalMatch(); err != nil {
			return nil, err
		}
	case config.ModeHost:
		if err := a.host(logger); err != nil {
			return nil, err
		}
	case config.ModeJoin:
		if err := a.join(logger); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}
	return a, nil
}

func (a *App) engineOptions(localSlot int) game.Options {
	opts := game.DefaultOptions()
	opts.CanvasWidth = a.cfg.Canvas.Width
	opts.CanvasHeight = a.cfg.Canvas.Height
	opts.TankSize = a.cfg.TankSize
	opts.SpawnBuffer = a.cfg.SpawnBuffer
	opts.LocalSlot = localSlot
	opts.Rand = a.rng
	opts.Logger = a.log
	opts.Input = Keyboard{}
	opts.OnMatchEnded = a.onMatchEnded
	return opts
}

// newLocalMatch seats both players on this keyboard and starts at once.
func (a *App) newLocalMatch() error {
	a.game = game.New(a.engineOptions(game.HotSeat))
	a.seen = 0
	for _, name := range []string{a.cfg.Name, a.cfg.GuestName} {
		if _, err := a.game.AddPlayer(name); err != nil {
			return fmt.Errorf("local match: %w", err)
		}
	}
	if err := a.game.Start(); err != nil {
		return fmt.Errorf("local match: %w", err)
	}
	a.status = "WASD + J  vs  arrows + 1"
	return nil
}

func (a *App) host(logger zerolog.Logger) error {
	l, err := transport.Listen(a.cfg.Listen, logger)
	if err != nil {
		return err
	}
	a.conn = l
	a.lost = l.Lost()
	a.joinURL = l.URL(a.cfg.Advertise)
	a.status = "waiting for guest at " + a.joinURL

	if a.cfg.CopyAddress {
		if err := clipboard.WriteAll(a.joinURL); err != nil {
			a.log.Warn().Err(err).Msg("could not copy join URL")
		} else {
			a.status += " (copied)"
		}
	}

	a.game = game.New(a.engineOptions(peer.RoleHost.Slot()))
	return a.attachSession(peer.RoleHost, l, logger)
}

func (a *App) join(logger zerolog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	c := transport.Dial(ctx, a.cfg.Peer, logger)
	a.conn = c
	a.lost = c.Lost()
	a.status = "connecting to " + a.cfg.Peer

	opts := a.engineOptions(peer.RoleGuest.Slot())
	opts.DeferArena = true
	a.game = game.New(opts)
	return a.attachSession(peer.RoleGuest, c, logger)
}

func (a *App) attachSession(role peer.Role, ch peer.Channel, logger zerolog.Logger) error {
	s, err := peer.New(peer.Config{
		Role:      role,
		LocalName: a.cfg.Name,
		Channel:   ch,
		Engine:    a.game,
		Logger:    logger,
		OnStarted: func() { a.status = "" },
	})
	if err != nil {
		return err
	}
	a.session = s
	a.game.SetOutbound(s)
	a.log.Info().Str("role", role.String()).Str("session", s.ID().String()).Msg("session created")
	return nil
}

func (a *App) onMatchEnded(out game.Outcome) {
	if out.Winner != nil {
		a.scores[out.Winner.Name]++
	}
}

// Update drains the peer inbox, then advances the engine one frame.
func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if a.session != nil {
		a.session.Pump()
		if !a.session.Started() && a.session.RemoteName() != "" {
			a.status = "handshaking with " + a.session.RemoteName()
		}
	}
	a.game.Tick(time.Now())
	a.mirrorEvents()

	if a.lost != nil {
		select {
		case <-a.lost:
			a.status = "peer disconnected"
			a.lost = nil
		default:
		}
	}

	if a.cfg.Mode == config.ModeLocal && a.game.State() == game.StateEnded &&
		inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := a.newLocalMatch(); err != nil {
			a.log.Error().Err(err).Msg("rematch failed")
			a.status = "rematch failed: " + err.Error()
		}
	}
	return nil
}

func (a *App) mirrorEvents() {
	entries := a.game.Events().Entries()
	for _, e := range entries[a.seen:] {
		if msg, ok := feedLine(e); ok {
			a.feed.Add(e.Tick, e.Player, feedColor(a.game, e.Player), msg)
		}
	}
	a.seen = len(entries)
}

func (a *App) Draw(screen *ebiten.Image) {
	a.game.Draw(render.NewSurface(screen))
	a.drawHUD(screen)
}

func (a *App) drawHUD(screen *ebiten.Image) {
	w, h := a.game.CanvasSize()

	for slot := 0; slot < game.MaxPlayers; slot++ {
		p := a.game.Slot(slot)
		if p == nil {
			continue
		}
		label := fmt.Sprintf("%s  %d", p.Name, a.scores[p.Name])
		x := float64(hudMargin)
		if slot == 1 {
			x = w - hudMargin - render.TextWidth(label)
		}
		render.Text(screen, label, x, hudMargin, p.Tank.Color)
		drawAmmo(screen, p.Tank, x, hudMargin+16)
	}

	if a.status != "" {
		render.Text(screen, a.status, (w-render.TextWidth(a.status))/2, hudMargin, color.Black)
	}

	if a.game.State() == game.StateEnded {
		lines := []string{strings.ToUpper(a.game.Outcome().Description())}
		if a.cfg.Mode == config.ModeLocal {
			lines = append(lines, "press R for a rematch")
		}
		bh := float64(len(lines)*18 + 16)
		vector.FillRect(screen, float32(w/2-140), float32(h/2-bh/2), 280, float32(bh), color.RGBA{A: 200}, false)
		y := h/2 - bh/2 + 8
		for _, l := range lines {
			render.Text(screen, l, (w-render.TextWidth(l))/2, y, color.White)
			y += 18
		}
	}

	a.feed.Draw(screen, hudMargin, h-hudMargin)
}

func drawAmmo(screen *ebiten.Image, t *game.Tank, x, y float64) {
	for i := 0; i < game.MaxAmmo; i++ {
		c := color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff}
		if i < t.AmmoCount {
			c = color.RGBA{R: 0xf2, G: 0xc1, B: 0x3a, A: 0xff}
		}
		vector.FillRect(screen, float32(x)+float32(i*10), float32(y), 6, 10, c, false)
	}
}

func (a *App) Layout(_, _ int) (int, int) {
	w, h := a.game.CanvasSize()
	return int(w), int(h)
}

// Close tears down the peer connection.
func (a *App) Close() error {
	if a.session != nil {
		a.session.Close()
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
