package peer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Tank-Arena/internal/game"
)

// ErrOutOfOrder marks a message that arrived in a state where the protocol
// does not allow it. Such messages are dropped and never applied.
var ErrOutOfOrder = errors.New("message out of order")

// Role is which side of the handshake a session plays.
type Role int

const (
	RoleHost Role = iota
	RoleGuest
)

func (r Role) String() string {
	if r == RoleHost {
		return "host"
	}
	return "guest"
}

// Slot returns the engine slot this role drives. The host is always slot 0.
func (r Role) Slot() int {
	if r == RoleHost {
		return 0
	}
	return 1
}

// Engine is the part of the simulation the protocol drives.
type Engine interface {
	AddPlayer(name string) (*game.Player, error)
	AddPlayerAt(name string, pos game.Vector2D, dir float64) (*game.Player, error)
	Slot(i int) *game.Player
	Walls() []game.Wall
	SetArenaWalls(walls []game.Wall) error
	Start() error
	ApplyRemotePosition(slot int, pos game.Vector2D, dir float64) error
	ApplyRemoteShoot(slot int, pos game.Vector2D, dir float64, delay time.Duration) error
}

// Config configures a Session.
type Config struct {
	Role      Role
	LocalName string
	Channel   Channel
	Engine    Engine
	Logger    zerolog.Logger
	Clock     func() time.Time
	// OnStarted is called once, on the consumer, when both sides are ready
	// and the engine has started.
	OnStarted func()
}

// Session runs the handshake and relays steady-state traffic between the
// channel and the engine. Inbound frames are queued by transport goroutines
// and applied only from Pump, which must be called from the game loop.
type Session struct {
	id        uuid.UUID
	role      Role
	localName string
	ch        Channel
	engine    Engine
	inbox     *Inbox
	log       zerolog.Logger
	now       func() time.Time
	metrics   *metrics
	onStarted func()

	remoteName string
	hostReady  bool
	guestReady bool
	started    bool
	dropped    int
	lastErr    error

	done      chan struct{}
	closeOnce sync.Once
}

// New wires a session to its channel. The channel-open signal is queued
// like any inbound frame so the first send happens on the consumer.
func New(cfg Config) (*Session, error) {
	if cfg.Channel == nil || cfg.Engine == nil {
		return nil, errors.New("session needs a channel and an engine")
	}
	mt, err := newMetrics()
	if err != nil {
		return nil, err
	}
	id := uuid.New()
	s := &Session{
		id:        id,
		role:      cfg.Role,
		localName: cfg.LocalName,
		ch:        cfg.Channel,
		engine:    cfg.Engine,
		inbox:     NewInbox(),
		log: cfg.Logger.With().
			Str("component", "peer").
			Str("role", cfg.Role.String()).
			Str("session", id.String()).
			Logger(),
		now:       cfg.Clock,
		metrics:   mt,
		onStarted: cfg.OnStarted,
		done:      make(chan struct{}),
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.ch.OnMessage(func(data []byte) {
		s.inbox.Push(frame{data: data})
	})
	go func() {
		select {
		case <-s.ch.Opened():
			s.inbox.Push(frame{opened: true})
		case <-s.done:
		}
	}()
	return s, nil
}

// Close stops waiting for the channel to open. It does not close the channel.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Pump applies every queued inbound frame in arrival order and returns how
// many were processed.
func (s *Session) Pump() int {
	frames := s.inbox.GetAndEmpty()
	for _, f := range frames {
		s.handle(f)
	}
	return len(frames)
}

func (s *Session) handle(f frame) {
	if f.opened {
		s.onOpened()
		return
	}
	m, err := Decode(f.data)
	if err != nil {
		s.drop("", err)
		return
	}
	if err := s.dispatch(m); err != nil {
		s.drop(m.Topic, err)
		return
	}
	s.metrics.recordReceived(m.Topic)
}

func (s *Session) drop(topic Topic, err error) {
	reason := "error"
	switch {
	case errors.Is(err, ErrMalformed):
		reason = "malformed"
	case errors.Is(err, ErrOutOfOrder):
		reason = "out_of_order"
	}
	s.dropped++
	s.lastErr = err
	s.metrics.recordDropped(topic, reason)
	s.log.Warn().Err(err).Str("topic", string(topic)).Str("reason", reason).Msg("inbound message dropped")
}

func (s *Session) onOpened() {
	s.log.Info().Msg("channel open")
	if s.role != RoleHost {
		return
	}
	if err := s.send(Message{Type: TypeAsk, Topic: TopicName}); err != nil {
		s.lastErr = err
		s.log.Error().Err(err).Msg("asking guest name")
	}
}

func (s *Session) dispatch(m Message) error {
	if m.Type == TypeAsk {
		if m.Topic != TopicName {
			return fmt.Errorf("ask/%s: %w", m.Topic, ErrOutOfOrder)
		}
		return s.send(Message{Type: TypeAnswer, Topic: TopicName, Data: s.localName})
	}

	switch m.Topic {
	case TopicName:
		return s.onName(m)
	case TopicPlayer:
		return s.onPlayer(m)
	case TopicWall:
		return s.onWall(m)
	case TopicReady:
		return s.onReady()
	case TopicPosition:
		return s.onPosition(m)
	case TopicShoot:
		return s.onShoot(m)
	}
	return fmt.Errorf("answer/%s: %w", m.Topic, ErrMalformed)
}

func (s *Session) onName(m Message) error {
	if s.role != RoleHost || s.remoteName != "" {
		return fmt.Errorf("answer/name: %w", ErrOutOfOrder)
	}
	if m.Data == "" {
		return fmt.Errorf("answer/name: empty name: %w", ErrMalformed)
	}
	s.remoteName = m.Data
	s.log.Info().Str("guest", s.remoteName).Msg("guest named")

	host, err := s.engine.AddPlayer(s.localName)
	if err != nil {
		return fmt.Errorf("seating host: %w", err)
	}
	guest, err := s.engine.AddPlayer(s.remoteName)
	if err != nil {
		return fmt.Errorf("seating guest: %w", err)
	}
	if host == nil || guest == nil {
		return fmt.Errorf("answer/name: match already seated: %w", ErrOutOfOrder)
	}

	players, err := NewMessage(TypeAnswer, TopicPlayer, PlayerData{
		Host:  stateOf(host),
		Guest: stateOf(guest),
	})
	if err != nil {
		return err
	}
	if err := s.send(players); err != nil {
		return err
	}

	walls, err := NewMessage(TypeAnswer, TopicWall, game.WallRecords(s.engine.Walls()))
	if err != nil {
		return err
	}
	if err := s.send(walls); err != nil {
		return err
	}

	s.hostReady = true
	if err := s.send(Message{Type: TypeAnswer, Topic: TopicReady}); err != nil {
		return err
	}
	return s.tryStart()
}

func (s *Session) onPlayer(m Message) error {
	if s.role != RoleGuest || s.engine.Slot(0) != nil {
		return fmt.Errorf("answer/player: %w", ErrOutOfOrder)
	}
	pd, err := DecodeData[PlayerData](m)
	if err != nil {
		return err
	}
	if _, err := s.engine.AddPlayerAt(pd.Host.Name, pd.Host.Position, pd.Host.Direction); err != nil {
		return fmt.Errorf("seating host: %w", err)
	}
	if _, err := s.engine.AddPlayerAt(pd.Guest.Name, pd.Guest.Position, pd.Guest.Direction); err != nil {
		return fmt.Errorf("seating guest: %w", err)
	}
	s.remoteName = pd.Host.Name
	s.log.Info().Str("host", pd.Host.Name).Msg("players received")
	return nil
}

func (s *Session) onWall(m Message) error {
	if s.role != RoleGuest || s.guestReady || s.engine.Slot(0) == nil || s.engine.Slot(1) == nil {
		return fmt.Errorf("answer/wall: %w", ErrOutOfOrder)
	}
	recs, err := DecodeData[[]game.WallRecord](m)
	if err != nil {
		return err
	}
	if err := s.engine.SetArenaWalls(game.WallsFromRecords(recs)); err != nil {
		return fmt.Errorf("applying walls: %w", err)
	}
	s.log.Debug().Int("walls", len(recs)).Msg("arena received")

	s.guestReady = true
	if err := s.send(Message{Type: TypeAnswer, Topic: TopicReady}); err != nil {
		return err
	}
	return s.tryStart()
}

func (s *Session) onReady() error {
	switch s.role {
	case RoleHost:
		if !s.hostReady || s.guestReady {
			return fmt.Errorf("answer/ready: %w", ErrOutOfOrder)
		}
		s.guestReady = true
	case RoleGuest:
		if !s.guestReady || s.hostReady {
			return fmt.Errorf("answer/ready: %w", ErrOutOfOrder)
		}
		s.hostReady = true
	}
	return s.tryStart()
}

func (s *Session) onPosition(m Message) error {
	slot, err := s.remoteSlot(m.Topic)
	if err != nil {
		return err
	}
	pd, err := DecodeData[PositionData](m)
	if err != nil {
		return err
	}
	return s.applyRemote(s.engine.ApplyRemotePosition(slot, pd.Position, pd.Direction))
}

func (s *Session) onShoot(m Message) error {
	slot, err := s.remoteSlot(m.Topic)
	if err != nil {
		return err
	}
	sd, err := DecodeData[ShootData](m)
	if err != nil {
		return err
	}
	delay := s.now().Sub(time.UnixMilli(sd.Timestamp))
	if delay < 0 {
		delay = 0
	}
	return s.applyRemote(s.engine.ApplyRemoteShoot(slot, sd.Position, sd.Direction, delay))
}

// remoteSlot returns the slot mirrored from the peer, failing when the
// players have not been seated yet.
func (s *Session) remoteSlot(topic Topic) (int, error) {
	slot := 1 - s.role.Slot()
	if s.engine.Slot(slot) == nil {
		return 0, fmt.Errorf("answer/%s before players: %w", topic, ErrOutOfOrder)
	}
	return slot, nil
}

// applyRemote ignores updates for a tank this side already saw destroyed.
func (s *Session) applyRemote(err error) error {
	if errors.Is(err, game.ErrEmptySlot) {
		s.log.Debug().Err(err).Msg("update for destroyed tank ignored")
		return nil
	}
	return err
}

func (s *Session) tryStart() error {
	if s.started || !s.hostReady || !s.guestReady {
		return nil
	}
	if err := s.engine.Start(); err != nil {
		return fmt.Errorf("starting match: %w", err)
	}
	s.started = true
	s.log.Info().Str("peer", s.remoteName).Msg("both sides ready, match started")
	if s.onStarted != nil {
		s.onStarted()
	}
	return nil
}

func (s *Session) send(m Message) error {
	data, err := Encode(m)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", m.Type, m.Topic, err)
	}
	if err := s.ch.Send(data); err != nil {
		return fmt.Errorf("send %s/%s: %w", m.Type, m.Topic, err)
	}
	s.metrics.recordSent(m.Topic)
	return nil
}

// SendPosition relays the local tank pose. It satisfies game.Outbound.
func (s *Session) SendPosition(pos game.Vector2D, dir float64) {
	m, err := NewMessage(TypeAnswer, TopicPosition, PositionData{Position: pos, Direction: dir})
	if err == nil {
		err = s.send(m)
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("position not sent")
	}
}

// SendShoot relays a local shot. It satisfies game.Outbound.
func (s *Session) SendShoot(pos game.Vector2D, dir float64, at time.Time) {
	m, err := NewMessage(TypeAnswer, TopicShoot, ShootData{Position: pos, Direction: dir, Timestamp: at.UnixMilli()})
	if err == nil {
		err = s.send(m)
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("shot not sent")
	}
}

func stateOf(p *game.Player) PlayerState {
	return PlayerState{Name: p.Name, Position: p.Tank.Position, Direction: p.Tank.Direction}
}

// ID returns the random id used to correlate this session's log lines.
func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) Role() Role { return s.role }
func (s *Session) HostReady() bool { return s.hostReady }
func (s *Session) GuestReady() bool { return s.guestReady }
func (s *Session) Started() bool { return s.started }
func (s *Session) RemoteName() string { return s.remoteName }
func (s *Session) Dropped() int { return s.dropped }
func (s *Session) LastError() error { return s.lastErr }
func (s *Session) Pending() int { return s.inbox.Len() }
