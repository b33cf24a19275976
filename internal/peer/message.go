package peer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Garsondee/Tank-Arena/internal/game"
)

// ErrMalformed marks an inbound frame that could not be decoded.
var ErrMalformed = errors.New("malformed message")

// Type distinguishes requests from replies and announcements.
type Type string

const (
	TypeAsk    Type = "ask"
	TypeAnswer Type = "answer"
)

// Topic names the subject of a message.
type Topic string

const (
	TopicName     Topic = "name"
	TopicPlayer   Topic = "player"
	TopicWall     Topic = "wall"
	TopicReady    Topic = "ready"
	TopicPosition Topic = "position"
	TopicShoot    Topic = "shoot"
)

func (t Topic) valid() bool {
	switch t {
	case TopicName, TopicPlayer, TopicWall, TopicReady, TopicPosition, TopicShoot:
		return true
	}
	return false
}

// Message is the wire envelope. Data carries a topic-specific payload,
// itself JSON encoded except for names which travel as plain text.
type Message struct {
	Type  Type   `json:"type"`
	Topic Topic  `json:"topic"`
	Data  string `json:"data,omitempty"`
}

// PlayerState is a player's pose as announced by the host.
type PlayerState struct {
	Name      string        `json:"name"`
	Position  game.Vector2D `json:"position"`
	Direction float64       `json:"direction"`
}

// PlayerData is the payload of answer/player.
type PlayerData struct {
	Host  PlayerState `json:"host"`
	Guest PlayerState `json:"guest"`
}

// PositionData is the payload of answer/position.
type PositionData struct {
	Position  game.Vector2D `json:"position"`
	Direction float64       `json:"direction"`
}

// ShootData is the payload of answer/shoot. Timestamp is unix milliseconds
// on the shooter's clock.
type ShootData struct {
	Position  game.Vector2D `json:"position"`
	Direction float64       `json:"direction"`
	Timestamp int64         `json:"timestamp"`
}

// NewMessage builds a message whose data is payload encoded as JSON.
func NewMessage[T any](typ Type, topic Topic, payload T) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s payload: %w", topic, err)
	}
	return Message{Type: typ, Topic: topic, Data: string(raw)}, nil
}

// DecodeData decodes the JSON payload carried in m.Data.
func DecodeData[T any](m Message) (T, error) {
	var v T
	if m.Data == "" {
		return v, fmt.Errorf("%s: empty data: %w", m.Topic, ErrMalformed)
	}
	if err := json.Unmarshal([]byte(m.Data), &v); err != nil {
		return v, fmt.Errorf("%s: %v: %w", m.Topic, err, ErrMalformed)
	}
	return v, nil
}

// Encode serializes a message to a wire frame.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses a wire frame and validates its type and topic.
func Decode(frame []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(frame, &m); err != nil {
		return Message{}, fmt.Errorf("%v: %w", err, ErrMalformed)
	}
	if m.Type != TypeAsk && m.Type != TypeAnswer {
		return Message{}, fmt.Errorf("type %q: %w", m.Type, ErrMalformed)
	}
	if !m.Topic.valid() {
		return Message{}, fmt.Errorf("topic %q: %w", m.Topic, ErrMalformed)
	}
	return m, nil
}
