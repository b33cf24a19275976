package peer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Tank-Arena/internal/game"
)

func TestDecode_ValidFrame(t *testing.T) {
	m, err := Decode([]byte(`{"type":"answer","topic":"name","data":"bob"}`))
	require.NoError(t, err)
	assert.Equal(t, Message{Type: TypeAnswer, Topic: TopicName, Data: "bob"}, m)
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"not json":      `{{{`,
		"unknown type":  `{"type":"tell","topic":"name"}`,
		"unknown topic": `{"type":"ask","topic":"score"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(raw))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestEncode_OmitsEmptyData(t *testing.T) {
	raw, err := Encode(Message{Type: TypeAnswer, Topic: TopicReady})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"answer","topic":"ready"}`, string(raw))
}

func TestNewMessage_ShootPayload(t *testing.T) {
	m, err := NewMessage(TypeAnswer, TopicShoot, ShootData{
		Position:  game.Vec(1.5, 2),
		Direction: 90,
		Timestamp: 1700000000123,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"position":{"x":1.5,"y":2},"direction":90,"timestamp":1700000000123}`, m.Data)

	back, err := DecodeData[ShootData](m)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000123), back.Timestamp)
}

func TestDecodeData_Malformed(t *testing.T) {
	_, err := DecodeData[PositionData](Message{Type: TypeAnswer, Topic: TopicPosition, Data: "[1,2"})
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = DecodeData[PositionData](Message{Type: TypeAnswer, Topic: TopicPosition})
	assert.ErrorIs(t, err, ErrMalformed)
}
