package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientMessageRoundTrip(t *testing.T) {
	cases := []ClientMessage{
		{SessionID: 1, TurnDirection: 0, NextExpectedEventNo: 0, PlayerName: ""},
		{SessionID: 123456789, TurnDirection: 1, NextExpectedEventNo: 42, PlayerName: "bob"},
		{SessionID: ^uint64(0), TurnDirection: 2, NextExpectedEventNo: 1 << 20, PlayerName: "exactly_twenty_bytes"},
	}
	for _, c := range cases {
		data := EncodeClientMessage(c)
		require.GreaterOrEqual(t, len(data), 13)
		require.LessOrEqual(t, len(data), 33)
		got, err := DecodeClientMessage(data)
		require.NoError(t, err)
		require.Equal(t, c, got)
	}
}

func TestDecodeClientMessageRejectsBadLength(t *testing.T) {
	_, err := DecodeClientMessage(make([]byte, 12))
	require.ErrorIs(t, err, ErrMalformedClientMessage)

	_, err = DecodeClientMessage(make([]byte, 34))
	require.ErrorIs(t, err, ErrMalformedClientMessage)
}

func TestDecodeClientMessageRejectsBadDirection(t *testing.T) {
	m := ClientMessage{SessionID: 1, TurnDirection: 3, NextExpectedEventNo: 0, PlayerName: "a"}
	data := EncodeClientMessage(m)
	_, err := DecodeClientMessage(data)
	require.ErrorIs(t, err, ErrMalformedClientMessage)
}

func TestDecodeClientMessageRejectsBadNameByte(t *testing.T) {
	data := EncodeClientMessage(ClientMessage{SessionID: 1, TurnDirection: 0, NextExpectedEventNo: 0, PlayerName: "ok"})
	data[len(data)-1] = ' ' - 1 // 31, outside [33,126]
	_, err := DecodeClientMessage(data)
	require.ErrorIs(t, err, ErrMalformedClientMessage)
}
