package network

import (
	"encoding/json"

	"github.com/lixenwraith/endless-runner/game"
)

// MessageType names a frame on the feed
type MessageType string

const (
	// MsgWelcome is the first frame on a connection and carries the subscriber ID
	MsgWelcome MessageType = "welcome"
	// MsgState carries a session snapshot
	MsgState MessageType = "state"
)

// ProtocolVersion is bumped on incompatible frame changes
const ProtocolVersion = 1

// Frame is one JSON text message sent to subscribers
type Frame struct {
	Ver    int         `json:"ver"`
	Type   MessageType `json:"type"`
	ID     string      `json:"id,omitempty"`
	Seq    uint64      `json:"seq"`
	SentAt int64       `json:"sentAt"`
	State  *game.View  `json:"state,omitempty"`
}

// Encode marshals the frame for a websocket text message
func (f Frame) Encode() ([]byte, error) {
	f.Ver = ProtocolVersion
	return json.Marshal(f)
}

// DecodeFrame parses a frame received from the feed
func DecodeFrame(data []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(data, &f)
	return f, err
}
