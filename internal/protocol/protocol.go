package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"   // client -> server handshake
	TypeWelcome = "WELCOME" // server -> client handshake reply
	TypeScene   = "SCENE"   // server -> client full scene state
	TypeSwitch  = "SWITCH"  // client -> server scene change request
	TypePos     = "POS"     // client -> server position report
	TypePoint   = "POINT"   // client -> server point selection
	TypeNarrate = "NARRATE" // server -> client narration
	TypeChat    = "CHAT"    // both directions
	TypeError   = "ERROR"   // server -> client
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
