package chat

// Message is an inbound chat event from the gateway.
type Message struct {
	Room    string `json:"room"`
	Sender  string `json:"sender"`
	Msg     string `json:"msg"`
	Command bool   `json:"command"` // true when the message was addressed to the bot
}

// ReplyRequest posts a message to a room.
type ReplyRequest struct {
	Type string `json:"type"`
	Room string `json:"room"`
	Data string `json:"data"`
}

// DirectRequest sends a private message to a single user.
type DirectRequest struct {
	Type string `json:"type"`
	User string `json:"user"`
	Data string `json:"data"`
}

// PartRequest makes the bot leave a room.
type PartRequest struct {
	Room string `json:"room"`
}

// WebSocketState represents the gateway connection state.
type WebSocketState int

const (
	WSStateDisconnected WebSocketState = iota
	WSStateConnecting
	WSStateConnected
	WSStateReconnecting
	WSStateFailed
)

func (s WebSocketState) String() string {
	switch s {
	case WSStateDisconnected:
		return "disconnected"
	case WSStateConnecting:
		return "connecting"
	case WSStateConnected:
		return "connected"
	case WSStateReconnecting:
		return "reconnecting"
	case WSStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
