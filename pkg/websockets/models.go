package websockets

// MessageType defines the type of a WebSocket message.
type MessageType string

const (
	// MessageTypeJackpotUpdate is for messages that broadcast a new jackpot
	// pool value.
	MessageTypeJackpotUpdate MessageType = "jackpotUpdate"
)

// Message represents a generic WebSocket message.
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// JackpotUpdatePayload is the payload for a jackpotUpdate message.
type JackpotUpdatePayload struct {
	AmountInternal int64 `json:"amount_internal"`
}
