package websockets

import "github.com/chris/forum-miniapp-store/pkg/store"

// MessageType defines the type of a WebSocket message.
type MessageType string

const (
	// MessageTypeStateChanged is sent after every store commit.
	MessageTypeStateChanged MessageType = "stateChanged"
	// MessageTypeToast carries a user-visible notification.
	MessageTypeToast MessageType = "toast"
)

// Message represents a generic WebSocket message.
type Message struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload"`
}

// StateChangedPayload is the payload for a stateChanged message.
type StateChangedPayload struct {
	Field store.Field `json:"field"`
	State store.State `json:"state"`
}
