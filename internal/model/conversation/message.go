package conversation

import "time"

// Direction distinguishes customer messages from our replies.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Channel identifies the transport a message arrived on.
type Channel string

const (
	ChannelVoice Channel = "voice"
	ChannelChat  Channel = "chat"
)

// Message persists one transport event for audit and history.
// ConversationID may be empty when recording raced conversation resolution;
// DeliveryStatus is backfilled asynchronously by transport callbacks.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	Direction      Direction `json:"direction"`
	Channel        Channel   `json:"channel"`
	Body           string    `json:"body"`
	DeliveryStatus string    `json:"deliveryStatus,omitempty"`
}
