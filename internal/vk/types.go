// Package vk carries the Callback API wire types and the outbound
// client for the VK community bot.
package vk

import "encoding/json"

// Callback is the envelope VK posts to the callback endpoint. Object
// stays raw until the type is known.
type Callback struct {
	Type    string          `json:"type"`
	GroupID int64           `json:"group_id"`
	Secret  string          `json:"secret"`
	Object  json.RawMessage `json:"object"`
}

// Callback types handled by the service; anything else is acknowledged
// and dropped.
const (
	CallbackConfirmation = "confirmation"
	CallbackMessageNew   = "message_new"
)

// MessageNew is the object of a message_new callback.
type MessageNew struct {
	Message IncomingMessage `json:"message"`
}

// IncomingMessage is the user message inside a message_new callback.
type IncomingMessage struct {
	FromID int64  `json:"from_id"`
	PeerID int64  `json:"peer_id"`
	Text   string `json:"text"`
}

// Keyboard is the reply keyboard payload of messages.send.
type Keyboard struct {
	OneTime bool       `json:"one_time"`
	Buttons [][]Button `json:"buttons"`
}

// Button wraps a single keyboard action.
type Button struct {
	Action ButtonAction `json:"action"`
}

// ButtonAction describes what tapping a button does; the bot only uses
// plain text buttons.
type ButtonAction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}
