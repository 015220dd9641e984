package app

import (
	"encoding/json"

	"github.com/E1Shivank/whispr/internal/domain"
)

// Outbound event names.
const (
	EventChatUsers      = "chat-users"
	EventUserJoined     = "user-joined"
	EventUserLeft       = "user-left"
	EventReceiveMessage = "receive-message"
	EventCallOffer      = "call-offer"
	EventCallAnswer     = "call-answer"
	EventICECandidate   = "ice-candidate"
	EventCallEnd        = "call-end"
	EventKeyExchange    = "key-exchange"
	EventPong           = "pong"
	EventError          = "error"
)

type UserJoined struct {
	UserID    domain.UserID   `json:"userId"`
	PublicKey json.RawMessage `json:"publicKey,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

type UserLeft struct {
	UserID    domain.UserID `json:"userId"`
	Timestamp int64         `json:"timestamp"`
}

type ReceiveMessage struct {
	MessageID        string          `json:"messageId"`
	EncryptedContent json.RawMessage `json:"encryptedContent"`
	Timestamp        int64           `json:"timestamp"`
	SenderID         domain.UserID   `json:"senderId"`
}

type CallOffer struct {
	Offer    json.RawMessage `json:"offer"`
	CallerID string          `json:"callerId"`
	IsVideo  bool            `json:"isVideo"`
}

type CallAnswer struct {
	Answer   json.RawMessage `json:"answer"`
	CallerID string          `json:"callerId"`
}

type ICECandidate struct {
	Candidate json.RawMessage `json:"candidate"`
}

type CallEnd struct{}

type KeyExchange struct {
	SenderID  domain.UserID   `json:"senderId"`
	KeyBundle json.RawMessage `json:"keyBundle"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}
