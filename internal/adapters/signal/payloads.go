package signal

import "encoding/json"

// Inbound event names.
const (
	EventJoinChat     = "join-chat"
	EventLeaveChat    = "leave-chat"
	EventSendMessage  = "send-message"
	EventCallOffer    = "call-offer"
	EventCallAnswer   = "call-answer"
	EventICECandidate = "ice-candidate"
	EventCallEnd      = "call-end"
	EventKeyExchange  = "key-exchange"
	EventPing         = "ping"
)

type joinChatPayload struct {
	ChatID    string          `json:"chatId" validate:"required,max=128"`
	UserID    string          `json:"userId" validate:"required,max=128"`
	PublicKey json.RawMessage `json:"publicKey"`
}

type leaveChatPayload struct {
	ChatID string `json:"chatId" validate:"max=128"`
}

type sendMessagePayload struct {
	ChatID           string          `json:"chatId" validate:"max=128"`
	EncryptedContent json.RawMessage `json:"encryptedContent" validate:"required"`
	MessageID        string          `json:"messageId" validate:"required,max=128"`
}

type callOfferPayload struct {
	ChatID   string          `json:"chatId" validate:"max=128"`
	Offer    json.RawMessage `json:"offer" validate:"required"`
	CallerID string          `json:"callerId" validate:"max=128"`
	IsVideo  bool            `json:"isVideo"`
}

type callAnswerPayload struct {
	ChatID   string          `json:"chatId" validate:"max=128"`
	Answer   json.RawMessage `json:"answer" validate:"required"`
	CallerID string          `json:"callerId" validate:"max=128"`
}

type iceCandidatePayload struct {
	ChatID    string          `json:"chatId" validate:"max=128"`
	Candidate json.RawMessage `json:"candidate" validate:"required"`
}

type callEndPayload struct {
	ChatID string `json:"chatId" validate:"max=128"`
}

type keyExchangePayload struct {
	ChatID      string          `json:"chatId" validate:"max=128"`
	RecipientID string          `json:"recipientId" validate:"required,max=128"`
	KeyBundle   json.RawMessage `json:"keyBundle" validate:"required"`
}
